package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/infrastructure/http/v1/dto"
)

// GoodsHandler serves the goods catalog.
type GoodsHandler struct {
	service *goods.Service
}

func NewGoodsHandler(service *goods.Service) *GoodsHandler {
	return &GoodsHandler{service: service}
}

func nameFrom(plain string, localized map[string]string) goods.Name {
	if len(localized) > 0 {
		return goods.NewLocalizedName(localized)
	}
	return goods.NewLegacyName(plain)
}

func thresholdFrom(p *dto.ThresholdPayload) *goods.Threshold {
	if p == nil {
		return nil
	}
	return &goods.Threshold{
		Enabled: p.Enabled,
		Value:   p.Value,
		Unit:    goods.ThresholdUnit(p.Unit),
	}
}

// Create adds a good to the catalog.
// POST /bases/:baseId/goods
func (h *GoodsHandler) Create(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var req dto.CreateGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	g := goods.New(base, req.Code, nameFrom(req.Name, req.Names), req.PackPerBox, req.PiecePerPack)
	g.Category = req.Category
	g.Threshold = thresholdFrom(req.Threshold)

	if err := h.service.Create(c.Request.Context(), g); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, g)
}

// Get returns one good.
// GET /bases/:baseId/goods/:goodsId
func (h *GoodsHandler) Get(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	goodsID, ok := pathID(c, "goodsId")
	if !ok {
		return
	}

	g, err := h.service.GetByID(c.Request.Context(), base, goodsID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, g)
}

// Update modifies a good.
// PUT /bases/:baseId/goods/:goodsId
func (h *GoodsHandler) Update(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	goodsID, ok := pathID(c, "goodsId")
	if !ok {
		return
	}

	var req dto.UpdateGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	g, err := h.service.GetByID(c.Request.Context(), base, goodsID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if req.Name != "" || len(req.Names) > 0 {
		g.Name = nameFrom(req.Name, req.Names)
	}
	if req.Category != "" {
		g.Category = req.Category
	}
	if req.PackPerBox > 0 {
		g.PackPerBox = req.PackPerBox
	}
	if req.PiecePerPack > 0 {
		g.PiecePerPack = req.PiecePerPack
	}
	if req.Active != nil {
		g.Active = *req.Active
	}
	if req.Threshold != nil {
		g.Threshold = thresholdFrom(req.Threshold)
	}

	if err := h.service.Update(c.Request.Context(), g); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, g)
}

// Delete deactivates a good.
// DELETE /bases/:baseId/goods/:goodsId
func (h *GoodsHandler) Delete(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	goodsID, ok := pathID(c, "goodsId")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), base, goodsID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns goods with filtering and pagination.
// GET /bases/:baseId/goods
func (h *GoodsHandler) List(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var query struct {
		dto.Pagination
		Search     string `form:"search"`
		Category   string `form:"category"`
		ActiveOnly bool   `form:"activeOnly"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperror.NewValidation("invalid query parameters").WithCause(err))
		return
	}

	result, total, err := h.service.List(c.Request.Context(), base, goods.ListFilter{
		Search:     query.Search,
		Category:   query.Category,
		ActiveOnly: query.ActiveOnly,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse[*goods.Goods]{Data: result, Total: total})
}
