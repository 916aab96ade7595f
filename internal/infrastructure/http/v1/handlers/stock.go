package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/stock"
	"anchorstock/internal/infrastructure/http/v1/dto"
)

// StockHandler serves stock queries and the cached snapshot.
type StockHandler struct {
	service *stock.Service
}

func NewStockHandler(service *stock.Service) *StockHandler {
	return &StockHandler{service: service}
}

// GetStock returns current stock for one good at one location.
// GET /bases/:baseId/stock/goods/:goodsId/locations/:locationId
func (h *StockHandler) GetStock(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	goodsID, ok := pathID(c, "goodsId")
	if !ok {
		return
	}
	locationID, ok := pathID(c, "locationId")
	if !ok {
		return
	}

	summary, err := h.service.GetStock(c.Request.Context(), base, goodsID, locationID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetByLocations returns per-location stock for one good.
// GET /bases/:baseId/stock/goods/:goodsId/locations
func (h *StockHandler) GetByLocations(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	goodsID, ok := pathID(c, "goodsId")
	if !ok {
		return
	}

	result, err := h.service.GetGoodsStockByLocations(c.Request.Context(), base, goodsID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// CheckSufficiency compares available stock against a required quantity.
// POST /bases/:baseId/stock/goods/:goodsId/locations/:locationId/check
func (h *StockHandler) CheckSufficiency(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	goodsID, ok := pathID(c, "goodsId")
	if !ok {
		return
	}
	locationID, ok := pathID(c, "locationId")
	if !ok {
		return
	}

	var req dto.QtyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	result, err := h.service.CheckStockSufficient(c.Request.Context(), base, goodsID, locationID, toQty(req))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Snapshot serves the cached per-good stock snapshot with post-hoc filters.
// GET /bases/:baseId/stock/snapshot
func (h *StockHandler) Snapshot(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var query struct {
		dto.Pagination
		LocationID string `form:"locationId"`
		Name       string `form:"name"`
		Code       string `form:"code"`
		Category   string `form:"category"`
		Status     string `form:"status"`
		LowOnly    bool   `form:"lowOnly"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperror.NewValidation("invalid query parameters").WithCause(err))
		return
	}

	filter := stock.SnapshotFilter{
		Name:     query.Name,
		Code:     query.Code,
		Category: query.Category,
		LowOnly:  query.LowOnly,
	}
	if query.LocationID != "" {
		locID, err := id.Parse(query.LocationID)
		if err != nil {
			_ = c.Error(apperror.NewValidation("invalid location id").
				WithDetail("value", query.LocationID))
			return
		}
		filter.LocationID = &locID
	}
	if query.Status != "" {
		status := stock.Status(query.Status)
		filter.Status = &status
	}

	page, err := h.service.GetBaseRealTimeStock(c.Request.Context(), base, filter, stock.Page{
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// ClearCache drops the base's cached snapshots.
// DELETE /bases/:baseId/stock/snapshot/cache
func (h *StockHandler) ClearCache(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	h.service.ClearCache(c.Request.Context(), base)
	c.Status(http.StatusNoContent)
}
