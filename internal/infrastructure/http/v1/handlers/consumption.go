package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/domain/consumption"
	"anchorstock/internal/infrastructure/http/v1/dto"
)

// ConsumptionHandler serves end-of-stream reconciliation records.
type ConsumptionHandler struct {
	service *consumption.Service
}

func NewConsumptionHandler(service *consumption.Service) *ConsumptionHandler {
	return &ConsumptionHandler{service: service}
}

// GetOpening returns what a handler is currently holding for a good,
// pre-filling the opening side of a new consumption entry.
// GET /bases/:baseId/consumptions/opening?goodsId=&handlerId=
func (h *ConsumptionHandler) GetOpening(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	goodsID, ok := bodyID(c, c.Query("goodsId"), "goodsId", false)
	if !ok {
		return
	}
	handlerID, ok := bodyID(c, c.Query("handlerId"), "handlerId", false)
	if !ok {
		return
	}

	opening, err := h.service.GetOpeningStock(c.Request.Context(), base, goodsID, handlerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, opening)
}

// Create records an explicit consumption entry.
// POST /bases/:baseId/consumptions
func (h *ConsumptionHandler) Create(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	in, ok := h.inputFrom(c)
	if !ok {
		return
	}

	rec, err := h.service.Create(c.Request.Context(), base, in, actorFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// Import ingests spreadsheet rows. Each row is resolved and persisted
// independently so one bad row does not abort the batch.
// POST /bases/:baseId/consumptions/import
func (h *ConsumptionHandler) Import(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var req dto.ImportConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	actor := actorFrom(c)
	result := dto.ImportConsumptionResult{Errors: map[string]string{}}
	for i, row := range req.Rows {
		_, err := h.service.Import(c.Request.Context(), base, consumption.ImportRow{
			GoodsName:    row.GoodsName,
			LocationName: row.LocationName,
			HandlerName:  row.HandlerName,
			Date:         row.Date,
			Closing:      toQty(row.Closing),
		}, actor)
		if err != nil {
			result.Failed++
			result.Errors[strconv.Itoa(i)] = err.Error()
			continue
		}
		result.Created++
	}
	if len(result.Errors) == 0 {
		result.Errors = nil
	}

	c.JSON(http.StatusOK, result)
}

// Update re-validates and rewrites a consumption entry.
// PUT /bases/:baseId/consumptions/:recordId
func (h *ConsumptionHandler) Update(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	recordID, ok := pathID(c, "recordId")
	if !ok {
		return
	}

	in, ok := h.inputFrom(c)
	if !ok {
		return
	}

	rec, err := h.service.Update(c.Request.Context(), base, recordID, in, actorFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Delete removes a consumption entry unless a profit record depends on it.
// DELETE /bases/:baseId/consumptions/:recordId
func (h *ConsumptionHandler) Delete(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	recordID, ok := pathID(c, "recordId")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), base, recordID, actorFrom(c)); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns consumption entries with filtering and pagination.
// GET /bases/:baseId/consumptions
func (h *ConsumptionHandler) List(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var query struct {
		dto.Pagination
		GoodsID   string `form:"goodsId"`
		HandlerID string `form:"handlerId"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperror.NewValidation("invalid query parameters").WithCause(err))
		return
	}

	filter := consumption.ListFilter{Limit: query.Limit, Offset: query.Offset}
	if query.GoodsID != "" {
		parsed, ok := bodyID(c, query.GoodsID, "goodsId", false)
		if !ok {
			return
		}
		filter.GoodsID = &parsed
	}
	if query.HandlerID != "" {
		parsed, ok := bodyID(c, query.HandlerID, "handlerId", false)
		if !ok {
			return
		}
		filter.HandlerID = &parsed
	}

	records, total, err := h.service.List(c.Request.Context(), base, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse[*consumption.Record]{Data: records, Total: total})
}

func (h *ConsumptionHandler) inputFrom(c *gin.Context) (consumption.CreateInput, bool) {
	var req dto.CreateConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return consumption.CreateInput{}, false
	}

	goodsID, ok := bodyID(c, req.GoodsID, "goodsId", false)
	if !ok {
		return consumption.CreateInput{}, false
	}
	locationID, ok := bodyID(c, req.LocationID, "locationId", false)
	if !ok {
		return consumption.CreateInput{}, false
	}
	handlerID, ok := bodyID(c, req.HandlerID, "handlerId", false)
	if !ok {
		return consumption.CreateInput{}, false
	}

	return consumption.CreateInput{
		GoodsID:    goodsID,
		LocationID: locationID,
		HandlerID:  handlerID,
		Date:       req.Date,
		Opening:    toQty(req.Opening),
		Closing:    toQty(req.Closing),
	}, true
}
