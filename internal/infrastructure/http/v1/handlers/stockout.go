package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/domain/stockout"
	"anchorstock/internal/infrastructure/http/v1/dto"
)

// StockOutHandler serves write-off records.
type StockOutHandler struct {
	service *stockout.Service
}

func NewStockOutHandler(service *stockout.Service) *StockOutHandler {
	return &StockOutHandler{service: service}
}

// Create writes stock off a location.
// POST /bases/:baseId/stock-outs
func (h *StockOutHandler) Create(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var req dto.CreateStockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	goodsID, ok := bodyID(c, req.GoodsID, "goodsId", false)
	if !ok {
		return
	}
	locationID, ok := bodyID(c, req.LocationID, "locationId", false)
	if !ok {
		return
	}
	handlerID, ok := bodyID(c, req.HandlerID, "handlerId", true)
	if !ok {
		return
	}

	rec, err := h.service.Create(c.Request.Context(), base, stockout.CreateInput{
		GoodsID:    goodsID,
		LocationID: locationID,
		HandlerID:  handlerID,
		Date:       req.Date,
		Qty:        toQty(req.Qty),
		Reason:     req.Reason,
	}, actorFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// Delete removes a stock-out record.
// DELETE /bases/:baseId/stock-outs/:recordId
func (h *StockOutHandler) Delete(c *gin.Context) {
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

// List returns stock-out records with filtering and pagination.
// GET /bases/:baseId/stock-outs
func (h *StockOutHandler) List(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var query struct {
		dto.Pagination
		GoodsID    string `form:"goodsId"`
		LocationID string `form:"locationId"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperror.NewValidation("invalid query parameters").WithCause(err))
		return
	}

	filter := stockout.ListFilter{Limit: query.Limit, Offset: query.Offset}
	if query.GoodsID != "" {
		parsed, ok := bodyID(c, query.GoodsID, "goodsId", false)
		if !ok {
			return
		}
		filter.GoodsID = &parsed
	}
	if query.LocationID != "" {
		parsed, ok := bodyID(c, query.LocationID, "locationId", false)
		if !ok {
			return
		}
		filter.LocationID = &parsed
	}

	records, total, err := h.service.List(c.Request.Context(), base, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse[*stockout.Record]{Data: records, Total: total})
}
