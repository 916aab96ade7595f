package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/domain/arrival"
	"anchorstock/internal/infrastructure/http/v1/dto"
)

// ArrivalHandler serves goods-arrival records.
type ArrivalHandler struct {
	service *arrival.Service
}

func NewArrivalHandler(service *arrival.Service) *ArrivalHandler {
	return &ArrivalHandler{service: service}
}

// Create records a receipt against a purchase order.
// POST /bases/:baseId/arrivals
func (h *ArrivalHandler) Create(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var req dto.CreateArrivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	orderID, ok := bodyID(c, req.PurchaseOrderID, "purchaseOrderId", false)
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

	rec, err := h.service.Create(c.Request.Context(), base, arrival.CreateInput{
		PurchaseOrderID: orderID,
		LocationID:      locationID,
		HandlerID:       handlerID,
		Date:            req.Date,
		Qty:             toQty(req.Qty),
		LogisticsFee:    req.LogisticsFee,
	}, actorFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// Delete removes an arrival and triggers the cost recompute.
// DELETE /bases/:baseId/arrivals/:recordId
func (h *ArrivalHandler) Delete(c *gin.Context) {
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

// List returns arrivals with filtering and pagination.
// GET /bases/:baseId/arrivals
func (h *ArrivalHandler) List(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var query struct {
		dto.Pagination
		GoodsID         string `form:"goodsId"`
		PurchaseOrderID string `form:"purchaseOrderId"`
		LocationID      string `form:"locationId"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperror.NewValidation("invalid query parameters").WithCause(err))
		return
	}

	filter := arrival.ListFilter{Limit: query.Limit, Offset: query.Offset}
	if query.GoodsID != "" {
		parsed, ok := bodyID(c, query.GoodsID, "goodsId", false)
		if !ok {
			return
		}
		filter.GoodsID = &parsed
	}
	if query.PurchaseOrderID != "" {
		parsed, ok := bodyID(c, query.PurchaseOrderID, "purchaseOrderId", false)
		if !ok {
			return
		}
		filter.PurchaseOrderID = &parsed
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

	c.JSON(http.StatusOK, dto.ListResponse[*arrival.Record]{Data: records, Total: total})
}
