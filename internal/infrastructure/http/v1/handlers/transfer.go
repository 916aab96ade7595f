package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/domain/transfer"
	"anchorstock/internal/infrastructure/http/v1/dto"
)

// TransferHandler serves stock-transfer records.
type TransferHandler struct {
	service *transfer.Service
}

func NewTransferHandler(service *transfer.Service) *TransferHandler {
	return &TransferHandler{service: service}
}

// Create records a transfer between two locations.
// POST /bases/:baseId/transfers
func (h *TransferHandler) Create(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	goodsID, ok := bodyID(c, req.GoodsID, "goodsId", false)
	if !ok {
		return
	}
	sourceID, ok := bodyID(c, req.SourceLocationID, "sourceLocationId", false)
	if !ok {
		return
	}
	destID, ok := bodyID(c, req.DestinationLocationID, "destinationLocationId", false)
	if !ok {
		return
	}
	sourceHandlerID, ok := bodyID(c, req.SourceHandlerID, "sourceHandlerId", true)
	if !ok {
		return
	}
	destHandlerID, ok := bodyID(c, req.DestinationHandlerID, "destinationHandlerId", true)
	if !ok {
		return
	}

	rec, err := h.service.Create(c.Request.Context(), base, transfer.CreateInput{
		GoodsID:               goodsID,
		SourceLocationID:      sourceID,
		DestinationLocationID: destID,
		SourceHandlerID:       sourceHandlerID,
		DestinationHandlerID:  destHandlerID,
		Date:                  req.Date,
		Qty:                   toQty(req.Qty),
		Remark:                req.Remark,
	}, actorFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// UpdateStatus moves a transfer through its workflow.
// PATCH /bases/:baseId/transfers/:recordId/status
func (h *TransferHandler) UpdateStatus(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	recordID, ok := pathID(c, "recordId")
	if !ok {
		return
	}

	var req dto.UpdateTransferStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), base, recordID, transfer.Status(req.Status), actorFrom(c)); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes a transfer record.
// DELETE /bases/:baseId/transfers/:recordId
func (h *TransferHandler) Delete(c *gin.Context) {
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

// List returns transfers with filtering and pagination.
// GET /bases/:baseId/transfers
func (h *TransferHandler) List(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var query struct {
		dto.Pagination
		GoodsID   string `form:"goodsId"`
		HandlerID string `form:"handlerId"`
		Status    string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperror.NewValidation("invalid query parameters").WithCause(err))
		return
	}

	filter := transfer.ListFilter{Limit: query.Limit, Offset: query.Offset}
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
	if query.Status != "" {
		status := transfer.Status(query.Status)
		filter.Status = &status
	}

	records, total, err := h.service.List(c.Request.Context(), base, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse[*transfer.Record]{Data: records, Total: total})
}
