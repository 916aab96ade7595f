package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/purchase"
	"anchorstock/internal/infrastructure/http/v1/dto"
	"anchorstock/pkg/numerator"
)

// OrderHandler serves purchase orders. Orders are headers plus line items;
// arrivals received against an order are bounded by the ordered quantities.
type OrderHandler struct {
	repo    purchase.Repository
	numbers *numerator.Service
}

func NewOrderHandler(repo purchase.Repository, numbers *numerator.Service) *OrderHandler {
	return &OrderHandler{repo: repo, numbers: numbers}
}

// Create persists an order with its line items.
// POST /bases/:baseId/purchase-orders
func (h *OrderHandler) Create(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var req dto.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	number := req.Number
	if number == "" {
		generated, err := h.numbers.Next(c.Request.Context(), base, numerator.DefaultConfig("PO"), req.Date)
		if err != nil {
			_ = c.Error(err)
			return
		}
		number = generated
	}

	order := purchase.NewOrder(base, number, req.Date, actorFrom(c))
	order.SupplierName = req.SupplierName
	order.OrderedAt = &req.Date

	for i, item := range req.Items {
		goodsID, ok := bodyID(c, item.GoodsID, "items.goodsId", false)
		if !ok {
			return
		}
		order.Items = append(order.Items, purchase.Item{
			ID:        id.New(),
			OrderID:   order.ID,
			GoodsID:   goodsID,
			LineNo:    i + 1,
			Qty:       toQty(item.Qty),
			UnitPrice: item.UnitPrice,
		})
	}

	if err := order.Validate(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.repo.Create(c.Request.Context(), order); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// Get returns one order with its items.
// GET /bases/:baseId/purchase-orders/:orderId
func (h *OrderHandler) Get(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	order, err := h.repo.GetByID(c.Request.Context(), base, orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateStatus moves an order through its workflow.
// PATCH /bases/:baseId/purchase-orders/:orderId/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	status := purchase.Status(req.Status)
	switch status {
	case purchase.StatusOpen, purchase.StatusCompleted, purchase.StatusCancelled:
	default:
		_ = c.Error(apperror.NewValidation("unknown order status").
			WithDetail("value", req.Status))
		return
	}

	if err := h.repo.UpdateStatus(c.Request.Context(), base, orderID, status); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns orders with pagination.
// GET /bases/:baseId/purchase-orders
func (h *OrderHandler) List(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var query dto.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperror.NewValidation("invalid query parameters").WithCause(err))
		return
	}

	orders, total, err := h.repo.List(c.Request.Context(), base, query.Limit, query.Offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse[*purchase.Order]{Data: orders, Total: total})
}
