// Package purchase provides purchase orders: the upstream bound on goods
// arrivals.
package purchase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/entity"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
)

// Status of a purchase order.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Order is a purchase order header.
type Order struct {
	entity.Record

	Number       string     `db:"number" json:"number"`
	SupplierName string     `db:"supplier_name" json:"supplierName,omitempty"`
	Status       Status     `db:"status" json:"status"`
	OrderedAt    *time.Time `db:"ordered_at" json:"orderedAt,omitempty"`

	Items []Item `db:"-" json:"items"`
}

// Item is a purchase order line: the ordered quantity and per-box price for
// one good. Arrivals against the order are bounded by this quantity.
type Item struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`
	GoodsID id.ID `db:"goods_id" json:"goodsId"`

	// LineNo orders items within the order; "first line item" means the
	// lowest line number
	LineNo int `db:"line_no" json:"lineNo"`

	// Ordered quantity (box/pack/piece columns)
	unit.Qty

	// UnitPrice is the purchase price per box
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`
}

// NewOrder creates an order header.
func NewOrder(baseID id.ID, number string, date time.Time, createdBy string) *Order {
	return &Order{
		Record: entity.NewRecord(baseID, date, createdBy),
		Number: number,
		Status: StatusOpen,
	}
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if err := o.Record.Validate(ctx); err != nil {
		return err
	}

	if len(o.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, item := range o.Items {
		if id.IsNil(item.GoodsID) {
			return apperror.NewValidation("goods is required").
				WithDetail("field", "items").
				WithDetail("itemNo", i+1)
		}
		if item.Qty.Box < 0 || item.Qty.Pack < 0 || item.Qty.Piece < 0 {
			return apperror.NewValidation("ordered quantity cannot be negative").
				WithDetail("field", "items").
				WithDetail("itemNo", i+1)
		}
		if item.Qty.IsZero() {
			return apperror.NewValidation("ordered quantity is required").
				WithDetail("field", "items").
				WithDetail("itemNo", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "items").
				WithDetail("itemNo", i+1)
		}
	}

	return nil
}

// Repository defines persistence operations for purchase orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, baseID, orderID id.ID) (*Order, error)

	// FirstItem returns the order's first line item. Goods receiving implies
	// the good from the order rather than accepting one from the caller.
	FirstItem(ctx context.Context, baseID, orderID id.ID) (*Item, error)

	// ItemForGoods returns the line item matching a good, for cost recompute
	// over historical arrivals.
	ItemForGoods(ctx context.Context, baseID, orderID, goodsID id.ID) (*Item, error)

	UpdateStatus(ctx context.Context, baseID, orderID id.ID, status Status) error

	List(ctx context.Context, baseID id.ID, limit, offset int) ([]*Order, int64, error)
}
