// Package arrival provides goods-arrival records: receipts against a purchase
// order into a location, bounded by the order's line-item quantity.
package arrival

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/entity"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
)

// Record is one goods receipt. Append-only; deleting one triggers a full
// average-cost recompute for the good.
type Record struct {
	entity.Record

	GoodsID         id.ID `db:"goods_id" json:"goodsId"`
	PurchaseOrderID id.ID `db:"purchase_order_id" json:"purchaseOrderId"`
	LocationID      id.ID `db:"location_id" json:"locationId"`
	HandlerID       id.ID `db:"handler_id" json:"handlerId"`

	// Received quantity (box/pack/piece columns)
	unit.Qty

	// LogisticsFee is a one-time landed cost attributed entirely to this batch
	LogisticsFee decimal.Decimal `db:"logistics_fee" json:"logisticsFee"`
}

// NewRecord creates an arrival record. The goods reference is implied by the
// purchase order and filled in by the service.
func NewRecord(baseID, orderID, locationID, handlerID id.ID, date time.Time, qty unit.Qty, createdBy string) *Record {
	return &Record{
		Record:          entity.NewRecord(baseID, date, createdBy),
		PurchaseOrderID: orderID,
		LocationID:      locationID,
		HandlerID:       handlerID,
		Qty:             qty,
		LogisticsFee:    decimal.Zero,
	}
}

// Validate implements entity.Validatable.
func (r *Record) Validate(ctx context.Context) error {
	if err := r.Record.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.PurchaseOrderID) {
		return apperror.NewValidation("purchase order is required").
			WithDetail("field", "purchaseOrderId")
	}
	if id.IsNil(r.LocationID) {
		return apperror.NewValidation("location is required").
			WithDetail("field", "locationId")
	}
	if r.Box < 0 || r.Pack < 0 || r.Piece < 0 {
		return apperror.NewValidation("arrival quantity cannot be negative").
			WithDetail("field", "quantity")
	}
	if r.Qty.IsZero() {
		return apperror.NewValidation("arrival quantity is required").
			WithDetail("field", "quantity")
	}
	if r.LogisticsFee.IsNegative() {
		return apperror.NewValidation("logistics fee cannot be negative").
			WithDetail("field", "logisticsFee")
	}

	return nil
}

// ListFilter narrows List results.
type ListFilter struct {
	GoodsID         *id.ID
	PurchaseOrderID *id.ID
	LocationID      *id.ID
	FromDate        *time.Time
	ToDate          *time.Time
	Limit           int
	Offset          int
}

// Repository defines persistence operations for arrival records.
type Repository interface {
	Create(ctx context.Context, r *Record) error

	GetByID(ctx context.Context, baseID, recordID id.ID) (*Record, error)

	Delete(ctx context.Context, baseID, recordID id.ID) error

	// SumByOrder returns the column-wise total of all arrivals recorded
	// against one purchase order.
	SumByOrder(ctx context.Context, baseID, orderID id.ID) (unit.Qty, error)

	List(ctx context.Context, baseID id.ID, filter ListFilter) ([]*Record, int64, error)
}
