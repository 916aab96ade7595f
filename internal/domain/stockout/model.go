// Package stockout provides stock-out records: direct outbound movements
// (damage, gifts, manual corrections) that leave the base without a transfer
// or consumption counterpart.
package stockout

import (
	"context"
	"time"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/entity"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
)

// Record is one outbound write-off from a location.
type Record struct {
	entity.Record

	GoodsID    id.ID `db:"goods_id" json:"goodsId"`
	LocationID id.ID `db:"location_id" json:"locationId"`
	HandlerID  id.ID `db:"handler_id" json:"handlerId"`

	unit.Qty

	Reason string `db:"reason" json:"reason,omitempty"`
}

func NewRecord(baseID, goodsID, locationID id.ID, date time.Time, qty unit.Qty, createdBy string) *Record {
	return &Record{
		Record:     entity.NewRecord(baseID, date, createdBy),
		GoodsID:    goodsID,
		LocationID: locationID,
		Qty:        qty,
	}
}

// Validate implements entity.Validatable.
func (r *Record) Validate(ctx context.Context) error {
	if err := r.Record.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.GoodsID) {
		return apperror.NewValidation("goods is required").
			WithDetail("field", "goodsId")
	}
	if id.IsNil(r.LocationID) {
		return apperror.NewValidation("location is required").
			WithDetail("field", "locationId")
	}
	if r.Box < 0 || r.Pack < 0 || r.Piece < 0 {
		return apperror.NewValidation("stock-out quantity cannot be negative").
			WithDetail("field", "quantity")
	}
	if r.Qty.IsZero() {
		return apperror.NewValidation("stock-out quantity is required").
			WithDetail("field", "quantity")
	}

	return nil
}

// ListFilter narrows List results.
type ListFilter struct {
	GoodsID    *id.ID
	LocationID *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// Repository defines persistence operations for stock-out records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, baseID, recordID id.ID) (*Record, error)
	Delete(ctx context.Context, baseID, recordID id.ID) error
	List(ctx context.Context, baseID id.ID, filter ListFilter) ([]*Record, int64, error)
}
