// Package transfer provides stock-transfer records: movements of a good
// between two locations, carried by a handler.
package transfer

import (
	"context"
	"time"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/entity"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
)

// Status of a transfer. All statuses count toward ledger sums; status is a
// workflow marker, not a stock gate.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Record is one movement of a good from a source location to a destination
// location. The destination handler takes custody of the moved quantity.
type Record struct {
	entity.Record

	GoodsID id.ID `db:"goods_id" json:"goodsId"`

	SourceLocationID      id.ID `db:"source_location_id" json:"sourceLocationId"`
	DestinationLocationID id.ID `db:"destination_location_id" json:"destinationLocationId"`

	SourceHandlerID      id.ID `db:"source_handler_id" json:"sourceHandlerId"`
	DestinationHandlerID id.ID `db:"destination_handler_id" json:"destinationHandlerId"`

	unit.Qty

	Status Status `db:"status" json:"status"`
	Remark string `db:"remark" json:"remark,omitempty"`
}

func NewRecord(baseID id.ID, date time.Time, createdBy string) *Record {
	return &Record{
		Record: entity.NewRecord(baseID, date, createdBy),
		Status: StatusPending,
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
	if id.IsNil(r.SourceLocationID) {
		return apperror.NewValidation("source location is required").
			WithDetail("field", "sourceLocationId")
	}
	if id.IsNil(r.DestinationLocationID) {
		return apperror.NewValidation("destination location is required").
			WithDetail("field", "destinationLocationId")
	}
	if r.SourceLocationID == r.DestinationLocationID {
		return apperror.NewValidation("source and destination locations must differ").
			WithDetail("locationId", r.SourceLocationID.String())
	}
	if r.Box < 0 || r.Pack < 0 || r.Piece < 0 {
		return apperror.NewValidation("transfer quantity cannot be negative").
			WithDetail("field", "quantity")
	}
	if r.Qty.IsZero() {
		return apperror.NewValidation("transfer quantity is required").
			WithDetail("field", "quantity")
	}
	if !r.Status.Valid() {
		return apperror.NewValidation("unknown transfer status").
			WithDetail("value", string(r.Status))
	}

	return nil
}

// ListFilter narrows List results.
type ListFilter struct {
	GoodsID               *id.ID
	SourceLocationID      *id.ID
	DestinationLocationID *id.ID
	HandlerID             *id.ID
	Status                *Status
	FromDate              *time.Time
	ToDate                *time.Time
	Limit                 int
	Offset                int
}

// Repository defines persistence operations for transfer records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, baseID, recordID id.ID) (*Record, error)
	UpdateStatus(ctx context.Context, baseID, recordID id.ID, status Status) error
	Delete(ctx context.Context, baseID, recordID id.ID) error
	List(ctx context.Context, baseID id.ID, filter ListFilter) ([]*Record, int64, error)
}
