// Package entity provides core domain entity bases.
package entity

import (
	"context"
	"time"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Catalog is the base type for reference data (goods, locations, handlers).
// Every catalog row is scoped to a base (tenant).
type Catalog struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// BaseID scopes the row to its operating base
	BaseID id.ID `db:"base_id" json:"baseId"`

	// Code is a human-readable identifier, unique within the base
	Code string `db:"code" json:"code"`

	// Active rows participate in stock computation; inactive rows are kept
	// for history but excluded from snapshots
	Active bool `db:"active" json:"active"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewCatalog creates a catalog base with generated ID.
func NewCatalog(baseID id.ID, code string) Catalog {
	now := time.Now().UTC()
	return Catalog{
		ID:        id.New(),
		BaseID:    baseID,
		Code:      code,
		Active:    true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if id.IsNil(c.BaseID) {
		return apperror.NewValidation("base is required").
			WithDetail("field", "baseId")
	}
	return nil
}

// Touch updates the UpdatedAt timestamp and increments version.
func (c *Catalog) Touch() {
	c.UpdatedAt = time.Now().UTC()
	c.Version++
}

// Record is the base type for append-only ledger rows (arrivals, transfers,
// stock-outs, consumptions). Records are immutable once created; they are
// removed only by explicit user action, which triggers recomputation of
// dependent aggregates.
type Record struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// BaseID scopes the row to its operating base
	BaseID id.ID `db:"base_id" json:"baseId"`

	// Date is the business date of the event (not the insert time)
	Date time.Time `db:"date" json:"date"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

// NewRecord creates a record base with generated ID.
func NewRecord(baseID id.ID, date time.Time, createdBy string) Record {
	return Record{
		ID:        id.New(),
		BaseID:    baseID,
		Date:      date,
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
	}
}

// Validate implements Validatable.
func (r *Record) Validate(ctx context.Context) error {
	if id.IsNil(r.BaseID) {
		return apperror.NewValidation("base is required").
			WithDetail("field", "baseId")
	}
	if r.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}
