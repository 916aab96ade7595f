// Package stock computes current stock from the ledger union and serves the
// cached base-wide snapshot. Quantity is never persisted; it is always derived
// from the five ledger tables.
package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
)

// Summary is the current stock of one (base, good, location) triple.
type Summary struct {
	// Normalized display decomposition (sub-units in canonical range)
	unit.Qty

	// TotalPieces is the flattened quantity, computed before normalization.
	// Negative values indicate inconsistent ledgers (over-consumption) and
	// are surfaced as-is, never suppressed.
	TotalPieces int64 `json:"totalPieces"`
}

// LocationStock pairs one location with its stock for a good.
type LocationStock struct {
	LocationID   id.ID   `json:"locationId"`
	LocationName string  `json:"locationName"`
	Stock        Summary `json:"stock"`
}

// Sufficiency is the result of a stock sufficiency check.
type Sufficiency struct {
	Sufficient bool    `json:"sufficient"`
	Available  Summary `json:"available"`
	Required   Summary `json:"required"`
}

// Status classifies a snapshot row for sorting and filtering.
type Status string

const (
	StatusOutOfStock Status = "out_of_stock"
	StatusLowStock   Status = "low_stock"
	StatusNormal     Status = "normal"
)

// Priority orders statuses for snapshot sorting: problems first.
func (s Status) Priority() int {
	switch s {
	case StatusOutOfStock:
		return 0
	case StatusLowStock:
		return 1
	default:
		return 2
	}
}

// SnapshotRow is one good's line in the base-wide stock snapshot.
type SnapshotRow struct {
	GoodsID  id.ID  `json:"goodsId"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`

	Stock Summary `json:"stock"`

	// Average cost per display unit; the per-box figure is the stored one,
	// pack and piece are derived from it
	AverageCostBox   decimal.Decimal `json:"averageCostBox"`
	AverageCostPack  decimal.Decimal `json:"averageCostPack"`
	AverageCostPiece decimal.Decimal `json:"averageCostPiece"`

	// TotalValue = fractional box units × average cost per box
	TotalValue decimal.Decimal `json:"totalValue"`

	Status Status `json:"status"`
}

// Snapshot is the full computed result set for a base, cached as a unit.
// Filtering, sorting and pagination are applied to this cached set, not
// pushed down into the per-good computation.
type Snapshot struct {
	Rows       []SnapshotRow `json:"rows"`
	ComputedAt time.Time     `json:"computedAt"`
}

// SnapshotFilter narrows the cached snapshot post-hoc.
type SnapshotFilter struct {
	// LocationID restricts the computation to one location; nil aggregates
	// across all active locations
	LocationID *id.ID

	Name     string
	Code     string
	Category string
	Status   *Status

	// LowOnly keeps only rows at or below their low-stock threshold
	LowOnly bool
}

// Page is pagination input for the snapshot.
type Page struct {
	Limit  int
	Offset int
}

// SnapshotPage is one page of the filtered snapshot.
type SnapshotPage struct {
	Data        []SnapshotRow `json:"data"`
	Total       int64         `json:"total"`
	LastUpdated time.Time     `json:"lastUpdated"`
}
