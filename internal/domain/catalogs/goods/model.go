// Package goods provides the Goods catalog: sellable items tracked in a
// box → pack → piece unit hierarchy.
package goods

import (
	"context"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/entity"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
)

// ThresholdUnit is the unit a low-stock threshold is expressed in.
type ThresholdUnit string

const (
	ThresholdBox   ThresholdUnit = "box"
	ThresholdPack  ThresholdUnit = "pack"
	ThresholdPiece ThresholdUnit = "piece"
)

// Threshold is a low-stock threshold: current stock converted to Unit is
// compared against Value.
type Threshold struct {
	Enabled bool          `db:"threshold_enabled" json:"enabled"`
	Value   int64         `db:"threshold_value" json:"value"`
	Unit    ThresholdUnit `db:"threshold_unit" json:"unit"`
}

// Goods represents a trackable item.
type Goods struct {
	entity.Catalog

	// Name supports multiple display languages with a legacy fallback
	Name Name `db:"name" json:"name"`

	// Category groups goods for snapshot filtering
	Category string `db:"category" json:"category,omitempty"`

	// Unit hierarchy: 1 box = PackPerBox packs = PackPerBox×PiecePerPack pieces
	PackPerBox   int64 `db:"pack_per_box" json:"packPerBox"`
	PiecePerPack int64 `db:"piece_per_pack" json:"piecePerPack"`

	// Threshold is the per-good low-stock override; nil means the base-wide
	// default applies
	Threshold *Threshold `db:"-" json:"threshold,omitempty"`
}

// New creates a Goods row with required fields.
func New(baseID id.ID, code string, name Name, packPerBox, piecePerPack int64) *Goods {
	return &Goods{
		Catalog:      entity.NewCatalog(baseID, code),
		Name:         name,
		PackPerBox:   packPerBox,
		PiecePerPack: piecePerPack,
	}
}

// Spec returns the good's unit conversion spec.
func (g *Goods) Spec() unit.Spec {
	return unit.Spec{PackPerBox: g.PackPerBox, PiecePerPack: g.PiecePerPack}
}

// Validate implements entity.Validatable.
func (g *Goods) Validate(ctx context.Context) error {
	if err := g.Catalog.Validate(ctx); err != nil {
		return err
	}

	if g.Name.Resolve(DefaultLocale) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if g.PackPerBox < 1 {
		return apperror.NewValidation("packPerBox must be at least 1").
			WithDetail("field", "packPerBox").
			WithDetail("value", g.PackPerBox)
	}

	if g.PiecePerPack < 1 {
		return apperror.NewValidation("piecePerPack must be at least 1").
			WithDetail("field", "piecePerPack").
			WithDetail("value", g.PiecePerPack)
	}

	if g.Threshold != nil && !isValidThresholdUnit(g.Threshold.Unit) {
		return apperror.NewValidation("invalid threshold unit").
			WithDetail("field", "threshold.unit").
			WithDetail("value", string(g.Threshold.Unit))
	}

	return nil
}

func isValidThresholdUnit(u ThresholdUnit) bool {
	switch u {
	case ThresholdBox, ThresholdPack, ThresholdPiece:
		return true
	}
	return false
}
