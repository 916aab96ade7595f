// Package ledger provides read-only aggregation over the five stock-moving
// event tables: arrivals, transfers in, transfers out, stock-outs and
// consumptions.
package ledger

import (
	"context"

	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/catalogs/location"
)

// Sums holds the five independent column-wise sums for one
// (base, good, location) triple. Each component defaults to zero when no rows
// match. Pure aggregation, no business rules.
type Sums struct {
	Arrivals     unit.Qty `json:"arrivals"`
	TransfersIn  unit.Qty `json:"transfersIn"`
	TransfersOut unit.Qty `json:"transfersOut"`
	StockOuts    unit.Qty `json:"stockOuts"`
	Consumptions unit.Qty `json:"consumptions"`
}

// Reader aggregates the ledger tables.
type Reader interface {
	// Sums returns the five location-scoped sums for a good: arrivals at the
	// location, transfers into it, transfers out of it, stock-outs at it,
	// and consumptions at it.
	Sums(ctx context.Context, baseID, goodsID, locationID id.ID) (Sums, error)

	// SumTransfersToHandler totals transfers whose destination handler is the
	// given handler, for one good.
	SumTransfersToHandler(ctx context.Context, baseID, goodsID, handlerID id.ID) (unit.Qty, error)

	// SumTransfersFromHandler totals transfers whose source handler is the
	// given handler AND whose source location has the given type. Opening
	// stock derivation only charges a handler for stock leaving a live room;
	// warehouse stock is owned by the location, not the person.
	SumTransfersFromHandler(ctx context.Context, baseID, goodsID, handlerID id.ID, sourceType location.Type) (unit.Qty, error)

	// SumConsumptionByHandler totals the derived consumption columns for a
	// handler and good (not the opening/closing snapshots).
	SumConsumptionByHandler(ctx context.Context, baseID, goodsID, handlerID id.ID) (unit.Qty, error)
}
