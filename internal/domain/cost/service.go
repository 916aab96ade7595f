// Package cost maintains the moving weighted-average cost per box for each
// good. The average is updated incrementally on arrival and recomputed from
// the full arrival history after an arrival is deleted.
package cost

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/pkg/logger"
)

// Repository stores the per-(good, base) average cost. Upsert semantics: one
// row per pair.
type Repository interface {
	AverageCost(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error)
	Upsert(ctx context.Context, baseID, goodsID id.ID, averageCost decimal.Decimal) error
}

// StockQuantifier reports a good's total stock across the base as fractional
// box units.
type StockQuantifier interface {
	TotalBoxUnits(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error)
}

// ArrivalLine is one historical arrival with the price it was ordered at.
type ArrivalLine struct {
	Qty          unit.Qty
	UnitPriceBox decimal.Decimal
	LogisticsFee decimal.Decimal
}

// LineSource lists every arrival for a good together with its purchase-order
// unit price. Used by the full recompute.
type LineSource interface {
	ArrivalLines(ctx context.Context, baseID, goodsID id.ID) ([]ArrivalLine, error)
}

type Service struct {
	repo  Repository
	stock StockQuantifier
	lines LineSource
}

func NewService(repo Repository, stock StockQuantifier, lines LineSource) *Service {
	return &Service{repo: repo, stock: stock, lines: lines}
}

// AverageCost returns the stored average cost per box, zero when the good has
// no inventory row yet.
func (s *Service) AverageCost(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error) {
	return s.repo.AverageCost(ctx, baseID, goodsID)
}

// UpdateAverageCost folds one arrival batch into the moving average and
// persists the result rounded to 2 decimals. All quantities are in box units;
// the logistics fee is a one-time landed cost attributed entirely to this
// batch.
func (s *Service) UpdateAverageCost(ctx context.Context, baseID, goodsID id.ID, arrivalUnitCost, arrivalQty, currentStock, logisticsFee decimal.Decimal) (decimal.Decimal, error) {
	oldAvg, err := s.repo.AverageCost(ctx, baseID, goodsID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read average cost: %w", err)
	}

	newAvg := nextAverage(oldAvg, arrivalUnitCost, arrivalQty, currentStock, logisticsFee)

	if err := s.repo.Upsert(ctx, baseID, goodsID, newAvg); err != nil {
		return decimal.Zero, fmt.Errorf("persist average cost: %w", err)
	}

	logger.Info(ctx, "average cost updated",
		"goods_id", goodsID,
		"old", oldAvg,
		"new", newAvg,
		"arrival_qty_boxes", arrivalQty,
	)
	return newAvg, nil
}

func nextAverage(oldAvg, arrivalUnitCost, arrivalQty, currentStock, logisticsFee decimal.Decimal) decimal.Decimal {
	switch {
	case currentStock.IsZero() && arrivalQty.IsZero():
		return decimal.Zero
	case currentStock.IsZero():
		return arrivalUnitCost.Mul(arrivalQty).Add(logisticsFee).Div(arrivalQty).Round(2)
	default:
		numerator := oldAvg.Mul(currentStock).
			Add(arrivalUnitCost.Mul(arrivalQty)).
			Add(logisticsFee)
		return numerator.Div(currentStock.Add(arrivalQty)).Round(2)
	}
}

// ApplyArrival folds a just-committed arrival into the average. It is called
// after the arrival row exists, so the quantifier's total already contains
// the batch; the pre-arrival stock is recovered by subtracting it back out.
func (s *Service) ApplyArrival(ctx context.Context, baseID, goodsID id.ID, spec unit.Spec, qty unit.Qty, unitPriceBox, logisticsFee decimal.Decimal) (decimal.Decimal, error) {
	total, err := s.stock.TotalBoxUnits(ctx, baseID, goodsID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total stock: %w", err)
	}

	arrivalBoxes := unit.BoxEquivalent(qty, spec)
	currentStock := total.Sub(arrivalBoxes)
	if currentStock.IsNegative() {
		currentStock = decimal.Zero
	}

	return s.UpdateAverageCost(ctx, baseID, goodsID, unitPriceBox, arrivalBoxes, currentStock, logisticsFee)
}

// RecalculateAverageCost rebuilds the average from every surviving arrival:
//
//	Σ (unitPriceBox × boxEquivalent + logisticsFee) / Σ boxEquivalent
//
// Quantities are weighted as fractional box equivalents, not normalized
// display units. Must run after an arrival deletion, since the incremental
// formula cannot unwind a removed batch.
func (s *Service) RecalculateAverageCost(ctx context.Context, baseID, goodsID id.ID, spec unit.Spec) (decimal.Decimal, error) {
	lines, err := s.lines.ArrivalLines(ctx, baseID, goodsID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("arrival lines: %w", err)
	}

	var totalCost, totalBoxes decimal.Decimal
	for _, line := range lines {
		boxes := unit.BoxEquivalent(line.Qty, spec)
		totalCost = totalCost.Add(line.UnitPriceBox.Mul(boxes)).Add(line.LogisticsFee)
		totalBoxes = totalBoxes.Add(boxes)
	}

	var newAvg decimal.Decimal
	if !totalBoxes.IsZero() {
		newAvg = totalCost.Div(totalBoxes).Round(2)
	}

	if err := s.repo.Upsert(ctx, baseID, goodsID, newAvg); err != nil {
		return decimal.Zero, fmt.Errorf("persist average cost: %w", err)
	}

	logger.Info(ctx, "average cost recalculated",
		"goods_id", goodsID,
		"arrivals", len(lines),
		"new", newAvg,
	)
	return newAvg, nil
}
