package arrival

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/audit"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/domain/catalogs/handler"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/domain/purchase"
	"anchorstock/internal/domain/stock"
	"anchorstock/pkg/logger"
)

// CostUpdater maintains the moving-average cost. Both methods are invoked as
// best-effort secondary effects after the primary write commits.
type CostUpdater interface {
	ApplyArrival(ctx context.Context, baseID, goodsID id.ID, spec unit.Spec, qty unit.Qty, unitPriceBox, logisticsFee decimal.Decimal) (decimal.Decimal, error)
	RecalculateAverageCost(ctx context.Context, baseID, goodsID id.ID, spec unit.Spec) (decimal.Decimal, error)
}

// CreateInput carries a new arrival. The goods reference is absent: it is
// implied by the purchase order's first line item.
type CreateInput struct {
	PurchaseOrderID id.ID
	LocationID      id.ID
	HandlerID       id.ID
	Date            time.Time
	Qty             unit.Qty
	LogisticsFee    decimal.Decimal
}

type Service struct {
	repo     Repository
	orders   purchase.Repository
	goods    goods.Repository
	location location.Repository
	handlers handler.Repository
	costs    CostUpdater
	cache    stock.Invalidator
	auditor  audit.Recorder
}

func NewService(
	repo Repository,
	orders purchase.Repository,
	goodsRepo goods.Repository,
	locationRepo location.Repository,
	handlerRepo handler.Repository,
	costs CostUpdater,
	cache stock.Invalidator,
	auditor audit.Recorder,
) *Service {
	if auditor == nil {
		auditor = audit.Nop()
	}
	return &Service{
		repo:     repo,
		orders:   orders,
		goods:    goodsRepo,
		location: locationRepo,
		handlers: handlerRepo,
		costs:    costs,
		cache:    cache,
		auditor:  auditor,
	}
}

// Create records a goods receipt against a purchase order.
//
// The ordered quantity bounds the lifetime sum of arrivals: existing arrivals
// plus the new one, flattened to pieces, must not exceed the order's first
// line item. A violation reports the remaining allowed quantity in
// box/pack/piece form.
func (s *Service) Create(ctx context.Context, baseID id.ID, in CreateInput, userID string) (*Record, error) {
	order, err := s.orders.GetByID(ctx, baseID, in.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == purchase.StatusCancelled {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "cannot receive against a cancelled purchase order").
			WithDetail("orderId", order.ID.String())
	}

	item, err := s.orders.FirstItem(ctx, baseID, in.PurchaseOrderID)
	if err != nil {
		return nil, err
	}

	g, err := s.goods.GetByID(ctx, baseID, item.GoodsID)
	if err != nil {
		return nil, err
	}
	spec := g.Spec()

	if _, err := s.location.GetByID(ctx, baseID, in.LocationID); err != nil {
		return nil, err
	}
	if !id.IsNil(in.HandlerID) {
		if _, err := s.handlers.GetByID(ctx, baseID, in.HandlerID); err != nil {
			return nil, err
		}
	}

	rec := NewRecord(baseID, in.PurchaseOrderID, in.LocationID, in.HandlerID, in.Date, in.Qty, userID)
	rec.GoodsID = item.GoodsID
	rec.LogisticsFee = in.LogisticsFee
	if err := rec.Validate(ctx); err != nil {
		return nil, err
	}

	existing, err := s.repo.SumByOrder(ctx, baseID, in.PurchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("sum arrivals: %w", err)
	}

	orderedPieces := unit.ToPieces(item.Qty, spec)
	receivedPieces := unit.ToPieces(existing, spec)
	newPieces := unit.ToPieces(in.Qty, spec)

	if receivedPieces+newPieces > orderedPieces {
		remaining := orderedPieces - receivedPieces
		if remaining < 0 {
			remaining = 0
		}
		return nil, apperror.NewArrivalExceedsOrder(
			order.ID.String(),
			in.Qty.String(),
			unit.FromPieces(remaining, spec).String(),
		)
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	// Best effort: a cost-update failure must not undo the committed arrival.
	if _, err := s.costs.ApplyArrival(ctx, baseID, rec.GoodsID, spec, rec.Qty, item.UnitPrice, rec.LogisticsFee); err != nil {
		logger.Error(ctx, "cost update after arrival failed",
			"error", err,
			"arrival_id", rec.ID,
			"goods_id", rec.GoodsID,
		)
	}

	s.afterWrite(ctx, rec, audit.ActionCreate, userID)

	logger.Info(ctx, "arrival created",
		"arrival_id", rec.ID,
		"order_id", rec.PurchaseOrderID,
		"goods_id", rec.GoodsID,
		"qty", rec.Qty.String(),
	)
	return rec, nil
}

// Delete removes an arrival and rebuilds the good's average cost from the
// surviving history; the incremental formula cannot unwind a deleted batch.
func (s *Service) Delete(ctx context.Context, baseID, recordID id.ID, userID string) error {
	rec, err := s.repo.GetByID(ctx, baseID, recordID)
	if err != nil {
		return err
	}

	g, err := s.goods.GetByID(ctx, baseID, rec.GoodsID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, baseID, recordID); err != nil {
		return err
	}

	if _, err := s.costs.RecalculateAverageCost(ctx, baseID, rec.GoodsID, g.Spec()); err != nil {
		logger.Error(ctx, "cost recompute after arrival deletion failed",
			"error", err,
			"arrival_id", recordID,
			"goods_id", rec.GoodsID,
		)
	}

	s.afterWrite(ctx, rec, audit.ActionDelete, userID)

	logger.Info(ctx, "arrival deleted", "arrival_id", recordID)
	return nil
}

func (s *Service) GetByID(ctx context.Context, baseID, recordID id.ID) (*Record, error) {
	return s.repo.GetByID(ctx, baseID, recordID)
}

func (s *Service) List(ctx context.Context, baseID id.ID, filter ListFilter) ([]*Record, int64, error) {
	return s.repo.List(ctx, baseID, filter)
}

func (s *Service) afterWrite(ctx context.Context, rec *Record, action audit.Action, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, rec.BaseID)
	}

	if err := s.auditor.Log(ctx, audit.Entry{
		EntityType: "arrival",
		EntityID:   rec.ID,
		BaseID:     rec.BaseID,
		Action:     action,
		Actor:      userID,
		Changes:    rec,
	}); err != nil {
		logger.Warn(ctx, "audit log failed", "error", err, "arrival_id", rec.ID)
	}
}
