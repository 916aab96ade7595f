package stockout

import (
	"context"
	"time"

	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/audit"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/domain/stock"
	"anchorstock/pkg/logger"
)

// CreateInput carries a new stock-out.
type CreateInput struct {
	GoodsID    id.ID
	LocationID id.ID
	HandlerID  id.ID
	Date       time.Time
	Qty        unit.Qty
	Reason     string
}

type Service struct {
	repo     Repository
	goods    goods.Repository
	location location.Repository
	cache    stock.Invalidator
	auditor  audit.Recorder
}

func NewService(repo Repository, goodsRepo goods.Repository, locationRepo location.Repository, cache stock.Invalidator, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Nop()
	}
	return &Service{
		repo:     repo,
		goods:    goodsRepo,
		location: locationRepo,
		cache:    cache,
		auditor:  auditor,
	}
}

// Create validates references and persists the stock-out. No sufficiency
// check: a write-off of more than the location holds shows up as a negative
// total downstream.
func (s *Service) Create(ctx context.Context, baseID id.ID, in CreateInput, userID string) (*Record, error) {
	rec := NewRecord(baseID, in.GoodsID, in.LocationID, in.Date, in.Qty, userID)
	rec.HandlerID = in.HandlerID
	rec.Reason = in.Reason

	if err := rec.Validate(ctx); err != nil {
		return nil, err
	}

	if _, err := s.goods.GetByID(ctx, baseID, in.GoodsID); err != nil {
		return nil, err
	}
	if _, err := s.location.GetByID(ctx, baseID, in.LocationID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, rec, audit.ActionCreate, userID)

	logger.Info(ctx, "stock-out created",
		"stockout_id", rec.ID,
		"goods_id", rec.GoodsID,
		"location_id", rec.LocationID,
		"qty", rec.Qty.String(),
	)
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, baseID, recordID id.ID, userID string) error {
	rec, err := s.repo.GetByID(ctx, baseID, recordID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, baseID, recordID); err != nil {
		return err
	}

	s.afterWrite(ctx, rec, audit.ActionDelete, userID)
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
		EntityType: "stockout",
		EntityID:   rec.ID,
		BaseID:     rec.BaseID,
		Action:     action,
		Actor:      userID,
		Changes:    rec,
	}); err != nil {
		logger.Warn(ctx, "audit log failed", "error", err, "stockout_id", rec.ID)
	}
}
