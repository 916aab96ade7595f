package transfer

import (
	"context"
	"time"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/entity"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/audit"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/domain/catalogs/handler"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/domain/stock"
	"anchorstock/pkg/logger"
)

// CreateInput carries a new transfer.
type CreateInput struct {
	GoodsID               id.ID
	SourceLocationID      id.ID
	DestinationLocationID id.ID
	SourceHandlerID       id.ID
	DestinationHandlerID  id.ID
	Date                  time.Time
	Qty                   unit.Qty
	Remark                string
}

type Service struct {
	repo     Repository
	goods    goods.Repository
	location location.Repository
	handlers handler.Repository
	cache    stock.Invalidator
	auditor  audit.Recorder
}

func NewService(
	repo Repository,
	goodsRepo goods.Repository,
	locationRepo location.Repository,
	handlerRepo handler.Repository,
	cache stock.Invalidator,
	auditor audit.Recorder,
) *Service {
	if auditor == nil {
		auditor = audit.Nop()
	}
	return &Service{
		repo:     repo,
		goods:    goodsRepo,
		location: locationRepo,
		handlers: handlerRepo,
		cache:    cache,
		auditor:  auditor,
	}
}

// Create validates catalog references and persists the transfer.
//
// No sufficiency check runs against the source location's stock: a transfer
// may drive a location negative, which surfaces later as a negative total in
// the stock snapshot.
func (s *Service) Create(ctx context.Context, baseID id.ID, in CreateInput, userID string) (*Record, error) {
	rec := NewRecord(baseID, in.Date, userID)
	rec.GoodsID = in.GoodsID
	rec.SourceLocationID = in.SourceLocationID
	rec.DestinationLocationID = in.DestinationLocationID
	rec.SourceHandlerID = in.SourceHandlerID
	rec.DestinationHandlerID = in.DestinationHandlerID
	rec.Qty = in.Qty
	rec.Remark = in.Remark

	if err := rec.Validate(ctx); err != nil {
		return nil, err
	}

	if _, err := s.goods.GetByID(ctx, baseID, in.GoodsID); err != nil {
		return nil, err
	}
	if _, err := s.location.GetByID(ctx, baseID, in.SourceLocationID); err != nil {
		return nil, err
	}
	if _, err := s.location.GetByID(ctx, baseID, in.DestinationLocationID); err != nil {
		return nil, err
	}
	if !id.IsNil(in.SourceHandlerID) {
		if _, err := s.handlers.GetByID(ctx, baseID, in.SourceHandlerID); err != nil {
			return nil, err
		}
	}
	if !id.IsNil(in.DestinationHandlerID) {
		if _, err := s.handlers.GetByID(ctx, baseID, in.DestinationHandlerID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, rec, audit.ActionCreate, userID)

	logger.Info(ctx, "transfer created",
		"transfer_id", rec.ID,
		"goods_id", rec.GoodsID,
		"from", rec.SourceLocationID,
		"to", rec.DestinationLocationID,
		"qty", rec.Qty.String(),
	)
	return rec, nil
}

// UpdateStatus moves a transfer through its workflow.
func (s *Service) UpdateStatus(ctx context.Context, baseID, recordID id.ID, status Status, userID string) error {
	if !status.Valid() {
		return apperror.NewValidation("unknown transfer status").
			WithDetail("value", string(status))
	}

	rec, err := s.repo.GetByID(ctx, baseID, recordID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, baseID, recordID, status); err != nil {
		return err
	}

	rec.Status = status
	s.afterWrite(ctx, rec, audit.ActionStatusChange, userID)
	return nil
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

	logger.Info(ctx, "transfer deleted", "transfer_id", recordID)
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
		EntityType: "transfer",
		EntityID:   rec.ID,
		BaseID:     rec.BaseID,
		Action:     action,
		Actor:      userID,
		Changes:    rec,
	}); err != nil {
		logger.Warn(ctx, "audit log failed", "error", err, "transfer_id", rec.ID)
	}
}

var _ entity.Validatable = (*Record)(nil)
