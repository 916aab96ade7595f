package consumption

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/entity"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/audit"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/domain/catalogs/handler"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/domain/ledger"
	"anchorstock/internal/domain/stock"
	"anchorstock/pkg/logger"
)

// CostReader supplies the average cost snapshotted onto new records.
type CostReader interface {
	AverageCost(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error)
}

// ProfitChecker reports whether a downstream profit-accounting record
// references the consumption. Such records block deletion.
type ProfitChecker interface {
	HasProfitRecord(ctx context.Context, baseID, consumptionID id.ID) (bool, error)
}

// CreateInput carries an explicit consumption entry. Opening is normally
// pre-filled from GetOpeningStock but is accepted as given, allowing manual
// override.
type CreateInput struct {
	GoodsID    id.ID
	LocationID id.ID
	HandlerID  id.ID
	Date       time.Time
	Opening    unit.Qty
	Closing    unit.Qty
}

// ImportRow is one spreadsheet-import entry: catalog references by name, and
// no opening override — the opening is always derived from the ledger.
type ImportRow struct {
	GoodsName    string
	LocationName string
	HandlerName  string
	Date         time.Time
	Closing      unit.Qty
}

type Service struct {
	repo     Repository
	goods    goods.Repository
	location location.Repository
	handlers handler.Repository
	ledgers  ledger.Reader
	costs    CostReader
	profits  ProfitChecker
	cache    stock.Invalidator
	auditor  audit.Recorder
}

func NewService(
	repo Repository,
	goodsRepo goods.Repository,
	locationRepo location.Repository,
	handlerRepo handler.Repository,
	ledgers ledger.Reader,
	costs CostReader,
	profits ProfitChecker,
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
		ledgers:  ledgers,
		costs:    costs,
		profits:  profits,
		cache:    cache,
		auditor:  auditor,
	}
}

// GetOpeningStock derives what a handler is currently holding for a good:
// everything transferred to them, minus transfers they sent out of a live
// room, minus what they already consumed. Transfers leaving a warehouse are
// not charged to the handler; warehouse stock belongs to the location.
//
// The result is recomputed from the ledgers on every call, never stored.
func (s *Service) GetOpeningStock(ctx context.Context, baseID, goodsID, handlerID id.ID) (OpeningStock, error) {
	g, err := s.goods.GetByID(ctx, baseID, goodsID)
	if err != nil {
		return OpeningStock{}, err
	}
	spec := g.Spec()

	in, err := s.ledgers.SumTransfersToHandler(ctx, baseID, goodsID, handlerID)
	if err != nil {
		return OpeningStock{}, fmt.Errorf("sum transfers in: %w", err)
	}
	out, err := s.ledgers.SumTransfersFromHandler(ctx, baseID, goodsID, handlerID, location.TypeLiveRoom)
	if err != nil {
		return OpeningStock{}, fmt.Errorf("sum transfers out: %w", err)
	}
	consumed, err := s.ledgers.SumConsumptionByHandler(ctx, baseID, goodsID, handlerID)
	if err != nil {
		return OpeningStock{}, fmt.Errorf("sum consumption: %w", err)
	}

	openingTotal := unit.ToPieces(in, spec) - unit.ToPieces(out, spec) - unit.ToPieces(consumed, spec)

	price, err := s.costs.AverageCost(ctx, baseID, goodsID)
	if err != nil {
		return OpeningStock{}, fmt.Errorf("average cost: %w", err)
	}

	return OpeningStock{
		Qty:          unit.FromPieces(openingTotal, spec),
		UnitPriceBox: price,
		PackPerBox:   spec.PackPerBox,
		PiecePerPack: spec.PiecePerPack,
	}, nil
}

// Create validates and persists a consumption entry.
func (s *Service) Create(ctx context.Context, baseID id.ID, in CreateInput, userID string) (*Record, error) {
	rec, err := s.buildRecord(ctx, baseID, in, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, rec, audit.ActionCreate, userID)

	logger.Info(ctx, "consumption created",
		"consumption_id", rec.ID,
		"goods_id", rec.GoodsID,
		"handler_id", rec.HandlerID,
		"consumed", rec.Qty.String(),
	)
	return rec, nil
}

// Import resolves catalog references by display name and derives the opening
// from the ledger with no manual override. Bulk historical backfill trusts
// the ledger, not the spreadsheet.
func (s *Service) Import(ctx context.Context, baseID id.ID, row ImportRow, userID string) (*Record, error) {
	g, err := s.goods.FindByName(ctx, baseID, row.GoodsName)
	if err != nil {
		return nil, err
	}
	loc, err := s.location.FindByName(ctx, baseID, row.LocationName)
	if err != nil {
		return nil, err
	}
	h, err := s.handlers.FindByName(ctx, baseID, row.HandlerName)
	if err != nil {
		return nil, err
	}

	opening, err := s.GetOpeningStock(ctx, baseID, g.ID, h.ID)
	if err != nil {
		return nil, err
	}

	return s.Create(ctx, baseID, CreateInput{
		GoodsID:    g.ID,
		LocationID: loc.ID,
		HandlerID:  h.ID,
		Date:       row.Date,
		Opening:    opening.Qty,
		Closing:    row.Closing,
	}, userID)
}

// Update re-validates the record against the new goods/handler/location,
// including the closing-within-opening invariant, and re-derives the consumed
// amount. The unit price snapshot is kept from creation time.
func (s *Service) Update(ctx context.Context, baseID, recordID id.ID, in CreateInput, userID string) (*Record, error) {
	existing, err := s.repo.GetByID(ctx, baseID, recordID)
	if err != nil {
		return nil, err
	}

	rec, err := s.buildRecord(ctx, baseID, in, userID)
	if err != nil {
		return nil, err
	}
	rec.Record = existing.Record
	rec.Record.Date = in.Date
	rec.UnitPriceBox = existing.UnitPriceBox

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, rec, audit.ActionStatusChange, userID)
	return rec, nil
}

// Delete removes a consumption record. Blocked when a profit-accounting
// record depends on it.
func (s *Service) Delete(ctx context.Context, baseID, recordID id.ID, userID string) error {
	rec, err := s.repo.GetByID(ctx, baseID, recordID)
	if err != nil {
		return err
	}

	inUse, err := s.profits.HasProfitRecord(ctx, baseID, recordID)
	if err != nil {
		return fmt.Errorf("check profit records: %w", err)
	}
	if inUse {
		return apperror.NewConsumptionInUse(recordID.String())
	}

	if err := s.repo.Delete(ctx, baseID, recordID); err != nil {
		return err
	}

	s.afterWrite(ctx, rec, audit.ActionDelete, userID)

	logger.Info(ctx, "consumption deleted", "consumption_id", recordID)
	return nil
}

func (s *Service) GetByID(ctx context.Context, baseID, recordID id.ID) (*Record, error) {
	return s.repo.GetByID(ctx, baseID, recordID)
}

func (s *Service) List(ctx context.Context, baseID id.ID, filter ListFilter) ([]*Record, int64, error) {
	return s.repo.List(ctx, baseID, filter)
}

// buildRecord runs the full validation chain and assembles a record ready
// for persistence.
func (s *Service) buildRecord(ctx context.Context, baseID id.ID, in CreateInput, userID string) (*Record, error) {
	g, err := s.activeGoods(ctx, baseID, in.GoodsID)
	if err != nil {
		return nil, err
	}
	if err := s.checkLocationActive(ctx, baseID, in.LocationID); err != nil {
		return nil, err
	}
	if err := s.checkHandlerActive(ctx, baseID, in.HandlerID); err != nil {
		return nil, err
	}

	spec := g.Spec()
	openingTotal := unit.ToPieces(in.Opening, spec)
	closingTotal := unit.ToPieces(in.Closing, spec)

	if closingTotal > openingTotal {
		return nil, apperror.NewClosingExceedsOpening(in.Opening.String(), in.Closing.String())
	}

	price, err := s.costs.AverageCost(ctx, baseID, in.GoodsID)
	if err != nil {
		return nil, fmt.Errorf("average cost: %w", err)
	}

	rec := &Record{
		Record:       entity.NewRecord(baseID, in.Date, userID),
		GoodsID:      in.GoodsID,
		LocationID:   in.LocationID,
		HandlerID:    in.HandlerID,
		Qty:          unit.FromPieces(openingTotal-closingTotal, spec),
		UnitPriceBox: price,
	}
	rec.SetOpening(in.Opening)
	rec.SetClosing(in.Closing)

	if err := rec.Validate(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) activeGoods(ctx context.Context, baseID, goodsID id.ID) (*goods.Goods, error) {
	g, err := s.goods.GetByID(ctx, baseID, goodsID)
	if err != nil {
		return nil, err
	}
	if !g.Active {
		return nil, apperror.NewValidation("goods is inactive").
			WithDetail("goodsId", goodsID.String())
	}
	return g, nil
}

func (s *Service) checkLocationActive(ctx context.Context, baseID, locationID id.ID) error {
	loc, err := s.location.GetByID(ctx, baseID, locationID)
	if err != nil {
		return err
	}
	if !loc.Active {
		return apperror.NewValidation("location is inactive").
			WithDetail("locationId", locationID.String())
	}
	return nil
}

func (s *Service) checkHandlerActive(ctx context.Context, baseID, handlerID id.ID) error {
	h, err := s.handlers.GetByID(ctx, baseID, handlerID)
	if err != nil {
		return err
	}
	if !h.Active {
		return apperror.NewValidation("handler is inactive").
			WithDetail("handlerId", handlerID.String())
	}
	return nil
}

// afterWrite runs the best-effort secondary effects of a committed write:
// snapshot invalidation and audit. Failures are logged, never propagated.
func (s *Service) afterWrite(ctx context.Context, rec *Record, action audit.Action, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, rec.BaseID)
	}

	if err := s.auditor.Log(ctx, audit.Entry{
		EntityType: "consumption",
		EntityID:   rec.ID,
		BaseID:     rec.BaseID,
		Action:     action,
		Actor:      userID,
		Changes:    rec,
	}); err != nil {
		logger.Warn(ctx, "audit log failed", "error", err, "consumption_id", rec.ID)
	}
}
