package stock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/domain/ledger"
	"anchorstock/pkg/logger"
)

var tracer = otel.Tracer("anchorstock/stock")

// fallbackThresholdBoxes applies when neither a per-good threshold nor a
// base-wide default is configured.
const fallbackThresholdBoxes = 5

// CostReader exposes the stored moving-average cost per box.
// Zero when no inventory row exists for the good yet.
type CostReader interface {
	AverageCost(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error)
}

// SettingsRepository resolves the base-wide default low-stock threshold.
// Returns nil when none is configured.
type SettingsRepository interface {
	DefaultThreshold(ctx context.Context, baseID id.ID) (*goods.Threshold, error)
}

// Service computes stock from the ledger union.
type Service struct {
	goods     goods.Repository
	locations location.Repository
	ledgers   ledger.Reader
	costs     CostReader
	settings  SettingsRepository
	cache     SnapshotCache
	ttl       time.Duration
}

// NewService creates a stock service. A nil ttl (zero) falls back to
// SnapshotTTL.
func NewService(
	goodsRepo goods.Repository,
	locationRepo location.Repository,
	ledgers ledger.Reader,
	costs CostReader,
	settings SettingsRepository,
	cache SnapshotCache,
	ttl time.Duration,
) *Service {
	if ttl <= 0 {
		ttl = SnapshotTTL
	}
	return &Service{
		goods:     goodsRepo,
		locations: locationRepo,
		ledgers:   ledgers,
		costs:     costs,
		settings:  settings,
		cache:     cache,
		ttl:       ttl,
	}
}

// GetStock returns current stock for a (base, good, location) triple.
//
// The five ledger sums are combined column-wise (box with box, pack with
// pack, piece with piece), the flattened total is taken from that raw signed
// delta, and only then is the triple normalized for display. Normalization
// never changes the total, so flatten(normalized) == TotalPieces always.
func (s *Service) GetStock(ctx context.Context, baseID, goodsID, locationID id.ID) (Summary, error) {
	g, err := s.goods.GetByID(ctx, baseID, goodsID)
	if err != nil {
		return Summary{}, err
	}

	sums, err := s.ledgers.Sums(ctx, baseID, goodsID, locationID)
	if err != nil {
		return Summary{}, fmt.Errorf("ledger sums: %w", err)
	}

	return summarize(sums, g.Spec()), nil
}

// summarize folds the five ledger sums into a stock summary.
func summarize(sums ledger.Sums, spec unit.Spec) Summary {
	delta := sums.Arrivals.
		Add(sums.TransfersIn).
		Sub(sums.TransfersOut).
		Sub(sums.StockOuts).
		Sub(sums.Consumptions)

	return Summary{
		Qty:         unit.Normalize(delta, spec),
		TotalPieces: unit.ToPieces(delta, spec),
	}
}

// GetGoodsStockByLocations returns per-location stock for one good across all
// active locations of the base. Sequential per-location queries: location
// counts per base are small.
func (s *Service) GetGoodsStockByLocations(ctx context.Context, baseID, goodsID id.ID) ([]LocationStock, error) {
	g, err := s.goods.GetByID(ctx, baseID, goodsID)
	if err != nil {
		return nil, err
	}
	spec := g.Spec()

	locations, err := s.locations.ListActive(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	result := make([]LocationStock, 0, len(locations))
	for _, loc := range locations {
		sums, err := s.ledgers.Sums(ctx, baseID, goodsID, loc.ID)
		if err != nil {
			return nil, fmt.Errorf("ledger sums for location %s: %w", loc.ID, err)
		}
		result = append(result, LocationStock{
			LocationID:   loc.ID,
			LocationName: loc.Name,
			Stock:        summarize(sums, spec),
		})
	}

	return result, nil
}

// CheckStockSufficient compares available stock at a location against a
// required quantity, both flattened to pieces.
func (s *Service) CheckStockSufficient(ctx context.Context, baseID, goodsID, locationID id.ID, required unit.Qty) (Sufficiency, error) {
	g, err := s.goods.GetByID(ctx, baseID, goodsID)
	if err != nil {
		return Sufficiency{}, err
	}
	spec := g.Spec()

	available, err := s.GetStock(ctx, baseID, goodsID, locationID)
	if err != nil {
		return Sufficiency{}, err
	}

	requiredPieces := unit.ToPieces(required, spec)
	return Sufficiency{
		Sufficient: available.TotalPieces >= requiredPieces,
		Available:  available,
		Required: Summary{
			Qty:         unit.Normalize(required, spec),
			TotalPieces: requiredPieces,
		},
	}, nil
}

// TotalBoxUnits returns the good's total stock across all active locations as
// fractional box units. Used as the current-stock weight in cost averaging.
func (s *Service) TotalBoxUnits(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error) {
	g, err := s.goods.GetByID(ctx, baseID, goodsID)
	if err != nil {
		return decimal.Zero, err
	}
	spec := g.Spec()

	locations, err := s.locations.ListActive(ctx, baseID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list locations: %w", err)
	}

	var totalPieces int64
	for _, loc := range locations {
		sums, err := s.ledgers.Sums(ctx, baseID, goodsID, loc.ID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("ledger sums: %w", err)
		}
		totalPieces += summarize(sums, spec).TotalPieces
	}

	return unit.BoxEquivalent(unit.Qty{Piece: totalPieces}, spec), nil
}

// GetBaseRealTimeStock serves the per-good stock snapshot for a base,
// rebuilding it when the cached copy is stale. Filtering, sorting and
// pagination run over the cached full result set.
func (s *Service) GetBaseRealTimeStock(ctx context.Context, baseID id.ID, filter SnapshotFilter, page Page) (SnapshotPage, error) {
	key := CacheKey{BaseID: baseID}
	if filter.LocationID != nil {
		key.LocationID = *filter.LocationID
	}

	snap, ok := s.cache.Get(ctx, key)
	if !ok {
		rebuilt, err := s.rebuildSnapshot(ctx, baseID, filter.LocationID)
		if err != nil {
			return SnapshotPage{}, err
		}
		s.cache.Set(ctx, key, rebuilt, s.ttl)
		snap = rebuilt
	}

	rows := filterRows(snap.Rows, filter)

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Status.Priority() != rows[j].Status.Priority() {
			return rows[i].Status.Priority() < rows[j].Status.Priority()
		}
		return rows[i].Code < rows[j].Code
	})

	total := int64(len(rows))

	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}

	return SnapshotPage{
		Data:        rows[offset:end],
		Total:       total,
		LastUpdated: snap.ComputedAt,
	}, nil
}

// rebuildSnapshot recomputes the full snapshot: every active good, summed
// over the selected locations, with cost and status attached.
func (s *Service) rebuildSnapshot(ctx context.Context, baseID id.ID, locationID *id.ID) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "stock.rebuild_snapshot",
		trace.WithAttributes(attribute.String("base_id", baseID.String())))
	defer span.End()

	started := time.Now()

	goodsList, err := s.goods.ListActive(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("list goods: %w", err)
	}

	var locations []*location.Location
	if locationID != nil {
		loc, err := s.locations.GetByID(ctx, baseID, *locationID)
		if err != nil {
			return nil, err
		}
		locations = []*location.Location{loc}
	} else {
		locations, err = s.locations.ListActive(ctx, baseID)
		if err != nil {
			return nil, fmt.Errorf("list locations: %w", err)
		}
	}

	rows := make([]SnapshotRow, 0, len(goodsList))
	for _, g := range goodsList {
		row, err := s.snapshotRow(ctx, baseID, g, locations)
		if err != nil {
			return nil, fmt.Errorf("snapshot row for goods %s: %w", g.ID, err)
		}
		rows = append(rows, row)
	}

	logger.Debug(ctx, "stock snapshot rebuilt",
		"base_id", baseID,
		"goods", len(goodsList),
		"locations", len(locations),
		"elapsed", time.Since(started),
	)

	return &Snapshot{Rows: rows, ComputedAt: time.Now().UTC()}, nil
}

func (s *Service) snapshotRow(ctx context.Context, baseID id.ID, g *goods.Goods, locations []*location.Location) (SnapshotRow, error) {
	spec := g.Spec()

	var delta unit.Qty
	for _, loc := range locations {
		sums, err := s.ledgers.Sums(ctx, baseID, g.ID, loc.ID)
		if err != nil {
			return SnapshotRow{}, err
		}
		delta = delta.
			Add(sums.Arrivals).
			Add(sums.TransfersIn).
			Sub(sums.TransfersOut).
			Sub(sums.StockOuts).
			Sub(sums.Consumptions)
	}

	summary := Summary{
		Qty:         unit.Normalize(delta, spec),
		TotalPieces: unit.ToPieces(delta, spec),
	}
	if summary.TotalPieces < 0 {
		// Data-quality signal: the ledgers recorded more out than in.
		logger.Warn(ctx, "negative stock total",
			"base_id", baseID,
			"goods_id", g.ID,
			"total_pieces", summary.TotalPieces,
		)
	}

	avgBox, err := s.costs.AverageCost(ctx, baseID, g.ID)
	if err != nil {
		return SnapshotRow{}, fmt.Errorf("average cost: %w", err)
	}

	status, err := s.status(ctx, baseID, g, summary)
	if err != nil {
		return SnapshotRow{}, err
	}

	boxUnits := unit.BoxEquivalent(unit.Qty{Piece: summary.TotalPieces}, spec)

	return SnapshotRow{
		GoodsID:          g.ID,
		Code:             g.Code,
		Name:             g.Name.Resolve(goods.DefaultLocale),
		Category:         g.Category,
		Stock:            summary,
		AverageCostBox:   avgBox,
		AverageCostPack:  avgBox.Div(decimal.NewFromInt(spec.PackPerBox)).Round(2),
		AverageCostPiece: avgBox.Div(decimal.NewFromInt(spec.PiecesPerBox())).Round(2),
		TotalValue:       boxUnits.Mul(avgBox).Round(2),
		Status:           status,
	}, nil
}

func (s *Service) status(ctx context.Context, baseID id.ID, g *goods.Goods, summary Summary) (Status, error) {
	if summary.TotalPieces <= 0 {
		return StatusOutOfStock, nil
	}

	low, err := s.IsLowStock(ctx, baseID, g, summary)
	if err != nil {
		return "", err
	}
	if low {
		return StatusLowStock, nil
	}
	return StatusNormal, nil
}

// IsLowStock resolves the applicable threshold in three tiers: the per-good
// threshold when present and enabled, else the base-wide default, else a
// hard-coded floor of 5 boxes. Current stock is converted to the threshold's
// unit before comparing.
func (s *Service) IsLowStock(ctx context.Context, baseID id.ID, g *goods.Goods, summary Summary) (bool, error) {
	spec := g.Spec()

	if t := g.Threshold; t != nil && t.Enabled {
		return stockInUnit(summary.TotalPieces, spec, t.Unit) < t.Value, nil
	}

	def, err := s.settings.DefaultThreshold(ctx, baseID)
	if err != nil {
		return false, fmt.Errorf("default threshold: %w", err)
	}
	if def != nil && def.Enabled {
		return stockInUnit(summary.TotalPieces, spec, def.Unit) < def.Value, nil
	}

	return summary.Box < fallbackThresholdBoxes, nil
}

// stockInUnit converts a flattened piece total to the threshold's unit
// (floored).
func stockInUnit(totalPieces int64, spec unit.Spec, u goods.ThresholdUnit) int64 {
	switch u {
	case goods.ThresholdBox:
		return totalPieces / spec.PiecesPerBox()
	case goods.ThresholdPack:
		return totalPieces / spec.PiecePerPack
	default:
		return totalPieces
	}
}

// ClearCache drops the cached snapshots for a base.
func (s *Service) ClearCache(ctx context.Context, baseID id.ID) {
	s.cache.Invalidate(ctx, baseID)
}

// ClearAllCache drops every cached snapshot.
func (s *Service) ClearAllCache(ctx context.Context) {
	s.cache.InvalidateAll(ctx)
}

// filterRows applies the post-hoc snapshot filters.
func filterRows(rows []SnapshotRow, f SnapshotFilter) []SnapshotRow {
	out := make([]SnapshotRow, 0, len(rows))
	for _, r := range rows {
		if f.Name != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Code != "" && !strings.Contains(strings.ToLower(r.Code), strings.ToLower(f.Code)) {
			continue
		}
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		if f.LowOnly && r.Status == StatusNormal {
			continue
		}
		out = append(out, r)
	}
	return out
}
