package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/domain/ledger"
	"anchorstock/internal/domain/stock"
)

// --- fakes ---

type fakeGoodsRepo struct {
	items map[id.ID]*goods.Goods
	order []id.ID
}

func (f *fakeGoodsRepo) add(g *goods.Goods) {
	if f.items == nil {
		f.items = map[id.ID]*goods.Goods{}
	}
	f.items[g.ID] = g
	f.order = append(f.order, g.ID)
}

func (f *fakeGoodsRepo) Create(ctx context.Context, g *goods.Goods) error { f.add(g); return nil }

func (f *fakeGoodsRepo) GetByID(ctx context.Context, baseID, goodsID id.ID) (*goods.Goods, error) {
	g, ok := f.items[goodsID]
	if !ok {
		return nil, apperror.NewNotFound("goods", goodsID.String())
	}
	return g, nil
}

func (f *fakeGoodsRepo) FindByName(ctx context.Context, baseID id.ID, name string) (*goods.Goods, error) {
	for _, g := range f.items {
		if g.Name.Matches(name) {
			return g, nil
		}
	}
	return nil, apperror.NewNotFound("goods", name)
}

func (f *fakeGoodsRepo) Update(ctx context.Context, g *goods.Goods) error { return nil }

func (f *fakeGoodsRepo) Delete(ctx context.Context, baseID, goodsID id.ID) error { return nil }

func (f *fakeGoodsRepo) List(ctx context.Context, baseID id.ID, filter goods.ListFilter) ([]*goods.Goods, int64, error) {
	all, err := f.ListActive(ctx, baseID)
	return all, int64(len(all)), err
}

func (f *fakeGoodsRepo) ListActive(ctx context.Context, baseID id.ID) ([]*goods.Goods, error) {
	out := make([]*goods.Goods, 0, len(f.order))
	for _, gid := range f.order {
		if g := f.items[gid]; g.Active {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeLocationRepo struct {
	items []*location.Location
}

func (f *fakeLocationRepo) Create(ctx context.Context, l *location.Location) error {
	f.items = append(f.items, l)
	return nil
}

func (f *fakeLocationRepo) GetByID(ctx context.Context, baseID, locationID id.ID) (*location.Location, error) {
	for _, l := range f.items {
		if l.ID == locationID {
			return l, nil
		}
	}
	return nil, apperror.NewNotFound("location", locationID.String())
}

func (f *fakeLocationRepo) FindByName(ctx context.Context, baseID id.ID, name string) (*location.Location, error) {
	for _, l := range f.items {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, apperror.NewNotFound("location", name)
}

func (f *fakeLocationRepo) Update(ctx context.Context, l *location.Location) error { return nil }

func (f *fakeLocationRepo) Delete(ctx context.Context, baseID, locationID id.ID) error { return nil }

func (f *fakeLocationRepo) ListActive(ctx context.Context, baseID id.ID) ([]*location.Location, error) {
	out := make([]*location.Location, 0, len(f.items))
	for _, l := range f.items {
		if l.Active {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeLedger struct {
	sums  map[id.ID]ledger.Sums // keyed by goods id, same at every location
	calls int
}

func (f *fakeLedger) Sums(ctx context.Context, baseID, goodsID, locationID id.ID) (ledger.Sums, error) {
	f.calls++
	return f.sums[goodsID], nil
}

func (f *fakeLedger) SumTransfersToHandler(ctx context.Context, baseID, goodsID, handlerID id.ID) (unit.Qty, error) {
	return unit.Qty{}, nil
}

func (f *fakeLedger) SumTransfersFromHandler(ctx context.Context, baseID, goodsID, handlerID id.ID, sourceType location.Type) (unit.Qty, error) {
	return unit.Qty{}, nil
}

func (f *fakeLedger) SumConsumptionByHandler(ctx context.Context, baseID, goodsID, handlerID id.ID) (unit.Qty, error) {
	return unit.Qty{}, nil
}

type fakeCostReader struct {
	costs map[id.ID]decimal.Decimal
}

func (f *fakeCostReader) AverageCost(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error) {
	return f.costs[goodsID], nil
}

type fakeSettings struct {
	def *goods.Threshold
}

func (f *fakeSettings) DefaultThreshold(ctx context.Context, baseID id.ID) (*goods.Threshold, error) {
	return f.def, nil
}

type fakeCache struct {
	entries map[stock.CacheKey]*stock.Snapshot
	sets    int
}

func (f *fakeCache) Get(ctx context.Context, key stock.CacheKey) (*stock.Snapshot, bool) {
	snap, ok := f.entries[key]
	return snap, ok
}

func (f *fakeCache) Set(ctx context.Context, key stock.CacheKey, snap *stock.Snapshot, ttl time.Duration) {
	if f.entries == nil {
		f.entries = map[stock.CacheKey]*stock.Snapshot{}
	}
	f.entries[key] = snap
	f.sets++
}

func (f *fakeCache) Invalidate(ctx context.Context, baseID id.ID) {
	for key := range f.entries {
		if key.BaseID == baseID {
			delete(f.entries, key)
		}
	}
}

func (f *fakeCache) InvalidateAll(ctx context.Context) {
	f.entries = map[stock.CacheKey]*stock.Snapshot{}
}

// --- fixture ---

type fixture struct {
	baseID    id.ID
	goodsRepo *fakeGoodsRepo
	locations *fakeLocationRepo
	ledgers   *fakeLedger
	costs     *fakeCostReader
	settings  *fakeSettings
	cache     *fakeCache
	service   *stock.Service
}

func newFixture() *fixture {
	f := &fixture{
		baseID:    id.New(),
		goodsRepo: &fakeGoodsRepo{},
		locations: &fakeLocationRepo{},
		ledgers:   &fakeLedger{sums: map[id.ID]ledger.Sums{}},
		costs:     &fakeCostReader{costs: map[id.ID]decimal.Decimal{}},
		settings:  &fakeSettings{},
		cache:     &fakeCache{},
	}
	f.service = stock.NewService(f.goodsRepo, f.locations, f.ledgers, f.costs, f.settings, f.cache, time.Minute)
	return f
}

func (f *fixture) addGoods(code string, packPerBox, piecePerPack int64) *goods.Goods {
	g := goods.New(f.baseID, code, goods.NewLegacyName(code), packPerBox, piecePerPack)
	f.goodsRepo.add(g)
	return g
}

func (f *fixture) addLocation(name string, locType location.Type) *location.Location {
	l := location.New(f.baseID, "LOC-"+name, name, locType)
	f.locations.items = append(f.locations.items, l)
	return l
}

// --- tests ---

func TestGetStockCombinesLedgersColumnWise(t *testing.T) {
	f := newFixture()
	g := f.addGoods("G-001", 10, 5) // 50 pieces per box
	loc := f.addLocation("warehouse", location.TypeWarehouse)

	f.ledgers.sums[g.ID] = ledger.Sums{
		Arrivals:     unit.Qty{Box: 2, Pack: 3, Piece: 1},
		TransfersIn:  unit.Qty{Box: 1},
		TransfersOut: unit.Qty{Pack: 5},
		Consumptions: unit.Qty{Piece: 3},
	}

	got, err := f.service.GetStock(context.Background(), f.baseID, g.ID, loc.ID)
	require.NoError(t, err)

	// raw delta {3, -2, -2} flattens to 138 pieces before normalization
	assert.Equal(t, int64(138), got.TotalPieces)
	assert.Equal(t, unit.Qty{Box: 2, Pack: 7, Piece: 3}, got.Qty)
	assert.Equal(t, got.TotalPieces, unit.ToPieces(got.Qty, g.Spec()))
}

func TestGetStockSurfacesNegativeTotals(t *testing.T) {
	f := newFixture()
	g := f.addGoods("G-001", 10, 5)
	loc := f.addLocation("room", location.TypeLiveRoom)

	f.ledgers.sums[g.ID] = ledger.Sums{
		TransfersOut: unit.Qty{Box: 1, Piece: 3},
	}

	got, err := f.service.GetStock(context.Background(), f.baseID, g.ID, loc.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(-53), got.TotalPieces)
	// the box column absorbs the sign; sub-units stay canonical
	assert.Equal(t, unit.Qty{Box: -2, Pack: 9, Piece: 2}, got.Qty)
	assert.Equal(t, got.TotalPieces, unit.ToPieces(got.Qty, g.Spec()))
}

func TestCheckStockSufficient(t *testing.T) {
	f := newFixture()
	g := f.addGoods("G-001", 2, 5) // 10 pieces per box
	loc := f.addLocation("warehouse", location.TypeWarehouse)

	f.ledgers.sums[g.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 3}}

	ok, err := f.service.CheckStockSufficient(context.Background(), f.baseID, g.ID, loc.ID, unit.Qty{Box: 2, Pack: 1})
	require.NoError(t, err)
	assert.True(t, ok.Sufficient)
	assert.Equal(t, int64(30), ok.Available.TotalPieces)
	assert.Equal(t, int64(25), ok.Required.TotalPieces)

	insufficient, err := f.service.CheckStockSufficient(context.Background(), f.baseID, g.ID, loc.ID, unit.Qty{Box: 3, Piece: 1})
	require.NoError(t, err)
	assert.False(t, insufficient.Sufficient)
}

func TestSnapshotSortsByStatusThenCode(t *testing.T) {
	f := newFixture()
	f.addLocation("warehouse", location.TypeWarehouse)

	normalB := f.addGoods("G-004", 2, 5)
	normalA := f.addGoods("G-001", 2, 5)
	outOfStock := f.addGoods("G-002", 2, 5)
	low := f.addGoods("G-003", 2, 5)

	f.ledgers.sums[normalA.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 10}}
	f.ledgers.sums[normalB.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 10}}
	f.ledgers.sums[outOfStock.ID] = ledger.Sums{}
	f.ledgers.sums[low.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 2}}

	page, err := f.service.GetBaseRealTimeStock(context.Background(), f.baseID, stock.SnapshotFilter{}, stock.Page{})
	require.NoError(t, err)
	require.Equal(t, int64(4), page.Total)

	codes := make([]string, 0, len(page.Data))
	for _, row := range page.Data {
		codes = append(codes, row.Code)
	}
	assert.Equal(t, []string{"G-002", "G-003", "G-001", "G-004"}, codes)
	assert.Equal(t, stock.StatusOutOfStock, page.Data[0].Status)
	assert.Equal(t, stock.StatusLowStock, page.Data[1].Status)
	assert.Equal(t, stock.StatusNormal, page.Data[2].Status)
}

func TestSnapshotFilterAndPagination(t *testing.T) {
	f := newFixture()
	f.addLocation("warehouse", location.TypeWarehouse)

	for _, code := range []string{"G-001", "G-002", "G-003"} {
		g := f.addGoods(code, 2, 5)
		g.Category = "beauty"
		f.ledgers.sums[g.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 10}}
	}
	other := f.addGoods("X-001", 2, 5)
	other.Category = "food"
	f.ledgers.sums[other.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 10}}

	page, err := f.service.GetBaseRealTimeStock(context.Background(), f.baseID,
		stock.SnapshotFilter{Category: "beauty"}, stock.Page{Limit: 2, Offset: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "G-003", page.Data[0].Code)

	byCode, err := f.service.GetBaseRealTimeStock(context.Background(), f.baseID,
		stock.SnapshotFilter{Code: "x-0"}, stock.Page{})
	require.NoError(t, err)
	require.Len(t, byCode.Data, 1)
	assert.Equal(t, "X-001", byCode.Data[0].Code)
}

func TestSnapshotServedFromCache(t *testing.T) {
	f := newFixture()
	f.addLocation("warehouse", location.TypeWarehouse)
	g := f.addGoods("G-001", 2, 5)
	f.ledgers.sums[g.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 10}}

	_, err := f.service.GetBaseRealTimeStock(context.Background(), f.baseID, stock.SnapshotFilter{}, stock.Page{})
	require.NoError(t, err)
	callsAfterFirst := f.ledgers.calls
	assert.Equal(t, 1, f.cache.sets)

	_, err = f.service.GetBaseRealTimeStock(context.Background(), f.baseID, stock.SnapshotFilter{}, stock.Page{})
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, f.ledgers.calls, "second read must not touch the ledgers")
	assert.Equal(t, 1, f.cache.sets)
}

func TestSnapshotRebuiltAfterInvalidation(t *testing.T) {
	f := newFixture()
	f.addLocation("warehouse", location.TypeWarehouse)
	g := f.addGoods("G-001", 2, 5)
	f.ledgers.sums[g.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 10}}

	_, err := f.service.GetBaseRealTimeStock(context.Background(), f.baseID, stock.SnapshotFilter{}, stock.Page{})
	require.NoError(t, err)

	f.service.ClearCache(context.Background(), f.baseID)
	f.ledgers.sums[g.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 20}}

	page, err := f.service.GetBaseRealTimeStock(context.Background(), f.baseID, stock.SnapshotFilter{}, stock.Page{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(200), page.Data[0].Stock.TotalPieces)
}

func TestSnapshotCostColumns(t *testing.T) {
	f := newFixture()
	f.addLocation("warehouse", location.TypeWarehouse)
	g := f.addGoods("G-001", 10, 5) // 50 pieces per box
	f.ledgers.sums[g.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 10}}
	f.costs.costs[g.ID] = decimal.NewFromFloat(120)

	page, err := f.service.GetBaseRealTimeStock(context.Background(), f.baseID, stock.SnapshotFilter{}, stock.Page{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	row := page.Data[0]
	assert.True(t, row.AverageCostBox.Equal(decimal.NewFromInt(120)), "box cost: %s", row.AverageCostBox)
	assert.True(t, row.AverageCostPack.Equal(decimal.NewFromInt(12)), "pack cost: %s", row.AverageCostPack)
	assert.True(t, row.AverageCostPiece.Equal(decimal.NewFromFloat(2.4)), "piece cost: %s", row.AverageCostPiece)
	assert.True(t, row.TotalValue.Equal(decimal.NewFromInt(1200)), "total value: %s", row.TotalValue)
}

func TestIsLowStockThreeTiers(t *testing.T) {
	ctx := context.Background()

	t.Run("per-good threshold wins", func(t *testing.T) {
		f := newFixture()
		g := f.addGoods("G-001", 10, 5)
		g.Threshold = &goods.Threshold{Enabled: true, Value: 30, Unit: goods.ThresholdPack}
		// base default would say plenty; the per-good override is stricter
		f.settings.def = &goods.Threshold{Enabled: true, Value: 1, Unit: goods.ThresholdBox}

		low, err := f.service.IsLowStock(ctx, f.baseID, g, stock.Summary{TotalPieces: 100}) // 20 packs
		require.NoError(t, err)
		assert.True(t, low)

		ok, err := f.service.IsLowStock(ctx, f.baseID, g, stock.Summary{TotalPieces: 200}) // 40 packs
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("disabled per-good threshold falls through", func(t *testing.T) {
		f := newFixture()
		g := f.addGoods("G-001", 10, 5)
		g.Threshold = &goods.Threshold{Enabled: false, Value: 1000, Unit: goods.ThresholdPiece}
		f.settings.def = &goods.Threshold{Enabled: true, Value: 3, Unit: goods.ThresholdBox}

		low, err := f.service.IsLowStock(ctx, f.baseID, g, stock.Summary{TotalPieces: 100}) // 2 boxes
		require.NoError(t, err)
		assert.True(t, low)
	})

	t.Run("hard-coded fallback of five boxes", func(t *testing.T) {
		f := newFixture()
		g := f.addGoods("G-001", 10, 5)

		low, err := f.service.IsLowStock(ctx, f.baseID, g, stock.Summary{Qty: unit.Qty{Box: 4}, TotalPieces: 200})
		require.NoError(t, err)
		assert.True(t, low)

		ok, err := f.service.IsLowStock(ctx, f.baseID, g, stock.Summary{Qty: unit.Qty{Box: 5}, TotalPieces: 250})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTotalBoxUnits(t *testing.T) {
	f := newFixture()
	f.addLocation("warehouse", location.TypeWarehouse)
	f.addLocation("room", location.TypeLiveRoom)
	g := f.addGoods("G-001", 10, 5) // 50 pieces per box

	// 1 box and 1 pack at each of the two locations
	f.ledgers.sums[g.ID] = ledger.Sums{Arrivals: unit.Qty{Box: 1, Pack: 1}}

	got, err := f.service.TotalBoxUnits(context.Background(), f.baseID, g.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromFloat(2.2)), "got %s", got)
}
