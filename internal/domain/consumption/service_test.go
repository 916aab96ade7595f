package consumption_test

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
	"anchorstock/internal/domain/catalogs/handler"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/domain/consumption"
	"anchorstock/internal/domain/ledger"
)

// --- fakes ---

type memConsumptionRepo struct {
	records map[id.ID]*consumption.Record
	// periodTaken simulates the (date, good, location, handler) unique key
	periodTaken map[string]bool
}

func newMemConsumptionRepo() *memConsumptionRepo {
	return &memConsumptionRepo{
		records:     map[id.ID]*consumption.Record{},
		periodTaken: map[string]bool{},
	}
}

func periodKey(rec *consumption.Record) string {
	return rec.Date.Format("2006-01-02") + "|" + rec.GoodsID.String() + "|" +
		rec.LocationID.String() + "|" + rec.HandlerID.String()
}

func (m *memConsumptionRepo) Create(ctx context.Context, rec *consumption.Record) error {
	key := periodKey(rec)
	if m.periodTaken[key] {
		return apperror.NewDuplicateConsumption(rec.Date.Format("2006-01-02"))
	}
	m.periodTaken[key] = true
	m.records[rec.ID] = rec
	return nil
}

func (m *memConsumptionRepo) GetByID(ctx context.Context, baseID, recordID id.ID) (*consumption.Record, error) {
	rec, ok := m.records[recordID]
	if !ok {
		return nil, apperror.NewNotFound("consumption", recordID.String())
	}
	return rec, nil
}

func (m *memConsumptionRepo) Update(ctx context.Context, rec *consumption.Record) error {
	m.records[rec.ID] = rec
	return nil
}

func (m *memConsumptionRepo) Delete(ctx context.Context, baseID, recordID id.ID) error {
	delete(m.records, recordID)
	return nil
}

func (m *memConsumptionRepo) List(ctx context.Context, baseID id.ID, filter consumption.ListFilter) ([]*consumption.Record, int64, error) {
	out := make([]*consumption.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

type fakeGoodsRepo struct {
	items map[id.ID]*goods.Goods
}

func (f *fakeGoodsRepo) Create(ctx context.Context, g *goods.Goods) error { return nil }

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
	return nil, 0, nil
}

func (f *fakeGoodsRepo) ListActive(ctx context.Context, baseID id.ID) ([]*goods.Goods, error) {
	return nil, nil
}

type fakeLocationRepo struct {
	items map[id.ID]*location.Location
}

func (f *fakeLocationRepo) Create(ctx context.Context, l *location.Location) error { return nil }

func (f *fakeLocationRepo) GetByID(ctx context.Context, baseID, locationID id.ID) (*location.Location, error) {
	l, ok := f.items[locationID]
	if !ok {
		return nil, apperror.NewNotFound("location", locationID.String())
	}
	return l, nil
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
	return nil, nil
}

type fakeHandlerRepo struct {
	items map[id.ID]*handler.Handler
}

func (f *fakeHandlerRepo) Create(ctx context.Context, h *handler.Handler) error { return nil }

func (f *fakeHandlerRepo) GetByID(ctx context.Context, baseID, handlerID id.ID) (*handler.Handler, error) {
	h, ok := f.items[handlerID]
	if !ok {
		return nil, apperror.NewNotFound("handler", handlerID.String())
	}
	return h, nil
}

func (f *fakeHandlerRepo) FindByName(ctx context.Context, baseID id.ID, name string) (*handler.Handler, error) {
	for _, h := range f.items {
		if h.Name == name {
			return h, nil
		}
	}
	return nil, apperror.NewNotFound("handler", name)
}

func (f *fakeHandlerRepo) Update(ctx context.Context, h *handler.Handler) error { return nil }

func (f *fakeHandlerRepo) Delete(ctx context.Context, baseID, handlerID id.ID) error { return nil }

func (f *fakeHandlerRepo) ListActive(ctx context.Context, baseID id.ID) ([]*handler.Handler, error) {
	return nil, nil
}

// handlerLedger records the per-handler sums the opening derivation reads.
type handlerLedger struct {
	transfersIn      unit.Qty
	liveRoomOut      unit.Qty
	consumed         unit.Qty
	lastSourceFilter location.Type
}

func (f *handlerLedger) Sums(ctx context.Context, baseID, goodsID, locationID id.ID) (ledger.Sums, error) {
	return ledger.Sums{}, nil
}

func (f *handlerLedger) SumTransfersToHandler(ctx context.Context, baseID, goodsID, handlerID id.ID) (unit.Qty, error) {
	return f.transfersIn, nil
}

func (f *handlerLedger) SumTransfersFromHandler(ctx context.Context, baseID, goodsID, handlerID id.ID, sourceType location.Type) (unit.Qty, error) {
	f.lastSourceFilter = sourceType
	return f.liveRoomOut, nil
}

func (f *handlerLedger) SumConsumptionByHandler(ctx context.Context, baseID, goodsID, handlerID id.ID) (unit.Qty, error) {
	return f.consumed, nil
}

type fixedCost struct {
	price decimal.Decimal
}

func (f *fixedCost) AverageCost(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error) {
	return f.price, nil
}

type fakeProfits struct {
	inUse bool
}

func (f *fakeProfits) HasProfitRecord(ctx context.Context, baseID, consumptionID id.ID) (bool, error) {
	return f.inUse, nil
}

// --- fixture ---

type fixture struct {
	baseID  id.ID
	good    *goods.Goods
	loc     *location.Location
	anchor  *handler.Handler
	repo    *memConsumptionRepo
	ledgers *handlerLedger
	costs   *fixedCost
	profits *fakeProfits
	service *consumption.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	baseID := id.New()

	g := goods.New(baseID, "G-001", goods.NewLegacyName("面膜"), 10, 5) // 50 pieces per box
	loc := location.New(baseID, "LOC-001", "直播间A", location.TypeLiveRoom)
	h := handler.New(baseID, "HND-001", "小雨")

	f := &fixture{
		baseID:  baseID,
		good:    g,
		loc:     loc,
		anchor:  h,
		repo:    newMemConsumptionRepo(),
		ledgers: &handlerLedger{},
		costs:   &fixedCost{price: decimal.NewFromInt(100)},
		profits: &fakeProfits{},
	}
	f.service = consumption.NewService(
		f.repo,
		&fakeGoodsRepo{items: map[id.ID]*goods.Goods{g.ID: g}},
		&fakeLocationRepo{items: map[id.ID]*location.Location{loc.ID: loc}},
		&fakeHandlerRepo{items: map[id.ID]*handler.Handler{h.ID: h}},
		f.ledgers,
		f.costs,
		f.profits,
		nil,
		nil,
	)
	return f
}

func (f *fixture) input(opening, closing unit.Qty) consumption.CreateInput {
	return consumption.CreateInput{
		GoodsID:    f.good.ID,
		LocationID: f.loc.ID,
		HandlerID:  f.anchor.ID,
		Date:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Opening:    opening,
		Closing:    closing,
	}
}

// --- tests ---

func TestGetOpeningStock(t *testing.T) {
	f := newFixture(t)
	f.ledgers.transfersIn = unit.Qty{Box: 5}
	f.ledgers.liveRoomOut = unit.Qty{Box: 1}
	f.ledgers.consumed = unit.Qty{Pack: 4, Piece: 2}

	got, err := f.service.GetOpeningStock(context.Background(), f.baseID, f.good.ID, f.anchor.ID)
	require.NoError(t, err)

	// 250 − 50 − 22 = 178 pieces = 3 box 5 pack 3 piece
	assert.Equal(t, unit.Qty{Box: 3, Pack: 5, Piece: 3}, got.Qty)
	assert.True(t, got.UnitPriceBox.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(10), got.PackPerBox)
	assert.Equal(t, int64(5), got.PiecePerPack)

	// only transfers leaving a live room are charged to the handler
	assert.Equal(t, location.TypeLiveRoom, f.ledgers.lastSourceFilter)
}

func TestCreateDerivesConsumedAmount(t *testing.T) {
	f := newFixture(t)

	rec, err := f.service.Create(context.Background(), f.baseID,
		f.input(unit.Qty{Box: 3}, unit.Qty{Box: 1, Pack: 2, Piece: 3}), "tester")
	require.NoError(t, err)

	// 150 − 63 = 87 pieces consumed
	assert.Equal(t, unit.Qty{Box: 1, Pack: 7, Piece: 2}, rec.Qty)
	assert.Equal(t, unit.Qty{Box: 3}, rec.Opening())
	assert.Equal(t, unit.Qty{Box: 1, Pack: 2, Piece: 3}, rec.Closing())
	assert.True(t, rec.UnitPriceBox.Equal(decimal.NewFromInt(100)), "price snapshot from average cost")
}

func TestCreateRejectsClosingAboveOpening(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.baseID,
		f.input(unit.Qty{Box: 1}, unit.Qty{Box: 1, Piece: 1}), "tester")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeClosingExceedsOpening, appErr.Code)
	assert.Contains(t, appErr.Message, "1 box")
}

func TestCreateAllowsClosingEqualToOpening(t *testing.T) {
	f := newFixture(t)

	// equal totals in different decompositions: 1 box == 10 pack
	rec, err := f.service.Create(context.Background(), f.baseID,
		f.input(unit.Qty{Box: 1}, unit.Qty{Pack: 10}), "tester")
	require.NoError(t, err)
	assert.True(t, rec.Qty.IsZero(), "nothing consumed")
}

func TestCreateRejectsDuplicatePeriod(t *testing.T) {
	f := newFixture(t)
	in := f.input(unit.Qty{Box: 3}, unit.Qty{Box: 2})

	_, err := f.service.Create(context.Background(), f.baseID, in, "tester")
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), f.baseID, in, "tester")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicateConsumption, appErr.Code)
}

func TestImportDerivesOpeningFromLedger(t *testing.T) {
	f := newFixture(t)
	f.ledgers.transfersIn = unit.Qty{Box: 4}

	rec, err := f.service.Import(context.Background(), f.baseID, consumption.ImportRow{
		GoodsName:    "面膜",
		LocationName: "直播间A",
		HandlerName:  "小雨",
		Date:         time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		Closing:      unit.Qty{Box: 1},
	}, "importer")
	require.NoError(t, err)

	assert.Equal(t, unit.Qty{Box: 4}, rec.Opening())
	assert.Equal(t, unit.Qty{Box: 3}, rec.Qty)
}

func TestImportUnknownNameFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Import(context.Background(), f.baseID, consumption.ImportRow{
		GoodsName:    "不存在的货",
		LocationName: "直播间A",
		HandlerName:  "小雨",
		Date:         time.Now(),
	}, "importer")
	require.Error(t, err)
}

func TestUpdateKeepsPriceSnapshot(t *testing.T) {
	f := newFixture(t)

	rec, err := f.service.Create(context.Background(), f.baseID,
		f.input(unit.Qty{Box: 3}, unit.Qty{Box: 2}), "tester")
	require.NoError(t, err)

	// average cost moves after creation; the record must not follow it
	f.costs.price = decimal.NewFromInt(999)

	updated, err := f.service.Update(context.Background(), f.baseID, rec.ID,
		f.input(unit.Qty{Box: 3}, unit.Qty{Box: 1}), "tester")
	require.NoError(t, err)

	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, unit.Qty{Box: 2}, updated.Qty)
	assert.True(t, updated.UnitPriceBox.Equal(decimal.NewFromInt(100)))
}

func TestDeleteBlockedByProfitRecord(t *testing.T) {
	f := newFixture(t)

	rec, err := f.service.Create(context.Background(), f.baseID,
		f.input(unit.Qty{Box: 3}, unit.Qty{Box: 2}), "tester")
	require.NoError(t, err)

	f.profits.inUse = true
	err = f.service.Delete(context.Background(), f.baseID, rec.ID, "tester")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConsumptionInUse, appErr.Code)

	// record survives the blocked delete
	_, err = f.service.GetByID(context.Background(), f.baseID, rec.ID)
	require.NoError(t, err)

	f.profits.inUse = false
	require.NoError(t, f.service.Delete(context.Background(), f.baseID, rec.ID, "tester"))
}

func TestCreateRejectsInactiveCatalogs(t *testing.T) {
	f := newFixture(t)
	f.good.Active = false

	_, err := f.service.Create(context.Background(), f.baseID,
		f.input(unit.Qty{Box: 3}, unit.Qty{Box: 2}), "tester")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}
