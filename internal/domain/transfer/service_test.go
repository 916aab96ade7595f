package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/domain/catalogs/handler"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/domain/transfer"
)

// --- fakes ---

type memTransferRepo struct {
	records map[id.ID]*transfer.Record
}

func newMemTransferRepo() *memTransferRepo {
	return &memTransferRepo{records: map[id.ID]*transfer.Record{}}
}

func (m *memTransferRepo) Create(ctx context.Context, r *transfer.Record) error {
	m.records[r.ID] = r
	return nil
}

func (m *memTransferRepo) GetByID(ctx context.Context, baseID, recordID id.ID) (*transfer.Record, error) {
	r, ok := m.records[recordID]
	if !ok {
		return nil, apperror.NewNotFound("transfer", recordID.String())
	}
	return r, nil
}

func (m *memTransferRepo) UpdateStatus(ctx context.Context, baseID, recordID id.ID, status transfer.Status) error {
	r, ok := m.records[recordID]
	if !ok {
		return apperror.NewNotFound("transfer", recordID.String())
	}
	r.Status = status
	return nil
}

func (m *memTransferRepo) Delete(ctx context.Context, baseID, recordID id.ID) error {
	delete(m.records, recordID)
	return nil
}

func (m *memTransferRepo) List(ctx context.Context, baseID id.ID, filter transfer.ListFilter) ([]*transfer.Record, int64, error) {
	out := make([]*transfer.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
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
	return nil, apperror.NewNotFound("handler", name)
}

func (f *fakeHandlerRepo) Update(ctx context.Context, h *handler.Handler) error { return nil }

func (f *fakeHandlerRepo) Delete(ctx context.Context, baseID, handlerID id.ID) error { return nil }

func (f *fakeHandlerRepo) ListActive(ctx context.Context, baseID id.ID) ([]*handler.Handler, error) {
	return nil, nil
}

// --- fixture ---

type fixture struct {
	baseID  id.ID
	good    *goods.Goods
	src     *location.Location
	dst     *location.Location
	anchor  *handler.Handler
	repo    *memTransferRepo
	service *transfer.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	baseID := id.New()

	g := goods.New(baseID, "G-001", goods.NewLegacyName("面膜"), 10, 5)
	src := location.New(baseID, "LOC-001", "主仓库", location.TypeWarehouse)
	dst := location.New(baseID, "LOC-002", "直播间A", location.TypeLiveRoom)
	h := handler.New(baseID, "HND-001", "小雨")

	f := &fixture{
		baseID: baseID,
		good:   g,
		src:    src,
		dst:    dst,
		anchor: h,
		repo:   newMemTransferRepo(),
	}
	f.service = transfer.NewService(
		f.repo,
		&fakeGoodsRepo{items: map[id.ID]*goods.Goods{g.ID: g}},
		&fakeLocationRepo{items: map[id.ID]*location.Location{src.ID: src, dst.ID: dst}},
		&fakeHandlerRepo{items: map[id.ID]*handler.Handler{h.ID: h}},
		nil,
		nil,
	)
	return f
}

func (f *fixture) input() transfer.CreateInput {
	return transfer.CreateInput{
		GoodsID:               f.good.ID,
		SourceLocationID:      f.src.ID,
		DestinationLocationID: f.dst.ID,
		DestinationHandlerID:  f.anchor.ID,
		Date:                  time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Qty:                   unit.Qty{Box: 2, Pack: 3},
	}
}

// --- tests ---

func TestCreateTransfer(t *testing.T) {
	f := newFixture(t)

	rec, err := f.service.Create(context.Background(), f.baseID, f.input(), "tester")
	require.NoError(t, err)

	assert.Equal(t, transfer.StatusPending, rec.Status)
	assert.Equal(t, unit.Qty{Box: 2, Pack: 3}, rec.Qty)
	assert.Equal(t, f.anchor.ID, rec.DestinationHandlerID)
}

func TestCreateRejectsSameSourceAndDestination(t *testing.T) {
	f := newFixture(t)

	in := f.input()
	in.DestinationLocationID = in.SourceLocationID
	_, err := f.service.Create(context.Background(), f.baseID, in, "tester")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

// Transfers are recorded without checking the source location's balance; an
// overdraft shows up later as a negative total in the stock snapshot.
func TestCreateSkipsSourceSufficiencyCheck(t *testing.T) {
	f := newFixture(t)

	in := f.input()
	in.Qty = unit.Qty{Box: 9999}
	rec, err := f.service.Create(context.Background(), f.baseID, in, "tester")
	require.NoError(t, err)
	assert.Equal(t, unit.Qty{Box: 9999}, rec.Qty)
}

func TestCreateRejectsZeroQty(t *testing.T) {
	f := newFixture(t)

	in := f.input()
	in.Qty = unit.Qty{}
	_, err := f.service.Create(context.Background(), f.baseID, in, "tester")
	require.Error(t, err)
}

func TestCreateRejectsUnknownHandler(t *testing.T) {
	f := newFixture(t)

	in := f.input()
	in.DestinationHandlerID = id.New()
	_, err := f.service.Create(context.Background(), f.baseID, in, "tester")
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)

	rec, err := f.service.Create(context.Background(), f.baseID, f.input(), "tester")
	require.NoError(t, err)

	require.NoError(t, f.service.UpdateStatus(context.Background(), f.baseID, rec.ID, transfer.StatusCompleted, "tester"))

	got, err := f.service.GetByID(context.Background(), f.baseID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusCompleted, got.Status)

	err = f.service.UpdateStatus(context.Background(), f.baseID, rec.ID, transfer.Status("SHIPPED"), "tester")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestDeleteTransfer(t *testing.T) {
	f := newFixture(t)

	rec, err := f.service.Create(context.Background(), f.baseID, f.input(), "tester")
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), f.baseID, rec.ID, "tester"))

	_, err = f.service.GetByID(context.Background(), f.baseID, rec.ID)
	assert.True(t, apperror.IsNotFound(err))
}
