package cost

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
)

type memRepo struct {
	costs map[id.ID]decimal.Decimal
}

func newMemRepo() *memRepo {
	return &memRepo{costs: map[id.ID]decimal.Decimal{}}
}

func (m *memRepo) AverageCost(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error) {
	return m.costs[goodsID], nil
}

func (m *memRepo) Upsert(ctx context.Context, baseID, goodsID id.ID, averageCost decimal.Decimal) error {
	m.costs[goodsID] = averageCost
	return nil
}

type fixedStock struct {
	total decimal.Decimal
}

func (f *fixedStock) TotalBoxUnits(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error) {
	return f.total, nil
}

type fixedLines struct {
	lines []ArrivalLine
}

func (f *fixedLines) ArrivalLines(ctx context.Context, baseID, goodsID id.ID) ([]ArrivalLine, error) {
	return f.lines, nil
}

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestUpdateAverageCost(t *testing.T) {
	ctx := context.Background()
	baseID, goodsID := id.New(), id.New()

	t.Run("moving weighted average", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo, &fixedStock{}, &fixedLines{})

		// first arrival onto empty stock
		got, err := svc.UpdateAverageCost(ctx, baseID, goodsID, d(5), d(10), d(0), d(0))
		require.NoError(t, err)
		assert.True(t, got.Equal(d(5)), "got %s", got)

		// second batch at a higher price: (5*10 + 7*10) / 20 = 6
		got, err = svc.UpdateAverageCost(ctx, baseID, goodsID, d(7), d(10), d(10), d(0))
		require.NoError(t, err)
		assert.True(t, got.Equal(d(6)), "got %s", got)
	})

	t.Run("logistics fee lands on the batch", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo, &fixedStock{}, &fixedLines{})

		// (5*10 + 20) / 10 = 7
		got, err := svc.UpdateAverageCost(ctx, baseID, goodsID, d(5), d(10), d(0), d(20))
		require.NoError(t, err)
		assert.True(t, got.Equal(d(7)), "got %s", got)
	})

	t.Run("zero stock and zero arrival resets to zero", func(t *testing.T) {
		repo := newMemRepo()
		repo.costs[goodsID] = d(9.5)
		svc := NewService(repo, &fixedStock{}, &fixedLines{})

		got, err := svc.UpdateAverageCost(ctx, baseID, goodsID, d(5), d(0), d(0), d(0))
		require.NoError(t, err)
		assert.True(t, got.IsZero(), "got %s", got)
		assert.True(t, repo.costs[goodsID].IsZero())
	})

	t.Run("result rounded to two decimals", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo, &fixedStock{}, &fixedLines{})

		// 10/3 rounds to 3.33
		got, err := svc.UpdateAverageCost(ctx, baseID, goodsID, d(10).Div(d(3)), d(3), d(0), d(0))
		require.NoError(t, err)
		assert.True(t, got.Equal(d(3.33)), "got %s", got)
	})
}

func TestApplyArrivalRecoversPreArrivalStock(t *testing.T) {
	ctx := context.Background()
	baseID, goodsID := id.New(), id.New()
	spec := unit.Spec{PackPerBox: 10, PiecePerPack: 5}

	repo := newMemRepo()
	repo.costs[goodsID] = d(5)

	// quantifier already counts the committed 10-box batch on top of the 10
	// boxes that were there before
	svc := NewService(repo, &fixedStock{total: d(20)}, &fixedLines{})

	got, err := svc.ApplyArrival(ctx, baseID, goodsID, spec, unit.Qty{Box: 10}, d(7), d(0))
	require.NoError(t, err)
	assert.True(t, got.Equal(d(6)), "got %s", got)
}

func TestApplyArrivalClampsNegativeStock(t *testing.T) {
	ctx := context.Background()
	baseID, goodsID := id.New(), id.New()
	spec := unit.Spec{PackPerBox: 2, PiecePerPack: 5}

	repo := newMemRepo()
	repo.costs[goodsID] = d(100)

	// inconsistent ledgers: quantifier reports less than the batch itself
	svc := NewService(repo, &fixedStock{total: d(3)}, &fixedLines{})

	got, err := svc.ApplyArrival(ctx, baseID, goodsID, spec, unit.Qty{Box: 5}, d(8), d(0))
	require.NoError(t, err)
	// treated as a first arrival: (8*5 + 0) / 5 = 8
	assert.True(t, got.Equal(d(8)), "got %s", got)
}

func TestRecalculateAverageCost(t *testing.T) {
	ctx := context.Background()
	baseID, goodsID := id.New(), id.New()
	spec := unit.Spec{PackPerBox: 10, PiecePerPack: 5} // 50 pieces per box

	t.Run("weights fractional box equivalents", func(t *testing.T) {
		repo := newMemRepo()
		lines := &fixedLines{lines: []ArrivalLine{
			{Qty: unit.Qty{Box: 10}, UnitPriceBox: d(5)},
			{Qty: unit.Qty{Box: 2, Pack: 5}, UnitPriceBox: d(8), LogisticsFee: d(10)}, // 2.5 boxes
		}}
		svc := NewService(repo, &fixedStock{}, lines)

		// (5*10 + 8*2.5 + 10) / 12.5 = 80/12.5 = 6.4
		got, err := svc.RecalculateAverageCost(ctx, baseID, goodsID, spec)
		require.NoError(t, err)
		assert.True(t, got.Equal(d(6.4)), "got %s", got)
		assert.True(t, repo.costs[goodsID].Equal(d(6.4)))
	})

	t.Run("no surviving arrivals resets to zero", func(t *testing.T) {
		repo := newMemRepo()
		repo.costs[goodsID] = d(6)
		svc := NewService(repo, &fixedStock{}, &fixedLines{})

		got, err := svc.RecalculateAverageCost(ctx, baseID, goodsID, spec)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
		assert.True(t, repo.costs[goodsID].IsZero())
	})
}
