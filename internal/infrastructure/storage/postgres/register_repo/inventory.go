// Package register_repo provides PostgreSQL implementations for derived
// aggregates: the per-good average cost register and base-wide settings.
// Registers are caches over the record tables, never sources of truth for
// quantity.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/cost"
	"anchorstock/internal/infrastructure/storage/postgres"
)

const inventoryTable = "reg_inventory"

var _ cost.Repository = (*InventoryRepo)(nil)

// InventoryRepo stores the moving-average cost per (good, base), one row per
// pair.
type InventoryRepo struct {
	txm *postgres.TxManager
}

func NewInventoryRepo(txm *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{txm: txm}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// AverageCost returns the stored average cost per box, zero when no row
// exists yet.
func (r *InventoryRepo) AverageCost(ctx context.Context, baseID, goodsID id.ID) (decimal.Decimal, error) {
	sql, args, err := builder().
		Select("average_cost").
		From(inventoryTable).
		Where(squirrel.Eq{"base_id": baseID, "goods_id": goodsID}).
		Limit(1).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build query: %w", err)
	}

	var avg decimal.Decimal
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &avg, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get average cost: %w", err)
	}

	return avg, nil
}

// Upsert writes the average cost for a (good, base) pair.
func (r *InventoryRepo) Upsert(ctx context.Context, baseID, goodsID id.ID, averageCost decimal.Decimal) error {
	sql := `
		INSERT INTO ` + inventoryTable + ` (base_id, goods_id, average_cost, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (base_id, goods_id) DO UPDATE SET
			average_cost = EXCLUDED.average_cost,
			updated_at   = now()
	`
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, baseID, goodsID, averageCost); err != nil {
		return fmt.Errorf("upsert average cost: %w", err)
	}
	return nil
}
