package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/infrastructure/storage/postgres"
)

const (
	goodsTable     = "cat_goods"
	thresholdTable = "cat_goods_thresholds"
)

var _ goods.Repository = (*GoodsRepo)(nil)

// GoodsRepo implements goods.Repository.
type GoodsRepo struct {
	*BaseCatalogRepo[*goods.Goods]
}

func NewGoodsRepo(txm *postgres.TxManager) *GoodsRepo {
	return &GoodsRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			goodsTable,
			postgres.ExtractDBColumns[goods.Goods](),
			func() *goods.Goods { return &goods.Goods{} },
		),
	}
}

// Create inserts the good and its optional threshold override.
func (r *GoodsRepo) Create(ctx context.Context, g *goods.Goods) error {
	if err := r.BaseCatalogRepo.Create(ctx, g); err != nil {
		return err
	}
	return r.saveThreshold(ctx, g)
}

// Update modifies the good and replaces its threshold override.
func (r *GoodsRepo) Update(ctx context.Context, g *goods.Goods) error {
	if err := r.BaseCatalogRepo.Update(ctx, g); err != nil {
		return err
	}
	return r.saveThreshold(ctx, g)
}

// GetByID loads the good together with its threshold override.
func (r *GoodsRepo) GetByID(ctx context.Context, baseID, goodsID id.ID) (*goods.Goods, error) {
	g, err := r.BaseCatalogRepo.GetByID(ctx, baseID, goodsID)
	if err != nil {
		return nil, err
	}
	if err := r.attachThresholds(ctx, []*goods.Goods{g}); err != nil {
		return nil, err
	}
	return g, nil
}

// ListActive loads active goods with threshold overrides attached.
func (r *GoodsRepo) ListActive(ctx context.Context, baseID id.ID) ([]*goods.Goods, error) {
	all, err := r.BaseCatalogRepo.ListActive(ctx, baseID)
	if err != nil {
		return nil, err
	}
	if err := r.attachThresholds(ctx, all); err != nil {
		return nil, err
	}
	return all, nil
}

// saveThreshold upserts or clears the per-good threshold row.
func (r *GoodsRepo) saveThreshold(ctx context.Context, g *goods.Goods) error {
	if g.Threshold == nil {
		sql, args, err := r.Builder().
			Delete(thresholdTable).
			Where(squirrel.Eq{"goods_id": g.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build threshold delete: %w", err)
		}
		if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete threshold: %w", err)
		}
		return nil
	}

	sql := `
		INSERT INTO ` + thresholdTable + ` (goods_id, threshold_enabled, threshold_value, threshold_unit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (goods_id) DO UPDATE SET
			threshold_enabled = EXCLUDED.threshold_enabled,
			threshold_value   = EXCLUDED.threshold_value,
			threshold_unit    = EXCLUDED.threshold_unit
	`
	if _, err := r.Querier(ctx).Exec(ctx, sql, g.ID, g.Threshold.Enabled, g.Threshold.Value, g.Threshold.Unit); err != nil {
		return fmt.Errorf("upsert threshold: %w", err)
	}
	return nil
}

// attachThresholds loads threshold overrides for a batch of goods in one
// query.
func (r *GoodsRepo) attachThresholds(ctx context.Context, all []*goods.Goods) error {
	if len(all) == 0 {
		return nil
	}

	ids := make([]id.ID, len(all))
	for i, g := range all {
		ids[i] = g.ID
	}

	sql, args, err := r.Builder().
		Select("goods_id", "threshold_enabled", "threshold_value", "threshold_unit").
		From(thresholdTable).
		Where(squirrel.Eq{"goods_id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build threshold query: %w", err)
	}

	var rows []struct {
		GoodsID id.ID `db:"goods_id"`
		goods.Threshold
	}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &rows, sql, args...); err != nil {
		return fmt.Errorf("load thresholds: %w", err)
	}

	byID := make(map[id.ID]goods.Threshold, len(rows))
	for _, row := range rows {
		byID[row.GoodsID] = row.Threshold
	}
	for _, g := range all {
		if t, ok := byID[g.ID]; ok {
			tc := t
			g.Threshold = &tc
		}
	}
	return nil
}

// FindByName resolves a good by display name. Names are stored as either a
// localized JSON object or a legacy bare string, so the match runs in Go over
// the base's active goods instead of a SQL predicate; the import path that
// needs this is low-volume.
func (r *GoodsRepo) FindByName(ctx context.Context, baseID id.ID, name string) (*goods.Goods, error) {
	all, err := r.ListActive(ctx, baseID)
	if err != nil {
		return nil, err
	}

	for _, g := range all {
		if g.Name.Matches(name) {
			return g, nil
		}
	}

	return nil, apperror.NewNotFound(goodsTable, name)
}

// List returns goods matching the filter plus the unpaginated total.
func (r *GoodsRepo) List(ctx context.Context, baseID id.ID, filter goods.ListFilter) ([]*goods.Goods, int64, error) {
	base := r.baseSelect(baseID)
	countQ := r.Builder().Select("COUNT(*)").From(goodsTable).Where(squirrel.Eq{"base_id": baseID})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		cond := squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.Expr("name::text ILIKE ?", pattern),
		}
		base = base.Where(cond)
		countQ = countQ.Where(cond)
	}
	if filter.Category != "" {
		base = base.Where(squirrel.Eq{"category": filter.Category})
		countQ = countQ.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.ActiveOnly {
		base = base.Where(squirrel.Eq{"active": true})
		countQ = countQ.Where(squirrel.Eq{"active": true})
	}

	sql, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := pgxscan.Get(ctx, r.Querier(ctx), &total, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("count goods: %w", err)
	}

	base = base.OrderBy("code")
	if filter.Limit > 0 {
		base = base.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		base = base.Offset(uint64(filter.Offset))
	}

	sql, args, err = base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var result []*goods.Goods
	if err := pgxscan.Select(ctx, r.Querier(ctx), &result, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list goods: %w", err)
	}
	if err := r.attachThresholds(ctx, result); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}
