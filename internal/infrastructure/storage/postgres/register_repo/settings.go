package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/domain/stock"
	"anchorstock/internal/infrastructure/storage/postgres"
)

const settingsTable = "sys_base_settings"

var _ stock.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo reads and writes base-wide settings; currently only the
// default low-stock threshold.
type SettingsRepo struct {
	txm *postgres.TxManager
}

func NewSettingsRepo(txm *postgres.TxManager) *SettingsRepo {
	return &SettingsRepo{txm: txm}
}

// DefaultThreshold returns the base-wide default threshold, nil when none is
// configured.
func (r *SettingsRepo) DefaultThreshold(ctx context.Context, baseID id.ID) (*goods.Threshold, error) {
	sql, args, err := builder().
		Select("threshold_enabled", "threshold_value", "threshold_unit").
		From(settingsTable).
		Where(squirrel.Eq{"base_id": baseID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	t := &goods.Threshold{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get default threshold: %w", err)
	}

	return t, nil
}

// SetDefaultThreshold upserts the base-wide default threshold.
func (r *SettingsRepo) SetDefaultThreshold(ctx context.Context, baseID id.ID, t goods.Threshold) error {
	sql := `
		INSERT INTO ` + settingsTable + ` (base_id, threshold_enabled, threshold_value, threshold_unit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (base_id) DO UPDATE SET
			threshold_enabled = EXCLUDED.threshold_enabled,
			threshold_value   = EXCLUDED.threshold_value,
			threshold_unit    = EXCLUDED.threshold_unit
	`
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, baseID, t.Enabled, t.Value, t.Unit); err != nil {
		return fmt.Errorf("upsert default threshold: %w", err)
	}
	return nil
}
