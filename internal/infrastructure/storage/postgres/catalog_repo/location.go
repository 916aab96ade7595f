package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/infrastructure/storage/postgres"
)

const locationTable = "cat_locations"

var _ location.Repository = (*LocationRepo)(nil)

// LocationRepo implements location.Repository.
type LocationRepo struct {
	*BaseCatalogRepo[*location.Location]
}

func NewLocationRepo(txm *postgres.TxManager) *LocationRepo {
	return &LocationRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			locationTable,
			postgres.ExtractDBColumns[location.Location](),
			func() *location.Location { return &location.Location{} },
		),
	}
}

// FindByName resolves a location by exact display name within a base.
func (r *LocationRepo) FindByName(ctx context.Context, baseID id.ID, name string) (*location.Location, error) {
	loc := &location.Location{}

	sql, args, err := r.baseSelect(baseID).
		Where(squirrel.Eq{"name": name, "active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), loc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(locationTable, name)
		}
		return nil, fmt.Errorf("find location by name: %w", err)
	}

	return loc, nil
}
