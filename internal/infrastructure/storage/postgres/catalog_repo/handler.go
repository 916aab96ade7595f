package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/catalogs/handler"
	"anchorstock/internal/infrastructure/storage/postgres"
)

const handlerTable = "cat_handlers"

var _ handler.Repository = (*HandlerRepo)(nil)

// HandlerRepo implements handler.Repository.
type HandlerRepo struct {
	*BaseCatalogRepo[*handler.Handler]
}

func NewHandlerRepo(txm *postgres.TxManager) *HandlerRepo {
	return &HandlerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			handlerTable,
			postgres.ExtractDBColumns[handler.Handler](),
			func() *handler.Handler { return &handler.Handler{} },
		),
	}
}

// FindByName resolves a handler by exact display name within a base.
func (r *HandlerRepo) FindByName(ctx context.Context, baseID id.ID, name string) (*handler.Handler, error) {
	h := &handler.Handler{}

	sql, args, err := r.baseSelect(baseID).
		Where(squirrel.Eq{"name": name, "active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), h, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(handlerTable, name)
		}
		return nil, fmt.Errorf("find handler by name: %w", err)
	}

	return h, nil
}
