package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/stockout"
	"anchorstock/internal/infrastructure/storage/postgres"
)

var _ stockout.Repository = (*StockOutRepo)(nil)

// StockOutRepo implements stockout.Repository.
type StockOutRepo struct {
	txm  *postgres.TxManager
	cols []string
}

func NewStockOutRepo(txm *postgres.TxManager) *StockOutRepo {
	return &StockOutRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[stockout.Record](),
	}
}

func (r *StockOutRepo) Create(ctx context.Context, rec *stockout.Record) error {
	data := postgres.StructToMap(rec)

	sql, args, err := builder().Insert(stockoutsTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock-out: %w", err)
	}
	return nil
}

func (r *StockOutRepo) GetByID(ctx context.Context, baseID, recordID id.ID) (*stockout.Record, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From(stockoutsTable).
		Where(squirrel.Eq{"base_id": baseID, "id": recordID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rec := &stockout.Record{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stockout", recordID.String())
		}
		return nil, fmt.Errorf("get stock-out: %w", err)
	}
	return rec, nil
}

func (r *StockOutRepo) Delete(ctx context.Context, baseID, recordID id.ID) error {
	sql, args, err := builder().
		Delete(stockoutsTable).
		Where(squirrel.Eq{"base_id": baseID, "id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete stock-out: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stockout", recordID.String())
	}
	return nil
}

func (r *StockOutRepo) List(ctx context.Context, baseID id.ID, filter stockout.ListFilter) ([]*stockout.Record, int64, error) {
	where := squirrel.And{squirrel.Eq{"base_id": baseID}}
	if filter.GoodsID != nil {
		where = append(where, squirrel.Eq{"goods_id": *filter.GoodsID})
	}
	if filter.LocationID != nil {
		where = append(where, squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.FromDate != nil {
		where = append(where, squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		where = append(where, squirrel.LtOrEq{"date": *filter.ToDate})
	}

	sql, args, err := builder().Select("COUNT(*)").From(stockoutsTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &total, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("count stock-outs: %w", err)
	}

	q := builder().Select(r.cols...).From(stockoutsTable).Where(where).OrderBy("date DESC", "created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err = q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var records []*stockout.Record
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list stock-outs: %w", err)
	}

	return records, total, nil
}
