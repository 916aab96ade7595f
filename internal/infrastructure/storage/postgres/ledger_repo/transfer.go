package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/transfer"
	"anchorstock/internal/infrastructure/storage/postgres"
)

var _ transfer.Repository = (*TransferRepo)(nil)

// TransferRepo implements transfer.Repository.
type TransferRepo struct {
	txm  *postgres.TxManager
	cols []string
}

func NewTransferRepo(txm *postgres.TxManager) *TransferRepo {
	return &TransferRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[transfer.Record](),
	}
}

func (r *TransferRepo) Create(ctx context.Context, rec *transfer.Record) error {
	data := postgres.StructToMap(rec)

	sql, args, err := builder().Insert(transfersTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (r *TransferRepo) GetByID(ctx context.Context, baseID, recordID id.ID) (*transfer.Record, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From(transfersTable).
		Where(squirrel.Eq{"base_id": baseID, "id": recordID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rec := &transfer.Record{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transfer", recordID.String())
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return rec, nil
}

func (r *TransferRepo) UpdateStatus(ctx context.Context, baseID, recordID id.ID, status transfer.Status) error {
	sql, args, err := builder().
		Update(transfersTable).
		Set("status", status).
		Where(squirrel.Eq{"base_id": baseID, "id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("transfer", recordID.String())
	}
	return nil
}

func (r *TransferRepo) Delete(ctx context.Context, baseID, recordID id.ID) error {
	sql, args, err := builder().
		Delete(transfersTable).
		Where(squirrel.Eq{"base_id": baseID, "id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("transfer", recordID.String())
	}
	return nil
}

func (r *TransferRepo) List(ctx context.Context, baseID id.ID, filter transfer.ListFilter) ([]*transfer.Record, int64, error) {
	where := squirrel.And{squirrel.Eq{"base_id": baseID}}
	if filter.GoodsID != nil {
		where = append(where, squirrel.Eq{"goods_id": *filter.GoodsID})
	}
	if filter.SourceLocationID != nil {
		where = append(where, squirrel.Eq{"source_location_id": *filter.SourceLocationID})
	}
	if filter.DestinationLocationID != nil {
		where = append(where, squirrel.Eq{"destination_location_id": *filter.DestinationLocationID})
	}
	if filter.HandlerID != nil {
		where = append(where, squirrel.Or{
			squirrel.Eq{"source_handler_id": *filter.HandlerID},
			squirrel.Eq{"destination_handler_id": *filter.HandlerID},
		})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if filter.FromDate != nil {
		where = append(where, squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		where = append(where, squirrel.LtOrEq{"date": *filter.ToDate})
	}

	sql, args, err := builder().Select("COUNT(*)").From(transfersTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &total, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	q := builder().Select(r.cols...).From(transfersTable).Where(where).OrderBy("date DESC", "created_at DESC")
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

	var records []*transfer.Record
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}

	return records, total, nil
}
