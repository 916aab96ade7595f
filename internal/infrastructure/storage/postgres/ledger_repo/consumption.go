package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/consumption"
	"anchorstock/internal/infrastructure/storage/postgres"
)

// consumptionPeriodKey is the unique constraint on
// (base_id, date, goods_id, location_id, handler_id).
const consumptionPeriodKey = "rec_consumptions_period_key"

var _ consumption.Repository = (*ConsumptionRepo)(nil)

// ConsumptionRepo implements consumption.Repository.
type ConsumptionRepo struct {
	txm  *postgres.TxManager
	cols []string
}

func NewConsumptionRepo(txm *postgres.TxManager) *ConsumptionRepo {
	return &ConsumptionRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[consumption.Record](),
	}
}

func (r *ConsumptionRepo) Create(ctx context.Context, rec *consumption.Record) error {
	data := postgres.StructToMap(rec)

	sql, args, err := builder().Insert(consumptionsTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, consumptionPeriodKey) {
			return apperror.NewDuplicateConsumption(rec.Date.Format("2006-01-02"))
		}
		return fmt.Errorf("insert consumption: %w", err)
	}
	return nil
}

func (r *ConsumptionRepo) GetByID(ctx context.Context, baseID, recordID id.ID) (*consumption.Record, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From(consumptionsTable).
		Where(squirrel.Eq{"base_id": baseID, "id": recordID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rec := &consumption.Record{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("consumption", recordID.String())
		}
		return nil, fmt.Errorf("get consumption: %w", err)
	}
	return rec, nil
}

func (r *ConsumptionRepo) Update(ctx context.Context, rec *consumption.Record) error {
	data := postgres.StructToMap(rec)
	delete(data, "id")
	delete(data, "base_id")
	delete(data, "created_at")
	delete(data, "created_by")

	sql, args, err := builder().
		Update(consumptionsTable).
		SetMap(data).
		Where(squirrel.Eq{"base_id": rec.BaseID, "id": rec.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err, consumptionPeriodKey) {
			return apperror.NewDuplicateConsumption(rec.Date.Format("2006-01-02"))
		}
		return fmt.Errorf("update consumption: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("consumption", rec.ID.String())
	}
	return nil
}

func (r *ConsumptionRepo) Delete(ctx context.Context, baseID, recordID id.ID) error {
	sql, args, err := builder().
		Delete(consumptionsTable).
		Where(squirrel.Eq{"base_id": baseID, "id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete consumption: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("consumption", recordID.String())
	}
	return nil
}

func (r *ConsumptionRepo) List(ctx context.Context, baseID id.ID, filter consumption.ListFilter) ([]*consumption.Record, int64, error) {
	where := squirrel.And{squirrel.Eq{"base_id": baseID}}
	if filter.GoodsID != nil {
		where = append(where, squirrel.Eq{"goods_id": *filter.GoodsID})
	}
	if filter.LocationID != nil {
		where = append(where, squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.HandlerID != nil {
		where = append(where, squirrel.Eq{"handler_id": *filter.HandlerID})
	}
	if filter.DateFrom != nil {
		where = append(where, squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		where = append(where, squirrel.LtOrEq{"date": *filter.DateTo})
	}

	sql, args, err := builder().Select("COUNT(*)").From(consumptionsTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &total, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("count consumptions: %w", err)
	}

	q := builder().Select(r.cols...).From(consumptionsTable).Where(where).OrderBy("date DESC", "created_at DESC")
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

	var records []*consumption.Record
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list consumptions: %w", err)
	}

	return records, total, nil
}

// ProfitCheck reports whether a profit-accounting row references the
// consumption. Implements consumption.ProfitChecker.
type ProfitCheck struct {
	txm *postgres.TxManager
}

var _ consumption.ProfitChecker = (*ProfitCheck)(nil)

func NewProfitCheck(txm *postgres.TxManager) *ProfitCheck {
	return &ProfitCheck{txm: txm}
}

func (p *ProfitCheck) HasProfitRecord(ctx context.Context, baseID, consumptionID id.ID) (bool, error) {
	sql, args, err := builder().
		Select("1").
		From("rec_profits").
		Where(squirrel.Eq{"base_id": baseID, "consumption_id": consumptionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	if err := pgxscan.Get(ctx, p.txm.GetQuerier(ctx), &one, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check profit record: %w", err)
	}

	return true, nil
}
