package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/arrival"
	"anchorstock/internal/domain/cost"
	"anchorstock/internal/infrastructure/storage/postgres"
)

var (
	_ arrival.Repository = (*ArrivalRepo)(nil)
	_ cost.LineSource    = (*ArrivalRepo)(nil)
)

// ArrivalRepo implements arrival.Repository. It also serves as the cost
// recompute's line source: the join to purchase-order items recovers each
// arrival's ordered unit price.
type ArrivalRepo struct {
	txm  *postgres.TxManager
	cols []string
}

func NewArrivalRepo(txm *postgres.TxManager) *ArrivalRepo {
	return &ArrivalRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[arrival.Record](),
	}
}

func (r *ArrivalRepo) Create(ctx context.Context, rec *arrival.Record) error {
	data := postgres.StructToMap(rec)

	sql, args, err := builder().Insert(arrivalsTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert arrival: %w", err)
	}
	return nil
}

func (r *ArrivalRepo) GetByID(ctx context.Context, baseID, recordID id.ID) (*arrival.Record, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From(arrivalsTable).
		Where(squirrel.Eq{"base_id": baseID, "id": recordID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rec := &arrival.Record{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("arrival", recordID.String())
		}
		return nil, fmt.Errorf("get arrival: %w", err)
	}
	return rec, nil
}

func (r *ArrivalRepo) Delete(ctx context.Context, baseID, recordID id.ID) error {
	sql, args, err := builder().
		Delete(arrivalsTable).
		Where(squirrel.Eq{"base_id": baseID, "id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete arrival: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("arrival", recordID.String())
	}
	return nil
}

// SumByOrder totals all arrivals recorded against one purchase order.
func (r *ArrivalRepo) SumByOrder(ctx context.Context, baseID, orderID id.ID) (unit.Qty, error) {
	return sumQty(ctx, r.txm.GetQuerier(ctx), arrivalsTable, qtyCols, squirrel.Eq{
		"base_id":           baseID,
		"purchase_order_id": orderID,
	})
}

func (r *ArrivalRepo) List(ctx context.Context, baseID id.ID, filter arrival.ListFilter) ([]*arrival.Record, int64, error) {
	where := squirrel.And{squirrel.Eq{"base_id": baseID}}
	if filter.GoodsID != nil {
		where = append(where, squirrel.Eq{"goods_id": *filter.GoodsID})
	}
	if filter.PurchaseOrderID != nil {
		where = append(where, squirrel.Eq{"purchase_order_id": *filter.PurchaseOrderID})
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

	sql, args, err := builder().Select("COUNT(*)").From(arrivalsTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &total, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("count arrivals: %w", err)
	}

	q := builder().Select(r.cols...).From(arrivalsTable).Where(where).OrderBy("date DESC", "created_at DESC")
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

	var records []*arrival.Record
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list arrivals: %w", err)
	}

	return records, total, nil
}

// ArrivalLines implements cost.LineSource: every arrival of the good joined
// to its purchase-order line item for the unit price.
func (r *ArrivalRepo) ArrivalLines(ctx context.Context, baseID, goodsID id.ID) ([]cost.ArrivalLine, error) {
	sql, args, err := builder().
		Select(
			"a.box_qty",
			"a.pack_qty",
			"a.piece_qty",
			"a.logistics_fee",
			"COALESCE(i.unit_price, 0) AS unit_price",
		).
		From(arrivalsTable+" a").
		LeftJoin("doc_purchase_order_items i ON i.order_id = a.purchase_order_id AND i.goods_id = a.goods_id").
		Where(squirrel.Eq{"a.base_id": baseID, "a.goods_id": goodsID}).
		OrderBy("a.date", "a.created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []struct {
		unit.Qty
		LogisticsFee decimal.Decimal `db:"logistics_fee"`
		UnitPrice    decimal.Decimal `db:"unit_price"`
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select arrival lines: %w", err)
	}

	lines := make([]cost.ArrivalLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, cost.ArrivalLine{
			Qty:          row.Qty,
			UnitPriceBox: row.UnitPrice,
			LogisticsFee: row.LogisticsFee,
		})
	}
	return lines, nil
}
