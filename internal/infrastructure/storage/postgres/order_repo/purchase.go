// Package order_repo provides the PostgreSQL implementation of the purchase
// order repository.
package order_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/tx"
	"anchorstock/internal/domain/purchase"
	"anchorstock/internal/infrastructure/storage/postgres"
)

const (
	ordersTable = "doc_purchase_orders"
	itemsTable  = "doc_purchase_order_items"
)

var _ purchase.Repository = (*PurchaseRepo)(nil)

// PurchaseRepo implements purchase.Repository. Orders and their line items
// live in two tables written in one transaction.
type PurchaseRepo struct {
	txm       *postgres.TxManager
	manager   tx.Manager
	orderCols []string
	itemCols  []string
}

func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		txm:       txm,
		manager:   txm,
		orderCols: postgres.ExtractDBColumns[purchase.Order](),
		itemCols:  postgres.ExtractDBColumns[purchase.Item](),
	}
}

func (r *PurchaseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *PurchaseRepo) Create(ctx context.Context, o *purchase.Order) error {
	return r.manager.RunInTransaction(ctx, func(ctx context.Context) error {
		data := postgres.StructToMap(o)

		sql, args, err := r.builder().Insert(ordersTable).SetMap(data).ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			if postgres.IsUniqueViolation(err, "") {
				return apperror.NewDuplicate("purchase order", "number", o.Number)
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range o.Items {
			itemData := postgres.StructToMap(&item)
			sql, args, err := r.builder().Insert(itemsTable).SetMap(itemData).ToSql()
			if err != nil {
				return fmt.Errorf("build item insert: %w", err)
			}
			if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		return nil
	})
}

func (r *PurchaseRepo) GetByID(ctx context.Context, baseID, orderID id.ID) (*purchase.Order, error) {
	sql, args, err := r.builder().
		Select(r.orderCols...).
		From(ordersTable).
		Where(squirrel.Eq{"base_id": baseID, "id": orderID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	order := &purchase.Order{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	sql, args, err = r.builder().
		Select(r.itemCols...).
		From(itemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &order.Items, sql, args...); err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}

	return order, nil
}

// FirstItem returns the order's first line item by line number.
func (r *PurchaseRepo) FirstItem(ctx context.Context, baseID, orderID id.ID) (*purchase.Item, error) {
	sql, args, err := r.builder().
		Select(itemCols("i", r.itemCols)...).
		From(itemsTable + " i").
		Join(ordersTable + " o ON o.id = i.order_id").
		Where(squirrel.Eq{"o.base_id": baseID, "i.order_id": orderID}).
		OrderBy("i.line_no").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	item := &purchase.Item{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase order item", orderID.String())
		}
		return nil, fmt.Errorf("get first item: %w", err)
	}
	return item, nil
}

// ItemForGoods returns the line item matching a good.
func (r *PurchaseRepo) ItemForGoods(ctx context.Context, baseID, orderID, goodsID id.ID) (*purchase.Item, error) {
	sql, args, err := r.builder().
		Select(itemCols("i", r.itemCols)...).
		From(itemsTable + " i").
		Join(ordersTable + " o ON o.id = i.order_id").
		Where(squirrel.Eq{"o.base_id": baseID, "i.order_id": orderID, "i.goods_id": goodsID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	item := &purchase.Item{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase order item", goodsID.String())
		}
		return nil, fmt.Errorf("get item for goods: %w", err)
	}
	return item, nil
}

func (r *PurchaseRepo) UpdateStatus(ctx context.Context, baseID, orderID id.ID, status purchase.Status) error {
	sql, args, err := r.builder().
		Update(ordersTable).
		Set("status", status).
		Where(squirrel.Eq{"base_id": baseID, "id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase order", orderID.String())
	}
	return nil
}

func (r *PurchaseRepo) List(ctx context.Context, baseID id.ID, limit, offset int) ([]*purchase.Order, int64, error) {
	sql, args, err := r.builder().
		Select("COUNT(*)").
		From(ordersTable).
		Where(squirrel.Eq{"base_id": baseID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &total, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	q := r.builder().
		Select(r.orderCols...).
		From(ordersTable).
		Where(squirrel.Eq{"base_id": baseID}).
		OrderBy("date DESC", "created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err = q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var orders []*purchase.Order
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// itemCols prefixes column names with a table alias.
func itemCols(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}
