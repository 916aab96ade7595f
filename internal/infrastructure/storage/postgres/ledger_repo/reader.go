package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/domain/ledger"
	"anchorstock/internal/infrastructure/storage/postgres"
)

var _ ledger.Reader = (*Reader)(nil)

// Reader implements ledger.Reader over the five record tables. Pure reads;
// every aggregation is a single COALESCE(SUM(...)) query per table.
type Reader struct {
	txm *postgres.TxManager
}

func NewReader(txm *postgres.TxManager) *Reader {
	return &Reader{txm: txm}
}

// Sums returns the five location-scoped sums for a good.
func (r *Reader) Sums(ctx context.Context, baseID, goodsID, locationID id.ID) (ledger.Sums, error) {
	q := r.txm.GetQuerier(ctx)
	scope := squirrel.Eq{"base_id": baseID, "goods_id": goodsID}

	var sums ledger.Sums
	var err error

	at := func(col string) squirrel.Eq {
		e := squirrel.Eq{col: locationID}
		for k, v := range scope {
			e[k] = v
		}
		return e
	}

	if sums.Arrivals, err = sumQty(ctx, q, arrivalsTable, qtyCols, at("location_id")); err != nil {
		return ledger.Sums{}, err
	}
	if sums.TransfersIn, err = sumQty(ctx, q, transfersTable, qtyCols, at("destination_location_id")); err != nil {
		return ledger.Sums{}, err
	}
	if sums.TransfersOut, err = sumQty(ctx, q, transfersTable, qtyCols, at("source_location_id")); err != nil {
		return ledger.Sums{}, err
	}
	if sums.StockOuts, err = sumQty(ctx, q, stockoutsTable, qtyCols, at("location_id")); err != nil {
		return ledger.Sums{}, err
	}
	if sums.Consumptions, err = sumQty(ctx, q, consumptionsTable, qtyCols, at("location_id")); err != nil {
		return ledger.Sums{}, err
	}

	return sums, nil
}

// SumTransfersToHandler totals transfers received by a handler for one good.
func (r *Reader) SumTransfersToHandler(ctx context.Context, baseID, goodsID, handlerID id.ID) (unit.Qty, error) {
	return sumQty(ctx, r.txm.GetQuerier(ctx), transfersTable, qtyCols, squirrel.Eq{
		"base_id":                baseID,
		"goods_id":               goodsID,
		"destination_handler_id": handlerID,
	})
}

// SumTransfersFromHandler totals transfers sent by a handler from locations
// of the given type. The join restricts to source locations of that type so
// warehouse-originated transfers never charge the handler.
func (r *Reader) SumTransfersFromHandler(ctx context.Context, baseID, goodsID, handlerID id.ID, sourceType location.Type) (unit.Qty, error) {
	sql, args, err := builder().
		Select(
			"COALESCE(SUM(t.box_qty), 0) AS box_qty",
			"COALESCE(SUM(t.pack_qty), 0) AS pack_qty",
			"COALESCE(SUM(t.piece_qty), 0) AS piece_qty",
		).
		From(transfersTable+" t").
		Join("cat_locations l ON l.id = t.source_location_id").
		Where(squirrel.Eq{
			"t.base_id":           baseID,
			"t.goods_id":          goodsID,
			"t.source_handler_id": handlerID,
			"l.type":              sourceType,
		}).
		ToSql()
	if err != nil {
		return unit.Qty{}, fmt.Errorf("build sum query: %w", err)
	}

	var qty unit.Qty
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &qty, sql, args...); err != nil {
		return unit.Qty{}, fmt.Errorf("sum transfers from handler: %w", err)
	}

	return qty, nil
}

// SumConsumptionByHandler totals the derived consumption columns for a
// handler and good.
func (r *Reader) SumConsumptionByHandler(ctx context.Context, baseID, goodsID, handlerID id.ID) (unit.Qty, error) {
	return sumQty(ctx, r.txm.GetQuerier(ctx), consumptionsTable, qtyCols, squirrel.Eq{
		"base_id":    baseID,
		"goods_id":   goodsID,
		"handler_id": handlerID,
	})
}
