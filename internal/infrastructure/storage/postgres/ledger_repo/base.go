// Package ledger_repo provides PostgreSQL implementations for the five
// stock-moving record tables and the aggregating ledger reader.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anchorstock/internal/core/unit"
	"anchorstock/internal/infrastructure/storage/postgres"
)

// Record tables.
const (
	arrivalsTable     = "rec_arrivals"
	transfersTable    = "rec_transfers"
	stockoutsTable    = "rec_stockouts"
	consumptionsTable = "rec_consumptions"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// sumQty runs a column-wise SUM over the quantity triple of a record table.
// COALESCE keeps empty matches at zero instead of NULL.
func sumQty(ctx context.Context, q postgres.Querier, table string, cols [3]string, where squirrel.Sqlizer) (unit.Qty, error) {
	sql, args, err := builder().
		Select(
			fmt.Sprintf("COALESCE(SUM(%s), 0) AS box_qty", cols[0]),
			fmt.Sprintf("COALESCE(SUM(%s), 0) AS pack_qty", cols[1]),
			fmt.Sprintf("COALESCE(SUM(%s), 0) AS piece_qty", cols[2]),
		).
		From(table).
		Where(where).
		ToSql()
	if err != nil {
		return unit.Qty{}, fmt.Errorf("build sum query: %w", err)
	}

	var qty unit.Qty
	if err := pgxscan.Get(ctx, q, &qty, sql, args...); err != nil {
		return unit.Qty{}, fmt.Errorf("sum %s: %w", table, err)
	}

	return qty, nil
}

var qtyCols = [3]string{"box_qty", "pack_qty", "piece_qty"}
