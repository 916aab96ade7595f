// Package consumption implements opening/closing stock reconciliation for
// handlers. A record states: the handler was holding an opening balance, used
// some of it, and the closing balance remains; the difference is what was
// consumed.
package consumption

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"anchorstock/internal/core/entity"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
)

// Record is one reconciliation entry. The embedded Qty triple is the DERIVED
// consumed amount (opening − closing, decomposed); opening and closing are
// stored verbatim as entered.
type Record struct {
	entity.Record

	GoodsID    id.ID `json:"goodsId" db:"goods_id"`
	LocationID id.ID `json:"locationId" db:"location_id"`
	HandlerID  id.ID `json:"handlerId" db:"handler_id"`

	OpeningBox   int64 `json:"openingBox" db:"opening_box"`
	OpeningPack  int64 `json:"openingPack" db:"opening_pack"`
	OpeningPiece int64 `json:"openingPiece" db:"opening_piece"`

	ClosingBox   int64 `json:"closingBox" db:"closing_box"`
	ClosingPack  int64 `json:"closingPack" db:"closing_pack"`
	ClosingPiece int64 `json:"closingPiece" db:"closing_piece"`

	unit.Qty

	// UnitPriceBox is the good's average cost per box snapshotted at creation
	// time. Historical: never recomputed afterwards.
	UnitPriceBox decimal.Decimal `json:"unitPriceBox" db:"unit_price_box"`
}

// Opening returns the stored opening balance as a quantity triple.
func (r *Record) Opening() unit.Qty {
	return unit.Qty{Box: r.OpeningBox, Pack: r.OpeningPack, Piece: r.OpeningPiece}
}

// Closing returns the stored closing balance as a quantity triple.
func (r *Record) Closing() unit.Qty {
	return unit.Qty{Box: r.ClosingBox, Pack: r.ClosingPack, Piece: r.ClosingPiece}
}

func (r *Record) SetOpening(q unit.Qty) {
	r.OpeningBox, r.OpeningPack, r.OpeningPiece = q.Box, q.Pack, q.Piece
}

func (r *Record) SetClosing(q unit.Qty) {
	r.ClosingBox, r.ClosingPack, r.ClosingPiece = q.Box, q.Pack, q.Piece
}

// OpeningStock is the ledger-derived balance a handler is currently holding,
// together with the pricing context needed to pre-fill a new record. Not
// stored; recomputed on every request.
type OpeningStock struct {
	unit.Qty
	UnitPriceBox decimal.Decimal `json:"unitPriceBox"`
	PackPerBox   int64           `json:"packPerBox"`
	PiecePerPack int64           `json:"piecePerPack"`
}

// ListFilter narrows consumption listings.
type ListFilter struct {
	GoodsID    *id.ID
	LocationID *id.ID
	HandlerID  *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// Repository persists consumption records. Create and Update return a
// duplicate-consumption error when the (date, good, location, handler) unique
// key is violated.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, baseID, recordID id.ID) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, baseID, recordID id.ID) error
	List(ctx context.Context, baseID id.ID, filter ListFilter) ([]*Record, int64, error)
}
