// Package unit provides mixed-radix quantity arithmetic for goods tracked in
// box → pack → piece units. Each good defines its own radix via Spec.
//
// Sign convention: decomposition of negative totals uses floored (Python-style)
// division, so FromPieces(-1, {10,10}) = (-1 box, 9 pack, 9 piece). This keeps
// ToPieces(FromPieces(n)) == n for every n, including negative ledger deltas.
package unit

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Spec describes a good's unit hierarchy: 1 box = PackPerBox packs,
// 1 pack = PiecePerPack pieces. Both factors are >= 1.
type Spec struct {
	PackPerBox   int64 `db:"pack_per_box" json:"packPerBox"`
	PiecePerPack int64 `db:"piece_per_pack" json:"piecePerPack"`
}

// Valid reports whether both radix factors are at least 1.
func (s Spec) Valid() bool {
	return s.PackPerBox >= 1 && s.PiecePerPack >= 1
}

// PiecesPerBox returns the number of pieces in one box.
func (s Spec) PiecesPerBox() int64 {
	return s.PackPerBox * s.PiecePerPack
}

// Qty is a quantity in box/pack/piece form. Components may individually be
// negative or out of range when the value represents a raw signed delta;
// Normalize brings sub-units into canonical range without changing the total.
type Qty struct {
	Box   int64 `db:"box_qty" json:"boxQty"`
	Pack  int64 `db:"pack_qty" json:"packQty"`
	Piece int64 `db:"piece_qty" json:"pieceQty"`
}

// Add returns q + o column-wise.
func (q Qty) Add(o Qty) Qty {
	return Qty{Box: q.Box + o.Box, Pack: q.Pack + o.Pack, Piece: q.Piece + o.Piece}
}

// Sub returns q - o column-wise.
func (q Qty) Sub(o Qty) Qty {
	return Qty{Box: q.Box - o.Box, Pack: q.Pack - o.Pack, Piece: q.Piece - o.Piece}
}

// IsZero reports whether all components are zero.
func (q Qty) IsZero() bool {
	return q.Box == 0 && q.Pack == 0 && q.Piece == 0
}

// String formats the quantity for user-facing validation messages.
func (q Qty) String() string {
	return fmt.Sprintf("%d box %d pack %d piece", q.Box, q.Pack, q.Piece)
}

// ToPieces flattens q to a single piece count. Works for negative components
// (signed deltas).
func ToPieces(q Qty, s Spec) int64 {
	return q.Box*s.PiecesPerBox() + q.Pack*s.PiecePerPack + q.Piece
}

// FromPieces decomposes a flattened piece count into canonical box/pack/piece
// form. Negative totals decompose with floored division: the box component
// absorbs the sign and sub-units stay in [0, radix).
func FromPieces(total int64, s Spec) Qty {
	perBox := s.PiecesPerBox()
	box := floorDiv(total, perBox)
	rem := total - box*perBox
	return Qty{
		Box:   box,
		Pack:  rem / s.PiecePerPack,
		Piece: rem % s.PiecePerPack,
	}
}

// Normalize carries overflowing sub-units up and borrows deficits down so that
// 0 <= Piece < PiecePerPack and 0 <= Pack < PackPerBox. The box component
// keeps the sign of the overall total. Normalization never changes
// ToPieces(q, s).
func Normalize(q Qty, s Spec) Qty {
	pack := q.Pack + floorDiv(q.Piece, s.PiecePerPack)
	piece := floorMod(q.Piece, s.PiecePerPack)
	box := q.Box + floorDiv(pack, s.PackPerBox)
	pack = floorMod(pack, s.PackPerBox)
	return Qty{Box: box, Pack: pack, Piece: piece}
}

// BoxEquivalent returns the fractional box-unit equivalent of q. Used for
// cost weighting, where continuous units are wanted instead of the discrete
// display decomposition.
func BoxEquivalent(q Qty, s Spec) decimal.Decimal {
	pieces := decimal.NewFromInt(ToPieces(q, s))
	return pieces.Div(decimal.NewFromInt(s.PiecesPerBox()))
}

// floorDiv is integer division rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	d := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		d--
	}
	return d
}

// floorMod is the remainder paired with floorDiv; result has the divisor's sign.
func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
