package unit

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToPieces(t *testing.T) {
	s := Spec{PackPerBox: 10, PiecePerPack: 5}

	tests := []struct {
		name string
		q    Qty
		want int64
	}{
		{"zero", Qty{}, 0},
		{"one box", Qty{Box: 1}, 50},
		{"mixed", Qty{Box: 2, Pack: 3, Piece: 4}, 119},
		{"negative delta", Qty{Box: -1, Pack: 2, Piece: 1}, -39},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToPieces(tt.q, s); got != tt.want {
				t.Errorf("ToPieces(%v) = %d, want %d", tt.q, got, tt.want)
			}
		})
	}
}

func TestFromPieces_RoundTrip(t *testing.T) {
	specs := []Spec{
		{PackPerBox: 1, PiecePerPack: 1},
		{PackPerBox: 10, PiecePerPack: 5},
		{PackPerBox: 12, PiecePerPack: 24},
		{PackPerBox: 3, PiecePerPack: 7},
	}

	for _, s := range specs {
		for total := int64(-200); total <= 200; total++ {
			q := FromPieces(total, s)
			if got := ToPieces(q, s); got != total {
				t.Fatalf("spec %+v: round trip of %d gave %v (= %d pieces)", s, total, q, got)
			}
			if q.Piece < 0 || q.Piece >= s.PiecePerPack {
				t.Fatalf("spec %+v total %d: piece %d out of range", s, total, q.Piece)
			}
			if q.Pack < 0 || q.Pack >= s.PackPerBox {
				t.Fatalf("spec %+v total %d: pack %d out of range", s, total, q.Pack)
			}
		}
	}
}

func TestFromPieces_FlooredConvention(t *testing.T) {
	s := Spec{PackPerBox: 10, PiecePerPack: 10}

	// -1 piece borrows a full box: -1 box + 9 pack + 9 piece = -100 + 90 + 9 = -1.
	q := FromPieces(-1, s)
	want := Qty{Box: -1, Pack: 9, Piece: 9}
	if q != want {
		t.Errorf("FromPieces(-1) = %v, want %v", q, want)
	}
}

func TestNormalize_PreservesTotal(t *testing.T) {
	s := Spec{PackPerBox: 10, PiecePerPack: 5}

	tests := []Qty{
		{Box: 0, Pack: 0, Piece: 0},
		{Box: 1, Pack: -2, Piece: 3},
		{Box: 2, Pack: 3, Piece: -4},
		{Box: 0, Pack: -1, Piece: -1},
		{Box: 5, Pack: 23, Piece: 17}, // carries up
		{Box: -1, Pack: 0, Piece: 1},
	}

	for _, q := range tests {
		n := Normalize(q, s)
		if ToPieces(n, s) != ToPieces(q, s) {
			t.Errorf("Normalize(%v) = %v changed total: %d != %d",
				q, n, ToPieces(n, s), ToPieces(q, s))
		}
		if n.Piece < 0 || n.Piece >= s.PiecePerPack {
			t.Errorf("Normalize(%v) piece out of range: %v", q, n)
		}
		if n.Pack < 0 || n.Pack >= s.PackPerBox {
			t.Errorf("Normalize(%v) pack out of range: %v", q, n)
		}
	}
}

func TestNormalize_Borrow(t *testing.T) {
	s := Spec{PackPerBox: 10, PiecePerPack: 5}

	// 2 box, 0 pack, -3 piece → borrow one pack: 1 box 9 pack 2 piece.
	got := Normalize(Qty{Box: 2, Pack: 0, Piece: -3}, s)
	want := Qty{Box: 1, Pack: 9, Piece: 2}
	if got != want {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestBoxEquivalent(t *testing.T) {
	s := Spec{PackPerBox: 10, PiecePerPack: 5}

	// 1 box + 5 pack + 25 piece = 1 + 0.5 + 0.5 = 2 boxes.
	got := BoxEquivalent(Qty{Box: 1, Pack: 5, Piece: 25}, s)
	if !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("BoxEquivalent = %s, want 2", got)
	}

	// Fractional result: 3 pack of 10 = 0.3 box.
	got = BoxEquivalent(Qty{Pack: 3}, s)
	if got.String() != "0.3" {
		t.Errorf("BoxEquivalent = %s, want 0.3", got)
	}
}

func TestQtyString(t *testing.T) {
	q := Qty{Box: 2, Pack: 0, Piece: 7}
	if q.String() != "2 box 0 pack 7 piece" {
		t.Errorf("unexpected String: %q", q.String())
	}
}
