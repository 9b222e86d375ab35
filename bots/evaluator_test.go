package bots

import (
	"testing"

	"github.com/notnil/chess"
)

func mustPosition(t *testing.T, fen string) *chess.Position {
	t.Helper()
	pos := &chess.Position{}
	if err := pos.UnmarshalText([]byte(fen)); err != nil {
		t.Fatalf("parse fen %q: %v", fen, err)
	}
	return pos
}

// mirror swaps the colour of every piece and flips the board vertically.
func mirror(board *chess.Board) *chess.Board {
	m := make(map[chess.Square]chess.Piece)
	for sq, p := range board.SquareMap() {
		flipped := chess.NewSquare(sq.File(), chess.Rank(7-int(sq.Rank())))
		m[flipped] = chess.NewPiece(p.Type(), p.Color().Other())
	}
	return chess.NewBoard(m)
}

func TestEvaluateStartingPositionIsZero(t *testing.T) {
	for _, king := range []float64{0, ReferenceKingValue} {
		e := MaterialEvaluator{KingValue: king}
		if got := e.Evaluate(chess.StartingPosition()); got != 0 {
			t.Fatalf("king=%v: Evaluate(start) = %v, want 0", king, got)
		}
	}
}

func TestEvaluatePieceTable(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want float64
	}{
		{"white pawn", "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", 1},
		{"white knight", "4k3/8/8/8/8/8/8/1N2K3 w - - 0 1", 3},
		{"black bishop", "2b1k3/8/8/8/8/8/8/4K3 w - - 0 1", -3.25},
		{"white rook", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", 5},
		{"black queen", "3qk3/8/8/8/8/8/8/4K3 b - - 0 1", -9},
		{"mixed", "r3k3/8/8/8/8/8/8/1NBQK3 w - - 0 1", 3 + 3.25 + 9 - 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaterialEvaluator{}.Evaluate(mustPosition(t, tt.fen))
			if got != tt.want {
				t.Fatalf("Evaluate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateKingValue(t *testing.T) {
	// Lone white king against a black king and pawn.
	pos := mustPosition(t, "4k3/4p3/8/8/8/8/8/4K3 w - - 0 1")
	if got := (MaterialEvaluator{}).Evaluate(pos); got != -1 {
		t.Fatalf("Evaluate = %v, want -1", got)
	}
	if got := (MaterialEvaluator{KingValue: ReferenceKingValue}).Evaluate(pos); got != -1 {
		t.Fatalf("kings should cancel, got %v", got)
	}
}

func TestEvaluateIgnoresSideToMove(t *testing.T) {
	white := mustPosition(t, "r3k3/8/8/8/8/8/8/1NBQK3 w - - 0 1")
	black := mustPosition(t, "r3k3/8/8/8/8/8/8/1NBQK3 b - - 0 1")
	e := MaterialEvaluator{}
	if e.Evaluate(white) != e.Evaluate(black) {
		t.Fatalf("score depends on side to move: %v vs %v", e.Evaluate(white), e.Evaluate(black))
	}
}

func TestEvaluateMirrorIsNegated(t *testing.T) {
	fens := []string{
		"r3k3/8/8/8/8/8/8/1NBQK3 w - - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2",
		"4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1",
		"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1",
	}
	for _, king := range []float64{0, ReferenceKingValue} {
		e := MaterialEvaluator{KingValue: king}
		for _, fen := range fens {
			board := mustPosition(t, fen).Board()
			got, want := e.evaluateBoard(mirror(board)), -e.evaluateBoard(board)
			if got != want {
				t.Errorf("king=%v %s: mirror = %v, want %v", king, fen, got, want)
			}
		}
	}
}
