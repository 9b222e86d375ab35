package bots

import (
	"github.com/notnil/chess"
)

// seventyFiveMoveClock is the half-move clock at which the game is drawn
// without a claim.
const seventyFiveMoveClock = 150

// gameOver reports how pos ends the game, or chess.NoMethod. It covers every
// automatic ending chess.Game applies that can be read off a single position;
// fivefold repetition needs the move history and is left to chess.Game.
func gameOver(pos *chess.Position) chess.Method {
	if method := pos.Status(); method != chess.NoMethod {
		return method
	}
	if pos.HalfMoveClock() >= seventyFiveMoveClock {
		return chess.SeventyFiveMoveRule
	}
	if !sufficientMaterial(pos.Board()) {
		return chess.InsufficientMaterial
	}
	return chess.NoMethod
}

// sufficientMaterial follows chess.Game: bare kings, a lone minor piece, or
// bishops only that all stand on one square colour cannot mate.
func sufficientMaterial(board *chess.Board) bool {
	squares := board.SquareMap()
	counts := map[chess.PieceType]int{}
	for _, p := range squares {
		switch p.Type() {
		case chess.Queen, chess.Rook, chess.Pawn:
			return true
		}
		counts[p.Type()]++
	}

	bishops, knights := counts[chess.Bishop], counts[chess.Knight]
	switch {
	case bishops == 0 && knights == 0:
		return false
	case bishops+knights == 1:
		return false
	case knights > 0:
		return true
	}

	var light, dark int
	for sq, p := range squares {
		if p.Type() != chess.Bishop {
			continue
		}
		if (int(sq.File())+int(sq.Rank()))%2 == 0 {
			dark++
		} else {
			light++
		}
	}
	return light > 0 && dark > 0
}
