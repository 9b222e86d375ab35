package bots

import (
	"github.com/notnil/chess"
)

// ReferenceKingValue is the king weight of the first material table.
// Kings are never captured, so it cancels out in every legal position.
const ReferenceKingValue = 3

// MaterialEvaluator sums fixed piece values, positive for White and negative
// for Black. It ignores the side to move.
type MaterialEvaluator struct {
	KingValue float64
}

func (e MaterialEvaluator) Evaluate(pos *chess.Position) float64 {
	return e.evaluateBoard(pos.Board())
}

func (e MaterialEvaluator) evaluateBoard(board *chess.Board) float64 {
	var score float64
	for _, piece := range board.SquareMap() {
		value := e.pieceValue(piece.Type())
		if piece.Color() == chess.White {
			score += value
		} else {
			score -= value
		}
	}
	return score
}

func (e MaterialEvaluator) pieceValue(p chess.PieceType) float64 {
	switch p {
	case chess.Pawn:
		return 1
	case chess.Knight:
		return 3
	case chess.Bishop:
		return 3.25
	case chess.Rook:
		return 5
	case chess.Queen:
		return 9
	case chess.King:
		return e.KingValue
	default:
		return 0
	}
}
