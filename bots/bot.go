// bot.go
package bots

import (
	"context"
	"errors"
	"time"

	"github.com/notnil/chess"
)

var (
	ErrNegativeDepth   = errors.New("bots: negative search depth")
	ErrNoLegalMoves    = errors.New("bots: no legal moves")
	ErrNilPosition     = errors.New("bots: nil position")
	ErrUnknownStrategy = errors.New("bots: unknown strategy")
)

// ChessBot is implemented by every strategy. Search is called once per turn.
type ChessBot interface {
	Search(ctx context.Context, pos *chess.Position, limits Limits) (PlayResult, error)
}

// Limits carries what the calling protocol supplies with a move request.
// None of it changes how a bot searches.
type Limits struct {
	TimeLimit   time.Duration
	Ponder      bool
	DrawOffered bool
}

// PlayResult is a bot's answer for one turn. Ponder is always nil.
type PlayResult struct {
	Move   *chess.Move
	Ponder *chess.Move
	Score  float64
}

// PositionEvaluator scores a position from White's point of view.
type PositionEvaluator interface {
	Evaluate(pos *chess.Position) float64
}

func legalMoves(pos *chess.Position) ([]*chess.Move, error) {
	if pos == nil {
		return nil, ErrNilPosition
	}
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoLegalMoves
	}
	return moves, nil
}
