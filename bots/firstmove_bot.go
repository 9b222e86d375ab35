package bots

import (
	"context"
	"sort"

	"github.com/notnil/chess"
)

// FirstMoveBot plays the legal move whose UCI text sorts first.
type FirstMoveBot struct{}

func NewFirstMoveBot() *FirstMoveBot {
	return &FirstMoveBot{}
}

func (b *FirstMoveBot) Search(_ context.Context, pos *chess.Position, _ Limits) (PlayResult, error) {
	moves, err := legalMoves(pos)
	if err != nil {
		return PlayResult{}, err
	}
	return PlayResult{Move: firstBy(moves, func(m *chess.Move) string {
		return chess.UCINotation{}.Encode(pos, m)
	})}, nil
}

// AlphabeticalBot plays the legal move whose SAN sorts first.
type AlphabeticalBot struct{}

func NewAlphabeticalBot() *AlphabeticalBot {
	return &AlphabeticalBot{}
}

func (b *AlphabeticalBot) Search(_ context.Context, pos *chess.Position, _ Limits) (PlayResult, error) {
	moves, err := legalMoves(pos)
	if err != nil {
		return PlayResult{}, err
	}
	return PlayResult{Move: firstBy(moves, func(m *chess.Move) string {
		return chess.AlgebraicNotation{}.Encode(pos, m)
	})}, nil
}

func firstBy(moves []*chess.Move, key func(*chess.Move) string) *chess.Move {
	sorted := make([]*chess.Move, len(moves))
	copy(sorted, moves)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) < key(sorted[j])
	})
	return sorted[0]
}
