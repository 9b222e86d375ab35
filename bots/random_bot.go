package bots

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/notnil/chess"
)

type RandomBot struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomBot seeds the bot; a zero seed picks one from the clock.
func NewRandomBot(seed int64) *RandomBot {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomBot{rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBot) Search(_ context.Context, pos *chess.Position, _ Limits) (PlayResult, error) {
	moves, err := legalMoves(pos)
	if err != nil {
		return PlayResult{}, err
	}
	b.mu.Lock()
	i := b.rng.Intn(len(moves))
	b.mu.Unlock()
	return PlayResult{Move: moves[i]}, nil
}
