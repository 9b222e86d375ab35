package bots

import (
	"fmt"
	"log/slog"
	"strings"
)

// Kind selects a strategy.
type Kind int

const (
	KindMinimax Kind = iota
	KindRandom
	KindAlphabetical
	KindFirstMove
)

var kindNames = map[Kind]string{
	KindMinimax:      "minimax",
	KindRandom:       "random",
	KindAlphabetical: "alphabetical",
	KindFirstMove:    "firstmove",
}

// Kinds lists every strategy in a fixed order.
var Kinds = []Kind{KindMinimax, KindRandom, KindAlphabetical, KindFirstMove}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Options configures New. Only the minimax strategy reads Depth, Reference
// and KingValue; only the random strategy reads Seed.
type Options struct {
	Depth     int
	Reference bool
	KingValue float64
	Seed      int64
	Logger    *slog.Logger
}

func New(kind Kind, opts Options) (ChessBot, error) {
	switch kind {
	case KindMinimax:
		if opts.Depth < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeDepth, opts.Depth)
		}
		var bot *MinimaxBot
		if opts.Reference {
			bot = NewReferenceMinimaxBot(opts.Depth)
		} else {
			bot = NewMinimaxBot(opts.Depth)
			bot.Evaluator = MaterialEvaluator{KingValue: opts.KingValue}
		}
		bot.Logger = opts.Logger
		return bot, nil
	case KindRandom:
		return NewRandomBot(opts.Seed), nil
	case KindAlphabetical:
		return NewAlphabeticalBot(), nil
	case KindFirstMove:
		return NewFirstMoveBot(), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, kind)
	}
}
