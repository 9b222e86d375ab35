package bots

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/notnil/chess"
)

// MateScore is the score of a checkmate at the root when decisive scoring is
// on. A mate found n plies down scores MateScore-n, so nearer mates win.
// It dwarfs any material balance.
const MateScore = 100000

type MinimaxBot struct {
	Depth     int
	Evaluator PositionEvaluator
	Logger    *slog.Logger

	// FixedRootWhite always maximizes at the root, whoever is to move.
	FixedRootWhite bool
	// MaterialTerminals scores every finished game with the evaluator instead
	// of ±MateScore for checkmate and 0 for draws.
	MaterialTerminals bool
}

func NewMinimaxBot(depth int) *MinimaxBot {
	return &MinimaxBot{
		Depth:     depth,
		Evaluator: MaterialEvaluator{},
	}
}

// NewReferenceMinimaxBot matches the first version of this bot: fixed white root,
// material-only terminals and a king worth three.
func NewReferenceMinimaxBot(depth int) *MinimaxBot {
	return &MinimaxBot{
		Depth:             depth,
		Evaluator:         MaterialEvaluator{KingValue: ReferenceKingValue},
		FixedRootWhite:    true,
		MaterialTerminals: true,
	}
}

func (b *MinimaxBot) Search(ctx context.Context, pos *chess.Position, limits Limits) (PlayResult, error) {
	start := time.Now()
	move, score, nodes, err := b.selectMove(ctx, pos, b.Depth)
	if err != nil {
		return PlayResult{}, err
	}
	b.logger().Debug("search complete",
		"move", move.String(),
		"score", score,
		"depth", b.Depth,
		"nodes", nodes,
		"elapsed", time.Since(start),
		"time_limit", limits.TimeLimit,
		"ponder", limits.Ponder,
		"draw_offered", limits.DrawOffered,
	)
	return PlayResult{Move: move, Score: score}, nil
}

// SelectMove returns the best root move and its score. Every root move is
// followed by a minimax search of the given depth from the opponent's side.
// Ties go to the earliest move in the rules engine's order.
func (b *MinimaxBot) SelectMove(ctx context.Context, pos *chess.Position, depth int) (*chess.Move, float64, error) {
	move, score, _, err := b.selectMove(ctx, pos, depth)
	return move, score, err
}

func (b *MinimaxBot) selectMove(ctx context.Context, pos *chess.Position, depth int) (*chess.Move, float64, int, error) {
	if depth < 0 {
		return nil, 0, 0, fmt.Errorf("%w: %d", ErrNegativeDepth, depth)
	}
	moves, err := legalMoves(pos)
	if err != nil {
		return nil, 0, 0, err
	}

	maximizing := b.FixedRootWhite || pos.Turn() == chess.White
	s := b.newSearch(ctx, depth+1)

	best := scoredMove{move: moves[0], score: worst(maximizing)}
	s.stack[0] = pos
	for _, move := range moves {
		s.stack[1] = pos.Update(move)
		score, err := s.minimax(1, depth, !maximizing)
		if err != nil {
			return nil, 0, s.nodes, err
		}
		if improves(score, best.score, maximizing) {
			best = scoredMove{move, score}
		}
	}
	return best.move, best.score, s.nodes, nil
}

// Minimax scores pos by exploring depth plies, maximizing for White when
// maximizing is true.
func (b *MinimaxBot) Minimax(ctx context.Context, pos *chess.Position, depth int, maximizing bool) (float64, error) {
	if pos == nil {
		return 0, ErrNilPosition
	}
	if depth < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeDepth, depth)
	}
	s := b.newSearch(ctx, depth)
	s.stack[0] = pos
	return s.minimax(0, depth, maximizing)
}

type scoredMove struct {
	move  *chess.Move
	score float64
}

// search holds the state of one top-level call. stack[ply] is the position
// being explored at that ply; siblings overwrite the slot and Update never
// touches its receiver, so branches cannot see each other.
type search struct {
	ctx   context.Context
	bot   *MinimaxBot
	stack []*chess.Position
	nodes int
}

func (b *MinimaxBot) newSearch(ctx context.Context, plies int) *search {
	if ctx == nil {
		ctx = context.Background()
	}
	return &search{
		ctx:   ctx,
		bot:   b,
		stack: make([]*chess.Position, plies+1),
	}
}

func (s *search) minimax(ply, depth int, maximizing bool) (float64, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	s.nodes++

	pos := s.stack[ply]
	if depth == 0 || gameOver(pos) != chess.NoMethod {
		return s.leaf(pos, ply), nil
	}
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return s.leaf(pos, ply), nil
	}

	best := worst(maximizing)
	for _, move := range moves {
		s.stack[ply+1] = pos.Update(move)
		score, err := s.minimax(ply+1, depth-1, !maximizing)
		if err != nil {
			return 0, err
		}
		if improves(score, best, maximizing) {
			best = score
		}
	}
	return best, nil
}

func (s *search) leaf(pos *chess.Position, ply int) float64 {
	if !s.bot.MaterialTerminals {
		switch gameOver(pos) {
		case chess.Checkmate:
			if pos.Turn() == chess.White {
				return -mateIn(ply)
			}
			return mateIn(ply)
		case chess.Stalemate, chess.SeventyFiveMoveRule, chess.InsufficientMaterial:
			return 0
		}
	}
	return s.bot.evaluator().Evaluate(pos)
}

func mateIn(ply int) float64 {
	return float64(MateScore - ply)
}

func (b *MinimaxBot) evaluator() PositionEvaluator {
	if b.Evaluator == nil {
		return MaterialEvaluator{}
	}
	return b.Evaluator
}

func (b *MinimaxBot) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

func worst(maximizing bool) float64 {
	if maximizing {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// improves reports a strict improvement, so the first extremal move is kept.
func improves(score, best float64, maximizing bool) bool {
	if maximizing {
		return score > best
	}
	return score < best
}
