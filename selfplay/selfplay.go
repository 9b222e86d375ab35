package selfplay

import (
	"context"
	"fmt"
	"log/slog"

	"chessminimax/bots"

	"github.com/google/uuid"
	"github.com/notnil/chess"
)

// Player pairs a bot with the strategy name recorded next to its moves.
type Player struct {
	Name string
	Bot  bots.ChessBot
}

type Options struct {
	// FEN to start from; empty means the standard starting position.
	FEN      string
	MaxPlies int
	Logger   *slog.Logger
}

// Game is one finished (or ply-capped) game.
type Game struct {
	ID      string
	Outcome chess.Outcome
	Method  chess.Method
	PGN     string
	Rows    []Row
}

// Play runs white against black until the game ends or MaxPlies is reached.
func Play(ctx context.Context, white, black Player, opts Options) (Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var gameOpts []func(*chess.Game)
	if opts.FEN != "" {
		fen, err := chess.FEN(opts.FEN)
		if err != nil {
			return Game{}, fmt.Errorf("selfplay: %w", err)
		}
		gameOpts = append(gameOpts, fen)
	}
	g := chess.NewGame(gameOpts...)
	id := uuid.NewString()

	var rows []Row
	for ply := 0; g.Outcome() == chess.NoOutcome; ply++ {
		if opts.MaxPlies > 0 && ply >= opts.MaxPlies {
			break
		}
		if err := ctx.Err(); err != nil {
			return Game{}, err
		}

		pos := g.Position()
		player := white
		if pos.Turn() == chess.Black {
			player = black
		}

		res, err := player.Bot.Search(ctx, pos, bots.Limits{})
		if err != nil {
			return Game{}, fmt.Errorf("selfplay: ply %d (%s): %w", ply, player.Name, err)
		}
		row := Row{
			GameID:    id,
			Ply:       int32(ply),
			FENBefore: pos.String(),
			Move:      chess.UCINotation{}.Encode(pos, res.Move),
			SAN:       chess.AlgebraicNotation{}.Encode(pos, res.Move),
			Mover:     pos.Turn().String(),
			Strategy:  player.Name,
			Score:     res.Score,
		}
		if err := g.Move(res.Move); err != nil {
			return Game{}, fmt.Errorf("selfplay: ply %d (%s) played %s: %w", ply, player.Name, row.Move, err)
		}
		rows = append(rows, row)
	}

	outcome, method := g.Outcome(), g.Method()
	for i := range rows {
		rows[i].Outcome = outcome.String()
		rows[i].Method = method.String()
	}
	logger.Info("game finished",
		"id", id,
		"white", white.Name,
		"black", black.Name,
		"plies", len(rows),
		"outcome", outcome.String(),
		"method", method.String(),
	)
	return Game{
		ID:      id,
		Outcome: outcome,
		Method:  method,
		PGN:     g.String(),
		Rows:    rows,
	}, nil
}
