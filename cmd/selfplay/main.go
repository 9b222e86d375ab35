package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chessminimax/bots"
	"chessminimax/config"
	"chessminimax/logging"
	"chessminimax/selfplay"
)

func main() {
	games := flag.Int("games", 0, "number of games (overrides SELFPLAY_GAMES)")
	out := flag.String("out", "", "output directory (overrides SELFPLAY_OUT)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *games > 0 {
		cfg.SelfPlay.Games = *games
	}
	if *out != "" {
		cfg.SelfPlay.OutDir = *out
	}

	logger, err := logging.New(os.Stderr, cfg.Logs)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	white, err := newPlayer(cfg, cfg.Engine.Strategy, cfg.Engine.Seed)
	if err != nil {
		log.Fatalf("white: %v", err)
	}
	opponent := cfg.SelfPlay.Opponent
	if opponent == "" {
		opponent = cfg.Engine.Strategy
	}
	// different seeds so two random bots do not mirror each other
	black, err := newPlayer(cfg, opponent, cfg.Engine.Seed+1)
	if err != nil {
		log.Fatalf("black: %v", err)
	}
	logger.Info("starting self-play",
		"games", cfg.SelfPlay.Games,
		"white", white.Name,
		"black", black.Name,
		"depth", cfg.Engine.Depth,
		"reference", cfg.Engine.Reference,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rows []selfplay.Row
	score := map[string]int{}
	for i := 0; i < cfg.SelfPlay.Games; i++ {
		g, err := selfplay.Play(ctx, white, black, selfplay.Options{
			FEN:      cfg.SelfPlay.FEN,
			MaxPlies: cfg.SelfPlay.MaxPlies,
			Logger:   logger,
		})
		if err != nil {
			logger.Error("game failed", "game", i, "err", err)
			break
		}
		score[g.Outcome.String()]++
		rows = append(rows, g.Rows...)
	}

	if len(rows) == 0 {
		logger.Warn("no plies recorded")
		return
	}
	path, err := selfplay.WriteBatch(cfg.SelfPlay.OutDir, rows)
	if err != nil {
		log.Fatalf("write batch: %v", err)
	}
	logger.Info("wrote self-play batch", "path", path, "rows", len(rows), "results", score)
}

func newPlayer(cfg *config.Config, strategy string, seed int64) (selfplay.Player, error) {
	kind, err := bots.ParseKind(strategy)
	if err != nil {
		return selfplay.Player{}, err
	}
	bot, err := bots.New(kind, bots.Options{
		Depth:     cfg.Engine.Depth,
		Reference: cfg.Engine.Reference,
		KingValue: cfg.Engine.KingValue,
		Seed:      seed,
	})
	if err != nil {
		return selfplay.Player{}, err
	}
	return selfplay.Player{Name: kind.String(), Bot: bot}, nil
}
