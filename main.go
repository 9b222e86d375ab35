package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chessminimax/bots"
	"chessminimax/config"
	"chessminimax/logging"
	"chessminimax/uci"
)

// UCI engine on stdin/stdout. Logs go to stderr so they never mix with the
// protocol.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(os.Stderr, cfg.Logs)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	kind, err := bots.ParseKind(cfg.Engine.Strategy)
	if err != nil {
		log.Fatalf("strategy: %v", err)
	}
	bot, err := bots.New(kind, bots.Options{
		Depth:     cfg.Engine.Depth,
		Reference: cfg.Engine.Reference,
		KingValue: cfg.Engine.KingValue,
		Seed:      cfg.Engine.Seed,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("strategy: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("uci engine ready", "strategy", kind.String(), "depth", cfg.Engine.Depth, "reference", cfg.Engine.Reference)
	srv := uci.NewServer(bot, os.Stdin, os.Stdout,
		uci.WithName("chessminimax "+kind.String()),
		uci.WithLogger(logger),
	)
	if err := srv.Run(ctx); failed(err) {
		logger.Error("uci loop stopped", "err", err)
		os.Exit(1)
	}
}

// failed reports whether Run ended for a reason other than a signal. A
// cancelled search comes back wrapped, so the check unwraps.
func failed(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}
