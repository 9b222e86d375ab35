package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	// loads a .env file from the working directory, if present
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Logs     LogConfig
	Engine   EngineConfig
	SelfPlay SelfPlayConfig
}

type LogConfig struct {
	Style string // text, json or pretty
	Level string
}

type EngineConfig struct {
	Strategy  string
	Depth     int
	Reference bool // fixed white root, material terminals, king worth 3
	KingValue float64
	Seed      int64
}

type SelfPlayConfig struct {
	Games    int
	MaxPlies int
	OutDir   string
	FEN      string // empty means the standard starting position
	Opponent string // strategy for Black; empty means Engine.Strategy
}

func LoadConfig() (*Config, error) {
	var errs []string
	getInt := func(key string, def int) int {
		v, err := envInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	depth := getInt("ENGINE_DEPTH", 2)
	if depth < 0 {
		errs = append(errs, fmt.Sprintf("ENGINE_DEPTH: must not be negative, got %d", depth))
	}
	reference, err := envBool("ENGINE_REFERENCE_MODE", false)
	if err != nil {
		errs = append(errs, err.Error())
	}
	kingValue, err := envFloat("ENGINE_KING_VALUE", 0)
	if err != nil {
		errs = append(errs, err.Error())
	}
	seed, err := envInt64("ENGINE_SEED", 0)
	if err != nil {
		errs = append(errs, err.Error())
	}
	games := getInt("SELFPLAY_GAMES", 1)
	maxPlies := getInt("SELFPLAY_MAX_PLIES", 200)

	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}

	return &Config{
		Logs: LogConfig{
			Style: envString("LOG_STYLE", "text"),
			Level: envString("LOG_LEVEL", "info"),
		},
		Engine: EngineConfig{
			Strategy:  envString("ENGINE_STRATEGY", "minimax"),
			Depth:     depth,
			Reference: reference,
			KingValue: kingValue,
			Seed:      seed,
		},
		SelfPlay: SelfPlayConfig{
			Games:    games,
			MaxPlies: maxPlies,
			OutDir:   envString("SELFPLAY_OUT", "selfplay/out"),
			FEN:      os.Getenv("SELFPLAY_FEN"),
			Opponent: os.Getenv("SELFPLAY_OPPONENT"),
		},
	}, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envInt64(key string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
