// Package uci speaks UCI over a reader/writer pair and asks a bot for one
// move per "go".
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"chessminimax/bots"

	"github.com/notnil/chess"
)

type Server struct {
	bot    bots.ChessBot
	name   string
	author string
	in     *bufio.Scanner
	out    *bufio.Writer
	logger *slog.Logger
	pos    *chess.Position

	// pending holds a bestmove line for "go infinite" or "go ponder" until
	// the GUI sends "stop" or "ponderhit".
	pending string
}

type Option func(*Server)

func WithName(name string) Option { return func(s *Server) { s.name = name } }

func WithAuthor(author string) Option { return func(s *Server) { s.author = author } }

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

func NewServer(bot bots.ChessBot, in io.Reader, out io.Writer, opts ...Option) *Server {
	s := &Server{
		bot:    bot,
		name:   "chessminimax",
		author: "chessminimax authors",
		in:     bufio.NewScanner(in),
		out:    bufio.NewWriter(out),
		logger: slog.Default(),
		pos:    chess.StartingPosition(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads commands until "quit", EOF or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lines := make(chan string)
	readDone := make(chan error, 1)
	go func() {
		defer close(lines)
		for s.in.Scan() {
			select {
			case lines <- s.in.Text():
			case <-ctx.Done():
				return
			}
		}
		readDone <- s.in.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readDone:
					return err
				default:
					return ctx.Err()
				}
			}
			quit, err := s.handle(ctx, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func (s *Server) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	s.logger.Debug("uci command", "line", line)

	switch fields[0] {
	case "uci":
		return false, s.send(
			"id name "+s.name,
			"id author "+s.author,
			"uciok",
		)
	case "isready":
		return false, s.send("readyok")
	case "ucinewgame":
		s.pos = chess.StartingPosition()
		return false, nil
	case "position":
		pos, err := parsePosition(fields[1:])
		if err != nil {
			s.logger.Warn("bad position command", "line", line, "err", err)
			return false, s.send("info string error " + err.Error())
		}
		s.pos = pos
		return false, nil
	case "go":
		if err := s.flush(); err != nil {
			return false, err
		}
		limits, wait := parseGo(fields[1:], s.pos.Turn())
		return false, s.think(ctx, limits, wait)
	case "stop", "ponderhit":
		// search is synchronous; only a held bestmove can be outstanding
		return false, s.flush()
	case "setoption", "debug", "register":
		return false, nil
	case "quit":
		return true, nil
	default:
		s.logger.Debug("ignoring unknown command", "line", line)
		return false, nil
	}
}

// think runs one search. With wait set the bestmove line is held until
// flush, as UCI forbids answering "go infinite" before "stop".
func (s *Server) think(ctx context.Context, limits bots.Limits, wait bool) error {
	res, err := s.bot.Search(ctx, s.pos, limits)
	best := "bestmove 0000"
	switch {
	case errors.Is(err, bots.ErrNoLegalMoves):
	case err != nil:
		return fmt.Errorf("uci: search: %w", err)
	default:
		best = "bestmove " + chess.UCINotation{}.Encode(s.pos, res.Move)
		if err := s.send("info " + scoreField(res.Score, s.pos.Turn())); err != nil {
			return err
		}
	}

	if wait {
		s.pending = best
		return nil
	}
	return s.send(best)
}

func (s *Server) flush() error {
	if s.pending == "" {
		return nil
	}
	best := s.pending
	s.pending = ""
	return s.send(best)
}

func (s *Server) send(lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(s.out, line); err != nil {
			return err
		}
	}
	return s.out.Flush()
}

// parsePosition handles "startpos [moves ...]" and "fen <fen> [moves ...]".
func parsePosition(args []string) (*chess.Position, error) {
	if len(args) == 0 {
		return nil, errors.New("position: missing startpos or fen")
	}

	var pos *chess.Position
	rest := args[1:]
	switch args[0] {
	case "startpos":
		pos = chess.StartingPosition()
	case "fen":
		end := len(rest)
		for i, a := range rest {
			if a == "moves" {
				end = i
				break
			}
		}
		if end == 0 {
			return nil, errors.New("position: missing fen")
		}
		pos = &chess.Position{}
		if err := pos.UnmarshalText([]byte(strings.Join(rest[:end], " "))); err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		rest = rest[end:]
	default:
		return nil, fmt.Errorf("position: unexpected %q", args[0])
	}

	if len(rest) == 0 {
		return pos, nil
	}
	if rest[0] != "moves" {
		return nil, fmt.Errorf("position: unexpected %q", rest[0])
	}
	for _, text := range rest[1:] {
		m, err := chess.UCINotation{}.Decode(pos, text)
		if err != nil {
			return nil, fmt.Errorf("position: move %s: %w", text, err)
		}
		legal := findMove(pos, m)
		if legal == nil {
			return nil, fmt.Errorf("position: illegal move %s", text)
		}
		pos = pos.Update(legal)
	}
	return pos, nil
}

func findMove(pos *chess.Position, m *chess.Move) *chess.Move {
	for _, v := range pos.ValidMoves() {
		if v.S1() == m.S1() && v.S2() == m.S2() && v.Promo() == m.Promo() {
			return v
		}
	}
	return nil
}

// parseGo turns the clock fields into Limits. The side to move's remaining
// time (or movetime) becomes the advisory TimeLimit. wait is set for
// "infinite" and "ponder", which must not answer before "stop"/"ponderhit".
func parseGo(args []string, turn chess.Color) (limits bots.Limits, wait bool) {
	var clock, moveTime time.Duration
	for i := 0; i < len(args); i++ {
		key := args[i]
		switch key {
		case "ponder":
			limits.Ponder = true
			wait = true
			continue
		case "infinite":
			wait = true
			continue
		}
		if i+1 >= len(args) {
			break
		}
		ms, err := strconv.Atoi(args[i+1])
		if err != nil {
			continue
		}
		i++
		d := time.Duration(ms) * time.Millisecond
		switch {
		case key == "movetime":
			moveTime = d
		case key == "wtime" && turn == chess.White, key == "btime" && turn == chess.Black:
			clock = d
		}
	}
	limits.TimeLimit = clock
	if moveTime > 0 {
		limits.TimeLimit = moveTime
	}
	return limits, wait
}

// mateWindow bounds how far from bots.MateScore a score still reads as a
// forced mate. Searches never get near this many plies.
const mateWindow = 1000

// scoreField renders a White-relative score as UCI "score cp N" or
// "score mate N", both from the side to move's point of view.
func scoreField(score float64, turn chess.Color) string {
	if turn == chess.Black {
		score = -score
	}
	if math.Abs(score) > bots.MateScore-mateWindow {
		plies := bots.MateScore - int(math.Round(math.Abs(score)))
		moves := (plies + 1) / 2
		if score < 0 {
			moves = -moves
		}
		return fmt.Sprintf("score mate %d", moves)
	}
	return fmt.Sprintf("score cp %d", int(math.Round(score*100)))
}
