package uci

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chessminimax/bots"

	"github.com/notnil/chess"
)

func runServer(t *testing.T, bot bots.ChessBot, input ...string) string {
	t.Helper()
	var sb strings.Builder
	srv := NewServer(bot, strings.NewReader(strings.Join(input, "\n")+"\n"), &sb, WithName("test engine"))
	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return sb.String()
}

func TestHandshake(t *testing.T) {
	out := runServer(t, bots.NewFirstMoveBot(), "uci", "isready", "quit")
	for _, want := range []string{"id name test engine", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestGoFromStartpos(t *testing.T) {
	out := runServer(t, bots.NewFirstMoveBot(), "position startpos", "go wtime 1000 btime 1000", "quit")
	if !strings.Contains(out, "bestmove a2a3") {
		t.Fatalf("output %q, want bestmove a2a3", out)
	}
}

func TestGoAfterMoves(t *testing.T) {
	out := runServer(t, bots.NewMinimaxBot(0),
		"position fen 4k3/8/8/8/8/8/3R4/4K3 w - - 0 1 moves d2d3 e8f8",
		"isready",
		"position startpos moves e2e4 d7d5",
		"go movetime 100",
		"quit",
	)
	if !strings.Contains(out, "bestmove e4d5") {
		t.Fatalf("output %q, want bestmove e4d5", out)
	}
	if !strings.Contains(out, "info score cp 100") {
		t.Fatalf("output %q, want info score cp 100", out)
	}
}

func TestScoreFromBlackSide(t *testing.T) {
	out := runServer(t, bots.NewMinimaxBot(0),
		"position fen 4k3/8/8/8/3Q4/8/3r4/4K3 b - - 0 1",
		"go",
		"quit",
	)
	if !strings.Contains(out, "info score cp 500") || !strings.Contains(out, "bestmove d2d4") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNoLegalMoves(t *testing.T) {
	out := runServer(t, bots.NewMinimaxBot(1),
		"position fen R5k1/5ppp/8/8/8/8/8/6K1 b - - 1 1",
		"go",
		"quit",
	)
	if !strings.Contains(out, "bestmove 0000") {
		t.Fatalf("output %q, want bestmove 0000", out)
	}
}

func TestBadPositionKeepsPrevious(t *testing.T) {
	out := runServer(t, bots.NewFirstMoveBot(),
		"position startpos moves e2e5",
		"go",
		"quit",
	)
	if !strings.Contains(out, "info string error") {
		t.Fatalf("output %q, want an error line", out)
	}
	if !strings.Contains(out, "bestmove a2a3") {
		t.Fatalf("output %q, want search from the start position", out)
	}
}

func TestUCINewGameResets(t *testing.T) {
	out := runServer(t, bots.NewFirstMoveBot(),
		"position startpos moves e2e4",
		"ucinewgame",
		"go",
		"quit",
	)
	if !strings.Contains(out, "bestmove a2a3") {
		t.Fatalf("output %q, want bestmove a2a3", out)
	}
}

func TestRunStopsAtEOF(t *testing.T) {
	var sb strings.Builder
	srv := NewServer(bots.NewFirstMoveBot(), strings.NewReader("isready\n"), &sb)
	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(sb.String(), "readyok") {
		t.Fatalf("output %q", sb.String())
	}
}

type failingBot struct{}

func (failingBot) Search(context.Context, *chess.Position, bots.Limits) (bots.PlayResult, error) {
	return bots.PlayResult{}, errors.New("engine exploded")
}

func TestSearchErrorEndsRun(t *testing.T) {
	var sb strings.Builder
	srv := NewServer(failingBot{}, strings.NewReader("go\n"), &sb)
	if err := srv.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "engine exploded") {
		t.Fatalf("Run err = %v", err)
	}
}

func TestReportsMate(t *testing.T) {
	out := runServer(t, bots.NewMinimaxBot(0),
		"position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1",
		"go",
		"quit",
	)
	if !strings.Contains(out, "info score mate 1") || !strings.Contains(out, "bestmove a1a8") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Contains(out, "score cp") {
		t.Fatalf("output %q reports a mate in centipawns", out)
	}
}

func TestScoreField(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		turn  chess.Color
		want  string
	}{
		{"white mates in one", bots.MateScore - 1, chess.White, "score mate 1"},
		{"black mates in one", -(bots.MateScore - 1), chess.Black, "score mate 1"},
		{"white mates in two", bots.MateScore - 3, chess.White, "score mate 2"},
		{"white gets mated", -(bots.MateScore - 2), chess.White, "score mate -1"},
		{"black gets mated", bots.MateScore - 4, chess.Black, "score mate -2"},
		{"material for white", 1, chess.White, "score cp 100"},
		{"material seen by black", 3.25, chess.Black, "score cp -325"},
		{"large material edge", 42, chess.White, "score cp 4200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreField(tt.score, tt.turn); got != tt.want {
				t.Fatalf("scoreField(%v, %v) = %q, want %q", tt.score, tt.turn, got, tt.want)
			}
		})
	}
}

func TestInfiniteWaitsForStop(t *testing.T) {
	out := runServer(t, bots.NewFirstMoveBot(),
		"position startpos",
		"go infinite",
		"isready",
		"stop",
		"stop",
		"quit",
	)
	ready := strings.Index(out, "readyok")
	best := strings.Index(out, "bestmove a2a3")
	if ready < 0 || best < 0 || best < ready {
		t.Fatalf("output %q, want bestmove only after stop", out)
	}
	if n := strings.Count(out, "bestmove"); n != 1 {
		t.Fatalf("output %q has %d bestmove lines, want 1", out, n)
	}
}

func TestPonderWaitsForPonderhit(t *testing.T) {
	out := runServer(t, bots.NewFirstMoveBot(), "position startpos", "go ponder", "quit")
	if strings.Contains(out, "bestmove") {
		t.Fatalf("output %q answered a ponder search before ponderhit", out)
	}
	out = runServer(t, bots.NewFirstMoveBot(), "position startpos", "go ponder", "ponderhit", "quit")
	if !strings.Contains(out, "bestmove a2a3") {
		t.Fatalf("output %q, want bestmove after ponderhit", out)
	}
}

func TestCancelledSearchUnwrapsToCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var sb strings.Builder
	srv := NewServer(bots.NewMinimaxBot(2), strings.NewReader(""), &sb)
	err := srv.think(ctx, bots.Limits{}, false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("think err = %v, want context.Canceled", err)
	}
	if strings.Contains(sb.String(), "bestmove") {
		t.Fatalf("output %q after a cancelled search", sb.String())
	}
}

func TestParseGo(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		turn     chess.Color
		want     bots.Limits
		wantWait bool
	}{
		{"white clock", "wtime 3000 btime 5000 winc 0 binc 0", chess.White, bots.Limits{TimeLimit: 3 * time.Second}, false},
		{"black clock", "wtime 3000 btime 5000", chess.Black, bots.Limits{TimeLimit: 5 * time.Second}, false},
		{"movetime wins", "wtime 3000 movetime 200", chess.White, bots.Limits{TimeLimit: 200 * time.Millisecond}, false},
		{"ponder", "ponder wtime 1000", chess.White, bots.Limits{TimeLimit: time.Second, Ponder: true}, true},
		{"infinite", "infinite", chess.White, bots.Limits{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, wait := parseGo(strings.Fields(tt.args), tt.turn)
			if got != tt.want || wait != tt.wantWait {
				t.Fatalf("parseGo = %+v, %v, want %+v, %v", got, wait, tt.want, tt.wantWait)
			}
		})
	}
}
