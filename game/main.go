package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"chessminimax/bots"
	"chessminimax/config"
	"chessminimax/logging"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/notnil/chess"
)

var (
	screenWidth  int
	screenHeight int
	squareSize   int

	lightSquare = color.RGBA{240, 217, 181, 255}
	darkSquare  = color.RGBA{181, 136, 99, 255}
)

type Game struct {
	chessGame    *chess.Game
	selected     chess.Square
	dragging     *chess.Piece
	dragX, dragY int
	playerColor  chess.Color
	gameStarted  bool
	botThinking  bool
	boardOffsetX int
	boardOffsetY int
	bots         map[bots.Kind]bots.ChessBot
	currentKind  bots.Kind
	botMutex     sync.Mutex
	logger       *slog.Logger
}

func NewGame(cfg *config.Config, logger *slog.Logger) (*Game, error) {
	screenWidth, screenHeight = ebiten.ScreenSizeInFullscreen()

	// leave room for the status line above the board
	boardHeight := screenHeight - 80
	squareSize = boardHeight / 8
	if screenWidth/8 < squareSize {
		squareSize = screenWidth / 8
	}

	boardWidth := squareSize * 8
	g := &Game{
		bots:         make(map[bots.Kind]bots.ChessBot),
		boardOffsetX: (screenWidth - boardWidth) / 2,
		boardOffsetY: (screenHeight - boardHeight) / 2,
		logger:       logger,
	}

	for _, kind := range bots.Kinds {
		bot, err := bots.New(kind, bots.Options{
			Depth:     cfg.Engine.Depth,
			Reference: cfg.Engine.Reference,
			KingValue: cfg.Engine.KingValue,
			Seed:      cfg.Engine.Seed,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		g.bots[kind] = bot
	}

	kind, err := bots.ParseKind(cfg.Engine.Strategy)
	if err != nil {
		return nil, err
	}
	g.currentKind = kind
	return g, nil
}

func (g *Game) Update() error {
	if !g.gameStarted {
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			x, y := ebiten.CursorPosition()
			btnWidth := 200
			btnHeight := 60
			btnY := screenHeight/2 + 100

			if y > btnY && y < btnY+btnHeight {
				if x > screenWidth/2-btnWidth-20 && x < screenWidth/2-20 {
					g.startGame(chess.White)
				} else if x > screenWidth/2+20 && x < screenWidth/2+20+btnWidth {
					g.startGame(chess.Black)
				}
			}
		}
		return nil
	}

	g.botMutex.Lock()
	defer g.botMutex.Unlock()

	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.currentKind = bots.Kinds[(int(g.currentKind)+1)%len(bots.Kinds)]
		g.logger.Info("switched bot", "strategy", g.currentKind.String())
	}

	if g.botThinking || g.chessGame.Outcome() != chess.NoOutcome || g.chessGame.Position().Turn() != g.playerColor {
		return nil
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if sq, ok := g.squareAtCursor(); ok {
			piece := g.chessGame.Position().Board().Piece(sq)
			if piece != chess.NoPiece && piece.Color() == g.playerColor {
				g.selected = sq
				g.dragging = &piece
			}
		}
	}
	if g.dragging != nil {
		g.dragX, g.dragY = ebiten.CursorPosition()
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && g.dragging != nil {
		if target, ok := g.squareAtCursor(); ok {
			if move := findMove(g.chessGame, g.selected, target); move != nil {
				if err := g.chessGame.Move(move); err != nil {
					g.logger.Warn("player move rejected", "move", move.String(), "err", err)
				} else if g.chessGame.Outcome() == chess.NoOutcome {
					g.botThinking = true
					go g.makeBotMove()
				}
			}
		}
		g.selected = 0
		g.dragging = nil
	}
	return nil
}

func (g *Game) squareAtCursor() (chess.Square, bool) {
	x, y := ebiten.CursorPosition()
	x -= g.boardOffsetX
	y -= g.boardOffsetY
	if x < 0 || x >= squareSize*8 || y < 0 || y >= squareSize*8 {
		return 0, false
	}
	file := x / squareSize
	rank := 7 - y/squareSize
	if g.playerColor == chess.Black {
		file, rank = 7-file, 7-rank
	}
	return chess.NewSquare(chess.File(file), chess.Rank(rank)), true
}

func (g *Game) startGame(playerColor chess.Color) {
	g.botMutex.Lock()
	defer g.botMutex.Unlock()

	g.playerColor = playerColor
	g.chessGame = chess.NewGame()
	g.gameStarted = true
	if playerColor == chess.Black {
		g.botThinking = true
		go func() {
			time.Sleep(500 * time.Millisecond)
			g.makeBotMove()
		}()
	}
}

func (g *Game) makeBotMove() {
	g.botMutex.Lock()
	bot := g.bots[g.currentKind]
	kind := g.currentKind
	pos := g.chessGame.Position()
	g.botMutex.Unlock()

	res, err := bot.Search(context.Background(), pos, bots.Limits{})

	g.botMutex.Lock()
	defer g.botMutex.Unlock()
	g.botThinking = false
	if err != nil {
		g.logger.Error("bot search failed", "strategy", kind.String(), "err", err)
		return
	}
	if err := g.chessGame.Move(res.Move); err != nil {
		g.logger.Error("bot move rejected", "strategy", kind.String(), "move", res.Move.String(), "err", err)
		return
	}
	g.logger.Info("bot moved", "strategy", kind.String(), "move", res.Move.String(), "score", res.Score)
}

func findMove(game *chess.Game, from, to chess.Square) *chess.Move {
	var promotion *chess.Move
	for _, m := range game.ValidMoves() {
		if m.S1() != from || m.S2() != to {
			continue
		}
		// always promote to a queen
		if m.Promo() == chess.NoPieceType || m.Promo() == chess.Queen {
			return m
		}
		promotion = m
	}
	return promotion
}

func (g *Game) Draw(screen *ebiten.Image) {
	if !g.gameStarted {
		g.drawMenu(screen)
		return
	}

	g.botMutex.Lock()
	defer g.botMutex.Unlock()

	board := g.chessGame.Position().Board()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			file, rank := x, 7-y
			if g.playerColor == chess.Black {
				file, rank = 7-x, y
			}
			clr := lightSquare
			if (file+rank)%2 == 0 {
				clr = darkSquare
			}
			px := float32(x*squareSize + g.boardOffsetX)
			py := float32(y*squareSize + g.boardOffsetY)
			drawRect(screen, px, py, float32(squareSize), clr)

			sq := chess.NewSquare(chess.File(file), chess.Rank(rank))
			piece := board.Piece(sq)
			if piece != chess.NoPiece && (g.dragging == nil || sq != g.selected) {
				ebitenutil.DebugPrintAt(screen, pieceLabel(piece), int(px)+squareSize/2-3, int(py)+squareSize/2-8)
			}
		}
	}

	if g.dragging != nil {
		ebitenutil.DebugPrintAt(screen, pieceLabel(*g.dragging), g.dragX-3, g.dragY-8)
	}

	status := "Your move"
	if g.botThinking {
		status = "Bot is thinking..."
	} else if g.chessGame.Position().Turn() != g.playerColor {
		status = "Bot to move"
	}
	ebitenutil.DebugPrintAt(screen, status, 20, 20)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Bot: %s (B to switch)", g.currentKind), screenWidth-240, 20)

	if outcome := g.chessGame.Outcome(); outcome != chess.NoOutcome {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Result: %s (%s)", outcome, g.chessGame.Method()), screenWidth/2-60, 20)
	}
}

func (g *Game) drawMenu(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, "Chess on Go", screenWidth/2-40, screenHeight/2-50)
	ebitenutil.DebugPrintAt(screen, "Choose your colour:", screenWidth/2-60, screenHeight/2)

	drawRect(screen, float32(screenWidth/2-220), float32(screenHeight/2+100), 200, color.RGBA{200, 200, 200, 255})
	ebitenutil.DebugPrintAt(screen, "Play white", screenWidth/2-160, screenHeight/2+120)

	drawRect(screen, float32(screenWidth/2+20), float32(screenHeight/2+100), 200, color.RGBA{50, 50, 50, 255})
	ebitenutil.DebugPrintAt(screen, "Play black", screenWidth/2+80, screenHeight/2+120)
}

func drawRect(dst *ebiten.Image, x, y, size float32, clr color.Color) {
	img := ebiten.NewImage(int(size), int(size))
	img.Fill(clr)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	dst.DrawImage(img, op)
}

// pieceLabel is the FEN letter: upper case for White.
func pieceLabel(p chess.Piece) string {
	label := p.Type().String()
	if p.Color() == chess.White {
		return strings.ToUpper(label)
	}
	return label
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(os.Stderr, cfg.Logs)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	game, err := NewGame(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Chess on Go")
	ebiten.SetWindowResizable(true)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
