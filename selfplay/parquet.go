package selfplay

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// Row is one ply of a self-play game. Score is the mover's search score from
// White's point of view; Outcome and Method are the final result of the game.
type Row struct {
	GameID    string  `parquet:"game_id,dict"`
	Ply       int32   `parquet:"ply"`
	FENBefore string  `parquet:"fen_before"`
	Move      string  `parquet:"move"`
	SAN       string  `parquet:"san"`
	Mover     string  `parquet:"mover,dict"`
	Strategy  string  `parquet:"strategy,dict"`
	Score     float64 `parquet:"score"`
	Outcome   string  `parquet:"outcome,dict"`
	Method    string  `parquet:"method,dict"`
}

// WriteParquet writes rows to outPath through a temp file and a rename.
func WriteParquet(outPath string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "selfplay_ply_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// WriteBatch writes rows to a new timestamped file in outDir and returns its path.
func WriteBatch(outDir string, rows []Row) (string, error) {
	name := fmt.Sprintf("selfplay_%d.parquet", time.Now().UnixNano())
	outPath := filepath.Join(outDir, name)
	if err := WriteParquet(outPath, rows); err != nil {
		return "", err
	}
	return outPath, nil
}
