package raster

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Finalize moves the surviving tiles into a flat output directory and
// removes the intermediate per-product tree.
func Finalize(tiles []Tile, productsDir, outputDir string, logger *slog.Logger) ([]Tile, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("raster: create output directory: %w", err)
	}

	out := make([]Tile, 0, len(tiles))
	for _, tile := range tiles {
		dest := filepath.Join(outputDir, filepath.Base(tile.Path))
		if err := moveFile(tile.Path, dest); err != nil {
			return nil, fmt.Errorf("raster: move %s: %w", tile.Path, err)
		}
		tile.Path = dest
		out = append(out, tile)
	}

	if productsDir != "" {
		if err := os.RemoveAll(productsDir); err != nil {
			return nil, fmt.Errorf("raster: remove intermediate tree %s: %w", productsDir, err)
		}
	}
	logger.Info("finalized tiles", "count", len(out), "dir", outputDir)
	return out, nil
}

// moveFile renames src to dst, copying across filesystems when rename fails.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
