package raster

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strconv"

	"github.com/example/go-hyp3/gdal"
)

var validPercentRe = regexp.MustCompile(`STATISTICS_VALID_PERCENT=([0-9.]+)`)

// DropBlankTiles removes tiles whose statistics report no valid pixels.
// RTC processing over water or at swath edges can emit tiles that are pure
// nodata; carrying them forward only pollutes the mosaics.
func DropBlankTiles(ctx context.Context, tk *gdal.Toolkit, tiles []Tile, logger *slog.Logger) ([]Tile, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var kept []Tile
	removed := 0
	for _, tile := range tiles {
		report, err := tk.Stats(ctx, tile.Path)
		if err != nil {
			return nil, err
		}
		if isBlank(report) {
			logger.Info("removing blank tile", "tile", tile.Path)
			if err := os.Remove(tile.Path); err != nil {
				return nil, err
			}
			removed++
			continue
		}
		kept = append(kept, tile)
	}
	logger.Info("blank tile scan complete", "examined", len(tiles), "removed", removed)
	return kept, nil
}

// isBlank reports whether a gdalinfo -stats report shows zero valid pixels.
// A report without the statistic keeps the tile.
func isBlank(report string) bool {
	m := validPercentRe.FindStringSubmatch(report)
	if m == nil {
		return false
	}
	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return false
	}
	return percent == 0
}
