package raster

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-hyp3/gdal"
)

// NormalizeCRS brings every tile into the majority UTM zone. Tiles already
// in the canonical zone are untouched; the rest are reprojected with gdalwarp
// and the originals replaced. The returned tiles keep their paths, and the
// canonical CRS is reported for logging.
func NormalizeCRS(ctx context.Context, tk *gdal.Toolkit, tiles []Tile, logger *slog.Logger) ([]Tile, CRS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(tiles) == 0 {
		return tiles, CRS{}, nil
	}

	systems := make([]CRS, len(tiles))
	codes := make([]int, len(tiles))
	for i, tile := range tiles {
		crs, err := TileCRS(ctx, tk, tile)
		if err != nil {
			return nil, CRS{}, err
		}
		systems[i] = crs
		codes[i] = crs.EPSG
	}

	majority, err := MajorityEPSG(codes)
	if err != nil {
		return nil, CRS{}, err
	}

	var canonical CRS
	for _, crs := range systems {
		if crs.EPSG == majority {
			canonical = crs
			break
		}
	}
	logger.Info("canonical coordinate system", "epsg", majority, "zone", canonical.Zone, "hemisphere", canonical.Hemisphere)

	for i, tile := range tiles {
		if systems[i].EPSG == majority {
			continue
		}
		logger.Info("reprojecting tile",
			"tile", tile.Path,
			"from", systems[i].EPSG,
			"to", majority,
		)
		if err := reprojectInPlace(ctx, tk, tile.Path, canonical); err != nil {
			return nil, CRS{}, err
		}
	}

	return tiles, canonical, nil
}

// reprojectInPlace warps the raster into the target CRS and replaces the
// original file, keeping its name stable for the later grouping steps.
func reprojectInPlace(ctx context.Context, tk *gdal.Toolkit, path string, target CRS) error {
	tmp := path + ".warp.tif"
	if err := tk.Warp(ctx, path, tmp, target.String()); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("raster: remove original %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("raster: replace %s: %w", path, err)
	}
	return nil
}
