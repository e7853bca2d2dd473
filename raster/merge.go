package raster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// MergeByDate mosaics tiles that share an acquisition date and polarization.
// Adjacent satellite frames processed separately produce one tile each for
// the same date; after this step every (date, polarization) pair maps to
// exactly one tile. Groups of one pass through untouched, so re-running on
// merged output is a no-op.
func MergeByDate(ctx context.Context, tk Merger, tiles []Tile, logger *slog.Logger) ([]Tile, error) {
	if logger == nil {
		logger = slog.Default()
	}

	type groupKey struct {
		date string
		pol  Polarization
	}
	groups := make(map[groupKey][]Tile)
	for _, tile := range tiles {
		key := groupKey{date: tile.DateKey(), pol: tile.Polarization}
		groups[key] = append(groups[key], tile)
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].pol < keys[j].pol
	})

	var out []Tile
	for _, key := range keys {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}

		sort.Slice(group, func(i, j int) bool { return group[i].Path < group[j].Path })

		dest := filepath.Join(filepath.Dir(group[0].Path), fmt.Sprintf("%s_%s.tif", key.date, key.pol))
		srcs := make([]string, len(group))
		for i, tile := range group {
			srcs[i] = tile.Path
		}

		logger.Info("merging duplicate-date tiles", "date", key.date, "polarization", key.pol, "count", len(group))
		if err := tk.Merge(ctx, dest, srcs...); err != nil {
			return nil, err
		}
		for _, src := range srcs {
			if err := os.Remove(src); err != nil {
				return nil, fmt.Errorf("raster: remove merged input %s: %w", src, err)
			}
		}

		date, _ := time.Parse("20060102", key.date)
		out = append(out, Tile{
			Path:         dest,
			Granule:      group[0].Granule,
			Date:         date,
			Polarization: key.pol,
		})
	}

	return out, nil
}

// Merger mosaics rasters. *gdal.Toolkit satisfies it.
type Merger interface {
	Merge(ctx context.Context, dst string, srcs ...string) error
}

// CheckMerged logs a warning for any (date, polarization) pair still holding
// more than one tile. The merge establishes the invariant procedurally; this
// is the re-check.
func CheckMerged(tiles []Tile, logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.Default()
	}
	counts := make(map[string]int)
	for _, tile := range tiles {
		counts[tile.DateKey()+"_"+string(tile.Polarization)]++
	}
	ok := true
	for key, n := range counts {
		if n > 1 {
			logger.Warn("duplicate tiles remain after merge", "group", key, "count", n)
			ok = false
		}
	}
	return ok
}
