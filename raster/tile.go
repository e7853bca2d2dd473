// Package raster post-processes extracted RTC GeoTIFF tiles: coordinate
// system normalization, same-date mosaicking, and final layout. All raster
// work is delegated to the GDAL tools; this package owns the bookkeeping.
package raster

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Polarization identifies the SAR transmit/receive polarization of a tile.
type Polarization string

const (
	PolarizationVV Polarization = "VV"
	PolarizationVH Polarization = "VH"
	PolarizationHH Polarization = "HH"
	PolarizationHV Polarization = "HV"
)

var polarizations = map[string]Polarization{
	"VV": PolarizationVV,
	"VH": PolarizationVH,
	"HH": PolarizationHH,
	"HV": PolarizationHV,
}

// ErrTileName indicates a filename that does not follow the RTC naming
// convention.
var ErrTileName = errors.New("raster: unrecognized tile name")

var tileDateToken = regexp.MustCompile(`^(\d{8})(T\d{6})?$`)

// Tile is one extracted raster with its filename metadata parsed up front.
// Later steps work from these fields instead of re-splitting the name.
type Tile struct {
	Path         string
	Granule      string
	Date         time.Time
	Polarization Polarization
}

// DateKey returns the acquisition date in YYYYMMDD form.
func (t Tile) DateKey() string {
	return t.Date.Format("20060102")
}

// ParseTile reads acquisition date and polarization out of a tile filename.
// GAMMA products separate tokens with underscores and S1TBX products with
// dashes; both carry the polarization as the final token before the
// extension and a 8-digit (optionally timestamped) date token earlier in the
// name.
func ParseTile(path string) (Tile, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	tokens := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-'
	})
	if len(tokens) < 2 {
		return Tile{}, fmt.Errorf("%w: %q", ErrTileName, base)
	}

	pol, ok := polarizations[strings.ToUpper(tokens[len(tokens)-1])]
	if !ok {
		return Tile{}, fmt.Errorf("%w: %q has no polarization suffix", ErrTileName, base)
	}

	var date time.Time
	for _, token := range tokens {
		m := tileDateToken.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		parsed, err := time.Parse("20060102", m[1])
		if err != nil {
			continue
		}
		date = parsed
		break
	}
	if date.IsZero() {
		return Tile{}, fmt.Errorf("%w: %q has no acquisition date token", ErrTileName, base)
	}

	return Tile{
		Path:         path,
		Granule:      tokens[0],
		Date:         date,
		Polarization: pol,
	}, nil
}

// Ingest scans a products directory laid out as <dir>/<product>/<tile>.tif
// and parses every tile found. Files that do not parse are reported, not
// silently mis-grouped.
func Ingest(productsDir string) ([]Tile, error) {
	matches, err := filepath.Glob(filepath.Join(productsDir, "*", "*.tif"))
	if err != nil {
		return nil, fmt.Errorf("raster: scan %s: %w", productsDir, err)
	}
	sort.Strings(matches)

	tiles := make([]Tile, 0, len(matches))
	for _, match := range matches {
		tile, err := ParseTile(match)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, tile)
	}
	return tiles, nil
}

// AvailablePolarizations returns the distinct polarizations present, sorted.
func AvailablePolarizations(tiles []Tile) []Polarization {
	seen := make(map[Polarization]struct{})
	for _, tile := range tiles {
		seen[tile.Polarization] = struct{}{}
	}
	out := make([]Polarization, 0, len(seen))
	for pol := range seen {
		out = append(out, pol)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FilterPolarizations keeps tiles in any of the given polarizations. An
// empty filter keeps everything.
func FilterPolarizations(tiles []Tile, pols ...Polarization) []Tile {
	if len(pols) == 0 {
		return tiles
	}
	keep := make(map[Polarization]struct{}, len(pols))
	for _, pol := range pols {
		keep[pol] = struct{}{}
	}
	var filtered []Tile
	for _, tile := range tiles {
		if _, ok := keep[tile.Polarization]; ok {
			filtered = append(filtered, tile)
		}
	}
	return filtered
}
