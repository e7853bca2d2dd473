package raster

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/example/go-hyp3/gdal"
)

// ErrCRSParse indicates coordinate system text that does not describe a
// recognizable UTM zone.
var ErrCRSParse = errors.New("raster: cannot parse coordinate system")

var (
	utmZoneRe  = regexp.MustCompile(`UTM [Zz]one (\d{1,2})\s*([NS])`)
	datumRe    = regexp.MustCompile(`DATUM\["([^"]+)"`)
	epsgAuthRe = regexp.MustCompile(`AUTHORITY\["EPSG",\s*"(\d+)"\]`)
)

// CRS describes the UTM coordinate reference system of a tile.
type CRS struct {
	Zone       int
	Hemisphere string // "N" or "S"
	Datum      string
	EPSG       int
}

// String renders the EPSG identifier GDAL tools accept.
func (c CRS) String() string {
	return fmt.Sprintf("EPSG:%d", c.EPSG)
}

// ParseCRS extracts the UTM zone, hemisphere, and datum from a WKT spatial
// reference by pattern match. The trailing EPSG authority code is preferred
// when present; otherwise the code is derived from zone and datum.
func ParseCRS(wkt string) (CRS, error) {
	zoneMatch := utmZoneRe.FindStringSubmatch(wkt)
	if zoneMatch == nil {
		return CRS{}, fmt.Errorf("%w: no UTM zone in %q", ErrCRSParse, truncate(wkt, 120))
	}
	zone, err := strconv.Atoi(zoneMatch[1])
	if err != nil || zone < 1 || zone > 60 {
		return CRS{}, fmt.Errorf("%w: invalid UTM zone %q", ErrCRSParse, zoneMatch[1])
	}
	hemisphere := zoneMatch[2]

	crs := CRS{Zone: zone, Hemisphere: hemisphere}
	if m := datumRe.FindStringSubmatch(wkt); m != nil {
		crs.Datum = m[1]
	}

	// The last EPSG authority entry in a WKT block identifies the full
	// projected CRS; earlier entries belong to nested nodes.
	if codes := epsgAuthRe.FindAllStringSubmatch(wkt, -1); len(codes) > 0 {
		if code, err := strconv.Atoi(codes[len(codes)-1][1]); err == nil && isProjectedUTM(code) {
			crs.EPSG = code
		}
	}
	if crs.EPSG == 0 {
		crs.EPSG = deriveEPSG(zone, hemisphere, crs.Datum)
	}
	if crs.EPSG == 0 {
		return CRS{}, fmt.Errorf("%w: unknown datum %q for zone %d%s", ErrCRSParse, crs.Datum, zone, hemisphere)
	}
	return crs, nil
}

func isProjectedUTM(code int) bool {
	switch {
	case code >= 32601 && code <= 32660: // WGS 84 north
		return true
	case code >= 32701 && code <= 32760: // WGS 84 south
		return true
	case code >= 26901 && code <= 26923: // NAD83 north
		return true
	}
	return false
}

func deriveEPSG(zone int, hemisphere, datum string) int {
	normalized := strings.ToUpper(datum)
	switch {
	case strings.Contains(normalized, "WGS"):
		if hemisphere == "S" {
			return 32700 + zone
		}
		return 32600 + zone
	case strings.Contains(normalized, "NORTH_AMERICAN") || strings.Contains(normalized, "NAD"):
		if hemisphere == "N" {
			return 26900 + zone
		}
	}
	return 0
}

// TileCRS reads the coordinate system of one tile through gdalsrsinfo.
func TileCRS(ctx context.Context, tk *gdal.Toolkit, tile Tile) (CRS, error) {
	wkt, err := tk.SRSWKT(ctx, tile.Path)
	if err != nil {
		return CRS{}, err
	}
	crs, err := ParseCRS(wkt)
	if err != nil {
		return CRS{}, fmt.Errorf("%s: %w", tile.Path, err)
	}
	return crs, nil
}

// MajorityEPSG returns the most frequent EPSG code, breaking ties toward the
// lowest code so the canonical zone is deterministic.
func MajorityEPSG(codes []int) (int, error) {
	if len(codes) == 0 {
		return 0, fmt.Errorf("raster: no coordinate systems to compare")
	}
	counts := make(map[int]int)
	for _, code := range codes {
		counts[code]++
	}
	distinct := make([]int, 0, len(counts))
	for code := range counts {
		distinct = append(distinct, code)
	}
	sort.Ints(distinct)

	best := distinct[0]
	for _, code := range distinct[1:] {
		if counts[code] > counts[best] {
			best = code
		}
	}
	return best, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
