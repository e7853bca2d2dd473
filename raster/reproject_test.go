package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/example/go-hyp3/gdal"
)

// fakeRunner serves canned gdalsrsinfo output and simulates gdalwarp,
// gdal_merge.py, and gdalinfo by writing or reporting on real files.
type fakeRunner struct {
	mu    sync.Mutex
	wkt   map[string]string // path -> WKT served by gdalsrsinfo
	stats map[string]string // path -> gdalinfo -stats report
	warps []string          // source paths passed to gdalwarp
	dests []string          // destinations passed to gdal_merge.py
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch name {
	case "gdalsrsinfo":
		path := args[len(args)-1]
		wkt, ok := f.wkt[path]
		if !ok {
			return nil, fmt.Errorf("no srs for %s", path)
		}
		return []byte(wkt), nil
	case "gdalwarp":
		// args: -t_srs EPSG:nnnnn src dst
		src, dst := args[2], args[3]
		f.warps = append(f.warps, src)
		return nil, os.WriteFile(dst, []byte("warped"), 0o644)
	case "gdal_merge.py":
		// args: -o dst src...
		dst := args[1]
		f.dests = append(f.dests, dst)
		return nil, os.WriteFile(dst, []byte("merged"), 0o644)
	case "gdalinfo":
		path := args[len(args)-1]
		if report, ok := f.stats[path]; ok {
			return []byte(report), nil
		}
		return []byte("STATISTICS_VALID_PERCENT=87.5"), nil
	}
	return nil, fmt.Errorf("unexpected tool %s", name)
}

func writeTiles(t *testing.T, dir string, names ...string) []Tile {
	t.Helper()
	tiles := make([]Tile, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte("tif"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		tile, err := ParseTile(path)
		if err != nil {
			t.Fatalf("ParseTile(%q): %v", path, err)
		}
		tiles = append(tiles, tile)
	}
	return tiles
}

func TestNormalizeCRSReprojectsMinority(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tiles := writeTiles(t, dir,
		"A/S1A_IW_20200101T000000_G_VV.tif",
		"B/S1A_IW_20200102T000000_G_VV.tif",
		"C/S1A_IW_20200103T000000_G_VV.tif",
	)

	runner := &fakeRunner{wkt: map[string]string{
		tiles[0].Path: wktWGS84Zone45N,
		tiles[1].Path: wktWGS84Zone45N,
		tiles[2].Path: wktWGS84Zone46NNoAuthority,
	}}
	tk := gdal.NewToolkit(runner, gdal.Tools{})

	got, canonical, err := NormalizeCRS(ctx, tk, tiles, nil)
	if err != nil {
		t.Fatalf("NormalizeCRS returned error: %v", err)
	}
	if canonical.EPSG != 32645 {
		t.Fatalf("expected canonical EPSG 32645, got %d", canonical.EPSG)
	}
	if len(runner.warps) != 1 || runner.warps[0] != tiles[2].Path {
		t.Fatalf("expected single warp of the minority tile, got %v", runner.warps)
	}
	// The reprojected file keeps its original name.
	data, err := os.ReadFile(tiles[2].Path)
	if err != nil {
		t.Fatalf("expected reprojected file in place: %v", err)
	}
	if string(data) != "warped" {
		t.Fatalf("expected replaced contents, got %q", data)
	}
	if len(got) != 3 {
		t.Fatalf("expected all tiles returned, got %d", len(got))
	}
}

func TestNormalizeCRSAllSameZone(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tiles := writeTiles(t, dir,
		"A/S1A_IW_20200101T000000_G_VV.tif",
		"B/S1A_IW_20200102T000000_G_VV.tif",
	)
	runner := &fakeRunner{wkt: map[string]string{
		tiles[0].Path: wktWGS84Zone45N,
		tiles[1].Path: wktWGS84Zone45N,
	}}
	tk := gdal.NewToolkit(runner, gdal.Tools{})

	_, _, err := NormalizeCRS(ctx, tk, tiles, nil)
	if err != nil {
		t.Fatalf("NormalizeCRS returned error: %v", err)
	}
	if len(runner.warps) != 0 {
		t.Fatalf("expected no warps for uniform zones, got %v", runner.warps)
	}
}

func TestNormalizeCRSUnreadableSRS(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tiles := writeTiles(t, dir, "A/S1A_IW_20200101T000000_G_VV.tif")
	runner := &fakeRunner{wkt: map[string]string{
		tiles[0].Path: `GEOGCS["WGS 84",DATUM["WGS_1984"]]`,
	}}
	tk := gdal.NewToolkit(runner, gdal.Tools{})

	_, _, err := NormalizeCRS(ctx, tk, tiles, nil)
	if err == nil || !strings.Contains(err.Error(), "cannot parse coordinate system") {
		t.Fatalf("expected CRS parse error, got %v", err)
	}
}
