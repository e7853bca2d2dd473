package raster

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFinalize(t *testing.T) {
	root := t.TempDir()
	productsDir := filepath.Join(root, "rtc_products")
	outputDir := filepath.Join(root, "tiffs")

	tiles := writeTiles(t, productsDir,
		"A/S1A_IW_20200101T000000_G_VV.tif",
		"B/S1A_IW_20200102T000000_G_VV.tif",
	)

	got, err := Finalize(tiles, productsDir, outputDir, nil)
	if err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tiles, got %d", len(got))
	}
	for _, tile := range got {
		if filepath.Dir(tile.Path) != outputDir {
			t.Fatalf("expected tile in output dir, got %s", tile.Path)
		}
		if _, err := os.Stat(tile.Path); err != nil {
			t.Fatalf("expected moved tile: %v", err)
		}
	}
	if _, err := os.Stat(productsDir); !os.IsNotExist(err) {
		t.Fatalf("expected intermediate tree removed")
	}
}

func TestFinalizeFlattensNestedTiles(t *testing.T) {
	root := t.TempDir()
	productsDir := filepath.Join(root, "rtc_products")
	outputDir := filepath.Join(root, "tiffs")

	tiles := writeTiles(t, productsDir, "DEEP/NEST/S1A_IW_20200101T000000_G_VV.tif")

	got, err := Finalize(tiles, productsDir, outputDir, nil)
	if err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
	want := filepath.Join(outputDir, "S1A_IW_20200101T000000_G_VV.tif")
	if got[0].Path != want {
		t.Fatalf("expected flat output path %s, got %s", want, got[0].Path)
	}
}
