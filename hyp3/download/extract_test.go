package download

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArchive(t *testing.T, dir string, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	path := filepath.Join(dir, "archive.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func TestUnzip(t *testing.T) {
	dir := t.TempDir()
	archive := writeArchive(t, dir, map[string]string{
		"PRODUCT/nested/tile_20200101_VV.tif": "pixels",
		"PRODUCT/readme.txt":                  "notes",
	})

	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := Unzip(out, archive); err != nil {
		t.Fatalf("Unzip returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "PRODUCT", "nested", "tile_20200101_VV.tif"))
	if err != nil {
		t.Fatalf("expected nested file: %v", err)
	}
	if string(data) != "pixels" {
		t.Fatalf("unexpected contents: %q", data)
	}
}

func TestUnzipRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	archive := writeArchive(t, dir, map[string]string{
		"../escape.txt": "bad",
	})

	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	err := Unzip(out, archive)
	if err == nil || !strings.Contains(err.Error(), "illegal path") {
		t.Fatalf("expected traversal rejection, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no file outside the output directory")
	}
}
