package gdal

import (
	"context"
	"strings"
	"testing"
)

type recordingRunner struct {
	names []string
	args  [][]string
	out   []byte
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.names = append(r.names, name)
	r.args = append(r.args, args)
	return r.out, nil
}

func TestToolkitArguments(t *testing.T) {
	ctx := context.Background()
	runner := &recordingRunner{out: []byte(" wkt-output \n")}
	tk := NewToolkit(runner, Tools{})

	wkt, err := tk.SRSWKT(ctx, "tile.tif")
	if err != nil {
		t.Fatalf("SRSWKT returned error: %v", err)
	}
	if wkt != "wkt-output" {
		t.Fatalf("expected trimmed output, got %q", wkt)
	}
	if err := tk.Warp(ctx, "src.tif", "dst.tif", "EPSG:32645"); err != nil {
		t.Fatalf("Warp returned error: %v", err)
	}
	if err := tk.Merge(ctx, "out.tif", "a.tif", "b.tif"); err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if _, err := tk.Stats(ctx, "tile.tif"); err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	wantNames := []string{"gdalsrsinfo", "gdalwarp", "gdal_merge.py", "gdalinfo"}
	for i, name := range wantNames {
		if runner.names[i] != name {
			t.Fatalf("expected tool %s, got %s", name, runner.names[i])
		}
	}

	wantArgs := [][]string{
		{"-o", "wkt", "tile.tif"},
		{"-t_srs", "EPSG:32645", "src.tif", "dst.tif"},
		{"-o", "out.tif", "a.tif", "b.tif"},
		{"-stats", "tile.tif"},
	}
	for i, want := range wantArgs {
		got := runner.args[i]
		if strings.Join(got, " ") != strings.Join(want, " ") {
			t.Fatalf("call %d: expected args %v, got %v", i, want, got)
		}
	}
}

func TestToolkitCustomToolNames(t *testing.T) {
	runner := &recordingRunner{}
	tk := NewToolkit(runner, Tools{Warp: "/opt/gdal/bin/gdalwarp"})

	if err := tk.Warp(context.Background(), "a", "b", "EPSG:32645"); err != nil {
		t.Fatalf("Warp returned error: %v", err)
	}
	if runner.names[0] != "/opt/gdal/bin/gdalwarp" {
		t.Fatalf("expected custom warp binary, got %s", runner.names[0])
	}
}

func TestExecRunnerReportsStderr(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo failure detail >&2; exit 3")
	if err == nil || !strings.Contains(err.Error(), "failure detail") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}
