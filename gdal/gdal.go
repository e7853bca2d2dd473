// Package gdal shells out to the GDAL command-line tools. Reprojection and
// mosaicking are delegated entirely to gdalwarp and gdal_merge.py; this
// package only builds argument lists and surfaces tool failures as errors.
package gdal

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external tool and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools as subprocesses.
type ExecRunner struct{}

// Run implements Runner. Stderr is folded into the returned error so a
// failing tool invocation is diagnosable.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
	}
	return stdout.Bytes(), nil
}

// Tools names the GDAL executables used by the pipeline. Zero values select
// the standard names from PATH.
type Tools struct {
	SRSInfo string
	Warp    string
	Merge   string
	Info    string
}

// DefaultTools returns the standard GDAL tool names.
func DefaultTools() Tools {
	return Tools{
		SRSInfo: "gdalsrsinfo",
		Warp:    "gdalwarp",
		Merge:   "gdal_merge.py",
		Info:    "gdalinfo",
	}
}

func (t Tools) withDefaults() Tools {
	d := DefaultTools()
	if t.SRSInfo == "" {
		t.SRSInfo = d.SRSInfo
	}
	if t.Warp == "" {
		t.Warp = d.Warp
	}
	if t.Merge == "" {
		t.Merge = d.Merge
	}
	if t.Info == "" {
		t.Info = d.Info
	}
	return t
}

// Toolkit pairs a Runner with tool names.
type Toolkit struct {
	runner Runner
	tools  Tools
}

// NewToolkit builds a Toolkit. A nil runner selects ExecRunner.
func NewToolkit(runner Runner, tools Tools) *Toolkit {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Toolkit{runner: runner, tools: tools.withDefaults()}
}

// SRSWKT returns the well-known-text spatial reference of a raster.
func (t *Toolkit) SRSWKT(ctx context.Context, rasterPath string) (string, error) {
	out, err := t.runner.Run(ctx, t.tools.SRSInfo, "-o", "wkt", rasterPath)
	if err != nil {
		return "", fmt.Errorf("gdal: read srs of %s: %w", rasterPath, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Warp reprojects src into the target spatial reference, writing dst.
func (t *Toolkit) Warp(ctx context.Context, src, dst, targetSRS string) error {
	if _, err := t.runner.Run(ctx, t.tools.Warp, "-t_srs", targetSRS, src, dst); err != nil {
		return fmt.Errorf("gdal: warp %s to %s: %w", src, targetSRS, err)
	}
	return nil
}

// Merge mosaics the input rasters into dst.
func (t *Toolkit) Merge(ctx context.Context, dst string, srcs ...string) error {
	args := append([]string{"-o", dst}, srcs...)
	if _, err := t.runner.Run(ctx, t.tools.Merge, args...); err != nil {
		return fmt.Errorf("gdal: merge into %s: %w", dst, err)
	}
	return nil
}

// Stats returns the gdalinfo -stats report for a raster.
func (t *Toolkit) Stats(ctx context.Context, rasterPath string) (string, error) {
	out, err := t.runner.Run(ctx, t.tools.Info, "-stats", rasterPath)
	if err != nil {
		return "", fmt.Errorf("gdal: stats of %s: %w", rasterPath, err)
	}
	return string(out), nil
}
