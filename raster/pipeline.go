package raster

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/go-hyp3/gdal"
)

// Pipeline runs the preprocessing steps over an extracted products tree:
// ingest, blank-tile cleanup, CRS normalization, same-date merge, and final
// move into a flat directory.
type Pipeline struct {
	tk         *gdal.Toolkit
	logger     *slog.Logger
	keepBlanks bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRunner overrides the tool runner (tests use a fake).
func WithRunner(runner gdal.Runner) PipelineOption {
	return func(p *Pipeline) {
		p.tk = gdal.NewToolkit(runner, gdal.Tools{})
	}
}

// WithToolkit supplies a fully configured GDAL toolkit.
func WithToolkit(tk *gdal.Toolkit) PipelineOption {
	return func(p *Pipeline) {
		p.tk = tk
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// KeepBlankTiles disables the nodata-only tile cleanup.
func KeepBlankTiles() PipelineOption {
	return func(p *Pipeline) {
		p.keepBlanks = true
	}
}

// NewPipeline builds a Pipeline with the standard GDAL tools on PATH.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		tk:     gdal.NewToolkit(nil, gdal.Tools{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tk == nil {
		p.tk = gdal.NewToolkit(nil, gdal.Tools{})
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Run executes the pipeline over productsDir and leaves the surviving tiles
// in outputDir. When polarization filters are given, other polarizations are
// ignored entirely.
func (p *Pipeline) Run(ctx context.Context, productsDir, outputDir string, pols ...Polarization) ([]Tile, error) {
	tiles, err := Ingest(productsDir)
	if err != nil {
		return nil, err
	}
	tiles = FilterPolarizations(tiles, pols...)
	if len(tiles) == 0 {
		return nil, fmt.Errorf("raster: no tiles found under %s", productsDir)
	}
	p.logger.Info("ingested tiles", "count", len(tiles), "dir", productsDir)

	if !p.keepBlanks {
		tiles, err = DropBlankTiles(ctx, p.tk, tiles, p.logger)
		if err != nil {
			return nil, err
		}
	}

	tiles, _, err = NormalizeCRS(ctx, p.tk, tiles, p.logger)
	if err != nil {
		return nil, err
	}

	tiles, err = MergeByDate(ctx, p.tk, tiles, p.logger)
	if err != nil {
		return nil, err
	}
	CheckMerged(tiles, p.logger)

	return Finalize(tiles, productsDir, outputDir, p.logger)
}
