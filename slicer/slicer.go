// Package slicer cuts one oversized PDF page into a grid of portrait A4
// pages, each a vector-accurate scaled copy of one rectangular region of the
// source. The package is stateless; every job owns its own source and output
// and carries all parameters explicitly.
package slicer

import (
	"context"
	"fmt"
)

// progressStride is the tile cadence between progress callbacks.
const progressStride = 5

// Params configures a single slicing job.
type Params struct {
	// PageIndex selects the source page, zero-based. Out-of-range values are
	// clamped, never rejected.
	PageIndex int

	// Scale controls how much source area maps onto one output page: a tile
	// is TargetWidth/Scale by TargetHeight/Scale source points. Callers clamp
	// into [MinScale, MaxScale]; the core only rejects non-positive values.
	Scale float64

	// RemoveBlanks prunes output pages that render entirely white.
	RemoveBlanks bool

	// PageCap bounds rows*cols before rendering starts. Zero selects
	// DefaultPageCap.
	PageCap int

	// Engine selects the tile placement backend.
	Engine Engine

	// Password decrypts protected sources. Optional.
	Password string

	// Progress, if set, is invoked after every few tiles and once at
	// completion with monotonically increasing counts. Purely observational.
	Progress func(done, total int)
}

// Result is a completed job: the serialized document plus grid metadata.
type Result struct {
	PDF       []byte
	Rows      int
	Cols      int
	PageCount int
}

// Slice runs the full pipeline: load, plan, render tiles in row-major order,
// optionally prune blank pages, assemble. It either succeeds with a complete
// document or fails with no partial output. The context is checked between
// tiles, so cancellation takes effect at tile granularity.
func Slice(ctx context.Context, data []byte, p Params) (*Result, error) {
	src, err := Open(data, p.Password)
	if err != nil {
		return nil, err
	}

	page, err := src.Page(p.PageIndex)
	if err != nil {
		return nil, err
	}

	grid, err := PlanGrid(page.Width, page.Height, TargetWidth, TargetHeight, p.Scale, p.PageCap)
	if err != nil {
		return nil, err
	}

	renderer := rendererFor(p.Engine)

	var detector *blankDetector
	if p.RemoveBlanks {
		if detector, err = newBlankDetector(); err != nil {
			return nil, err
		}
	}

	tiles := grid.Tiles()
	total := len(tiles)
	segments := make([][]byte, 0, total)

	for i, t := range tiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if t.Valid() {
			seg, err := renderer.renderTile(src, page, t, p.Scale)
			if err != nil {
				return nil, fmt.Errorf("tile (%d,%d): %w", t.Row, t.Col, err)
			}

			keep := true
			if detector != nil {
				blank, err := detector.isBlank(ctx, seg)
				if err != nil {
					return nil, fmt.Errorf("tile (%d,%d): %w", t.Row, t.Col, err)
				}
				keep = !blank
			}
			if keep {
				segments = append(segments, seg)
			}
		}

		if made := i + 1; p.Progress != nil && (made%progressStride == 0 || made == total) {
			p.Progress(made, total)
		}
	}

	out, err := assemble(segments)
	if err != nil {
		return nil, err
	}

	return &Result{
		PDF:       out,
		Rows:      grid.Rows,
		Cols:      grid.Cols,
		PageCount: len(segments),
	}, nil
}
