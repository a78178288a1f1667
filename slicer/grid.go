package slicer

import (
	"fmt"
	"math"
)

// Target page geometry: portrait A4 in points.
const (
	TargetWidth  = 595.0
	TargetHeight = 842.0
)

// Scale bounds accepted from callers. The core only guards against a
// non-positive scale; clamping into this range is the delivery layer's job.
const (
	MinScale = 0.40
	MaxScale = 1.00
)

// DefaultPageCap bounds rows*cols before any tile is rendered.
const DefaultPageCap = 800

// GridSpec is the planned tiling of one source page. Immutable once planned.
type GridSpec struct {
	Rows int
	Cols int

	TileWidth  float64
	TileHeight float64

	SrcWidth  float64
	SrcHeight float64
}

// Tile is one cell of the grid. Coordinates are top-left origin: row 0 is the
// top edge of the source page.
type Tile struct {
	Row int
	Col int

	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Valid reports whether the tile spans at least one point in both axes.
// Final-row/column tiles can collapse to slivers through float rounding;
// those are skipped before rendering.
func (t Tile) Valid() bool {
	return t.Right-t.Left >= 1 && t.Bottom-t.Top >= 1
}

// Width returns the tile's horizontal extent in source points.
func (t Tile) Width() float64 { return t.Right - t.Left }

// Height returns the tile's vertical extent in source points.
func (t Tile) Height() float64 { return t.Bottom - t.Top }

// PlanGrid computes the tile grid covering a srcW×srcH page with tiles of
// targetW/scale × targetH/scale points. It fails fast with *CapacityError if
// the grid would exceed pageCap tiles; a pageCap of zero or below selects
// DefaultPageCap.
func PlanGrid(srcW, srcH, targetW, targetH, scale float64, pageCap int) (*GridSpec, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", scale)
	}
	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}

	tileW := targetW / scale
	tileH := targetH / scale
	cols := int(math.Ceil(srcW / tileW))
	rows := int(math.Ceil(srcH / tileH))

	if total := rows * cols; total > pageCap {
		return nil, &CapacityError{Tiles: total, Cap: pageCap}
	}

	return &GridSpec{
		Rows:       rows,
		Cols:       cols,
		TileWidth:  tileW,
		TileHeight: tileH,
		SrcWidth:   srcW,
		SrcHeight:  srcH,
	}, nil
}

// TileAt returns the clip rectangle for grid cell (row, col). Edge tiles are
// clipped to the source bounds instead of overshooting.
func (g *GridSpec) TileAt(row, col int) Tile {
	t := Tile{
		Row:  row,
		Col:  col,
		Left: float64(col) * g.TileWidth,
		Top:  float64(row) * g.TileHeight,
	}
	t.Right = math.Min(t.Left+g.TileWidth, g.SrcWidth)
	t.Bottom = math.Min(t.Top+g.TileHeight, g.SrcHeight)
	return t
}

// Tiles enumerates every grid cell in row-major order (row 0 left to right,
// then row 1, ...). Degenerate tiles are included; callers filter with Valid.
func (g *GridSpec) Tiles() []Tile {
	tiles := make([]Tile, 0, g.Rows*g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			tiles = append(tiles, g.TileAt(r, c))
		}
	}
	return tiles
}
