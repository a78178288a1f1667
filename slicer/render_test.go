package slicer

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageContent re-parses a rendered tile segment and returns the decoded
// content stream of its single page.
func pageContent(t *testing.T, segment []byte) string {
	t.Helper()

	doc, err := Open(segment, "")
	require.NoError(t, err)

	pageDict, _, _, err := doc.ctx.PageDict(1, false)
	require.NoError(t, err)
	require.NotNil(t, pageDict)

	content, err := doc.ctx.PageContent(pageDict)
	require.NoError(t, err)
	return string(content)
}

func TestRenderTileIdentity(t *testing.T) {
	data := buildPDF(t, 595, 842, markRect(100, 100, 200, 150))
	src, err := Open(data, "")
	require.NoError(t, err)
	page, err := src.Page(0)
	require.NoError(t, err)

	g, err := PlanGrid(page.Width, page.Height, TargetWidth, TargetHeight, 1.00, 0)
	require.NoError(t, err)
	require.Equal(t, 1, g.Rows*g.Cols)

	seg, err := clipRenderer{}.renderTile(src, page, g.TileAt(0, 0), 1.00)
	require.NoError(t, err)

	out, err := Open(seg, "")
	require.NoError(t, err)
	assert.Equal(t, 1, out.PageCount())

	outPage, err := out.Page(0)
	require.NoError(t, err)
	assert.InDelta(t, TargetWidth, outPage.Width, 1e-9)
	assert.InDelta(t, TargetHeight, outPage.Height, 1e-9)

	// scale=1 on an exactly A4 source: no scaling, zero translation.
	content := pageContent(t, seg)
	assert.Contains(t, content, "1.00000 0 0 1.00000 0.00000 0.00000 cm")
	assert.Contains(t, content, "re f")
}

// The placement matrix carries the scale and pre-scaled translation offsets.
// Offsets scaled after translation would shift every non-origin tile.
func TestRenderTileTransformOffsets(t *testing.T) {
	data := buildPDF(t, 1190, 1684, markRect(100, 1500, 200, 100))
	src, err := Open(data, "")
	require.NoError(t, err)
	page, err := src.Page(0)
	require.NoError(t, err)

	g, err := PlanGrid(page.Width, page.Height, TargetWidth, TargetHeight, 0.80, 0)
	require.NoError(t, err)

	// Tile (0,1): left 743.75, bottom 1052.5 in top-down coordinates, so the
	// x offset is -0.8*743.75 = -595 and the y offset is
	// -0.8*(1684-1052.5) = -505.2.
	seg, err := clipRenderer{}.renderTile(src, page, g.TileAt(0, 1), 0.80)
	require.NoError(t, err)

	content := pageContent(t, seg)
	assert.Contains(t, content, "0.80000 0 0 0.80000 -595.00000 -505.20000 cm")
	// Unscaled offsets would betray a translate-before-scale ordering.
	assert.NotContains(t, content, "-743.75000")
	assert.NotContains(t, content, "-631.50000")
}

func TestRenderTileEngines(t *testing.T) {
	data := buildPDF(t, 1190, 1684, markRect(100, 1500, 200, 100))
	src, err := Open(data, "")
	require.NoError(t, err)
	page, err := src.Page(0)
	require.NoError(t, err)

	g, err := PlanGrid(page.Width, page.Height, TargetWidth, TargetHeight, 0.80, 0)
	require.NoError(t, err)
	tile := g.TileAt(1, 0)

	clipSeg, err := clipRenderer{}.renderTile(src, page, tile, 0.80)
	require.NoError(t, err)
	matrixSeg, err := matrixRenderer{}.renderTile(src, page, tile, 0.80)
	require.NoError(t, err)

	assert.Contains(t, pageContent(t, clipSeg), "re W n")
	assert.NotContains(t, pageContent(t, matrixSeg), "re W n")

	for _, seg := range [][]byte{clipSeg, matrixSeg} {
		out, err := Open(seg, "")
		require.NoError(t, err)
		outPage, err := out.Page(0)
		require.NoError(t, err)
		assert.InDelta(t, TargetWidth, outPage.Width, 1e-9)
		assert.InDelta(t, TargetHeight, outPage.Height, 1e-9)
	}
}

// Stream dicts cloned during page extraction end up with an empty non-nil
// filter pipeline; decoding such a stream must fall back to its raw bytes
// instead of running an empty pipeline.
func TestDecodedStreamUnfiltered(t *testing.T) {
	raw := []byte("0 g 10 10 5 5 re f")

	sd := types.StreamDict{
		Dict:           types.Dict{},
		Raw:            raw,
		FilterPipeline: []types.PDFFilter{},
	}

	b, err := decodedStream(&sd)
	require.NoError(t, err)
	assert.Equal(t, raw, b)
}

func TestParseEngine(t *testing.T) {
	e, err := ParseEngine("")
	require.NoError(t, err)
	assert.Equal(t, EngineClip, e)

	e, err = ParseEngine("matrix")
	require.NoError(t, err)
	assert.Equal(t, EngineMatrix, e)

	_, err = ParseEngine("raster")
	assert.Error(t, err)
}
