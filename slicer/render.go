package slicer

import (
	"bytes"
	"fmt"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Engine selects how tile content is placed onto the output page.
type Engine int

const (
	// EngineClip embeds the tile behind an explicit clipping path. Default.
	EngineClip Engine = iota

	// EngineMatrix applies only the placement transform; content outside the
	// tile is cropped by the output page boxes. Models engines that can
	// transform whole pages but cannot clip.
	EngineMatrix
)

// ParseEngine maps an external engine name onto an Engine. Empty input
// selects the default.
func ParseEngine(name string) (Engine, error) {
	switch name {
	case "", "clip":
		return EngineClip, nil
	case "matrix":
		return EngineMatrix, nil
	}
	return 0, fmt.Errorf("unknown engine %q", name)
}

// tileRenderer produces one single-page output segment per valid tile.
type tileRenderer interface {
	renderTile(src *Source, page PageInfo, t Tile, scale float64) ([]byte, error)
}

func rendererFor(e Engine) tileRenderer {
	if e == EngineMatrix {
		return matrixRenderer{}
	}
	return clipRenderer{}
}

type clipRenderer struct{}

func (clipRenderer) renderTile(src *Source, page PageInfo, t Tile, scale float64) ([]byte, error) {
	return renderTilePage(src, page, t, scale, true)
}

type matrixRenderer struct{}

func (matrixRenderer) renderTile(src *Source, page PageInfo, t Tile, scale float64) ([]byte, error) {
	return renderTilePage(src, page, t, scale, false)
}

// renderTilePage extracts the source page into a fresh single-page document,
// resizes its boxes to the A4 target and rewraps the content so that the tile
// region, scaled uniformly, exactly fills the new page.
func renderTilePage(src *Source, page PageInfo, t Tile, scale float64, clip bool) ([]byte, error) {
	ctxPage, err := pdfcpu.ExtractPages(src.ctx, []int{page.Number}, false)
	if err != nil {
		return nil, err
	}
	if err := ctxPage.EnsurePageCount(); err != nil {
		return nil, err
	}

	pageDict, _, inh, err := ctxPage.PageDict(1, false)
	if err != nil {
		return nil, err
	}
	if pageDict == nil {
		return nil, fmt.Errorf("failed to extract page %d", page.Number)
	}

	newBox := types.RectForWidthAndHeight(0, 0, TargetWidth, TargetHeight)
	pageDict["MediaBox"] = newBox.Array()
	pageDict["CropBox"] = newBox.Array()

	// Rotation gets baked into the content stream below.
	pageDict.Delete("Rotate")

	content, err := pageContentBytes(ctxPage, pageDict)
	if err != nil {
		return nil, err
	}

	// Tile corners in the page's native bottom-left-origin coordinates. The
	// grid hands out top-left-origin rectangles, so the vertical axis flips
	// around the top edge of the page box.
	xMin := page.Box.LL.X + t.Left
	yMin := page.Box.UR.Y - t.Bottom

	var buf bytes.Buffer
	buf.WriteString("q ")
	if inh.Rotate != 0 {
		baseBox := inh.MediaBox
		if baseBox == nil {
			baseBox = page.Box
		}
		buf.Write(model.ContentBytesForPageRotation(inh.Rotate, baseBox.Width(), baseBox.Height()))
	}
	// One matrix carries scale and translation; the offsets are pre-scaled so
	// the tile's bottom-left corner lands on the output page origin. Adding
	// +0 folds a negative zero into +0 so identity placements print as
	// "0.00000" rather than "-0.00000".
	tx := -scale*xMin + 0
	ty := -scale*yMin + 0
	fmt.Fprintf(&buf, "%.5f 0 0 %.5f %.5f %.5f cm ", scale, scale, tx, ty)
	if clip {
		fmt.Fprintf(&buf, "%.5f %.5f %.5f %.5f re W n ", xMin, yMin, t.Width(), t.Height())
	}
	buf.Write(content)
	buf.WriteString(" Q ")

	streamDict, _ := ctxPage.NewStreamDictForBuf(buf.Bytes())
	if err := streamDict.Encode(); err != nil {
		return nil, err
	}

	indRef, err := ctxPage.IndRefForNewObject(*streamDict)
	if err != nil {
		return nil, err
	}
	pageDict["Contents"] = *indRef

	var out bytes.Buffer
	if err := pdfapi.WriteContext(ctxPage, &out); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// pageContentBytes returns the decoded content for pageDict. A page without
// any content yields nil.
func pageContentBytes(ctx *model.Context, pageDict types.Dict) ([]byte, error) {
	obj, found := pageDict.Find("Contents")
	if !found || obj == nil {
		return nil, nil
	}

	obj, err := ctx.Dereference(obj)
	if err != nil || obj == nil {
		return nil, err
	}

	switch o := obj.(type) {

	case types.StreamDict:
		return decodedStream(&o)

	case types.Array:
		var bb []byte
		for _, entry := range o {
			if entry == nil {
				continue
			}
			sd, _, err := ctx.DereferenceStreamDict(entry)
			if err != nil {
				return nil, err
			}
			if sd == nil {
				continue
			}
			b, err := decodedStream(sd)
			if err != nil {
				return nil, err
			}
			bb = append(bb, b...)
			bb = append(bb, ' ')
		}
		return bb, nil
	}

	return nil, fmt.Errorf("page contents must be a stream dict or array")
}

// decodedStream returns a stream's content bytes. Stream dicts cloned during
// page migration carry an empty non-nil filter pipeline, and StreamDict.Decode
// short-circuits only on a nil one, so unfiltered streams must be read from
// the raw bytes directly.
func decodedStream(sd *types.StreamDict) ([]byte, error) {
	if sd.Content != nil {
		return sd.Content, nil
	}
	if len(sd.FilterPipeline) == 0 {
		return sd.Raw, nil
	}
	if err := sd.Decode(); err != nil {
		return nil, err
	}
	return sd.Content, nil
}
