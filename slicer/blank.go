package slicer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"golang.org/x/image/draw"
)

// blankSampleDPI keeps the sample a handful of pixels: roughly a tenth of the
// 72dpi native resolution.
const blankSampleDPI = 8

// blankDetector rasterizes candidate output pages at very low resolution via
// poppler's pdftoppm and prunes pages whose every sample is pure white.
type blankDetector struct {
	tool string
	dpi  int
}

func newBlankDetector() (*blankDetector, error) {
	tool, err := exec.LookPath("pdftoppm")
	if err != nil {
		return nil, fmt.Errorf("blank removal requires pdftoppm on PATH: %w", err)
	}
	return &blankDetector{tool: tool, dpi: blankSampleDPI}, nil
}

// isBlank reports whether every grayscale sample of the rendered page is
// exactly 255. The threshold is strict: anti-aliased near-white pixels
// (250-254) count as content, so a page with any visible mark is never
// discarded.
func (d *blankDetector) isBlank(ctx context.Context, page []byte) (bool, error) {
	dir, err := os.MkdirTemp("", "slicer-blank-")
	if err != nil {
		return false, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "tile.pdf")
	if err := os.WriteFile(in, page, 0644); err != nil {
		return false, err
	}

	prefix := filepath.Join(dir, "sample")
	args := []string{"-png", "-gray", "-singlefile", "-r", strconv.Itoa(d.dpi), in, prefix}
	cmd := exec.CommandContext(ctx, d.tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("pdftoppm failed: %v: %s", err, stderr.Bytes())
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return false, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return false, err
	}

	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	for _, v := range gray.Pix {
		if v != 255 {
			return false, nil
		}
	}
	return true, nil
}
