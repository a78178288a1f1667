package slicer

import (
	"bytes"
	"fmt"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Source is a parsed input document. It is read-only after Open and owned by
// a single job.
type Source struct {
	ctx   *model.Context
	pages int
}

// PageInfo describes one source page. Width and height are in points.
type PageInfo struct {
	Number int // 1-based
	Box    *types.Rectangle
	Width  float64
	Height float64
}

// Open parses and validates a PDF from memory. An empty password leaves the
// document unencrypted handling to pdfcpu's defaults; a wrong password
// surfaces as pdfcpu.ErrWrongPassword.
func Open(data []byte, password string) (*Source, error) {
	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	ctx, err := pdfapi.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}
	if ctx.PageCount == 0 {
		return nil, ErrEmptySource
	}

	return &Source{ctx: ctx, pages: ctx.PageCount}, nil
}

// PageCount reports the number of pages in the source.
func (s *Source) PageCount() int { return s.pages }

// Page returns geometry for the page at the given zero-based index. An
// out-of-range index is clamped into [0, PageCount-1], never rejected.
func (s *Source) Page(index int) (PageInfo, error) {
	if index < 0 {
		index = 0
	}
	if index > s.pages-1 {
		index = s.pages - 1
	}
	nr := index + 1

	_, _, inh, err := s.ctx.PageDict(nr, false)
	if err != nil {
		return PageInfo{}, err
	}

	box := inh.CropBox
	if box == nil {
		box = inh.MediaBox
	}
	if box == nil {
		return PageInfo{}, fmt.Errorf("cannot determine size of page %d", nr)
	}

	return PageInfo{
		Number: nr,
		Box:    box,
		Width:  box.Width(),
		Height: box.Height(),
	}, nil
}
