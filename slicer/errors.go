package slicer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource is returned when the uploaded PDF contains no pages.
	ErrEmptySource = errors.New("PDF has no pages")

	// ErrAllPagesBlank is returned when blank removal pruned every tile.
	ErrAllPagesBlank = errors.New("all slices appeared blank; try a different scale or page")
)

// CapacityError is returned when the projected tile count exceeds the page
// cap. It is raised before any tile is rendered.
type CapacityError struct {
	Tiles int
	Cap   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("this scale would create %d pages (>%d); lower the scale", e.Tiles, e.Cap)
}
