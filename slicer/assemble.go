package slicer

import (
	"bytes"
	"io"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// assemble merges the surviving single-page segments, in the order given,
// into one document.
func assemble(segments [][]byte) ([]byte, error) {
	if len(segments) == 0 {
		return nil, ErrAllPagesBlank
	}
	if len(segments) == 1 {
		return segments[0], nil
	}

	readers := make([]io.ReadSeeker, len(segments))
	for i, data := range segments {
		readers[i] = bytes.NewReader(data)
	}

	var out bytes.Buffer
	conf := model.NewDefaultConfiguration()
	if err := pdfapi.MergeRaw(readers, &out, false, conf); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
