package slicer

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"
)

// buildPDF assembles a minimal single-page PDF with the given page size (in
// points) and an uncompressed content stream, the simplest form a valid
// producer can emit. Offsets in the xref table are exact so strict readers
// accept it.
func buildPDF(t *testing.T, w, h float64, content string) []byte {
	t.Helper()
	return buildPDFStream(t, w, h, "", []byte(content))
}

// buildPDFFlate is buildPDF with the content stream flate-compressed, the way
// most real-world producers write it.
func buildPDFFlate(t *testing.T, w, h float64, content string) []byte {
	t.Helper()

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("compressing content stream: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("compressing content stream: %v", err)
	}
	return buildPDFStream(t, w, h, "/Filter/FlateDecode", z.Bytes())
}

func buildPDFStream(t *testing.T, w, h float64, filter string, stream []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, 5)

	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<</Type/Catalog/Pages 2 0 R>>\nendobj\n")

	offsets[2] = buf.Len()
	buf.WriteString("2 0 obj\n<</Type/Pages/Kids[3 0 R]/Count 1>>\nendobj\n")

	offsets[3] = buf.Len()
	fmt.Fprintf(&buf, "3 0 obj\n<</Type/Page/MediaBox[0 0 %g %g]/Parent 2 0 R/Resources<<>>/Contents 4 0 R>>\nendobj\n", w, h)

	offsets[4] = buf.Len()
	fmt.Fprintf(&buf, "4 0 obj\n<</Length %d%s>>\nstream\n", len(stream), filter)
	buf.Write(stream)
	buf.WriteString("\nendstream\nendobj\n")

	xref := buf.Len()
	buf.WriteString("xref\n0 5\n")
	fmt.Fprintf(&buf, "%010d %05d f \r\n", 0, 65535)
	for i := 1; i < 5; i++ {
		fmt.Fprintf(&buf, "%010d %05d n \r\n", offsets[i], 0)
	}
	buf.WriteString("trailer\n<</Size 5/Root 1 0 R>>\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n%%%%EOF", xref)

	return buf.Bytes()
}

// markRect paints a filled black rectangle, the standard visible mark used by
// the tests.
func markRect(x, y, w, h float64) string {
	return fmt.Sprintf("0 g %g %g %g %g re f", x, y, w, h)
}
