package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// pdfBuilder assembles a minimal PDF with a handwritten xref table, tracking
// object offsets as it goes. Object numbers are assigned in Add order,
// starting at 1.
type pdfBuilder struct {
	buf     bytes.Buffer
	offsets []int
}

func newPDFBuilder() *pdfBuilder {
	b := &pdfBuilder{}
	b.buf.WriteString("%PDF-1.4\n")
	b.buf.WriteString("%\x80\x80\x80\x80\n")
	return b
}

// add appends one object body (without obj/endobj wrappers) and returns its
// object number.
func (b *pdfBuilder) add(body string) int {
	objNr := len(b.offsets) + 1
	b.offsets = append(b.offsets, b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", objNr, body)
	return objNr
}

func (b *pdfBuilder) bytes() []byte {
	xref := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", len(b.offsets)+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for _, off := range b.offsets {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R >>\n", len(b.offsets)+1)
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF", xref)
	return b.buf.Bytes()
}

// buildPDF returns a PDF with n empty pages. Object numbers: 1 catalog,
// 2 page tree, 3..2+n pages.
func buildPDF(n int) []byte {
	return buildPDFWith(n, "", nil)
}

// buildPDFWith returns a PDF with n empty pages, an optional catalog extra
// (e.g. an /Outlines reference) and optional extra objects appended after
// the pages. Page i (zero-based) is object 3+i.
func buildPDFWith(n int, catalogExtra string, extraObjects []string) []byte {
	b := newPDFBuilder()
	b.add(fmt.Sprintf("<< /Type /Catalog /Pages 2 0 R %s>>", catalogExtra))

	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	b.add(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))

	for i := 0; i < n; i++ {
		b.add("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}
	for _, body := range extraObjects {
		b.add(body)
	}
	return b.bytes()
}

// buildOutlinePDF returns a three page PDF whose outline is
//
//	Intro    -> page 1
//	Chapter  -> page 2
//	  Detail -> page 3
//
// Objects: pages are 3,4,5; outline root is 6, items 7,8,9.
func buildOutlinePDF() []byte {
	return buildPDFWith(3, "/Outlines 6 0 R ", []string{
		"<< /Type /Outlines /First 7 0 R /Last 8 0 R /Count 3 >>",
		"<< /Title (Intro) /Parent 6 0 R /Next 8 0 R /Dest [3 0 R /Fit] >>",
		"<< /Title (Chapter) /Parent 6 0 R /Prev 7 0 R /First 9 0 R /Last 9 0 R /Count 1 /Dest [4 0 R /XYZ null null null] >>",
		"<< /Title (Detail) /Parent 8 0 R /Dest [5 0 R /Fit] >>",
	})
}

func writeTempPDF(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
