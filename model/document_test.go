package model

import (
	"fmt"
	"strings"
	"testing"
)

// buildMinimalPDF assembles a one-page classic-xref PDF with three objects
// (catalog, pages, page) and computes exact byte offsets itself, rather
// than hardcoding them, so the fixture stays correct if any object body
// changes.
func buildMinimalPDF(t *testing.T) []byte {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("%PDF-1.4\n")

	offsets := make([]int, 4) // 1-indexed objects 1..3

	writeObj := func(n int, body string) {
		offsets[n] = sb.Len()
		sb.WriteString(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", n, body))
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /Resources << /XObject << >> >> /MediaBox [0 0 612 792] >>")

	xrefOffset := sb.Len()
	sb.WriteString("xref\n")
	sb.WriteString("0 4\n")
	sb.WriteString("0000000000 65535 f \n")
	for n := 1; n <= 3; n++ {
		sb.WriteString(fmt.Sprintf("%010d 00000 n \n", offsets[n]))
	}
	sb.WriteString("trailer\n")
	sb.WriteString("<< /Size 4 /Root 1 0 R >>\n")
	sb.WriteString("startxref\n")
	sb.WriteString(fmt.Sprintf("%d\n", xrefOffset))
	sb.WriteString("%%EOF")

	return []byte(sb.String())
}

func TestOpenReaderParsesTrailerAndRoot(t *testing.T) {
	doc, err := OpenReader(strings.NewReader(string(buildMinimalPDF(t))))
	if err != nil {
		t.Fatal(err)
	}
	root, err := doc.Root()
	if err != nil {
		t.Fatal(err)
	}
	if root.Type() != "Catalog" {
		t.Fatalf("expected /Type /Catalog, got %q", root.Type())
	}
}

func TestDocumentPageResolvesResourcesAndRotate(t *testing.T) {
	doc, err := OpenReader(strings.NewReader(string(buildMinimalPDF(t))))
	if err != nil {
		t.Fatal(err)
	}
	page, err := doc.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Resources == nil {
		t.Fatal("expected page resources to be resolved")
	}
	if page.Rotate != 0 {
		t.Fatalf("expected default rotation 0, got %d", page.Rotate)
	}
}

func TestDocumentPageOutOfRangeErrors(t *testing.T) {
	doc, err := OpenReader(strings.NewReader(string(buildMinimalPDF(t))))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.Page(2); err == nil {
		t.Fatal("expected error for out-of-range page number")
	}
}
