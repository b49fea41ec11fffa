package pdffile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caseloom/docingest/internal/core/domain"
)

// writePDF assembles a minimal uncompressed PDF with one text-drawing content
// stream per page and a correct xref table.
func writePDF(t *testing.T, pages ...string) string {
	t.Helper()

	numObjects := 3 + 2*len(pages)
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	for i, text := range pages {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i,
		))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, numObjects+1)
	for i, body := range objects {
		offsets[i+1] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", numObjects+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= numObjects; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", numObjects+1, xref)

	path := filepath.Join(t.TempDir(), "brief.pdf")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestCanHandle(t *testing.T) {
	s := New()
	if !s.CanHandle("brief.pdf", "") {
		t.Fatalf("expected .pdf extension match")
	}
	if !s.CanHandle("download", "application/pdf") {
		t.Fatalf("expected mime match without extension")
	}
	if s.CanHandle("brief.txt", "text/plain") {
		t.Fatalf("expected no match for text file")
	}
}

func TestExtractMultiPagePDF(t *testing.T) {
	path := writePDF(t,
		"First page of the brief.",
		"Second page with the schedule.",
		"Third page signature block.",
	)

	result := New().ExtractTextFromStream(context.Background(), path)
	if !result.Success {
		t.Fatalf("expected success, got status=%s error=%q", result.Status, result.ErrorMessage)
	}
	if result.Status != domain.StatusProcessed {
		t.Fatalf("expected processed status, got %s", result.Status)
	}
	if got := result.Metadata["page_count"]; got != 3 {
		t.Fatalf("expected page_count 3, got %v", got)
	}
	if result.Metadata["format"] != "pdf" {
		t.Fatalf("expected pdf format metadata, got %v", result.Metadata["format"])
	}

	text := domain.CollectText(result.TextChunks)
	if text == "" {
		t.Fatalf("expected non-empty text stream")
	}
	for _, want := range []string{"First page", "Second page", "Third page"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in extracted text, got %q", want, text)
		}
	}
}

func TestValidateMultiPagePDF(t *testing.T) {
	path := writePDF(t, "Only page.")
	if !New().ValidateFile(context.Background(), path) {
		t.Fatalf("expected valid single-page PDF")
	}
}

func TestExtractZeroByteFileIsCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	result := New().ExtractTextFromStream(context.Background(), path)
	if result.Success {
		t.Fatalf("expected failure for zero-byte PDF")
	}
	if result.Status != domain.StatusCorrupted {
		t.Fatalf("expected corrupted status, got %s", result.Status)
	}
	if result.ErrorMessage == "" {
		t.Fatalf("expected error message on failure")
	}
}

func TestExtractGarbageFileIsCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 truncated nonsense"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	result := New().ExtractTextFromStream(context.Background(), path)
	if result.Success {
		t.Fatalf("expected failure for malformed PDF")
	}
	if result.Status != domain.StatusCorrupted {
		t.Fatalf("expected corrupted status, got %s", result.Status)
	}
}

func TestExtractMissingFileIsCorrupted(t *testing.T) {
	result := New().ExtractTextFromStream(context.Background(), "/nonexistent/brief.pdf")
	if result.Success {
		t.Fatalf("expected failure for missing file")
	}
	if result.Status != domain.StatusCorrupted {
		t.Fatalf("expected corrupted status, got %s", result.Status)
	}
}
