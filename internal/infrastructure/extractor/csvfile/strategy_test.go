package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caseloom/docingest/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestExtractCommaSeparated(t *testing.T) {
	path := writeFile(t, "cases.csv", "case,court,year\nSmith v Jones,District,2019\n")

	result := New().ExtractTextFromStream(context.Background(), path)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	text := domain.CollectText(result.TextChunks)
	if !strings.Contains(text, "case | court | year") {
		t.Fatalf("expected pipe-joined header, got %q", text)
	}
	if !strings.Contains(text, "Smith v Jones | District | 2019") {
		t.Fatalf("expected pipe-joined row, got %q", text)
	}
}

func TestExtractDetectsSemicolonDelimiter(t *testing.T) {
	path := writeFile(t, "cases.csv", "case;court\nDoe v Roe;Appeals\n")

	result := New().ExtractTextFromStream(context.Background(), path)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if got, want := result.Metadata["delimiter"], ";"; got != want {
		t.Fatalf("expected delimiter %q, got %v", want, got)
	}
	text := domain.CollectText(result.TextChunks)
	if !strings.Contains(text, "Doe v Roe | Appeals") {
		t.Fatalf("expected semicolon columns split, got %q", text)
	}
}

func TestExtractEmptyFileSucceedsEmpty(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	result := New().ExtractTextFromStream(context.Background(), path)
	if !result.Success {
		t.Fatalf("expected success for empty CSV, got %+v", result)
	}
	if got := domain.CollectText(result.TextChunks); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestValidateFileRejectsInconsistentColumns(t *testing.T) {
	path := writeFile(t, "ragged.csv", "a,b,c\n1,2\n")

	if New().ValidateFile(context.Background(), path) {
		t.Fatalf("expected ragged CSV to fail validation")
	}

	result := New().ExtractTextFromStream(context.Background(), path)
	if result.Success {
		t.Fatalf("expected extraction failure for ragged CSV")
	}
	if result.Status != domain.StatusCorrupted {
		t.Fatalf("expected corrupted status, got %s", result.Status)
	}
}

func TestExtractMissingFileIsCorrupted(t *testing.T) {
	result := New().ExtractTextFromStream(context.Background(), "/nonexistent/file.csv")
	if result.Success {
		t.Fatalf("expected failure for missing file")
	}
	if result.Status != domain.StatusCorrupted {
		t.Fatalf("expected corrupted status, got %s", result.Status)
	}
}
