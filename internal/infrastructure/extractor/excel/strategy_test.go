package excel

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/caseloom/docingest/internal/core/domain"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetCellValue("Sheet1", "A1", "case"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := wb.SetCellValue("Sheet1", "B1", "amount"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := wb.SetCellValue("Sheet1", "A2", "Smith v Jones"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := wb.SetCellValue("Sheet1", "B2", 1500); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if _, err := wb.NewSheet("Damages"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := wb.SetCellValue("Damages", "A1", "total"); err != nil {
		t.Fatalf("set cell: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cases.xlsx")
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestExtractWorkbook(t *testing.T) {
	path := writeWorkbook(t)

	result := New().ExtractTextFromStream(context.Background(), path)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	text := domain.CollectText(result.TextChunks)

	if !strings.Contains(text, "=== Sheet: Sheet1 ===") {
		t.Fatalf("expected sheet header, got %q", text)
	}
	if !strings.Contains(text, "case | amount") {
		t.Fatalf("expected pipe-joined row, got %q", text)
	}
	if !strings.Contains(text, "Smith v Jones | 1500") {
		t.Fatalf("expected data row, got %q", text)
	}
	if !strings.Contains(text, "=== Sheet: Damages ===") {
		t.Fatalf("expected second sheet header, got %q", text)
	}
	if result.Metadata["sheets"] != 2 {
		t.Fatalf("expected 2 sheets in metadata, got %v", result.Metadata["sheets"])
	}
}

func TestExtractEmptyFileSucceedsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	result := New().ExtractTextFromStream(context.Background(), path)
	if !result.Success {
		t.Fatalf("expected success for empty file, got %+v", result)
	}
	if got := domain.CollectText(result.TextChunks); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestExtractGarbageFileIsCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.xlsx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	result := New().ExtractTextFromStream(context.Background(), path)
	if result.Success {
		t.Fatalf("expected failure for garbage workbook")
	}
	if result.Status != domain.StatusCorrupted {
		t.Fatalf("expected corrupted status, got %s", result.Status)
	}
}
