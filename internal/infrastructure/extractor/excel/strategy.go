// Package excel extracts text from spreadsheet workbooks via excelize.
package excel

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/caseloom/docingest/internal/core/domain"
	"github.com/caseloom/docingest/internal/infrastructure/extractor"
)

type Strategy struct{}

func New() *Strategy { return &Strategy{} }

func (s *Strategy) Name() string { return "excel" }

func (s *Strategy) SupportedExtensions() []string {
	return []string{".xlsx", ".xls"}
}

func (s *Strategy) SupportedMimeTypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel",
	}
}

func (s *Strategy) CanHandle(filePath, mimeType string) bool {
	return extractor.Matches(filePath, mimeType, s.SupportedExtensions(), s.SupportedMimeTypes())
}

// ValidateFile opens the workbook and requires at least one sheet. An empty
// file is considered a valid empty workbook.
func (s *Strategy) ValidateFile(_ context.Context, filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if info.Size() == 0 {
		return true
	}

	wb, err := excelize.OpenFile(filePath)
	if err != nil {
		return false
	}
	defer wb.Close()

	return len(wb.GetSheetList()) > 0
}

func (s *Strategy) ExtractTextFromStream(ctx context.Context, filePath string) *domain.ExtractionResult {
	start := time.Now()

	info, err := os.Stat(filePath)
	if err != nil || !info.Mode().IsRegular() {
		return domain.NewExtractionFailure(
			domain.StatusCorrupted,
			filePath,
			s.Name(),
			fmt.Sprintf("invalid or corrupted workbook: %s", filePath),
			time.Since(start),
		)
	}

	if info.Size() == 0 {
		return domain.NewExtractionSuccess(
			domain.EmptyStream(),
			filePath,
			s.Name(),
			time.Since(start),
			map[string]any{"file_size": int64(0), "format": "excel", "sheets": 0},
		)
	}

	if !s.ValidateFile(ctx, filePath) {
		return domain.NewExtractionFailure(
			domain.StatusCorrupted,
			filePath,
			s.Name(),
			fmt.Sprintf("invalid or corrupted workbook: %s", filePath),
			time.Since(start),
		)
	}

	wb, err := excelize.OpenFile(filePath)
	if err != nil {
		return domain.NewExtractionFailure(
			domain.StatusExtractionFailed,
			filePath,
			s.Name(),
			err.Error(),
			time.Since(start),
		)
	}

	sheets := wb.GetSheetList()
	stream := newWorkbookStream(wb, sheets)

	return domain.NewExtractionSuccess(
		stream,
		filePath,
		s.Name(),
		time.Since(start),
		map[string]any{
			"file_size": info.Size(),
			"format":    "excel",
			"sheets":    len(sheets),
		},
	)
}

// workbookStream walks sheets row by row, packing rendered rows into chunks
// of at most StreamChunkSize characters. Sheet transitions emit a header
// line; a row-level read error is reported in-band and ends that sheet.
type workbookStream struct {
	wb     *excelize.File
	sheets []string

	sheetIdx int
	rows     *excelize.Rows
	done     bool
}

func newWorkbookStream(wb *excelize.File, sheets []string) *workbookStream {
	return &workbookStream{wb: wb, sheets: sheets}
}

func (s *workbookStream) Next() (string, bool) {
	if s.done {
		return "", false
	}

	var sb strings.Builder
	for sb.Len() < extractor.StreamChunkSize {
		if s.rows == nil {
			if s.sheetIdx >= len(s.sheets) {
				break
			}
			sheet := s.sheets[s.sheetIdx]
			rows, err := s.wb.Rows(sheet)
			if err != nil {
				sb.WriteString(fmt.Sprintf("Error reading sheet %s: %v\n", sheet, err))
				s.sheetIdx++
				continue
			}
			s.rows = rows
			sb.WriteString(fmt.Sprintf("\n=== Sheet: %s ===\n", sheet))
		}

		if !s.rows.Next() {
			_ = s.rows.Close()
			s.rows = nil
			s.sheetIdx++
			continue
		}

		cells, err := s.rows.Columns()
		if err != nil {
			sb.WriteString(fmt.Sprintf("Error reading row: %v\n", err))
			_ = s.rows.Close()
			s.rows = nil
			s.sheetIdx++
			continue
		}
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteByte('\n')
	}

	if sb.Len() == 0 {
		_ = s.Close()
		return "", false
	}
	return sb.String(), true
}

func (s *workbookStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.rows != nil {
		_ = s.rows.Close()
		s.rows = nil
	}
	return s.wb.Close()
}
