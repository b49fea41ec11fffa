// Package pdffile extracts text from PDF documents page by page.
package pdffile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/caseloom/docingest/internal/core/domain"
	"github.com/caseloom/docingest/internal/infrastructure/extractor"
)

type Strategy struct{}

func New() *Strategy { return &Strategy{} }

func (s *Strategy) Name() string { return "pdf" }

func (s *Strategy) SupportedExtensions() []string {
	return []string{".pdf"}
}

func (s *Strategy) SupportedMimeTypes() []string {
	return []string{"application/pdf"}
}

func (s *Strategy) CanHandle(filePath, mimeType string) bool {
	return extractor.Matches(filePath, mimeType, s.SupportedExtensions(), s.SupportedMimeTypes())
}

// ValidateFile parses the document structure and requires at least one page.
// Parser panics on malformed input are treated as validation failure.
func (s *Strategy) ValidateFile(_ context.Context, filePath string) (valid bool) {
	defer func() {
		if recover() != nil {
			valid = false
		}
	}()

	if !extractor.IsRegularNonEmpty(filePath) {
		return false
	}

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	return reader.NumPage() >= 1
}

func (s *Strategy) ExtractTextFromStream(ctx context.Context, filePath string) *domain.ExtractionResult {
	start := time.Now()

	if !s.ValidateFile(ctx, filePath) {
		return domain.NewExtractionFailure(
			domain.StatusCorrupted,
			filePath,
			s.Name(),
			fmt.Sprintf("invalid or corrupted PDF file: %s", filePath),
			time.Since(start),
		)
	}

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return domain.NewExtractionFailure(
			domain.StatusExtractionFailed,
			filePath,
			s.Name(),
			err.Error(),
			time.Since(start),
		)
	}

	pageCount := reader.NumPage()
	stream := newPageStream(f, reader, pageCount)

	return domain.NewExtractionSuccess(
		stream,
		filePath,
		s.Name(),
		time.Since(start),
		map[string]any{
			"file_size":  extractor.FileSize(filePath),
			"page_count": pageCount,
			"format":     "pdf",
		},
	)
}

// pageStream yields page text split into StreamChunkSize pieces, advancing
// through pages only as the consumer pulls. A page that fails to decode
// yields a descriptive in-band error chunk; the stream continues with the
// next page.
type pageStream struct {
	file      *os.File
	reader    *pdf.Reader
	pageCount int

	page    int
	pending []string
	done    bool
}

func newPageStream(file *os.File, reader *pdf.Reader, pageCount int) *pageStream {
	return &pageStream{file: file, reader: reader, pageCount: pageCount}
}

func (s *pageStream) Next() (string, bool) {
	if s.done {
		return "", false
	}

	for len(s.pending) == 0 {
		if s.page >= s.pageCount {
			_ = s.Close()
			return "", false
		}
		s.page++
		text, err := s.extractPage(s.page)
		if err != nil {
			s.pending = []string{fmt.Sprintf("Error extracting text from page %d: %v", s.page, err)}
			break
		}
		s.pending = extractor.ChunkRunes(text, extractor.StreamChunkSize)
	}

	chunk := s.pending[0]
	s.pending = s.pending[1:]
	return chunk, true
}

func (s *pageStream) extractPage(pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf page decode: %v", r)
		}
	}()

	page := s.reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (s *pageStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	s.pending = nil
	return s.file.Close()
}
