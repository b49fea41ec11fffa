// Package plaintext extracts text from UTF-8 text and markdown files.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/caseloom/docingest/internal/core/domain"
	"github.com/caseloom/docingest/internal/infrastructure/extractor"
)

type Strategy struct{}

func New() *Strategy { return &Strategy{} }

func (s *Strategy) Name() string { return "plaintext" }

func (s *Strategy) SupportedExtensions() []string {
	return []string{".txt", ".md"}
}

func (s *Strategy) SupportedMimeTypes() []string {
	return []string{"text/plain", "text/markdown"}
}

func (s *Strategy) CanHandle(filePath, mimeType string) bool {
	return extractor.Matches(filePath, mimeType, s.SupportedExtensions(), s.SupportedMimeTypes())
}

// ValidateFile accepts existing, non-empty regular files whose first KiB is
// valid UTF-8. Never returns an error; anomalies read as false.
func (s *Strategy) ValidateFile(_ context.Context, filePath string) bool {
	if !extractor.IsRegularNonEmpty(filePath) {
		return false
	}

	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 1024)
	n, err := f.Read(head)
	if err != nil || n == 0 {
		return false
	}
	head = head[:n]

	// A read boundary may cut a multi-byte rune; trim the tail before
	// judging validity.
	for len(head) > 0 && !utf8.Valid(head) {
		if r, _ := utf8.DecodeLastRune(head); r != utf8.RuneError {
			break
		}
		head = head[:len(head)-1]
	}
	return utf8.Valid(head) && len(head) > 0
}

func (s *Strategy) ExtractTextFromStream(ctx context.Context, filePath string) *domain.ExtractionResult {
	start := time.Now()

	if !s.ValidateFile(ctx, filePath) {
		return domain.NewExtractionFailure(
			domain.StatusCorrupted,
			filePath,
			s.Name(),
			fmt.Sprintf("invalid or corrupted text file: %s", filePath),
			time.Since(start),
		)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return domain.NewExtractionFailure(
			domain.StatusExtractionFailed,
			filePath,
			s.Name(),
			err.Error(),
			time.Since(start),
		)
	}

	return domain.NewExtractionSuccess(
		extractor.NewReaderStream(f, extractor.StreamChunkSize),
		filePath,
		s.Name(),
		time.Since(start),
		map[string]any{
			"file_size":  extractor.FileSize(filePath),
			"encoding":   "utf-8",
			"chunk_size": extractor.StreamChunkSize,
		},
	)
}
