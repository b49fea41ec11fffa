// Package extractor holds the strategy selector and the shared plumbing that
// file-type-specific extraction strategies are built from. Each strategy
// lives in its own subpackage and declares the extensions and MIME types it
// handles; the selector probes them in registration order.
package extractor

import (
	"path/filepath"
	"strings"

	"github.com/caseloom/docingest/internal/core/domain"
	"github.com/caseloom/docingest/internal/core/ports"
)

// Selector picks the first registered strategy whose declaration matches a
// file. Selection is pure: no file I/O, no side effects.
type Selector struct {
	strategies []ports.ExtractionStrategy
}

func NewSelector(strategies ...ports.ExtractionStrategy) *Selector {
	return &Selector{strategies: strategies}
}

func (s *Selector) Select(filePath, mimeType string) (ports.ExtractionStrategy, error) {
	for _, strategy := range s.strategies {
		if strategy.CanHandle(filePath, mimeType) {
			return strategy, nil
		}
	}
	return nil, &domain.UnsupportedFileTypeError{
		FilePath:            filePath,
		MimeType:            mimeType,
		Extension:           strings.ToLower(filepath.Ext(filePath)),
		SupportedExtensions: s.SupportedExtensions(),
		SupportedMimeTypes:  s.SupportedMimeTypes(),
	}
}

// SupportedExtensions aggregates the declarations of every registered
// strategy, preserving registration order.
func (s *Selector) SupportedExtensions() []string {
	var out []string
	seen := map[string]bool{}
	for _, strategy := range s.strategies {
		for _, ext := range strategy.SupportedExtensions() {
			if !seen[ext] {
				seen[ext] = true
				out = append(out, ext)
			}
		}
	}
	return out
}

func (s *Selector) SupportedMimeTypes() []string {
	var out []string
	seen := map[string]bool{}
	for _, strategy := range s.strategies {
		for _, mt := range strategy.SupportedMimeTypes() {
			if !seen[mt] {
				seen[mt] = true
				out = append(out, mt)
			}
		}
	}
	return out
}

// Matches is the shared CanHandle implementation: the file's extension is in
// exts, or the MIME type is in mimeTypes. Logical OR, case-insensitive.
func Matches(filePath, mimeType string, exts, mimeTypes []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	for _, m := range mimeTypes {
		if mime == m {
			return true
		}
	}
	return false
}
