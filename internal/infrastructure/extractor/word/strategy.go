// Package word extracts text from .docx documents by reading
// word/document.xml out of the ZIP container.
package word

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caseloom/docingest/internal/core/domain"
	"github.com/caseloom/docingest/internal/infrastructure/extractor"
)

const documentEntry = "word/document.xml"

type Strategy struct{}

func New() *Strategy { return &Strategy{} }

func (s *Strategy) Name() string { return "word" }

func (s *Strategy) SupportedExtensions() []string {
	return []string{".docx"}
}

func (s *Strategy) SupportedMimeTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

func (s *Strategy) CanHandle(filePath, mimeType string) bool {
	return extractor.Matches(filePath, mimeType, s.SupportedExtensions(), s.SupportedMimeTypes())
}

// ValidateFile checks the ZIP container opens and holds word/document.xml.
func (s *Strategy) ValidateFile(_ context.Context, filePath string) bool {
	if !extractor.IsRegularNonEmpty(filePath) {
		return false
	}
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return false
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == documentEntry {
			return true
		}
	}
	return false
}

func (s *Strategy) ExtractTextFromStream(ctx context.Context, filePath string) *domain.ExtractionResult {
	start := time.Now()

	if !s.ValidateFile(ctx, filePath) {
		return domain.NewExtractionFailure(
			domain.StatusCorrupted,
			filePath,
			s.Name(),
			fmt.Sprintf("invalid or corrupted DOCX file: %s", filePath),
			time.Since(start),
		)
	}

	r, err := zip.OpenReader(filePath)
	if err != nil {
		return domain.NewExtractionFailure(
			domain.StatusExtractionFailed,
			filePath,
			s.Name(),
			err.Error(),
			time.Since(start),
		)
	}
	defer r.Close()

	var chunks []string
	text, err := readDocumentText(&r.Reader)
	if err != nil {
		// Per-unit degradation: the container was valid but the body
		// failed to decode, report it inside the stream.
		chunks = []string{fmt.Sprintf("Error extracting text from DOCX: %v", err)}
	} else {
		chunks = extractor.ChunkRunes(text, extractor.StreamChunkSize)
	}

	paragraphs := len(strings.Split(text, "\n"))
	if text == "" {
		paragraphs = 0
	}

	return domain.NewExtractionSuccess(
		domain.StreamFromChunks(chunks...),
		filePath,
		s.Name(),
		time.Since(start),
		map[string]any{
			"file_size":       extractor.FileSize(filePath),
			"format":          "docx",
			"paragraph_count": paragraphs,
		},
	)
}

// readDocumentText walks the WordprocessingML token stream and collects
// paragraph text. Table cell content arrives through the same paragraph
// elements, so a single walk covers body text and tables.
func readDocumentText(zr *zip.Reader) (string, error) {
	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == documentEntry {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%s not found in archive", documentEntry)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", documentEntry, err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var sb strings.Builder
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", documentEntry, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					current.WriteByte('\t')
				}
			case "br":
				if inParagraph {
					current.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					inParagraph = false
					if para := strings.TrimSpace(current.String()); para != "" {
						sb.WriteString(para)
						sb.WriteByte('\n')
					}
				}
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
