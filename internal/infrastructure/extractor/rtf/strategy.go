// Package rtf extracts plain text from Rich Text Format files by stripping
// control words and skipping non-text destination groups.
package rtf

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/caseloom/docingest/internal/core/domain"
	"github.com/caseloom/docingest/internal/infrastructure/extractor"
)

type Strategy struct{}

func New() *Strategy { return &Strategy{} }

func (s *Strategy) Name() string { return "rtf" }

func (s *Strategy) SupportedExtensions() []string {
	return []string{".rtf"}
}

func (s *Strategy) SupportedMimeTypes() []string {
	return []string{"application/rtf", "text/rtf"}
}

func (s *Strategy) CanHandle(filePath, mimeType string) bool {
	return extractor.Matches(filePath, mimeType, s.SupportedExtensions(), s.SupportedMimeTypes())
}

// ValidateFile requires the RTF magic prefix.
func (s *Strategy) ValidateFile(_ context.Context, filePath string) bool {
	if !extractor.IsRegularNonEmpty(filePath) {
		return false
	}
	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 5)
	if _, err := f.Read(head); err != nil {
		return false
	}
	return string(head) == `{\rtf`
}

func (s *Strategy) ExtractTextFromStream(ctx context.Context, filePath string) *domain.ExtractionResult {
	start := time.Now()

	if !s.ValidateFile(ctx, filePath) {
		return domain.NewExtractionFailure(
			domain.StatusCorrupted,
			filePath,
			s.Name(),
			fmt.Sprintf("invalid or corrupted RTF file: %s", filePath),
			time.Since(start),
		)
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return domain.NewExtractionFailure(
			domain.StatusExtractionFailed,
			filePath,
			s.Name(),
			err.Error(),
			time.Since(start),
		)
	}

	text := stripControls(string(raw))
	return domain.NewExtractionSuccess(
		domain.StreamFromChunks(extractor.ChunkRunes(text, extractor.StreamChunkSize)...),
		filePath,
		s.Name(),
		time.Since(start),
		map[string]any{
			"file_size": extractor.FileSize(filePath),
			"format":    "rtf",
		},
	)
}

// Destination groups whose content is metadata, not document text.
var skipDestinations = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"header":     true,
	"footer":     true,
	"generator":  true,
}

// stripControls walks the RTF token stream and keeps only visible text.
func stripControls(src string) string {
	var sb strings.Builder
	skipDepth := 0
	depth := 0

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '{':
			depth++
		case '}':
			if skipDepth > 0 && depth <= skipDepth {
				skipDepth = 0
			}
			depth--
		case '\\':
			word, arg, consumed := readControl(src[i+1:])
			i += consumed
			if skipDepth > 0 {
				continue
			}
			switch word {
			case "par", "line", "sect", "page":
				sb.WriteByte('\n')
			case "tab", "cell":
				sb.WriteByte('\t')
			case "'":
				// Hex escapes carry codepage bytes, not UTF-8. Legacy RTF
				// defaults to Windows-1252; DecodeByte maps the undefined
				// slots to U+FFFD.
				if v, err := strconv.ParseUint(arg, 16, 8); err == nil {
					if v < 0x80 {
						sb.WriteByte(byte(v))
					} else {
						sb.WriteRune(charmap.Windows1252.DecodeByte(byte(v)))
					}
				}
			case "u":
				if v, err := strconv.Atoi(arg); err == nil && v > 0 {
					sb.WriteRune(rune(v))
				}
				// The replacement character after \uN is consumed by
				// readControl.
			case "\\", "{", "}":
				sb.WriteString(word)
			case "*":
				// \* introduces an ignorable destination.
				skipDepth = depth
			default:
				if skipDestinations[word] {
					skipDepth = depth
				}
			}
		case '\r', '\n':
			// Raw newlines in RTF source are not document text.
		default:
			if skipDepth == 0 {
				sb.WriteByte(c)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// readControl parses the control word or symbol after a backslash and returns
// the word, its argument, and how many bytes of rest were consumed.
func readControl(rest string) (word, arg string, consumed int) {
	if rest == "" {
		return "", "", 0
	}

	c := rest[0]
	// Control symbols: a single non-alphabetic character.
	if !isAlpha(c) {
		if c == '\'' && len(rest) >= 3 {
			return "'", rest[1:3], 3
		}
		return string(c), "", 1
	}

	i := 0
	for i < len(rest) && isAlpha(rest[i]) {
		i++
	}
	word = rest[:i]

	j := i
	if j < len(rest) && (rest[j] == '-' || isDigit(rest[j])) {
		j++
		for j < len(rest) && isDigit(rest[j]) {
			j++
		}
		arg = rest[i:j]
	}

	// A single space after the control word is part of it.
	if j < len(rest) && rest[j] == ' ' {
		j++
	}
	// \uN is followed by one replacement character to skip.
	if word == "u" && j < len(rest) {
		j++
	}
	return word, arg, j
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
