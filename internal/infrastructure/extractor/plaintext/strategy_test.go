package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caseloom/docingest/internal/core/domain"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestExtractSmallFile(t *testing.T) {
	path := writeFile(t, "note.txt", []byte("hello legal world"))

	result := New().ExtractTextFromStream(context.Background(), path)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Status != domain.StatusProcessed {
		t.Fatalf("expected processed status, got %s", result.Status)
	}
	if got := domain.CollectText(result.TextChunks); got != "hello legal world" {
		t.Fatalf("unexpected text: %q", got)
	}
	if result.StrategyUsed != "plaintext" {
		t.Fatalf("unexpected strategy name: %s", result.StrategyUsed)
	}
}

func TestExtractStreamsLargeFileInChunks(t *testing.T) {
	content := strings.Repeat("abcdefghij", 2000)
	path := writeFile(t, "big.txt", []byte(content))

	result := New().ExtractTextFromStream(context.Background(), path)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	var chunks []string
	for {
		chunk, ok := result.TextChunks.Next()
		if !ok {
			break
		}
		chunks = append(chunks, chunk)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for 20000 chars, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != content {
		t.Fatalf("chunks do not reconstruct content")
	}
}

func TestExtractEmptyFileIsCorrupted(t *testing.T) {
	path := writeFile(t, "empty.txt", nil)

	result := New().ExtractTextFromStream(context.Background(), path)
	if result.Success {
		t.Fatalf("expected failure for empty file")
	}
	if result.Status != domain.StatusCorrupted {
		t.Fatalf("expected corrupted status, got %s", result.Status)
	}
	if result.ErrorMessage == "" {
		t.Fatalf("expected error message on failure")
	}
}

func TestExtractBinaryContentIsCorrupted(t *testing.T) {
	path := writeFile(t, "blob.txt", []byte{0xff, 0xfe, 0x00, 0x80, 0x81})

	result := New().ExtractTextFromStream(context.Background(), path)
	if result.Success {
		t.Fatalf("expected failure for non-UTF-8 content")
	}
	if result.Status != domain.StatusCorrupted {
		t.Fatalf("expected corrupted status, got %s", result.Status)
	}
}

func TestValidateFileAcceptsMultibyteBoundary(t *testing.T) {
	// 1024-byte read boundary falls inside a multi-byte rune.
	content := strings.Repeat("a", 1023) + "щи"
	path := writeFile(t, "boundary.txt", []byte(content))

	if !New().ValidateFile(context.Background(), path) {
		t.Fatalf("expected valid UTF-8 file despite split rune at read boundary")
	}
}

func TestStreamIsSinglePass(t *testing.T) {
	path := writeFile(t, "once.txt", []byte("single pass"))

	result := New().ExtractTextFromStream(context.Background(), path)
	if got := domain.CollectText(result.TextChunks); got != "single pass" {
		t.Fatalf("unexpected first pass: %q", got)
	}
	if chunk, ok := result.TextChunks.Next(); ok {
		t.Fatalf("expected exhausted stream, got %q", chunk)
	}
}
