package extractor

import (
	"io"
	"strings"
	"testing"
)

func TestChunkRunesPreservesEveryRune(t *testing.T) {
	text := strings.Repeat("договор ", 100)
	chunks := ChunkRunes(text, 64)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 64 {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatalf("joined chunks do not reconstruct input")
	}
}

func TestChunkRunesEmptyInput(t *testing.T) {
	if chunks := ChunkRunes("", 10); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
}

type closeCountingReader struct {
	io.Reader
	closes int
}

func (c *closeCountingReader) Close() error {
	c.closes++
	return nil
}

func TestReaderStreamYieldsAndCloses(t *testing.T) {
	src := &closeCountingReader{Reader: strings.NewReader("hello мир")}
	stream := NewReaderStream(src, 4)

	var parts []string
	for {
		chunk, ok := stream.Next()
		if !ok {
			break
		}
		if n := len([]rune(chunk)); n > 4 {
			t.Fatalf("chunk %q has %d runes", chunk, n)
		}
		parts = append(parts, chunk)
	}

	if got := strings.Join(parts, ""); got != "hello мир" {
		t.Fatalf("reconstructed %q", got)
	}
	if src.closes != 1 {
		t.Fatalf("underlying reader closed %d times, want 1", src.closes)
	}
	if _, ok := stream.Next(); ok {
		t.Fatalf("exhausted stream yielded a chunk")
	}
}
