package extractor

import (
	"bufio"
	"io"
	"os"
	"unicode/utf8"
)

// StreamChunkSize is the character budget per yielded stream chunk, shared by
// every strategy.
const StreamChunkSize = 8192

// IsRegularNonEmpty reports whether path names an existing regular file with
// at least one byte. Any stat failure counts as false.
func IsRegularNonEmpty(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// FileSize returns the size of path in bytes, or zero when it cannot be
// determined.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// ChunkRunes splits text into pieces of at most size runes, preserving every
// rune. Empty input yields nil.
func ChunkRunes(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = StreamChunkSize
	}
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// ReaderStream lazily yields size-rune chunks from rc, closing it when the
// stream is exhausted or abandoned. Single-pass by construction.
type ReaderStream struct {
	rc     io.ReadCloser
	reader *bufio.Reader
	size   int
	done   bool
}

func NewReaderStream(rc io.ReadCloser, size int) *ReaderStream {
	if size <= 0 {
		size = StreamChunkSize
	}
	return &ReaderStream{
		rc:     rc,
		reader: bufio.NewReader(rc),
		size:   size,
	}
}

func (s *ReaderStream) Next() (string, bool) {
	if s.done {
		return "", false
	}

	buf := make([]byte, 0, s.size)
	for runes := 0; runes < s.size; runes++ {
		r, _, err := s.reader.ReadRune()
		if err != nil {
			_ = s.Close()
			break
		}
		var encoded [utf8.UTFMax]byte
		buf = append(buf, encoded[:utf8.EncodeRune(encoded[:], r)]...)
	}
	if len(buf) == 0 {
		_ = s.Close()
		return "", false
	}
	return string(buf), true
}

func (s *ReaderStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.rc.Close()
}
