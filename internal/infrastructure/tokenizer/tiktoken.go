package tokenizer

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken counts tokens with a BPE encoding. The encoding is loaded once on
// first use and shared read-only afterwards; concurrent first callers race on
// a single initialization guarded by sync.Once.
type Tiktoken struct {
	encodingName string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

func NewTiktoken(encodingName string) *Tiktoken {
	if encodingName == "" {
		encodingName = "cl100k_base"
	}
	return &Tiktoken{encodingName: encodingName}
}

// CountTokens returns the token count for text. If the encoding cannot be
// loaded it degrades to a four-characters-per-token estimate, matching the
// chunking engine's character fallback ratio.
func (t *Tiktoken) CountTokens(text string) int {
	t.once.Do(func() {
		t.enc, t.err = tiktoken.GetEncoding(t.encodingName)
		if t.err != nil {
			slog.Warn("tokenizer_load_failed", "encoding", t.encodingName, "error", t.err)
		}
	})
	if t.err != nil || t.enc == nil {
		return (len(text) + 3) / 4
	}
	return len(t.enc.Encode(text, nil, nil))
}
