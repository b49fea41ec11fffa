package domain

import (
	"strings"
	"time"
)

// TextStream is a lazy, single-pass sequence of extracted text chunks.
// Next returns the next chunk and false once the stream is exhausted.
// Consumers may stop pulling at any point; Close releases the backing
// file handle and is safe to call more than once. Consuming an exhausted
// stream a second time yields nothing.
type TextStream interface {
	Next() (string, bool)
	Close() error
}

// ExtractionResult is the uniform envelope every extraction strategy returns.
// ErrorMessage is set exactly when Success is false, and Status is
// StatusProcessed exactly when Success is true.
type ExtractionResult struct {
	Success        bool
	Status         DocumentStatus
	TextChunks     TextStream
	FilePath       string
	StrategyUsed   string
	ErrorMessage   string
	ProcessingTime time.Duration
	Metadata       map[string]any
	ExtractedAt    time.Time
}

func NewExtractionSuccess(
	chunks TextStream,
	filePath, strategyUsed string,
	processingTime time.Duration,
	metadata map[string]any,
) *ExtractionResult {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &ExtractionResult{
		Success:        true,
		Status:         StatusProcessed,
		TextChunks:     chunks,
		FilePath:       filePath,
		StrategyUsed:   strategyUsed,
		ProcessingTime: processingTime,
		Metadata:       metadata,
		ExtractedAt:    time.Now().UTC(),
	}
}

func NewExtractionFailure(
	status DocumentStatus,
	filePath, strategyUsed, errorMessage string,
	processingTime time.Duration,
) *ExtractionResult {
	return &ExtractionResult{
		Success:        false,
		Status:         status,
		TextChunks:     EmptyStream(),
		FilePath:       filePath,
		StrategyUsed:   strategyUsed,
		ErrorMessage:   errorMessage,
		ProcessingTime: processingTime,
		Metadata:       map[string]any{},
		ExtractedAt:    time.Now().UTC(),
	}
}

// CollectText drains the stream into a single string and closes it.
// Only call this when the whole document is wanted in memory.
func CollectText(stream TextStream) string {
	if stream == nil {
		return ""
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, ok := stream.Next()
		if !ok {
			return sb.String()
		}
		sb.WriteString(chunk)
	}
}

type sliceStream struct {
	chunks []string
	pos    int
}

func (s *sliceStream) Next() (string, bool) {
	if s.pos >= len(s.chunks) {
		return "", false
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, true
}

func (s *sliceStream) Close() error {
	s.pos = len(s.chunks)
	return nil
}

// EmptyStream returns a stream that is already exhausted.
func EmptyStream() TextStream {
	return &sliceStream{}
}

// StreamFromChunks wraps pre-materialized chunks in a TextStream.
func StreamFromChunks(chunks ...string) TextStream {
	return &sliceStream{chunks: chunks}
}

// FuncStream adapts a generator function and an optional closer into a
// TextStream. After next reports false, or after Close, the closer runs
// exactly once.
type FuncStream struct {
	next   func() (string, bool)
	closer func() error
	done   bool
}

func NewFuncStream(next func() (string, bool), closer func() error) *FuncStream {
	return &FuncStream{next: next, closer: closer}
}

func (s *FuncStream) Next() (string, bool) {
	if s.done {
		return "", false
	}
	chunk, ok := s.next()
	if !ok {
		_ = s.Close()
		return "", false
	}
	return chunk, true
}

func (s *FuncStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.closer != nil {
		return s.closer()
	}
	return nil
}
