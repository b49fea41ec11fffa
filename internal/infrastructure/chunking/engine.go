package chunking

import (
	"regexp"
	"strings"

	"github.com/caseloom/docingest/internal/core/domain"
	"github.com/caseloom/docingest/internal/core/ports"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Engine re-segments extracted text into bounded chunks. It is stateless per
// call; the tokenizer is optional and its absence switches ChunkDocument to
// character-based budgeting.
type Engine struct {
	tokenizer ports.Tokenizer

	defaultMaxTokens int
	defaultOverlap   int
}

func NewEngine(tokenizer ports.Tokenizer, defaultMaxTokens, defaultOverlap int) *Engine {
	if defaultMaxTokens <= 0 {
		defaultMaxTokens = 512
	}
	if defaultOverlap < 0 {
		defaultOverlap = 0
	}
	if defaultOverlap >= defaultMaxTokens {
		defaultOverlap = defaultMaxTokens / 4
	}
	return &Engine{
		tokenizer:        tokenizer,
		defaultMaxTokens: defaultMaxTokens,
		defaultOverlap:   defaultOverlap,
	}
}

// Split implements ports.Chunker with the engine's configured defaults.
func (e *Engine) Split(text string) []string {
	return e.ChunkDocument(text, e.defaultMaxTokens, e.defaultOverlap)
}

// ChunkDocument groups sentences greedily under a token budget. When overlap
// is positive, each new chunk is seeded with trailing sentences of the
// previous one worth at most overlap tokens. A single sentence above the
// budget is emitted whole; sentences are never cut.
func (e *Engine) ChunkDocument(text string, maxTokens, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxTokens <= 0 {
		maxTokens = e.defaultMaxTokens
	}
	if e.tokenizer == nil {
		return e.chunkByCharacters(text, maxTokens*4)
	}

	sentences := splitSentences(text)
	var chunks []string
	var current string
	currentTokens := 0

	for _, sentence := range sentences {
		sentenceTokens := e.tokenizer.CountTokens(sentence)

		if currentTokens+sentenceTokens > maxTokens && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))

			if overlap > 0 {
				seed := e.overlapTail(current, overlap)
				if seed != "" {
					current = seed + " " + sentence
				} else {
					current = sentence
				}
				currentTokens = e.tokenizer.CountTokens(current)
			} else {
				current = sentence
				currentTokens = sentenceTokens
			}
			continue
		}

		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
		currentTokens += sentenceTokens
	}

	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// ChunkBySentences groups a fixed number of sentences per chunk, no overlap.
func (e *Engine) ChunkBySentences(text string, maxSentences int) []string {
	if maxSentences <= 0 {
		maxSentences = 1
	}
	sentences := splitSentences(text)
	var chunks []string
	for i := 0; i < len(sentences); i += maxSentences {
		end := i + maxSentences
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, strings.Join(sentences[i:end], " "))
	}
	return chunks
}

// ChunkByParagraphs groups a fixed number of blank-line-separated paragraphs
// per chunk, no overlap.
func (e *Engine) ChunkByParagraphs(text string, maxParagraphs int) []string {
	if maxParagraphs <= 0 {
		maxParagraphs = 1
	}
	paragraphs := splitParagraphs(text)
	var chunks []string
	for i := 0; i < len(paragraphs); i += maxParagraphs {
		end := i + maxParagraphs
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		chunks = append(chunks, strings.Join(paragraphs[i:end], "\n\n"))
	}
	return chunks
}

// Metadata derives counts for a single chunk.
func (e *Engine) Metadata(chunk string) domain.ChunkMetadata {
	meta := domain.ChunkMetadata{
		CharacterCount: len([]rune(chunk)),
		WordCount:      len(strings.Fields(chunk)),
		SentenceCount:  len(splitSentences(chunk)),
		ParagraphCount: len(splitParagraphs(chunk)),
	}
	if e.tokenizer != nil {
		meta.TokenCount = e.tokenizer.CountTokens(chunk)
	}
	return meta
}

// overlapTail walks sentences backward from the end of chunk, accumulating
// while the accumulated text stays within overlapTokens.
func (e *Engine) overlapTail(chunk string, overlapTokens int) string {
	sentences := splitSentences(chunk)
	tail := ""
	for i := len(sentences) - 1; i >= 0; i-- {
		candidate := sentences[i]
		if tail != "" {
			candidate = candidate + " " + tail
		}
		if e.tokenizer.CountTokens(candidate) > overlapTokens {
			break
		}
		tail = candidate
	}
	return tail
}

// chunkByCharacters is the no-tokenizer fallback. Cuts of maxChars retract to
// the last space when that space falls past 80% of the cut, so the boundary
// does not land mid-word.
func (e *Engine) chunkByCharacters(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 2048
	}
	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); {
		end := i + maxChars
		if end >= len(runes) {
			chunks = append(chunks, string(runes[i:]))
			break
		}
		cut := string(runes[i:end])
		if idx := strings.LastIndex(cut, " "); idx > int(float64(maxChars)*0.8) {
			cut = cut[:idx]
		}
		chunks = append(chunks, cut)
		i += len([]rune(cut))
	}
	return chunks
}

// splitSentences keeps terminal punctuation attached so sentences survive a
// rejoin round-trip.
func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[last:loc[1]])
		if s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
