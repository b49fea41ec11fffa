// Package classify assigns a document type from a fixed label taxonomy using
// zero-shot classification, condensing oversized input through a lazily
// loaded summarizer.
package classify

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/caseloom/docingest/internal/core/domain"
	"github.com/caseloom/docingest/internal/core/ports"
)

// SummarizerFactory builds the summarization model on first use. Loading is
// deferred because most documents fit the classifier budget and never need
// condensation.
type SummarizerFactory func() (ports.Summarizer, error)

type Options struct {
	Labels             []string
	HypothesisTemplate string

	// MaxInputTokens is the classifier's input window; longer text is
	// condensed before classification.
	MaxInputTokens int

	// SummarizerInputTokens caps what is fed to the summarizer.
	SummarizerInputTokens int
	SummaryMaxTokens      int
	SummaryMinTokens      int

	// OnCondensation, when set, is called once per condensed input with the
	// outcome: "summarized" or "truncated".
	OnCondensation func(outcome string)
}

func (o Options) withDefaults() Options {
	if o.HypothesisTemplate == "" {
		o.HypothesisTemplate = "This document is a %s."
	}
	if o.MaxInputTokens <= 0 {
		o.MaxInputTokens = 1024
	}
	if o.SummarizerInputTokens <= 0 {
		o.SummarizerInputTokens = 512
	}
	if o.SummaryMaxTokens <= 0 {
		o.SummaryMaxTokens = 150
	}
	if o.SummaryMinTokens <= 0 {
		o.SummaryMinTokens = 40
	}
	return o
}

// Pipeline is safe for concurrent use. The summarizer is initialized at most
// once per pipeline instance and shared read-only afterwards.
type Pipeline struct {
	model         ports.ZeroShotModel
	newSummarizer SummarizerFactory
	tokenizer     ports.Tokenizer
	opts          Options

	once       sync.Once
	summarizer ports.Summarizer
	sumErr     error
}

func NewPipeline(
	model ports.ZeroShotModel,
	summarizerFactory SummarizerFactory,
	tokenizer ports.Tokenizer,
	opts Options,
) *Pipeline {
	return &Pipeline{
		model:         model,
		newSummarizer: summarizerFactory,
		tokenizer:     tokenizer,
		opts:          opts.withDefaults(),
	}
}

// Classify is total: every outcome, including model failure, is reported
// through the result. It never panics and never returns an error.
func (p *Pipeline) Classify(ctx context.Context, text string) domain.ClassificationResult {
	if strings.TrimSpace(text) == "" {
		return domain.NewClassificationError("Input text is empty")
	}

	input := p.condense(ctx, text)

	scores, err := p.model.Scores(ctx, input, p.opts.Labels, p.opts.HypothesisTemplate)
	if err != nil {
		return domain.NewClassificationError(err.Error())
	}
	if len(scores) == 0 {
		return domain.NewClassificationError("classifier returned no scores")
	}

	top, confidence := topLabel(scores)
	return domain.ClassificationResult{
		DocumentType: top,
		Confidence:   confidence,
		Candidates:   scores,
	}
}

// condense returns text unchanged when it fits the classifier budget;
// otherwise it summarizes, falling back to plain truncation when the
// summarizer cannot be loaded or fails.
func (p *Pipeline) condense(ctx context.Context, text string) string {
	if p.inputLength(text) <= p.opts.MaxInputTokens {
		return text
	}

	summarizer := p.loadSummarizer()
	if summarizer == nil {
		p.recordCondensation("truncated")
		return p.truncate(text, p.opts.MaxInputTokens)
	}

	summary, err := summarizer.Summarize(
		ctx,
		p.truncate(text, p.opts.SummarizerInputTokens),
		ports.SummaryOptions{
			MaxLength:     p.opts.SummaryMaxTokens,
			MinLength:     p.opts.SummaryMinTokens,
			NumBeams:      4,
			LengthPenalty: 2.0,
			EarlyStopping: true,
		},
	)
	if err != nil || strings.TrimSpace(summary) == "" {
		slog.Warn("condensation_failed", "error", err)
		p.recordCondensation("truncated")
		return p.truncate(text, p.opts.MaxInputTokens)
	}
	p.recordCondensation("summarized")
	return summary
}

func (p *Pipeline) recordCondensation(outcome string) {
	if p.opts.OnCondensation != nil {
		p.opts.OnCondensation(outcome)
	}
}

func (p *Pipeline) loadSummarizer() ports.Summarizer {
	p.once.Do(func() {
		if p.newSummarizer == nil {
			return
		}
		p.summarizer, p.sumErr = p.newSummarizer()
		if p.sumErr != nil {
			slog.Error("summarizer_load_failed", "error", p.sumErr)
		}
	})
	if p.sumErr != nil {
		return nil
	}
	return p.summarizer
}

// inputLength measures text against the token budget: exact when a tokenizer
// is configured, character count otherwise.
func (p *Pipeline) inputLength(text string) int {
	if p.tokenizer != nil {
		return p.tokenizer.CountTokens(text)
	}
	return len(text)
}

// truncate cuts text to roughly budget tokens without a mid-rune break.
func (p *Pipeline) truncate(text string, budget int) string {
	limit := budget
	if p.tokenizer != nil {
		// Approximate tokens back to characters for the cut.
		limit = budget * 4
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func topLabel(scores map[string]float64) (string, float64) {
	var best string
	bestScore := -1.0
	for label, score := range scores {
		if score > bestScore || (score == bestScore && label < best) {
			best = label
			bestScore = score
		}
	}
	return best, bestScore
}
