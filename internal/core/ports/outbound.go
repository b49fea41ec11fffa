package ports

import (
	"context"
	"io"
	"time"

	"github.com/caseloom/docingest/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveClassification(ctx context.Context, id string, result domain.ClassificationResult) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes extraction events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// ExtractionStrategy is a file-type-specific text extractor. Implementations
// are stateless across calls; ExtractTextFromStream never returns an error,
// failures are reported inside the result envelope.
type ExtractionStrategy interface {
	Name() string
	CanHandle(filePath, mimeType string) bool
	ValidateFile(ctx context.Context, filePath string) bool
	ExtractTextFromStream(ctx context.Context, filePath string) *domain.ExtractionResult
	SupportedExtensions() []string
	SupportedMimeTypes() []string
}

// StrategySelector picks the first strategy capable of handling a file.
// When none matches it returns a *domain.UnsupportedFileTypeError.
type StrategySelector interface {
	Select(filePath, mimeType string) (ExtractionStrategy, error)
}

// DocumentClassifier assigns a document type to extracted text. The returned
// result is total: model failures are folded into its Error field.
type DocumentClassifier interface {
	Classify(ctx context.Context, text string) domain.ClassificationResult
}

// Chunker splits text into bounded chunks using configured defaults.
type Chunker interface {
	Split(text string) []string
}

// Tokenizer counts tokens the way the downstream models would. Absence of a
// tokenizer (nil) triggers character-based approximations in consumers.
type Tokenizer interface {
	CountTokens(text string) int
}

// ProcessObserver receives per-stage signals from document processing.
// Implementations are safe for concurrent use; a nil observer disables
// observation. Condensation outcomes are "summarized" or "truncated".
type ProcessObserver interface {
	ObserveExtraction(strategy string, duration time.Duration, success bool)
	ObserveClassification(duration time.Duration, classified bool)
	RecordCondensation(outcome string)
}

// ZeroShotModel scores text against candidate labels phrased through a
// hypothesis template, returning one score per label in [0,1].
type ZeroShotModel interface {
	Scores(ctx context.Context, text string, labels []string, hypothesisTemplate string) (map[string]float64, error)
}

// SummaryOptions bound the generated summary length and decoding strategy.
type SummaryOptions struct {
	MaxLength     int
	MinLength     int
	NumBeams      int
	LengthPenalty float64
	EarlyStopping bool
}

// Summarizer condenses text to a bounded-length summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error)
}
