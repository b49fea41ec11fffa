package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caseloom/docingest/internal/config"
	"github.com/caseloom/docingest/internal/core/ports"
	"github.com/caseloom/docingest/internal/core/usecase"
	"github.com/caseloom/docingest/internal/infrastructure/chunking"
	"github.com/caseloom/docingest/internal/infrastructure/classify"
	"github.com/caseloom/docingest/internal/infrastructure/extractor"
	"github.com/caseloom/docingest/internal/infrastructure/extractor/csvfile"
	"github.com/caseloom/docingest/internal/infrastructure/extractor/excel"
	"github.com/caseloom/docingest/internal/infrastructure/extractor/pdffile"
	"github.com/caseloom/docingest/internal/infrastructure/extractor/plaintext"
	"github.com/caseloom/docingest/internal/infrastructure/extractor/rtf"
	"github.com/caseloom/docingest/internal/infrastructure/extractor/word"
	"github.com/caseloom/docingest/internal/infrastructure/inference"
	"github.com/caseloom/docingest/internal/infrastructure/queue/nats"
	"github.com/caseloom/docingest/internal/infrastructure/repository/postgres"
	"github.com/caseloom/docingest/internal/infrastructure/resilience"
	"github.com/caseloom/docingest/internal/infrastructure/storage/localfs"
	"github.com/caseloom/docingest/internal/infrastructure/tokenizer"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor

	closeFn func()
}

// New wires the full application graph. observer may be nil; the API process
// passes nil since only the worker records processing-stage metrics.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, observer ports.ProcessObserver) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	labels, err := config.LoadLabels(cfg.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("load label taxonomy: %w", err)
	}

	inferenceClient := inference.New(cfg.InferenceURL, cfg.ZeroShotModelName, cfg.SummaryModelName).
		WithExecutor(executor)
	counter := tokenizer.NewTiktoken(cfg.TokenizerEncoding)

	classifyOpts := classify.Options{
		Labels:                labels,
		HypothesisTemplate:    cfg.HypothesisTemplate,
		MaxInputTokens:        cfg.ClassifierMaxInputTokens,
		SummarizerInputTokens: cfg.SummarizerMaxInputTokens,
		SummaryMaxTokens:      cfg.SummaryMaxTokens,
		SummaryMinTokens:      cfg.SummaryMinTokens,
	}
	if observer != nil {
		classifyOpts.OnCondensation = observer.RecordCondensation
	}
	classifier := classify.NewPipeline(
		inference.NewZeroShot(inferenceClient),
		func() (ports.Summarizer, error) {
			return inference.NewSummarizer(inferenceClient), nil
		},
		counter,
		classifyOpts,
	)

	selector := extractor.NewSelector(
		plaintext.New(),
		csvfile.New(),
		excel.New(),
		rtf.New(),
		pdffile.New(),
		word.New(),
	)
	chunker := chunking.NewEngine(counter, cfg.ChunkMaxTokens, cfg.ChunkOverlap)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, storage, selector, chunker, classifier, observer, logger)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
