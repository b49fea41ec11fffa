package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caseloom/docingest/internal/core/domain"
	"github.com/caseloom/docingest/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	selector   ports.StrategySelector
	chunker    ports.Chunker
	classifier ports.DocumentClassifier
	observer   ports.ProcessObserver
	logger     *slog.Logger
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	selector ports.StrategySelector,
	chunker ports.Chunker,
	classifier ports.DocumentClassifier,
	observer ports.ProcessObserver,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		repo:       repo,
		storage:    storage,
		selector:   selector,
		chunker:    chunker,
		classifier: classifier,
		observer:   observer,
		logger:     logger,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	result, err := uc.extract(ctx, doc)
	if err != nil {
		if uc.observer != nil {
			uc.observer.ObserveExtraction("", 0, false)
		}
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}
	if uc.observer != nil {
		uc.observer.ObserveExtraction(result.StrategyUsed, result.ProcessingTime, result.Success)
	}

	if !result.Success {
		// Extraction decided the terminal state itself (corrupted vs
		// extraction_failed); persist it verbatim.
		if err := uc.markStatus(ctx, documentID, result.Status, result.ErrorMessage); err != nil {
			return fmt.Errorf("set extraction failure status: %w", err)
		}
		return domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New(result.ErrorMessage))
	}

	text := domain.CollectText(result.TextChunks)
	if text == "" {
		// The strategy reported a valid empty document (a blank CSV or
		// sheet). There is nothing to chunk or classify; the document is
		// done.
		uc.logger.Info("document_empty",
			"document_id", documentID,
			"strategy", result.StrategyUsed,
		)
		if err := uc.markStatus(ctx, documentID, domain.StatusProcessed, ""); err != nil {
			return fmt.Errorf("set status=processed: %w", err)
		}
		return nil
	}

	chunks := uc.chunker.Split(text)
	uc.logger.Info("document_extracted",
		"document_id", documentID,
		"strategy", result.StrategyUsed,
		"characters", len(text),
		"chunks", len(chunks),
	)

	classifyStart := time.Now()
	classification := uc.classifier.Classify(ctx, text)
	if uc.observer != nil {
		uc.observer.ObserveClassification(time.Since(classifyStart), classification.Classified())
	}
	if classification.Classified() {
		if err := uc.repo.SaveClassification(ctx, documentID, classification); err != nil {
			if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
				return fmt.Errorf("save classification: %w; mark failed status: %v", err, failErr)
			}
			return fmt.Errorf("save classification: %w", err)
		}
	} else {
		// Classification failures do not fail the document: extraction
		// succeeded and the text is usable, so finish processing with the
		// classifier error recorded.
		uc.logger.Warn("classification_skipped",
			"document_id", documentID,
			"error", classification.Error,
		)
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusProcessed, classification.Error); err != nil {
		return fmt.Errorf("set status=processed: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

// extract materializes the stored blob to a temp file (the strategies work on
// paths) and runs the selected strategy over it.
func (uc *ProcessDocumentUseCase) extract(ctx context.Context, doc *domain.Document) (*domain.ExtractionResult, error) {
	path, cleanup, err := uc.materialize(ctx, doc)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	strategy, err := uc.selector.Select(path, doc.MimeType)
	if err != nil {
		return nil, fmt.Errorf("select extraction strategy: %w", err)
	}

	result := strategy.ExtractTextFromStream(ctx, path)
	if result.Success {
		// Drain inside extract so cleanup of the temp file can run after the
		// stream has been fully consumed.
		text := domain.CollectText(result.TextChunks)
		result.TextChunks = domain.StreamFromChunks(text)
	}
	return result, nil
}

func (uc *ProcessDocumentUseCase) materialize(ctx context.Context, doc *domain.Document) (string, func(), error) {
	blob, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", nil, fmt.Errorf("open stored document: %w", err)
	}
	defer blob.Close()

	tmp, err := os.CreateTemp("", "docingest-*"+filepath.Ext(doc.Filename))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("copy document to temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}

	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusExtractionFailed, processErr.Error())
}
