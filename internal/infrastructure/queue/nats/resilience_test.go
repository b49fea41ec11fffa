package nats

import (
	"errors"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/caseloom/docingest/internal/core/domain"
)

func TestClassifyNATSError(t *testing.T) {
	if class := classifyNATSError(nil); class.Retryable || class.RecordFailure {
		t.Fatalf("nil error classified as failure: %+v", class)
	}

	class := classifyNATSError(nats.ErrNoServers)
	if !class.Retryable || !class.RecordFailure {
		t.Fatalf("connection error should be retryable: %+v", class)
	}

	class = classifyNATSError(nats.ErrInvalidMsg)
	if class.Retryable {
		t.Fatalf("protocol error should not be retryable: %+v", class)
	}
	if !class.RecordFailure {
		t.Fatalf("protocol error should still record a failure")
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	err := wrapTemporaryIfNeeded(nats.ErrTimeout)
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary wrapping, got %v", err)
	}
	if !errors.Is(err, nats.ErrTimeout) {
		t.Fatalf("expected original error preserved, got %v", err)
	}

	plain := errors.New("marshal payload")
	if got := wrapTemporaryIfNeeded(plain); got != plain {
		t.Fatalf("permanent error should pass through, got %v", got)
	}

	if wrapTemporaryIfNeeded(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}
