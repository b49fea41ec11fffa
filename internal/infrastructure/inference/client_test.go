package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caseloom/docingest/internal/core/ports"
)

func TestZeroShotScoresMapsLabelsToScores(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/zero-shot" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"labels":["contract","invoice"],"scores":[0.91,0.09]}`))
	}))
	defer server.Close()

	client := New(server.URL, "zero-shot-model", "summary-model")
	scores, err := NewZeroShot(client).Scores(
		context.Background(),
		"the parties agree",
		[]string{"contract", "invoice"},
		"This document is a %s.",
	)
	if err != nil {
		t.Fatalf("Scores() error = %v", err)
	}
	if scores["contract"] != 0.91 || scores["invoice"] != 0.09 {
		t.Fatalf("unexpected scores: %v", scores)
	}
	if captured["model"] != "zero-shot-model" {
		t.Fatalf("expected model name in request, got %v", captured["model"])
	}
	if captured["hypothesis_template"] != "This document is a %s." {
		t.Fatalf("expected hypothesis template in request, got %v", captured["hypothesis_template"])
	}
}

func TestZeroShotRejectsMismatchedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"labels":["contract"],"scores":[0.9,0.1]}`))
	}))
	defer server.Close()

	client := New(server.URL, "m", "s")
	_, err := NewZeroShot(client).Scores(context.Background(), "text", []string{"contract"}, "")
	if err == nil {
		t.Fatalf("expected error for labels/scores mismatch")
	}
}

func TestSummarizePassesDecodingOptions(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/summarize" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"summary_text":"  condensed  "}`))
	}))
	defer server.Close()

	client := New(server.URL, "m", "summary-model")
	summary, err := NewSummarizer(client).Summarize(context.Background(), "long text", ports.SummaryOptions{
		MaxLength:     150,
		MinLength:     40,
		NumBeams:      4,
		LengthPenalty: 2.0,
		EarlyStopping: true,
	})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != "condensed" {
		t.Fatalf("expected trimmed summary, got %q", summary)
	}
	if captured["num_beams"] != float64(4) || captured["length_penalty"] != 2.0 {
		t.Fatalf("decoding options missing from request: %v", captured)
	}
	if captured["early_stopping"] != true {
		t.Fatalf("expected early_stopping in request: %v", captured)
	}
}

func TestErrorIncludesHTTPBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "m", "s")
	_, err := NewZeroShot(client).Scores(context.Background(), "text", []string{"contract"}, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
