// Package inference talks to the model-serving sidecar that hosts the
// zero-shot classification and summarization models.
package inference

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caseloom/docingest/internal/core/ports"
	"github.com/caseloom/docingest/internal/infrastructure/resilience"
)

type Client struct {
	baseURL      string
	zeroShotName string
	summaryName  string
	httpClient   *http.Client
	executor     *resilience.Executor
}

func New(baseURL, zeroShotName, summaryName string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		zeroShotName: zeroShotName,
		summaryName:  summaryName,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}
}

// WithExecutor wires retry/circuit-breaker handling around model calls.
func (c *Client) WithExecutor(executor *resilience.Executor) *Client {
	c.executor = executor
	return c
}

// ZeroShot adapts the client to ports.ZeroShotModel.
type ZeroShot struct {
	client *Client
}

func NewZeroShot(client *Client) *ZeroShot {
	return &ZeroShot{client: client}
}

func (z *ZeroShot) Scores(
	ctx context.Context,
	text string,
	labels []string,
	hypothesisTemplate string,
) (map[string]float64, error) {
	request := map[string]any{
		"model":               z.client.zeroShotName,
		"text":                text,
		"candidate_labels":    labels,
		"hypothesis_template": hypothesisTemplate,
	}

	var response struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	err := z.client.call(ctx, "zero_shot", "/v1/zero-shot", request, &response)
	if err != nil {
		return nil, err
	}
	if len(response.Labels) != len(response.Scores) {
		return nil, fmt.Errorf("zero-shot response: %d labels vs %d scores", len(response.Labels), len(response.Scores))
	}

	scores := make(map[string]float64, len(response.Labels))
	for i, label := range response.Labels {
		scores[label] = response.Scores[i]
	}
	return scores, nil
}

// Summarizer adapts the client to ports.Summarizer.
type Summarizer struct {
	client *Client
}

func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

func (s *Summarizer) Summarize(ctx context.Context, text string, opts ports.SummaryOptions) (string, error) {
	request := map[string]any{
		"model":          s.client.summaryName,
		"text":           text,
		"max_length":     opts.MaxLength,
		"min_length":     opts.MinLength,
		"num_beams":      opts.NumBeams,
		"length_penalty": opts.LengthPenalty,
		"early_stopping": opts.EarlyStopping,
	}

	var response struct {
		SummaryText string `json:"summary_text"`
	}
	if err := s.client.call(ctx, "summarize", "/v1/summarize", request, &response); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.SummaryText), nil
}

func (c *Client) call(ctx context.Context, operation, path string, payload, out any) error {
	if c.executor == nil {
		return wrapTemporaryIfNeeded(operation, c.postJSON(ctx, path, payload, out, operation))
	}
	err := c.executor.Execute(ctx, operation, func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, payload, out, operation)
	}, classifyInferenceError)
	return wrapTemporaryIfNeeded(operation, err)
}
