// Package openai provides an embedding adapter for the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
	"github.com/custodia-labs/ptsearch/internal/core/ports/driven"
	"github.com/custodia-labs/ptsearch/internal/logger"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// Default configuration values.
const (
	DefaultModel       = "text-embedding-3-large"
	DefaultMaxAttempts = 3
	DefaultBackoffBase = time.Second
	DefaultRequestRate = 5 // requests per second
)

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedder.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// Model is the embedding model (default: text-embedding-3-large).
	Model string

	// Dimensions overrides the default dimension for the model.
	Dimensions int

	// MaxAttempts is the number of tries per request, counting the
	// first (default: 3).
	MaxAttempts int

	// BackoffBase is the initial retry delay, doubled per attempt
	// (default: 1s).
	BackoffBase time.Duration

	// RequestRate throttles outbound requests per second (default: 5).
	RequestRate float64
}

// embeddingsClient is the slice of the OpenAI client the embedder
// uses, satisfied by *openai.Client.
type embeddingsClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Embedder generates embeddings via the OpenAI API with retry,
// exponential backoff and proactive throttling.
type Embedder struct {
	client      embeddingsClient
	model       string
	dimensions  int
	maxAttempts int
	backoffBase time.Duration
	limiter     *rate.Limiter
}

// New creates an OpenAI embedder.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.RequestRate <= 0 {
		cfg.RequestRate = DefaultRequestRate
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		dimensions, ok = modelDimensions[cfg.Model]
		if !ok {
			dimensions = 1536
		}
	}

	return &Embedder{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		dimensions:  dimensions,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestRate), 1),
	}, nil
}

// Embed generates an embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrEmbeddingUnavailable)
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts, preserving input
// order. Transient failures (rate limits, 5xx, network errors) are
// retried with exponential backoff; once attempts are exhausted the
// whole call fails wrapped in domain.ErrEmbeddingUnavailable.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	backoff := e.backoffBase

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
		}

		vectors, err := e.request(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if !isTransient(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
		}
		if attempt == e.maxAttempts {
			break
		}

		logger.Warn("Embedding attempt %d/%d failed (%v), retrying in %s",
			attempt, e.maxAttempts, err, backoff)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("%w: %d attempts exhausted: %v",
		domain.ErrEmbeddingUnavailable, e.maxAttempts, lastErr)
}

// request performs one embeddings API call.
func (e *Embedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		vector := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vector[i] = float32(v)
		}
		vectors[data.Index] = vector
	}
	return vectors, nil
}

// isTransient reports whether an API error is worth retrying.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// go-openai wraps connection failures in plain errors; deadline
	// hits on individual requests are retryable within the budget.
	return errors.Is(err, context.DeadlineExceeded)
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the name of the embedding model being used.
func (e *Embedder) ModelName() string {
	return e.model
}

// Close releases resources.
func (e *Embedder) Close() error {
	return nil
}
