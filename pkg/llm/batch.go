package llm

import (
	"context"
	"time"

	"github.com/kart-io/logger"
)

// BatchConfig configures batched embedding generation.
type BatchConfig struct {
	// BatchSize is the maximum number of texts per provider call.
	BatchSize int
	// MaxRetries is the number of attempts per batch before giving up.
	MaxRetries int
	// RetryBackoff is the base backoff; attempt n waits n*RetryBackoff.
	RetryBackoff time.Duration
}

// DefaultBatchConfig returns the default batching parameters.
func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{
		BatchSize:    100,
		MaxRetries:   3,
		RetryBackoff: time.Second,
	}
}

// BatchEmbedder slices large text sets into provider-sized batches and
// retries transient failures with linear backoff. A batch that still
// fails after MaxRetries yields nil entries for its positions; the
// remaining batches are processed regardless. The result is always
// positionally aligned with the input, so callers can tell exactly
// which texts have no embedding.
type BatchEmbedder struct {
	provider EmbeddingProvider
	config   *BatchConfig
}

// NewBatchEmbedder wraps provider with batching and retry.
func NewBatchEmbedder(provider EmbeddingProvider, config *BatchConfig) *BatchEmbedder {
	if config == nil {
		config = DefaultBatchConfig()
	}
	return &BatchEmbedder{provider: provider, config: config}
}

// EmbedAll embeds texts batch by batch. The only error returned is a
// context cancellation; provider failures degrade to nil slots.
func (b *BatchEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))

	for start := 0; start < len(texts); start += b.config.BatchSize {
		end := min(start+b.config.BatchSize, len(texts))

		batch, err := b.embedBatch(ctx, texts[start:end])
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Errorw("embedding batch failed after retries",
				"start", start, "size", end-start, "error", err.Error())
			continue
		}

		for i, emb := range batch {
			results[start+i] = emb
		}
	}

	return results, nil
}

// embedBatch calls the provider with retry and linear backoff.
func (b *BatchEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 1; attempt <= b.config.MaxRetries; attempt++ {
		embeddings, err := b.provider.Embed(ctx, texts)
		if err == nil {
			return embeddings, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == b.config.MaxRetries {
			break
		}

		wait := time.Duration(attempt) * b.config.RetryBackoff
		logger.Warnw("embedding batch attempt failed, retrying",
			"attempt", attempt, "wait", wait.String(), "error", err.Error())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}
