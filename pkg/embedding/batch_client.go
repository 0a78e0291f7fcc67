package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatbot-knowledge-be/pkg/retry"
)

// BatchClientConfig tunes sub-batch size, pacing, and validation.
type BatchClientConfig struct {
	// BatchSize is the provider's per-request input limit.
	BatchSize int
	// BatchDelay is slept between consecutive sub-batches as deliberate
	// backpressure against the provider's rate limits.
	BatchDelay time.Duration
	// Dimensions is the expected vector length; 0 disables validation.
	Dimensions int
	// Retry wraps each individual sub-batch call.
	Retry retry.Config
}

// BatchClient partitions large text slices into provider-sized sub-batches
// and issues them strictly sequentially, one in flight at a time.
type BatchClient struct {
	provider Provider
	cfg      BatchClientConfig
}

// NewBatchClient wraps provider with batching, retry, and pacing.
func NewBatchClient(provider Provider, cfg BatchClientConfig) *BatchClient {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = 200 * time.Millisecond
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.DefaultConfig()
	}
	return &BatchClient{provider: provider, cfg: cfg}
}

// EmbedBatch embeds texts in sub-batches of at most BatchSize, preserving
// input order. Each sub-batch is retried with backoff; credential errors
// short-circuit immediately. onBatch, when non-nil, is invoked after every
// successful sub-batch with that sub-batch's actual token usage, so
// partial failures under-report rather than over-report consumption.
func (c *BatchClient) EmbedBatch(ctx context.Context, texts []string, onBatch func(Usage) error) (*BatchResult, error) {
	result := &BatchResult{Embeddings: make([][]float32, 0, len(texts))}
	if len(texts) == 0 {
		return result, nil
	}

	for start := 0; start < len(texts); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		sub := texts[start:end]

		var res *BatchResult
		err := retry.Do(ctx, c.cfg.Retry, func() error {
			r, err := c.provider.Embed(ctx, sub)
			if err != nil {
				if errors.Is(err, ErrUnauthorized) {
					return retry.Permanent(err)
				}
				return err
			}
			res = r
			return nil
		})
		if err != nil {
			return nil, err
		}

		if len(res.Embeddings) != len(sub) {
			return nil, &ProviderError{
				Message: fmt.Sprintf("sub-batch returned %d embeddings for %d inputs", len(res.Embeddings), len(sub)),
			}
		}
		if c.cfg.Dimensions > 0 {
			for i, vec := range res.Embeddings {
				if len(vec) != c.cfg.Dimensions {
					return nil, &ValidationError{Index: start + i, Got: len(vec), Want: c.cfg.Dimensions}
				}
			}
		}

		result.Embeddings = append(result.Embeddings, res.Embeddings...)
		result.Usage.PromptTokens += res.Usage.PromptTokens
		result.Usage.TotalTokens += res.Usage.TotalTokens

		if onBatch != nil {
			if err := onBatch(res.Usage); err != nil {
				return nil, err
			}
		}

		if end < len(texts) {
			select {
			case <-time.After(c.cfg.BatchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return result, nil
}
