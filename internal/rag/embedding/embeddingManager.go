package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

// Embedder turns text into fixed-length vectors. BatchEmbedding returns exactly one
// vector per input, in input order.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// BatchCall embeds one provider-sized batch.
type BatchCall func(ctx context.Context, batch []string) ([][]float32, error)

var retryBackoff = config.EmbeddingRetryBackoff

// ValidateInputs rejects empty and whitespace-only texts.
func ValidateInputs(texts []string) error {
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: text %d is empty", commonModels.ErrInvalidInput, i)
		}
	}
	return nil
}

// InBatches splits texts into batches of at most batchSize, calls embed for each in
// order and concatenates the results.
func InBatches(ctx context.Context, texts []string, batchSize int, embed BatchCall) ([][]float32, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size %d", commonModels.ErrInvalidArgument, batchSize)
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		vectors, err := embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("%w: got %d vectors for %d texts",
				commonModels.ErrEmbeddingUnavailable, len(vectors), end-start)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// WithRetry runs call once more after a backoff when it was rate limited.
func WithRetry(ctx context.Context, log *logger_i.Logger, batch []string, call BatchCall) ([][]float32, error) {
	res, err := call(ctx, batch)
	if err == nil || !errors.Is(err, commonModels.ErrRateLimited) {
		return res, err
	}

	log.Warn("rate limit hit, retrying", "backoff", retryBackoff)
	select {
	case <-ctx.Done():
		return nil, commonModels.FromContext(ctx.Err())
	case <-time.After(retryBackoff):
	}
	return call(ctx, batch)
}
