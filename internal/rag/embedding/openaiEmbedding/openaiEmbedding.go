package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/internal/rag/embedding"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	api       openai.Client
	model     string
	batchSize int
	dimension int
}

// GetOpenAIEmbeddingClient returns the shared OpenAI embedder. Vectors are requested
// at the same dimensionality as the Gemini embedder so both can serve one collection.
func GetOpenAIEmbeddingClient(settings config.ProviderSettings, apikey string, httpClient *http.Client) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OpenAI API key missing, embedder disabled")
			return
		}
		embeddingClient = &client{
			api:       openai.NewClient(option.WithAPIKey(apikey), option.WithHTTPClient(httpClient)),
			model:     settings.Model,
			batchSize: settings.BatchSize,
			dimension: int(config.EmbeddingOutputDimensionality),
		}
		logger.Info("OpenAI Embedding client created", "model", settings.Model)
	})

	if embeddingClient == nil {
		return nil
	}
	c := *embeddingClient
	return &c
}

func (c *client) Dimension() int {
	return c.dimension
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if err := embedding.ValidateInputs([]string{query}); err != nil {
		return nil, err
	}
	res, err := c.doCall(ctx, []string{query})
	if err != nil {
		logger.WithTrace(ctx).Error("Error getting query embedding from OpenAI", "error", err)
		return nil, err
	}
	return res[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if err := embedding.ValidateInputs(texts); err != nil {
		return nil, err
	}
	log := logger.WithTrace(ctx).With("texts", len(texts))

	return embedding.InBatches(ctx, texts, c.batchSize, func(ctx context.Context, batch []string) ([][]float32, error) {
		return embedding.WithRetry(ctx, log, batch, c.doCall)
	})
}

func (c *client) doCall(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(int64(c.dimension)),
	})
	if err != nil {
		return nil, classifyError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			commonModels.ErrEmbeddingUnavailable, len(resp.Data), len(texts))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, len(data))
	for i, d := range data {
		v := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			v[j] = float32(f)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return commonModels.FromContext(err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", commonModels.ErrRateLimited, err)
		case apiErr.StatusCode == http.StatusBadRequest:
			return fmt.Errorf("%w: %w", commonModels.ErrInvalidInput, err)
		}
	}
	return fmt.Errorf("%w: %w", commonModels.ErrEmbeddingUnavailable, err)
}
