package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/internal/rag/embedding"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi     *genai.Client
	model     string
	batchSize int
}

func newGoogleEmbedder(ctx context.Context, settings config.ProviderSettings, apikey string, httpClient *http.Client) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return
	}
	embeddingClient = &client{genAi: c, model: settings.Model, batchSize: settings.BatchSize}
	logger.Debug("Google Embedding model", "model", settings.Model)
	logger.Info("Google Embedding client created")
	go closeClient(ctx)
}

func closeClient(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
}

// GetGoogleEmbeddingClient returns the shared Gemini embedder, or nil when the client
// could not be created.
func GetGoogleEmbeddingClient(ctx context.Context, settings config.ProviderSettings, apikey string, httpClient *http.Client) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, settings, apikey, httpClient)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model, batchSize: embeddingClient.batchSize}
}

func (c *client) Dimension() int {
	return int(dimension)
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if err := embedding.ValidateInputs([]string{query}); err != nil {
		return nil, err
	}
	res, err := c.doCall(ctx, []string{query}, taskQuery)
	if err != nil {
		logger.WithTrace(ctx).Error("Error getting query embedding from Google", "error", err)
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
		return embedding.WithRetry(ctx, log, batch, func(ctx context.Context, batch []string) ([][]float32, error) {
			res, err := c.doCall(ctx, batch, taskDocument)
			if err != nil {
				log.Error("Error getting Embeddings from Google", "error", err)
			}
			return res, err
		})
	})
}

func (c *client) doCall(ctx context.Context, texts []string, task string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	result, err := c.genAi.Models.EmbedContent(ctx, c.model, getContent(texts), &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             task,
	})
	if err != nil {
		return nil, classifyError(err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: incomplete embedding response", commonModels.ErrEmbeddingUnavailable)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, e := range result.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at %d", commonModels.ErrEmbeddingUnavailable, i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

func getContent(texts []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: t}},
		})
	}
	return contentsToSend
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return commonModels.FromContext(err)
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		code = http.StatusTooManyRequests
	}

	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", commonModels.ErrRateLimited, err)
	case code == http.StatusBadRequest:
		return fmt.Errorf("%w: %w", commonModels.ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %w", commonModels.ErrEmbeddingUnavailable, err)
	}
}
