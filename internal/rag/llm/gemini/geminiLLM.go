package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/internal/rag/llm"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

// GetGeminiClient returns the shared Gemini provider, or nil when the client could
// not be created.
func GetGeminiClient(ctx context.Context, settings config.ProviderSettings, apikey string, httpClient *http.Client) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, settings.Model, apikey, httpClient)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string, httpClient *http.Client) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
	go closeClient(ctx)
}

func closeClient(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
}

func (c *llmClient) Name() string {
	return config.ProviderGemini
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	log := logger.WithTrace(ctx)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(req.UserPrompt), contentConfig(req))
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", classifyError(err)
	}
	if err := blocked(result); err != nil {
		log.Warn("Gemini refused the prompt", "error", err)
		return "", err
	}
	return result.Text(), nil
}

func (c *llmClient) Stream(ctx context.Context, req llm.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.modelName, genai.Text(req.UserPrompt), contentConfig(req)) {
			if err != nil {
				yield("", classifyError(err))
				return
			}
			if err := blocked(resp); err != nil {
				yield("", err)
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

func contentConfig(req llm.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONOutput {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func blocked(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: empty response", commonModels.ErrModelUnavailable)
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return fmt.Errorf("%w: prompt blocked (%s)", commonModels.ErrContentPolicyViolation, fb.BlockReason)
	}
	for _, cand := range resp.Candidates {
		switch cand.FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist, genai.FinishReasonSPII:
			return fmt.Errorf("%w: response blocked (%s)", commonModels.ErrContentPolicyViolation, cand.FinishReason)
		}
	}
	return nil
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
	switch code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", commonModels.ErrRateLimited, err)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w", commonModels.ErrInvalidInput, err)
	case http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %w", commonModels.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %w", commonModels.ErrModelUnavailable, err)
	}
}
