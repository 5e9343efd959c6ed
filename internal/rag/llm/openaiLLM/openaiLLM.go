package openaiLLM

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/internal/rag/llm"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const finishContentFilter = "content_filter"

type llmClient struct {
	api       openai.Client
	modelName string
}

var logger *logger_i.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(settings config.ProviderSettings, apikey string, httpClient *http.Client) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OpenAI API key missing, provider disabled")
			return
		}
		openaiClient = &llmClient{
			api:       openai.NewClient(option.WithAPIKey(apikey), option.WithHTTPClient(httpClient)),
			modelName: settings.Model,
		}
		logger.Info("OpenAI client created", "model", settings.Model)
	})

	if openaiClient == nil {
		return nil
	}
	c := *openaiClient
	return &c
}

func (c *llmClient) Name() string {
	return config.ProviderOpenAI
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	resp, err := c.api.Chat.Completions.New(ctx, c.params(req))
	if err != nil {
		logger.WithTrace(ctx).Error("OpenAI generation failed", "error", err)
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", commonModels.ErrModelUnavailable)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == finishContentFilter {
		return "", fmt.Errorf("%w: completion filtered", commonModels.ErrContentPolicyViolation)
	}
	return choice.Message.Content, nil
}

func (c *llmClient) Stream(ctx context.Context, req llm.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := c.api.Chat.Completions.NewStreaming(ctx, c.params(req))
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			if choice.FinishReason == finishContentFilter {
				yield("", fmt.Errorf("%w: completion filtered", commonModels.ErrContentPolicyViolation))
				return
			}
			if choice.Delta.Content == "" {
				continue
			}
			if !yield(choice.Delta.Content, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield("", classifyError(err))
		}
	}
}

func (c *llmClient) params(req llm.Request) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(c.modelName),
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSONOutput {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return commonModels.FromContext(err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", commonModels.ErrRateLimited, err)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %w", commonModels.ErrInvalidInput, err)
		case http.StatusGatewayTimeout, http.StatusRequestTimeout:
			return fmt.Errorf("%w: %w", commonModels.ErrTimeout, err)
		}
	}
	return fmt.Errorf("%w: %w", commonModels.ErrModelUnavailable, err)
}
