package openaiLLM

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/rag/llm"
	"github.com/openai/openai-go"
)

func TestParams(t *testing.T) {
	c := &llmClient{modelName: "gpt-4o-mini"}

	p := c.params(llm.Request{SystemPrompt: "sys", UserPrompt: "user", Temperature: 0.5, MaxTokens: 10, JSONOutput: true})
	if len(p.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(p.Messages))
	}
	if p.Messages[0].OfSystem == nil || p.Messages[1].OfUser == nil {
		t.Errorf("unexpected message roles: %+v", p.Messages)
	}
	if p.MaxTokens.Value != 10 {
		t.Errorf("max tokens = %d", p.MaxTokens.Value)
	}
	if p.ResponseFormat.OfJSONObject == nil {
		t.Error("json mode not requested")
	}

	bare := c.params(llm.Request{UserPrompt: "user"})
	if len(bare.Messages) != 1 || bare.ResponseFormat.OfJSONObject != nil {
		t.Errorf("unexpected params: %+v", bare)
	}
}

func TestClassifyError(t *testing.T) {
	apiErr := func(code int) error {
		return &openai.Error{
			StatusCode: code,
			Request:    httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil),
			Response:   &http.Response{StatusCode: code},
		}
	}
	tests := []struct {
		in   error
		want error
	}{
		{apiErr(429), commonModels.ErrRateLimited},
		{apiErr(504), commonModels.ErrTimeout},
		{apiErr(500), commonModels.ErrModelUnavailable},
		{context.DeadlineExceeded, commonModels.ErrTimeout},
		{errors.New("reset"), commonModels.ErrModelUnavailable},
	}
	for _, tt := range tests {
		if got := classifyError(tt.in); !errors.Is(got, tt.want) {
			t.Errorf("classifyError(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
