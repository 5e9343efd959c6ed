package openaiEmbedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/openai/openai-go"
)

func apiError(code int) *openai.Error {
	return &openai.Error{
		StatusCode: code,
		Request:    httptest.NewRequest(http.MethodPost, "/v1/embeddings", nil),
		Response:   &http.Response{StatusCode: code},
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"rate limited", apiError(429), commonModels.ErrRateLimited},
		{"bad request", apiError(400), commonModels.ErrInvalidInput},
		{"server error", apiError(500), commonModels.ErrEmbeddingUnavailable},
		{"deadline", context.DeadlineExceeded, commonModels.ErrTimeout},
		{"transport", errors.New("connection reset"), commonModels.ErrEmbeddingUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("classifyError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
