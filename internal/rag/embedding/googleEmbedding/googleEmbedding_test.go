package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"rate limited", genai.APIError{Code: 429, Message: "quota"}, commonModels.ErrRateLimited},
		{"bad request", fmt.Errorf("wrapped: %w", genai.APIError{Code: 400}), commonModels.ErrInvalidInput},
		{"server error", genai.APIError{Code: 503}, commonModels.ErrEmbeddingUnavailable},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "slow down"), commonModels.ErrRateLimited},
		{"deadline", context.DeadlineExceeded, commonModels.ErrTimeout},
		{"unknown", errors.New("boom"), commonModels.ErrEmbeddingUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.in)
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetContent_OnePartPerText(t *testing.T) {
	contents := getContent([]string{"one", "two"})
	if len(contents) != 2 || contents[1].Parts[0].Text != "two" {
		t.Fatalf("unexpected contents: %+v", contents)
	}
}
