package rag_test

import (
	"context"
	"iter"

	"github.com/akolanti/BrandVoice/internal/rag/llm"
)

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{1, 0}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (m *MockEmbedder) Dimension() int { return 2 }

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, req llm.Request) (string, error)
	OnStream   func(ctx context.Context, req llm.Request) iter.Seq2[string, error]
}

func (m *MockLLM) Name() string { return "mock" }

func (m *MockLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, req)
	}
	return "generated text", nil
}

func (m *MockLLM) Stream(ctx context.Context, req llm.Request) iter.Seq2[string, error] {
	if m.OnStream != nil {
		return m.OnStream(ctx, req)
	}
	return func(yield func(string, error) bool) {
		for _, f := range []string{"generated ", "text"} {
			if !yield(f, nil) {
				return
			}
		}
	}
}
