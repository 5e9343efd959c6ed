package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/rag/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAssembler struct {
	OnAssemble func(ctx context.Context, brandId, userPrompt string, words int) (prompt.Prompt, error)
}

func (m *mockAssembler) Assemble(ctx context.Context, brandId, userPrompt string, words int) (prompt.Prompt, error) {
	return m.OnAssemble(ctx, brandId, userPrompt, words)
}

type mockDocuments struct {
	commonModels.DocumentStore
	docs map[string]commonModels.Document
}

func (m *mockDocuments) GetDocument(_ context.Context, id string) (commonModels.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return commonModels.Document{}, commonModels.ErrDocumentNotFound
	}
	return doc, nil
}

func newTestServer(t *testing.T, a Assembler) *Server {
	t.Helper()
	s, err := NewServer(Ports{
		Assembler: a,
		Documents: &mockDocuments{docs: map[string]commonModels.Document{
			"doc-1": {Id: "doc-1", BrandId: "b1", Status: commonModels.StatusProcessed, ChunkCount: 4},
		}},
	})
	require.NoError(t, err)
	return s
}

func TestNewServer_RequiresPorts(t *testing.T) {
	_, err := NewServer(Ports{})
	assert.ErrorIs(t, err, ErrMissingPorts)
}

func TestHandleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns assembled context", func(t *testing.T) {
		var gotWords int
		s := newTestServer(t, &mockAssembler{OnAssemble: func(_ context.Context, brandId, userPrompt string, words int) (prompt.Prompt, error) {
			gotWords = words
			return prompt.Prompt{SystemPrompt: "be bold", Context: "[1] rockets", Sources: []string{"doc-1"}, UserPrompt: userPrompt}, nil
		}})

		_, out, err := s.handleRetrieve(ctx, nil, RetrieveInput{BrandId: "b1", Prompt: "launch post", WordCount: 80})
		require.NoError(t, err)
		assert.Equal(t, 80, gotWords)
		assert.Equal(t, "be bold", out.SystemPrompt)
		assert.Equal(t, "[1] rockets", out.Context)
		assert.Equal(t, []string{"doc-1"}, out.Sources)
	})

	t.Run("empty sources serialise as a list", func(t *testing.T) {
		s := newTestServer(t, &mockAssembler{OnAssemble: func(context.Context, string, string, int) (prompt.Prompt, error) {
			return prompt.Prompt{SystemPrompt: "neutral"}, nil
		}})
		_, out, err := s.handleRetrieve(ctx, nil, RetrieveInput{BrandId: "b1", Prompt: "hi"})
		require.NoError(t, err)
		assert.NotNil(t, out.Sources)
		assert.Empty(t, out.Sources)
	})

	t.Run("propagates assembler errors", func(t *testing.T) {
		s := newTestServer(t, &mockAssembler{OnAssemble: func(context.Context, string, string, int) (prompt.Prompt, error) {
			return prompt.Prompt{}, commonModels.ErrRetrievalFailed
		}})
		_, _, err := s.handleRetrieve(ctx, nil, RetrieveInput{BrandId: "b1", Prompt: "hi"})
		assert.True(t, errors.Is(err, commonModels.ErrRetrievalFailed))
	})
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t, &mockAssembler{})

	_, out, err := s.handleStatus(context.Background(), nil, StatusInput{DocumentId: "doc-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusOutput{Id: "doc-1", BrandId: "b1", Status: "processed", ChunkCount: 4}, out)

	_, _, err = s.handleStatus(context.Background(), nil, StatusInput{DocumentId: "missing"})
	assert.ErrorIs(t, err, commonModels.ErrDocumentNotFound)
}
