package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("BRANDVOICE_CONFIG", "")
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ChunkSize, s.Chunking.Size)
	assert.Equal(t, ChunkOverlap, s.Chunking.Overlap)
	assert.Equal(t, RetrievalTopK, s.Retrieval.TopK)
	assert.Equal(t, OnFailureFail, s.Retrieval.OnFailure)
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
chunking:
  size: 500
  overlap: 50
retrieval:
  top_k: 3
  max_context_chars: 2000
  on_failure: ungrounded
llm:
  provider: openai
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("WEBHOOK_SECRET", "hook-secret")
	t.Setenv("QDRANT_PORT", "7334")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, s.Chunking.Size)
	assert.Equal(t, 50, s.Chunking.Overlap)
	assert.Equal(t, 3, s.Retrieval.TopK)
	assert.Equal(t, OnFailureUngrounded, s.Retrieval.OnFailure)
	assert.Equal(t, OpenAIModelName, s.LLM.Model)
	assert.Equal(t, "hook-secret", s.WebhookSecret)
	assert.Equal(t, 7334, s.Qdrant.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"overlap equals size", func(s *Settings) { s.Chunking.Overlap = s.Chunking.Size }},
		{"negative overlap", func(s *Settings) { s.Chunking.Overlap = -1 }},
		{"unknown llm", func(s *Settings) { s.LLM.Provider = "mystery" }},
		{"zero topK", func(s *Settings) { s.Retrieval.TopK = 0 }},
		{"bad policy", func(s *Settings) { s.Retrieval.OnFailure = "maybe" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}
