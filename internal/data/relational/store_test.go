package relational

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "brandvoice.db"))
	require.NoError(t, err)
	return NewStore(db)
}

func seedBrand(t *testing.T, s *Store) commonModels.Brand {
	t.Helper()
	b, err := s.CreateBrand(context.Background(), commonModels.Brand{OwnerId: "user-1", Name: "Acme"})
	require.NoError(t, err)
	return b
}

func TestDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	b := seedBrand(t, s)

	doc, err := s.CreateDocument(ctx, commonModels.Document{BrandId: b.Id, Name: "about", Content: "We make rockets."})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Id)
	assert.Equal(t, commonModels.StatusPending, doc.Status)

	require.NoError(t, s.UpdateStatus(ctx, doc.Id, commonModels.StatusProcessing, commonModels.StatusDetail{}))
	require.NoError(t, s.UpdateStatus(ctx, doc.Id, commonModels.StatusProcessed, commonModels.StatusDetail{ChunkCount: 3}))

	got, err := s.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusProcessed, got.Status)
	assert.Equal(t, 3, got.ChunkCount)
	assert.Equal(t, "We make rockets.", got.Content)
}

func TestUpdateStatus_RejectsIllegalTransition(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	b := seedBrand(t, s)
	doc, err := s.CreateDocument(ctx, commonModels.Document{BrandId: b.Id, Content: "text"})
	require.NoError(t, err)

	err = s.UpdateStatus(ctx, doc.Id, commonModels.StatusProcessed, commonModels.StatusDetail{ChunkCount: 1})
	assert.ErrorIs(t, err, commonModels.ErrInvalidArgument)

	got, err := s.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusPending, got.Status)
}

func TestUpdateStatus_ErrorRecordsMessage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	b := seedBrand(t, s)
	doc, err := s.CreateDocument(ctx, commonModels.Document{BrandId: b.Id, Content: "text"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, doc.Id, commonModels.StatusProcessing, commonModels.StatusDetail{}))
	require.NoError(t, s.UpdateStatus(ctx, doc.Id, commonModels.StatusError, commonModels.StatusDetail{Error: "embedding service unavailable"}))

	got, err := s.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusError, got.Status)
	assert.Equal(t, "embedding service unavailable", got.LastError)

	// re-trigger clears the previous error
	require.NoError(t, s.UpdateStatus(ctx, doc.Id, commonModels.StatusProcessing, commonModels.StatusDetail{}))
	got, err = s.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, got.LastError)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, commonModels.ErrDocumentNotFound)

	_, err = s.GetBrand(ctx, "missing")
	assert.ErrorIs(t, err, commonModels.ErrBrandNotFound)

	_, err = s.CreateDocument(ctx, commonModels.Document{BrandId: "missing", Content: "x"})
	assert.ErrorIs(t, err, commonModels.ErrBrandNotFound)

	err = s.SaveProfile(ctx, "missing", commonModels.NeutralProfile())
	assert.ErrorIs(t, err, commonModels.ErrBrandNotFound)
}

func TestGetByBrand_ScopedToBrand(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := seedBrand(t, s)
	b := seedBrand(t, s)

	for _, c := range []string{"one", "two"} {
		_, err := s.CreateDocument(ctx, commonModels.Document{BrandId: a.Id, Content: c})
		require.NoError(t, err)
	}
	_, err := s.CreateDocument(ctx, commonModels.Document{BrandId: b.Id, Content: "other"})
	require.NoError(t, err)

	docs, err := s.GetByBrand(ctx, a.Id)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, a.Id, d.BrandId)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	b := seedBrand(t, s)

	_, ok, err := s.GetProfile(ctx, b.Id)
	require.NoError(t, err)
	assert.False(t, ok)

	p := commonModels.StyleProfile{
		Voice:   commonModels.VoiceProfile{Tone: []string{"bold", " Bold ", "warm"}},
		Content: commonModels.ContentProfile{Themes: []string{"space"}},
	}
	require.NoError(t, s.SaveProfile(ctx, b.Id, p))

	got, ok, err := s.GetProfile(ctx, b.Id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"bold", "warm"}, got.Voice.Tone)
	assert.Equal(t, []string{"space"}, got.Content.Themes)
}

func TestReplaceMemoryFacts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	b := seedBrand(t, s)

	require.NoError(t, s.ReplaceMemoryFacts(ctx, b.Id, []string{"Founded in 2009", "Ships worldwide"}))
	require.NoError(t, s.ReplaceMemoryFacts(ctx, b.Id, []string{"Based in Oslo"}))

	facts, err := s.GetMemoryFacts(ctx, b.Id)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "Based in Oslo", facts[0].Fact)

	require.NoError(t, s.ReplaceMemoryFacts(ctx, b.Id, nil))
	facts, err = s.GetMemoryFacts(ctx, b.Id)
	require.NoError(t, err)
	assert.Empty(t, facts)

	assert.ErrorIs(t, s.ReplaceMemoryFacts(ctx, "missing", []string{"x"}), commonModels.ErrBrandNotFound)
}

func TestCreateBrand_RequiresOwner(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateBrand(context.Background(), commonModels.Brand{Name: "nobody"})
	assert.ErrorIs(t, err, commonModels.ErrInvalidArgument)
}
