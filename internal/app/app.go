// Package app builds the dependency graph shared by the API server and brandctl.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/customHttpClient"
	"github.com/akolanti/BrandVoice/internal/data/redisStore"
	"github.com/akolanti/BrandVoice/internal/data/relational"
	"github.com/akolanti/BrandVoice/internal/data/store"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/internal/rag"
	"github.com/akolanti/BrandVoice/internal/rag/embedding"
	"github.com/akolanti/BrandVoice/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/BrandVoice/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/BrandVoice/internal/rag/generation"
	"github.com/akolanti/BrandVoice/internal/rag/ingest"
	"github.com/akolanti/BrandVoice/internal/rag/llm"
	"github.com/akolanti/BrandVoice/internal/rag/llm/gemini"
	"github.com/akolanti/BrandVoice/internal/rag/llm/openaiLLM"
	"github.com/akolanti/BrandVoice/internal/rag/profile"
	"github.com/akolanti/BrandVoice/internal/rag/prompt"
	"github.com/akolanti/BrandVoice/internal/rag/vectorDB"
	"github.com/akolanti/BrandVoice/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/BrandVoice/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

var ErrProviderUnavailable = errors.New("provider could not be initialised")

type App struct {
	Settings  config.Settings
	Store     *relational.Store
	Embedder  embedding.Embedder
	Index     vectorDB.VectorIndex
	LLM       llm.Provider
	JobStore  jobModel.JobStore
	Lock      jobModel.DocumentLock
	Usage     jobModel.UsageStore
	Pipeline  *ingest.Pipeline
	Assembler *prompt.Assembler
	Rag       rag.Service
}

// Build wires every dependency. Redis and Qdrant fall back to in-process
// implementations when unreachable; the database and model providers are required.
func Build(ctx context.Context, settings config.Settings) (*App, error) {
	log := logger_i.NewLogger("app")
	a := &App{Settings: settings}

	db, err := relational.Open(settings.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.Store = relational.NewStore(db)

	httpClient := customHttpClient.GetClient()
	if a.Embedder, err = newEmbedder(ctx, settings, httpClient); err != nil {
		return nil, err
	}
	if a.LLM, err = newProvider(ctx, settings, httpClient); err != nil {
		return nil, err
	}

	if holder := qdrantDB.GetQuadrantClient(ctx, settings.Qdrant, a.Embedder.Dimension()); holder != nil {
		a.Index = holder
	} else {
		log.Warn("Qdrant unavailable, using in-process vector index")
		a.Index = memoryDB.NewIndex()
	}

	if a.JobStore, a.Lock, a.Usage, err = newRedisBacked(ctx, settings, log); err != nil {
		return nil, err
	}

	a.Pipeline = ingest.NewPipeline(a.Store, a.Embedder, a.Index, a.Lock, settings.Chunking)
	a.Assembler = prompt.NewAssembler(a.Embedder, a.Index, a.Store, settings.Retrieval)
	a.Rag = rag.NewService(rag.Deps{
		Documents: a.Store,
		Brands:    a.Store,
		Pipeline:  a.Pipeline,
		Profiles:  profile.NewBuilder(a.LLM),
		Assembler: a.Assembler,
		Invoker:   generation.NewInvoker(a.LLM),
	})
	log.Info("dependencies ready", "embedding", settings.Embedding.Provider, "llm", settings.LLM.Provider)
	return a, nil
}

func newEmbedder(ctx context.Context, s config.Settings, httpClient *http.Client) (embedding.Embedder, error) {
	var em embedding.Embedder
	switch s.Embedding.Provider {
	case config.ProviderOpenAI:
		em = openaiEmbedding.GetOpenAIEmbeddingClient(s.Embedding, s.OpenAIAPIKey, httpClient)
	default:
		em = googleEmbedding.GetGoogleEmbeddingClient(ctx, s.Embedding, s.GoogleAPIKey, httpClient)
	}
	if em == nil {
		return nil, fmt.Errorf("%w: embedding %s", ErrProviderUnavailable, s.Embedding.Provider)
	}
	return em, nil
}

func newProvider(ctx context.Context, s config.Settings, httpClient *http.Client) (llm.Provider, error) {
	var p llm.Provider
	switch s.LLM.Provider {
	case config.ProviderOpenAI:
		p = openaiLLM.GetOpenAIClient(s.LLM, s.OpenAIAPIKey, httpClient)
	default:
		p = gemini.GetGeminiClient(ctx, s.LLM, s.GoogleAPIKey, httpClient)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: llm %s", ErrProviderUnavailable, s.LLM.Provider)
	}
	return p, nil
}

func newRedisBacked(ctx context.Context, s config.Settings, log *logger_i.Logger) (jobModel.JobStore, jobModel.DocumentLock, jobModel.UsageStore, error) {
	jobs := redisStore.GetRedisStore(ctx, s.Redis, config.RedisJobStore)
	usage := redisStore.GetRedisStore(ctx, s.Redis, config.RedisUsageStore)
	locks := redisStore.GetRedisStore(ctx, s.Redis, config.RedisLockStore)
	if jobs == nil || usage == nil || locks == nil {
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			return nil, nil, nil, fmt.Errorf("%w: redis at %s", ErrProviderUnavailable, s.Redis.Addr)
		}
		log.Warn("Redis stores are offline, using in-memory stores")
		return store.InitInMemoryJobStore(), store.InitInMemoryDocumentLock(), store.InitInMemoryUsageStore(), nil
	}
	return store.NewRedisJobStore(jobs), store.NewRedisDocumentLock(locks), store.NewRedisUsageStore(usage), nil
}
