package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internals in-memory store
	TRACE_ID_KEY                    = "traceId"
	USER_ID_KEY                     = "userId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5
	RateLimiterIdleTTL              = 10 * time.Minute

	//embeddings - dimensionality is fixed by the model in use
	EmbeddingOutputDimensionality int32 = 1536
	EmbeddingBatchSize                  = 100
	EmbeddingRetryBackoff               = 5 * time.Second
	VectorCollectionName                = "brand-chunks"

	//chunking - enough context per chunk for embedding quality, small enough payloads
	ChunkSize    = 1000
	ChunkOverlap = 200

	//retrieval
	RetrievalTopK          = 5
	MaxContextChars        = 6000
	ContextDelimiter       = "\n\n---\n\n"
	RetrievalFailurePolicy = "fail" // fail | ungrounded

	//profile
	MinProfileSourceChars = 40
	MaxProfileCorpusChars = 30000
	MaxMemoryFacts        = 25

	//generation
	DefaultWordCount         = 150
	MaxWordCount             = 3000
	TokensPerWord            = 2
	ModelTemperature float32 = 0.7
	ProfileTemperature       = 0.2

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	JobExecutionTimeout             = 5 * time.Minute

	//per document in-flight guard, must outlive a slow ingestion run
	DocumentLockTTL = 10 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 120 * time.Second //generation streams hold the connection
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//uploads
	MaxUploadSize    = 32 << 20 //32mb
	MinContentLength = 10

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "localhost"
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation

	//llm
	LLMProvider          = "gemini" // gemini | openai
	EmbeddingProvider    = "gemini" // gemini | openai
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//relational store
	DatabaseDSN = "brandvoice.db"

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore   = 0
	RedisUsageStore = 1
	RedisLockStore  = 2

	//redis timeouts
	RedisJobStoreTTL   = 24 * time.Hour
	RedisUsageStoreTTL = 32 * 24 * time.Hour

	//usage
	MonthlyWordQuota int64 = 50000
)
