package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the runtime configuration. Defaults come from the constants in this
// package, then an optional YAML file, then the environment (secrets live only there).
type Settings struct {
	Server    ServerSettings    `yaml:"server"`
	Chunking  ChunkingSettings  `yaml:"chunking"`
	Embedding ProviderSettings  `yaml:"embedding"`
	LLM       ProviderSettings  `yaml:"llm"`
	Retrieval RetrievalSettings `yaml:"retrieval"`
	Qdrant    QdrantSettings    `yaml:"qdrant"`
	Redis     RedisSettings     `yaml:"redis"`
	Database  DatabaseSettings  `yaml:"database"`
	Usage     UsageSettings     `yaml:"usage"`

	AuthToken     string `yaml:"-"`
	WebhookSecret string `yaml:"-"`
	NoAuthBypass  bool   `yaml:"-"`
	GoogleAPIKey  string `yaml:"-"`
	OpenAIAPIKey  string `yaml:"-"`
}

type ServerSettings struct {
	ListenAddr string `yaml:"listen_addr"`
	Production bool   `yaml:"production"`
}

type ChunkingSettings struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type ProviderSettings struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size,omitempty"`
}

type RetrievalSettings struct {
	TopK            int    `yaml:"top_k"`
	MaxContextChars int    `yaml:"max_context_chars"`
	OnFailure       string `yaml:"on_failure"`
}

type QdrantSettings struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	UseTLS     bool   `yaml:"use_tls"`
	Collection string `yaml:"collection"`
	APIKey     string `yaml:"-"`
}

type RedisSettings struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
}

type DatabaseSettings struct {
	DSN string `yaml:"dsn"`
}

type UsageSettings struct {
	MonthlyWordQuota int64 `yaml:"monthly_word_quota"`
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	OnFailureFail       = "fail"
	OnFailureUngrounded = "ungrounded"
)

// Default returns the settings built from the package constants only.
func Default() Settings {
	return Settings{
		Server:    ServerSettings{ListenAddr: ServerListenAddr, Production: IS_PROD},
		Chunking:  ChunkingSettings{Size: ChunkSize, Overlap: ChunkOverlap},
		Embedding: ProviderSettings{Provider: EmbeddingProvider, Model: GoogleEmbeddingModel, BatchSize: EmbeddingBatchSize},
		LLM:       ProviderSettings{Provider: LLMProvider, Model: GeminiModelName},
		Retrieval: RetrievalSettings{TopK: RetrievalTopK, MaxContextChars: MaxContextChars, OnFailure: RetrievalFailurePolicy},
		Qdrant:    QdrantSettings{Host: QdrantHost, Port: QdrantGrpcPort, UseTLS: QdrantUseTLS, Collection: VectorCollectionName},
		Redis:     RedisSettings{Addr: RedisAddr},
		Database:  DatabaseSettings{DSN: DatabaseDSN},
		Usage:     UsageSettings{MonthlyWordQuota: MonthlyWordQuota},
	}
}

// Load reads .env (if present), the YAML file at path (if non-empty and present)
// and the environment, in that order.
func Load(path string) (Settings, error) {
	_ = godotenv.Load()

	s := Default()
	if path == "" {
		path = os.Getenv("BRANDVOICE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return s, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	applyEnv(&s)
	applyModelDefaults(&s)
	return s, s.Validate()
}

func applyEnv(s *Settings) {
	setString(&s.AuthToken, "API_AUTH_TOKEN")
	setString(&s.WebhookSecret, "WEBHOOK_SECRET")
	setString(&s.GoogleAPIKey, "GOOGLE_API_KEY")
	setString(&s.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&s.Redis.Addr, "REDIS_ADDR")
	setString(&s.Redis.Password, "REDIS_PASSWORD")
	setString(&s.Qdrant.Host, "QDRANT_HOST")
	setString(&s.Qdrant.APIKey, "QDRANT_API_KEY")
	setString(&s.Database.DSN, "DATABASE_DSN")
	setString(&s.Server.ListenAddr, "LISTEN_ADDR")
	setString(&s.LLM.Provider, "LLM_PROVIDER")
	setString(&s.Embedding.Provider, "EMBEDDING_PROVIDER")
	if port, err := strconv.Atoi(os.Getenv("QDRANT_PORT")); err == nil {
		s.Qdrant.Port = port
	}
	s.NoAuthBypass = os.Getenv("NO_AUTH_BYPASS") == "true"
}

// provider switched without naming a model: pick that provider's default
func applyModelDefaults(s *Settings) {
	if s.Embedding.Provider == ProviderOpenAI && s.Embedding.Model == GoogleEmbeddingModel {
		s.Embedding.Model = OpenAIEmbeddingModel
	}
	if s.LLM.Provider == ProviderOpenAI && s.LLM.Model == GeminiModelName {
		s.LLM.Model = OpenAIModelName
	}
	if s.Embedding.BatchSize <= 0 {
		s.Embedding.BatchSize = EmbeddingBatchSize
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (s Settings) Validate() error {
	if s.Chunking.Size <= 0 || s.Chunking.Overlap < 0 || s.Chunking.Size <= s.Chunking.Overlap {
		return fmt.Errorf("chunking: size must be > overlap >= 0, got size=%d overlap=%d", s.Chunking.Size, s.Chunking.Overlap)
	}
	if !knownProvider(s.Embedding.Provider) {
		return fmt.Errorf("embedding: unknown provider %q", s.Embedding.Provider)
	}
	if !knownProvider(s.LLM.Provider) {
		return fmt.Errorf("llm: unknown provider %q", s.LLM.Provider)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval: top_k must be positive, got %d", s.Retrieval.TopK)
	}
	if s.Retrieval.OnFailure != OnFailureFail && s.Retrieval.OnFailure != OnFailureUngrounded {
		return fmt.Errorf("retrieval: on_failure must be %q or %q", OnFailureFail, OnFailureUngrounded)
	}
	return nil
}

func knownProvider(p string) bool {
	return p == ProviderGemini || p == ProviderOpenAI
}
