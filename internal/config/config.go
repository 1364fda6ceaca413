package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TRACE_ID_KEY = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking - the overlap repeats the tail of the previous chunk verbatim
	ChunkSize    = 1000
	ChunkOverlap = 100

	//document discovery: fixed pagination window per ticker
	SearchSkipResults = 2
	SearchMaxResults  = 3
	SearchQueryPause  = 2 * time.Second

	//each hit below this count comes straight from the store default
	SearchTopK = 4

	DownloadTimeout = 120 * time.Second
	PageExtractTimeout = 10 * time.Second

	EmbeddingBatchSize                  = 100
	EmbeddingOutputDimensionality int32 = 1536

	//every per-source index lives in a collection carrying this prefix
	IndexPrefix = "findocs-"

	//llm
	LLMMaxRetries  = 2
	LLMRetryPause  = 2 * time.Second
	ModelTemperature float32 = 0

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 150 * time.Second //long enough for a full ticker ingestion pass
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":8000"

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	AnswerCacheTTL = 24 * time.Hour

	DefaultModelName          = "gemini-2.0-flash"
	DefaultEmbeddingModelName = "gemini-embedding-001"
)

// Config is built once in main and handed to every constructor. No package
// level client state, keeps the fakes cheap in tests.
type Config struct {
	ListenAddr string
	IsProd     bool

	ModelName          string
	EmbeddingModelName string
	GoogleAPIKey       string
	OpenAIAPIKey       string

	QdrantHost   string
	QdrantPort   int
	QdrantUseTLS bool

	RedisAddr string

	AuthToken    string
	NoAuthBypass bool
}

// Load reads .env (when present) plus the process environment.
func Load() *Config {
	_ = godotenv.Load() //a missing .env file is fine, the real env still applies

	port := 6334
	if p, err := strconv.Atoi(os.Getenv("QDRANT_PORT")); err == nil {
		port = p
	}

	return &Config{
		ListenAddr:         envOr("LISTEN_ADDR", ServerListenAddr),
		IsProd:             os.Getenv("ENV") == "prod",
		ModelName:          envOr("MODEL_NAME", DefaultModelName),
		EmbeddingModelName: envOr("EMBEDDING_MODEL_NAME", DefaultEmbeddingModelName),
		GoogleAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		QdrantHost:         envOr("QDRANT_HOST", "localhost"),
		QdrantPort:         port,
		QdrantUseTLS:       os.Getenv("QDRANT_USE_TLS") == "true",
		RedisAddr:          envOr("REDIS_ADDR", "127.0.0.1:6379"),
		AuthToken:          os.Getenv("AUTH_TOKEN"),
		NoAuthBypass:       os.Getenv("AUTH_TOKEN") == "",
	}
}

// Validate refuses to let the process come up half configured. A missing
// credential for the selected model is fatal at startup, not at first request.
func (c *Config) Validate() error {
	switch {
	case strings.HasPrefix(c.ModelName, "gemini"):
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY not set for model %q", c.ModelName)
		}
	case strings.HasPrefix(c.ModelName, "gpt"):
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY not set for model %q", c.ModelName)
		}
	default:
		return fmt.Errorf("unsupported model name %q, supported prefixes are gemini- and gpt-", c.ModelName)
	}

	//embeddings are always Google backed
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY not set for embedding model %q", c.EmbeddingModelName)
	}
	return nil
}

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
