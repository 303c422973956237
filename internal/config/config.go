package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/docuchat-labs/docuchat/internal/domain"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	OpenAIAPIKey        string  `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string  `envconfig:"EMBEDDING_MODEL"`
	EmbeddingDimensions int     `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	ChatModel           string  `envconfig:"CHAT_MODEL"`
	Temperature         float32 `envconfig:"TEMPERATURE" default:"0.7"`
	EmbedRPS            float64 `envconfig:"EMBED_RPS" default:"0"`

	// Optional static bearer token; empty disables authentication
	APIKey string `envconfig:"API_KEY"`

	ChunkSize       int     `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap    int     `envconfig:"CHUNK_OVERLAP" default:"200"`
	TopK            int     `envconfig:"TOP_K" default:"4"`
	MinScore        float32 `envconfig:"MIN_SCORE" default:"-1"`
	MaxContextChars int     `envconfig:"MAX_CONTEXT_CHARS" default:"6000"`

	IngestPollInterval time.Duration `envconfig:"INGEST_POLL_INTERVAL" default:"1s"`
	IngestConcurrency  int           `envconfig:"INGEST_CONCURRENCY" default:"4"`
	PDFPageTimeout     time.Duration `envconfig:"PDF_PAGE_TIMEOUT" default:"10s"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCUCHAT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.PipelineSettings().Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline settings: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// PipelineSettings maps the chunking and retrieval knobs onto the
// pipeline's settings type.
func (c *Config) PipelineSettings() domain.PipelineSettings {
	return domain.PipelineSettings{
		ChunkSize:       c.ChunkSize,
		ChunkOverlap:    c.ChunkOverlap,
		TopK:            c.TopK,
		MinScore:        c.MinScore,
		MaxContextChars: c.MaxContextChars,
	}
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasAuth() bool {
	return c.APIKey != ""
}
