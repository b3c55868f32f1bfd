package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"talenta-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Prefix    string `envconfig:"S3_PREFIX" default:"cvs/"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	SentryDSN        string  `envconfig:"SENTRY_DSN"`
	Environment      string  `envconfig:"ENVIRONMENT" default:"development"`
	TracesSampleRate float64 `envconfig:"TRACES_SAMPLE_RATE" default:"1.0"`

	// Feed locations for roster, credential, and skill ingestion.
	RosterFeed     string `envconfig:"ROSTER_FEED"`
	CredentialFeed string `envconfig:"CREDENTIAL_FEED"`
	SkillFeed      string `envconfig:"SKILL_FEED"`
	OverrideFeed   string `envconfig:"OVERRIDE_FEED"`

	// Matching policy. Thresholds are percentages on the combined
	// name-similarity score.
	MatchAutoThreshold   float64 `envconfig:"MATCH_AUTO_THRESHOLD" default:"80"`
	MatchReviewThreshold float64 `envconfig:"MATCH_REVIEW_THRESHOLD" default:"60"`

	// Chunking policy.
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"100"`

	// Score decay constant k in score = 100 * exp(-distance/k).
	ScoreDecay float64 `envconfig:"SCORE_DECAY" default:"15"`
	// Candidate over-fetch multiplier applied before filtering and dedup.
	SearchOverfetch int `envconfig:"SEARCH_OVERFETCH" default:"5"`

	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ReindexInterval time.Duration `envconfig:"REINDEX_INTERVAL" default:"0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("TALENTA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	// envconfig's required tag only catches unset vars, not empty ones.
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("TALENTA_DATABASE_URL must not be empty")
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
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

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
