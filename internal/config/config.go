package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/ilyakaznacheev/cleanenv"
)

// Supported backend and provider names.
const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"

	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
)

// Config groups every setting of the service.
type Config struct {
	Server     ServerConfig
	AI         AIConfig
	Chat       ChatConfig
	Catalog    CatalogConfig
	Transcript TranscriptConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	addr, err := listenAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	cfg.AI.Provider = normalizeName(cfg.AI.Provider, ProviderArk)
	cfg.Catalog.Backend = normalizeName(cfg.Catalog.Backend, BackendMemory)
	cfg.Transcript.Backend = normalizeName(cfg.Transcript.Backend, BackendMemory)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// normalizeName lowercases v, falling back when it is blank.
func normalizeName(v, fallback string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return fallback
	}
	return v
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderArk, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AI.Provider)
	}
	switch c.Catalog.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Catalog.DSN == "" {
			return fmt.Errorf("CATALOG_DB_DSN is required for the postgres catalog")
		}
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.Catalog.Backend)
	}
	switch c.Transcript.Backend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown TRANSCRIPT_BACKEND %q", c.Transcript.Backend)
	}
	if c.Chat.HistoryWindow < 1 {
		return fmt.Errorf("CHAT_HISTORY_WINDOW must be > 0")
	}
	if c.Chat.CompletionTimeout <= 0 {
		return fmt.Errorf("CHAT_COMPLETION_TIMEOUT must be > 0")
	}
	return nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port           string   `env:"PORT" env-default:"8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	Addr           string
}

// listenAddr turns PORT into a listen address.
func listenAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are taken as-is.
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// AIConfig describes the completion provider.
type AIConfig struct {
	Provider string `env:"AI_PROVIDER" env-default:"ark"`

	APIKey    string `env:"ARK_API_KEY"`
	AccessKey string `env:"ARK_ACCESS_KEY"`
	SecretKey string `env:"ARK_SECRET_KEY"`
	Model     string `env:"ARK_MODEL"`
	BaseURL   string `env:"ARK_BASE_URL" env-default:"https://ark.cn-beijing.volces.com/api/v3"`
	Region    string `env:"ARK_REGION" env-default:"cn-beijing"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`

	Temperature    float32 `env:"AI_TEMPERATURE" env-default:"0.7"`
	MaxTokens      int     `env:"AI_MAX_TOKENS"`
	StreamResponse bool    `env:"AI_STREAM" env-default:"false"`
}

// Enabled reports whether the selected provider has credentials.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != "" && c.OpenAIModel != ""
	default:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	}
}

// NewChatModel creates the Ark chat model used by the eino chain.
func (c AIConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing, set ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	temperature := c.Temperature

	var maxTokens *int
	if c.MaxTokens > 0 {
		val := c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

// ChatConfig bounds the order protocol.
type ChatConfig struct {
	HistoryWindow     int           `env:"CHAT_HISTORY_WINDOW" env-default:"10"`
	CompletionTimeout time.Duration `env:"CHAT_COMPLETION_TIMEOUT" env-default:"15s"`
}

// CatalogConfig selects where store products come from.
type CatalogConfig struct {
	Backend string `env:"CATALOG_BACKEND" env-default:"memory"`
	DSN     string `env:"CATALOG_DB_DSN"`
	Seed    bool   `env:"CATALOG_SEED" env-default:"true"`
}

// TranscriptConfig selects where turns are recorded for audit.
type TranscriptConfig struct {
	Backend       string `env:"TRANSCRIPT_BACKEND" env-default:"memory"`
	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
	SQLitePath    string `env:"TRANSCRIPT_SQLITE_PATH" env-default:"./data/transcripts.db"`
	// TTL applies to Redis transcripts; zero keeps them forever.
	TTL time.Duration `env:"TRANSCRIPT_TTL" env-default:"168h"`
}
