package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "ZENFRAME_CONFIG"
	logLevelEnv      = "LOG_LEVEL"
	logFormatEnv     = "LOG_FORMAT"
	httpAddrEnv      = "HTTP_ADDR"
	corsOriginsEnv   = "CORS_ORIGINS"
	databaseDSNEnv   = "DATABASE_DSN"
	redisURLEnv      = "REDIS_URL"
	newsProviderEnv  = "NEWS_PROVIDER"
	newsAPITokenEnv  = "NEWS_API_TOKEN"
	newsLanguageEnv  = "NEWS_LANGUAGE"
	newsMaxPagesEnv  = "NEWS_MAX_PAGES"
	newsPageSizeEnv  = "NEWS_PAGE_SIZE"
	newsRSSURLEnv    = "NEWS_RSS_URL"
	llmProviderEnv   = "LLM_PROVIDER"
	llmBaseURLEnv    = "LLM_BASE_URL"
	llmAPIKeyEnv     = "LLM_API_KEY"
	llmModelEnv      = "LLM_MODEL"
	togetherKeyEnv   = "TOGETHER_API_KEY"
	togetherModelEnv = "TOGETHER_MODEL"
	intervalEnv      = "INGEST_INTERVAL"
	runOnStartEnv    = "INGEST_ON_START"
	jwtSecretEnv     = "JWT_SECRET_KEY"

	defaultJWTSecret  = "please_change_me"
	defaultLLMBaseURL = "https://api.together.xyz/v1/"
	defaultLLMModel   = "meta-llama/Llama-3-8b-chat-hf"
)

// Feed provider names.
const (
	FeedProviderTheNewsAPI = "thenewsapi"
	FeedProviderRSS        = "rss"
)

// Model provider names.
const (
	LLMProviderOpenAI    = "openai"
	LLMProviderAnthropic = "anthropic"
	LLMProviderGemini    = "gemini"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Feed       FeedConfig       `yaml:"feed"`
	LLM        LLMConfig        `yaml:"llm"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Auth       AuthConfig       `yaml:"auth"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig configures the REST API listener.
type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN selects the in-memory store.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
}

// RedisConfig enables the enrichment cache when URL is set.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// FeedConfig groups settings for the upstream news provider.
type FeedConfig struct {
	Provider      string        `yaml:"provider"`
	BaseURL       string        `yaml:"baseUrl"`
	APIToken      string        `yaml:"apiToken"`
	Language      string        `yaml:"language"`
	MaxPages      int           `yaml:"maxPages"`
	PageSize      int           `yaml:"pageSize"`
	PageSizeParam string        `yaml:"pageSizeParam"`
	Timeout       time.Duration `yaml:"timeout"`
	PagePause     time.Duration `yaml:"pagePause"`
	RSSURL        string        `yaml:"rssUrl"`
}

// LLMConfig defines how to contact the language-model provider.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"baseUrl"`
	APIKey      string        `yaml:"apiKey"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// EnrichmentConfig tunes retries and caching of the enrichment step.
type EnrichmentConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseDelay   time.Duration `yaml:"baseDelay"`
	BodyLimit   int           `yaml:"bodyLimit"`
	CacheTTL    time.Duration `yaml:"cacheTtl"`
}

// SchedulerConfig defines when ingestion runs.
type SchedulerConfig struct {
	Interval     time.Duration `yaml:"interval"`
	MisfireGrace time.Duration `yaml:"misfireGrace"`
	RunOnStart   bool          `yaml:"runOnStart"`
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTtl"`
}

// Load reads .env and YAML configuration (if present), applies environment overrides and validates.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyProviderDefaults()

	if cfg.Auth.JWTSecret == defaultJWTSecret {
		log.Printf("config: %s is not set, using the insecure default secret", jwtSecretEnv)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Scheduler.Interval <= 0 {
		errs = append(errs, errors.New("scheduler.interval must be positive"))
	}
	if c.Feed.MaxPages < 1 {
		errs = append(errs, errors.New("feed.maxPages must be >= 1"))
	}
	if c.Feed.PageSize < 1 {
		errs = append(errs, errors.New("feed.pageSize must be >= 1"))
	}
	switch c.Feed.Provider {
	case FeedProviderTheNewsAPI:
	case FeedProviderRSS:
		if c.Feed.RSSURL == "" {
			errs = append(errs, errors.New("feed.rssUrl is required for the rss provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown feed provider %q", c.Feed.Provider))
	}
	switch c.LLM.Provider {
	case LLMProviderOpenAI, LLMProviderAnthropic, LLMProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	if c.Enrichment.MaxAttempts < 1 {
		errs = append(errs, errors.New("enrichment.maxAttempts must be >= 1"))
	}

	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Logging.Level, logLevelEnv)
	setString(&c.Logging.Format, logFormatEnv)
	setString(&c.HTTP.Addr, httpAddrEnv)
	if v := os.Getenv(corsOriginsEnv); v != "" {
		c.HTTP.AllowedOrigins = splitList(v)
	}

	setString(&c.Database.DSN, databaseDSNEnv)
	setString(&c.Redis.URL, redisURLEnv)

	setString(&c.Feed.Provider, newsProviderEnv)
	setString(&c.Feed.APIToken, newsAPITokenEnv)
	setString(&c.Feed.Language, newsLanguageEnv)
	setInt(&c.Feed.MaxPages, newsMaxPagesEnv)
	setInt(&c.Feed.PageSize, newsPageSizeEnv)
	setString(&c.Feed.RSSURL, newsRSSURLEnv)

	setString(&c.LLM.Provider, llmProviderEnv)
	setString(&c.LLM.BaseURL, llmBaseURLEnv)
	setString(&c.LLM.APIKey, togetherKeyEnv)
	setString(&c.LLM.APIKey, llmAPIKeyEnv)
	setString(&c.LLM.Model, togetherModelEnv)
	setString(&c.LLM.Model, llmModelEnv)

	setDuration(&c.Scheduler.Interval, intervalEnv)
	setBool(&c.Scheduler.RunOnStart, runOnStartEnv)

	setString(&c.Auth.JWTSecret, jwtSecretEnv)
}

// applyProviderDefaults drops the OpenAI-compatible endpoint and model when another provider is selected.
func (c *Config) applyProviderDefaults() {
	if c.LLM.Provider == LLMProviderOpenAI {
		return
	}
	if c.LLM.BaseURL == defaultLLMBaseURL {
		c.LLM.BaseURL = ""
	}
	if c.LLM.Model == defaultLLMModel {
		c.LLM.Model = ""
	}
}

// Default returns the configuration used when no file or environment overrides are present.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		HTTP: HTTPConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Database: DatabaseConfig{MaxOpenConns: 25, MaxIdleConns: 5},
		Feed: FeedConfig{
			Provider:      FeedProviderTheNewsAPI,
			BaseURL:       "https://api.thenewsapi.com",
			Language:      "en",
			MaxPages:      3,
			PageSize:      100,
			PageSizeParam: "page_size",
			Timeout:       10 * time.Second,
			PagePause:     time.Second,
		},
		LLM: LLMConfig{
			Provider:    LLMProviderOpenAI,
			BaseURL:     defaultLLMBaseURL,
			Model:       defaultLLMModel,
			Temperature: 0.6,
			MaxTokens:   512,
			Timeout:     60 * time.Second,
		},
		Enrichment: EnrichmentConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			BodyLimit:   1000,
			CacheTTL:    72 * time.Hour,
		},
		Scheduler: SchedulerConfig{
			Interval:     2 * time.Hour,
			MisfireGrace: time.Minute,
		},
		Auth: AuthConfig{
			JWTSecret: defaultJWTSecret,
			TokenTTL:  24 * time.Hour,
		},
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Printf("config: ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = n
}

func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		log.Printf("config: ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = d
}

func setBool(dst *bool, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Printf("config: ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = b
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
