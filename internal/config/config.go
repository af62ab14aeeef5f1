package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"plangenie/internal/validation"
)

// DefaultCatalogURL is the public plan catalog.
const DefaultCatalogURL = "https://raw.githubusercontent.com/nh652/TelcoPlans/main/telecom_plans_improved.json"

// LLM providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string

	// Server
	ServerAddr     string
	CORSOrigins    string // Comma-separated allowed origins
	ClientIDHeader string // Header carrying a caller identity verified upstream, e.g. "X-Client-ID"

	// Catalog
	CatalogURL             string
	CatalogFile            string // Local catalog; takes precedence over CatalogURL
	CatalogTTL             time.Duration
	CatalogFetchTimeout    time.Duration
	CatalogRetries         int
	CatalogBackoff         time.Duration
	CatalogRefreshInterval time.Duration

	// LLM
	LLMProvider       string
	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	GeminiAPIKey      string
	GeminiModel       string
	LLMExtractTimeout time.Duration
	LLMReplyTimeout   time.Duration

	// Governor
	RateLimitMax     int
	RateLimitWindow  time.Duration
	ResponseCacheTTL time.Duration
	PageSize         int
	RedisURL         string // Empty keeps caches in process memory
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ServerAddr:     getEnv("SERVER_ADDR", ":5000"),
		CORSOrigins:    getEnv("CORS_ORIGINS", ""),
		ClientIDHeader: getEnv("CLIENT_ID_HEADER", ""),

		CatalogURL:             getEnv("CATALOG_URL", DefaultCatalogURL),
		CatalogFile:            getEnv("CATALOG_FILE", ""),
		CatalogTTL:             getEnvDuration("CATALOG_TTL", time.Hour),
		CatalogFetchTimeout:    getEnvDuration("CATALOG_FETCH_TIMEOUT", 5*time.Second),
		CatalogRetries:         getEnvInt("CATALOG_RETRIES", 2),
		CatalogBackoff:         getEnvDuration("CATALOG_BACKOFF", time.Second),
		CatalogRefreshInterval: getEnvDuration("CATALOG_REFRESH_INTERVAL", 15*time.Minute),

		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenRouter)),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMAPIKey:         getEnv("LLM_API_KEY", getEnv("OPENROUTER_API_KEY", "")),
		LLMModel:          getEnv("LLM_MODEL", "openai/gpt-3.5-turbo"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMExtractTimeout: getEnvDuration("LLM_EXTRACT_TIMEOUT", 8*time.Second),
		LLMReplyTimeout:   getEnvDuration("LLM_REPLY_TIMEOUT", 3500*time.Millisecond),

		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX", 30),
		RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		ResponseCacheTTL: getEnvDuration("RESPONSE_CACHE_TTL", 5*time.Minute),
		PageSize:         getEnvInt("PAGE_SIZE", 3),
		RedisURL:         getEnv("REDIS_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Validate rejects configuration the server cannot start with.
func (c *Config) Validate() error {
	if c.CatalogFile == "" {
		if ok, msg := validation.ValidateURL(c.CatalogURL); !ok {
			return fmt.Errorf("CATALOG_URL: %s", msg)
		}
	}
	if c.RedisURL != "" {
		if ok, msg := validation.ValidateRedisURL(c.RedisURL); !ok {
			return fmt.Errorf("REDIS_URL: %s", msg)
		}
	}

	switch c.LLMProvider {
	case ProviderOpenRouter:
		if ok, msg := validation.ValidateURL(c.LLMBaseURL); !ok {
			return fmt.Errorf("LLM_BASE_URL: %s", msg)
		}
	case ProviderGemini:
	default:
		return fmt.Errorf("LLM_PROVIDER: unknown provider %q", c.LLMProvider)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.CatalogRetries < 0 {
		return fmt.Errorf("CATALOG_RETRIES must not be negative, got %d", c.CatalogRetries)
	}
	if c.CatalogTTL <= 0 || c.CatalogRefreshInterval <= 0 {
		return fmt.Errorf("CATALOG_TTL and CATALOG_REFRESH_INTERVAL must be positive")
	}
	return nil
}

// LLMConfigured reports whether the selected provider has credentials.
func (c *Config) LLMConfigured() bool {
	if c.LLMProvider == ProviderGemini {
		return c.GeminiAPIKey != ""
	}
	return c.LLMAPIKey != ""
}
