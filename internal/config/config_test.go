package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_ADDR", "CATALOG_URL", "CATALOG_TTL", "LLM_API_KEY", "OPENROUTER_API_KEY", "PAGE_SIZE", "LLM_PROVIDER"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":5000", cfg.ServerAddr)
	assert.Equal(t, DefaultCatalogURL, cfg.CatalogURL)
	assert.Equal(t, time.Hour, cfg.CatalogTTL)
	assert.Equal(t, 5*time.Second, cfg.CatalogFetchTimeout)
	assert.Equal(t, 2, cfg.CatalogRetries)
	assert.Equal(t, 3500*time.Millisecond, cfg.LLMReplyTimeout)
	assert.Equal(t, 30, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 5*time.Minute, cfg.ResponseCacheTTL)
	assert.Equal(t, 3, cfg.PageSize)
	assert.Equal(t, ProviderOpenRouter, cfg.LLMProvider)
	assert.False(t, cfg.LLMConfigured())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CATALOG_TTL", "10m")
	t.Setenv("CATALOG_RETRIES", "4")
	t.Setenv("PAGE_SIZE", "not-a-number")
	t.Setenv("RATE_LIMIT_WINDOW", "bogus")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := Load()
	assert.Equal(t, 10*time.Minute, cfg.CatalogTTL)
	assert.Equal(t, 4, cfg.CatalogRetries)
	assert.Equal(t, 3, cfg.PageSize, "invalid values keep the default")
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "sk-or-test", cfg.LLMAPIKey)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.False(t, cfg.LLMConfigured())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad catalog url", func(c *Config) { c.CatalogURL = "ftp://x" }, "CATALOG_URL"},
		{"file catalog skips url", func(c *Config) { c.CatalogURL = ""; c.CatalogFile = "plans.json" }, ""},
		{"bad redis url", func(c *Config) { c.RedisURL = "http://cache" }, "REDIS_URL"},
		{"good redis url", func(c *Config) { c.RedisURL = "redis://cache:6379/0" }, ""},
		{"unknown provider", func(c *Config) { c.LLMProvider = "claude" }, "LLM_PROVIDER"},
		{"gemini ignores base url", func(c *Config) { c.LLMProvider = ProviderGemini; c.LLMBaseURL = "" }, ""},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, "PAGE_SIZE"},
		{"negative retries", func(c *Config) { c.CatalogRetries = -1 }, "CATALOG_RETRIES"},
		{"zero ttl", func(c *Config) { c.CatalogTTL = 0 }, "CATALOG_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				CatalogURL:             DefaultCatalogURL,
				LLMProvider:            ProviderOpenRouter,
				LLMBaseURL:             "https://openrouter.ai/api/v1",
				PageSize:               3,
				CatalogRetries:         2,
				CatalogTTL:             time.Hour,
				CatalogRefreshInterval: time.Minute,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plangenie.yaml")
	t.Setenv("GREETING", "Namaste!")
	require.NoError(t, os.WriteFile(path, []byte(`
operator_aliases:
  "Reliance Jio": JIO
  bsnl-vi: vi
canned_replies:
  greeting:
    - ${GREETING}
`), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadYAMLConfig()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"reliance jio": "jio", "bsnl-vi": "vi"}, cfg.Aliases())
	assert.Equal(t, []string{"Namaste!"}, cfg.Replies()["greeting"])
}

func TestLoadYAMLConfig_Missing(t *testing.T) {
	cfg, err := LoadYAMLConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
	assert.Nil(t, cfg)
	assert.Nil(t, cfg.Aliases())
	assert.Nil(t, cfg.Replies())
}

func TestLoadYAMLConfig_UnknownOperator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operator_aliases:\n  bsnl: bsnl\n"), 0o644))

	_, err := LoadYAMLConfigFile(path)
	assert.ErrorContains(t, err, "unknown operator")
}

func TestLoadYAMLConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operator_aliases: [unclosed"), 0o644))

	_, err := LoadYAMLConfigFile(path)
	assert.Error(t, err)
}
