package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const apiKeyVar = "GEMINI_API_KEY"

type Config struct {
	// Server
	Port     string `envconfig:"PORT" default:"8080"`
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Static site
	StaticDir string `envconfig:"STATIC_DIR"`

	// Gemini AI
	GeminiBaseURL     string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	GeminiLocalConfig string `envconfig:"GEMINI_LOCAL_CONFIG" default:"config.local.env"`

	// Redis (optional, shared rate-limit store)
	RedisURL string `envconfig:"REDIS_URL"`

	// Rate limiting on /relay
	RateLimitEnabled   bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitPerMinute int  `envconfig:"RATE_LIMIT_PER_MINUTE" default:"20"`
	RateLimitBurst     int  `envconfig:"RATE_LIMIT_BURST" default:"5"`

	// GeminiAPIKey is filled by ResolveAPIKey from the credential providers,
	// never directly from envconfig. Empty means no key is configured.
	GeminiAPIKey string `ignored:"true"`
}

// Load reads an optional .env file and processes environment variables.
// The Gemini credential is resolved separately by ResolveAPIKey, once the
// logger is up, so unreadable sources are reported.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 1
	}

	return &cfg, nil
}

// ResolveAPIKey fills GeminiAPIKey from the credential providers.
// A missing credential is not an error.
func (c *Config) ResolveAPIKey() {
	c.GeminiAPIKey = Resolve(c.CredentialProviders()...)
}

// CredentialProviders lists the Gemini key sources in priority order.
// The fallback file path is relative to the working directory.
func (c *Config) CredentialProviders() []CredentialProvider {
	return []CredentialProvider{
		EnvProvider{Key: apiKeyVar},
		FileProvider{Path: c.GeminiLocalConfig, Key: apiKeyVar},
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
