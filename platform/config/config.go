// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// DatabaseConfig provides database connection settings for the dispatch log.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsDispatchLogEnabled() bool
}

// RedisConfig provides settings for the inventory cache.
type RedisConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetInventoryCacheTTL() time.Duration
	IsInventoryCacheEnabled() bool
}

// ProviderConfig provides settings for the number-inventory provider.
type ProviderConfig interface {
	GetProviderBaseURL() string
	GetProviderAuthToken() string
}

// TemplatesConfig provides settings for the content-template provider.
type TemplatesConfig interface {
	GetTemplatesBaseURL() string
	GetTemplatesAuthToken() string
}

// DispatchConfig provides settings for the external send action.
type DispatchConfig interface {
	GetSendActionURL() string
	GetSendActionAuthToken() string
}

// ComposeConfig provides settings for the compose state machine.
type ComposeConfig interface {
	IsContentTemplatesEnabled() bool
	GetOfflineActivitySID() string
}

// =============================================================================
// Config
// =============================================================================

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	JWTAccessSecret string

	DatabaseURL string

	RedisAddr         string
	RedisPassword     string
	InventoryCacheTTL time.Duration

	ProviderBaseURL   string
	ProviderAuthToken string

	TemplatesBaseURL   string
	TemplatesAuthToken string

	SendActionURL       string
	SendActionAuthToken string

	UseContentTemplates bool
	OfflineActivitySID  string
}

// Load reads configuration from the environment. A .env file is applied
// first when present (development convenience, same as production env vars).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		CORSAllowAll:   getEnvBool("CORS_ALLOW_ALL", true),
		CORSOrigins:    splitAndTrim(getEnv("CORS_ORIGINS", "")),
		CORSAllowCreds: getEnvBool("CORS_ALLOW_CREDENTIALS", false),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		InventoryCacheTTL: getEnvDuration("INVENTORY_CACHE_TTL", 60*time.Second),

		ProviderBaseURL:   os.Getenv("NUMBER_PROVIDER_BASE_URL"),
		ProviderAuthToken: os.Getenv("NUMBER_PROVIDER_AUTH_TOKEN"),

		TemplatesBaseURL:   os.Getenv("TEMPLATES_BASE_URL"),
		TemplatesAuthToken: os.Getenv("TEMPLATES_AUTH_TOKEN"),

		SendActionURL:       os.Getenv("SEND_ACTION_URL"),
		SendActionAuthToken: os.Getenv("SEND_ACTION_AUTH_TOKEN"),

		UseContentTemplates: getEnvBool("USE_CONTENT_TEMPLATES", false),
		OfflineActivitySID:  os.Getenv("OFFLINE_ACTIVITY_SID"),
	}

	// The template provider usually lives on the same serverless domain as
	// the number provider.
	if cfg.TemplatesBaseURL == "" {
		cfg.TemplatesBaseURL = cfg.ProviderBaseURL
	}
	if cfg.TemplatesAuthToken == "" {
		cfg.TemplatesAuthToken = cfg.ProviderAuthToken
	}
	if cfg.SendActionAuthToken == "" {
		cfg.SendActionAuthToken = cfg.ProviderAuthToken
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.ProviderBaseURL == "" {
		return fmt.Errorf("NUMBER_PROVIDER_BASE_URL is required")
	}
	if c.SendActionURL == "" {
		return fmt.Errorf("SEND_ACTION_URL is required")
	}
	return nil
}

// =============================================================================
// Interface implementations
// =============================================================================

func (c *Config) GetHTTPAddr() string        { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool      { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string   { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool    { return c.CORSAllowCreds }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) IsDispatchLogEnabled() bool { return c.DatabaseURL != "" }

func (c *Config) GetRedisAddr() string                { return c.RedisAddr }
func (c *Config) GetRedisPassword() string            { return c.RedisPassword }
func (c *Config) GetInventoryCacheTTL() time.Duration { return c.InventoryCacheTTL }
func (c *Config) IsInventoryCacheEnabled() bool       { return c.RedisAddr != "" }

func (c *Config) GetProviderBaseURL() string    { return c.ProviderBaseURL }
func (c *Config) GetProviderAuthToken() string  { return c.ProviderAuthToken }
func (c *Config) GetTemplatesBaseURL() string   { return c.TemplatesBaseURL }
func (c *Config) GetTemplatesAuthToken() string { return c.TemplatesAuthToken }

func (c *Config) GetSendActionURL() string       { return c.SendActionURL }
func (c *Config) GetSendActionAuthToken() string { return c.SendActionAuthToken }

func (c *Config) IsContentTemplatesEnabled() bool { return c.UseContentTemplates }
func (c *Config) GetOfflineActivitySID() string   { return c.OfflineActivitySID }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
