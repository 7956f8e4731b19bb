// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig
	Platform PlatformConfig
	Cache    CacheConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Viewer   ViewerConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          string
	MasterKey     string
	BodySizeLimit string
}

// PlatformConfig holds the remote training-center API connection settings
type PlatformConfig struct {
	BaseURL string
	Token   string
}

// CacheConfig selects and tunes the file content cache backend
type CacheConfig struct {
	Backend  string // "memory" or "redis"
	TTL      time.Duration
	RedisURL string
}

// AuditConfig controls the document access trail
type AuditConfig struct {
	Enabled       bool
	Backend       string // "memory" or "postgresql"
	DSN           string
	RetentionDays int
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled  bool
	Endpoint string
}

// ViewerConfig tunes preview session handling
type ViewerConfig struct {
	SessionTTL time.Duration
}

// LogConfig controls log output
type LogConfig struct {
	Format string // "json" or "pretty"
	Level  string
}

// Load reads configuration from the environment, with an optional .env
// file in the working directory.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if .env file doesn't exist

	viper.SetDefault("TRAINDOCS_PORT", "8080")
	viper.SetDefault("TRAINDOCS_BODY_SIZE_LIMIT", "32M")
	viper.SetDefault("TRAINDOCS_CACHE_BACKEND", "memory")
	viper.SetDefault("TRAINDOCS_CACHE_TTL", "5m")
	viper.SetDefault("TRAINDOCS_AUDIT_ENABLED", false)
	viper.SetDefault("TRAINDOCS_AUDIT_BACKEND", "memory")
	viper.SetDefault("TRAINDOCS_AUDIT_RETENTION_DAYS", 90)
	viper.SetDefault("TRAINDOCS_METRICS_ENABLED", false)
	viper.SetDefault("TRAINDOCS_METRICS_ENDPOINT", "/metrics")
	viper.SetDefault("TRAINDOCS_VIEWER_SESSION_TTL", "30m")
	viper.SetDefault("TRAINDOCS_LOG_FORMAT", "json")
	viper.SetDefault("TRAINDOCS_LOG_LEVEL", "info")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:          viper.GetString("TRAINDOCS_PORT"),
			MasterKey:     viper.GetString("TRAINDOCS_MASTER_KEY"),
			BodySizeLimit: viper.GetString("TRAINDOCS_BODY_SIZE_LIMIT"),
		},
		Platform: PlatformConfig{
			BaseURL: viper.GetString("TRAINDOCS_API_BASE_URL"),
			Token:   viper.GetString("TRAINDOCS_API_TOKEN"),
		},
		Cache: CacheConfig{
			Backend:  viper.GetString("TRAINDOCS_CACHE_BACKEND"),
			TTL:      viper.GetDuration("TRAINDOCS_CACHE_TTL"),
			RedisURL: viper.GetString("TRAINDOCS_REDIS_URL"),
		},
		Audit: AuditConfig{
			Enabled:       viper.GetBool("TRAINDOCS_AUDIT_ENABLED"),
			Backend:       viper.GetString("TRAINDOCS_AUDIT_BACKEND"),
			DSN:           viper.GetString("TRAINDOCS_AUDIT_DSN"),
			RetentionDays: viper.GetInt("TRAINDOCS_AUDIT_RETENTION_DAYS"),
		},
		Metrics: MetricsConfig{
			Enabled:  viper.GetBool("TRAINDOCS_METRICS_ENABLED"),
			Endpoint: viper.GetString("TRAINDOCS_METRICS_ENDPOINT"),
		},
		Viewer: ViewerConfig{
			SessionTTL: viper.GetDuration("TRAINDOCS_VIEWER_SESSION_TTL"),
		},
		Log: LogConfig{
			Format: viper.GetString("TRAINDOCS_LOG_FORMAT"),
			Level:  viper.GetString("TRAINDOCS_LOG_LEVEL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Platform.BaseURL == "" {
		return fmt.Errorf("TRAINDOCS_API_BASE_URL is required")
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("TRAINDOCS_REDIS_URL is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}
