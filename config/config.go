package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medalt/backend/internal/logging"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatasetConfig points at the medicine catalog source
type DatasetConfig struct {
	Path  string `mapstructure:"path"`  // file path or http(s) URL
	Table string `mapstructure:"table"` // SQLite only; empty picks the first table
}

// MatchingConfig holds name resolution and ranking settings
type MatchingConfig struct {
	Cutoff             float64 `mapstructure:"cutoff"`
	Algorithm          string  `mapstructure:"algorithm"` // "sequence" or "levenshtein"
	FoldCase           bool    `mapstructure:"fold_case"`
	DefaultTopN        int     `mapstructure:"default_top_n"`
	MaxTopN            int     `mapstructure:"max_top_n"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Type    string        `mapstructure:"type"` // only "memory"
	TTL     time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// UploadConfig holds attachment upload settings
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxSizeMB         int      `mapstructure:"max_size_mb"`
}

// MaxBytes returns the upload size limit in bytes
func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxSizeMB) << 20
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/medalt/")

	// MEDALT_MATCHING_CUTOFF overrides matching.cutoff
	v.SetEnvPrefix("MEDALT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("dataset.path", "../lib/dataset/Pakistan Medicines Dataset.csv")
	v.SetDefault("dataset.table", "")

	v.SetDefault("matching.cutoff", 0.6)
	v.SetDefault("matching.algorithm", "sequence")
	v.SetDefault("matching.fold_case", true)
	v.SetDefault("matching.default_top_n", 5)
	v.SetDefault("matching.max_top_n", 50)
	v.SetDefault("matching.enable_debug_logging", false)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.allowed_extensions", []string{"png", "jpg", "jpeg"})
	v.SetDefault("upload.max_size_mb", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required (set MEDALT_SERVER_PORT)")
	}

	if config.Dataset.Path == "" {
		return fmt.Errorf("dataset path is required (set MEDALT_DATASET_PATH)")
	}

	m := config.Matching
	if m.Cutoff <= 0 || m.Cutoff > 1 {
		return fmt.Errorf("matching cutoff must be in (0, 1], got: %g", m.Cutoff)
	}
	if m.Algorithm != "sequence" && m.Algorithm != "levenshtein" {
		return fmt.Errorf("matching algorithm must be 'sequence' or 'levenshtein', got: %s", m.Algorithm)
	}
	if m.DefaultTopN <= 0 || m.MaxTopN <= 0 {
		return fmt.Errorf("matching top-n values must be positive, got default=%d max=%d", m.DefaultTopN, m.MaxTopN)
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.RateLimit.PerIP <= 0 || config.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive, got per_ip=%d burst=%d", config.RateLimit.PerIP, config.RateLimit.Burst)
	}

	if config.Upload.Dir == "" {
		return fmt.Errorf("upload dir is required (set MEDALT_UPLOAD_DIR)")
	}

	if !logging.ValidLevel(config.Log.Level) {
		return fmt.Errorf("log level must be one of trace, debug, info, warn, error, fatal, disabled, got: %s", config.Log.Level)
	}
	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}
