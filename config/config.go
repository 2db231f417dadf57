package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server Server
	Store  Store
	Sync   Sync
	Cache  Cache
}

// Server holds server-related configuration.
type Server struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Store holds remote object store configuration.
type Store struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	AppID             string        `mapstructure:"app_id"`
	PageSize          int           `mapstructure:"page_size"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RetryBaseDelay    time.Duration `mapstructure:"retry_base_delay"`
	CallTimeout       time.Duration `mapstructure:"call_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// Sync holds reconciliation-run configuration.
type Sync struct {
	DefaultMarkup float64       `mapstructure:"default_markup"`
	BatchSize     int           `mapstructure:"batch_size"`
	Concurrency   int           `mapstructure:"concurrency"`
	ChunkDelay    time.Duration `mapstructure:"chunk_delay"`
}

// Cache holds diagnostic cache configuration.
type Cache struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/quotesync/")

	// Environment variable settings
	v.SetEnvPrefix("QUOTESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Store defaults. Empty defaults register the keys so AutomaticEnv can
	// bind them.
	v.SetDefault("store.base_url", "")
	v.SetDefault("store.api_key", "")
	v.SetDefault("store.app_id", "")
	v.SetDefault("store.page_size", 100)
	v.SetDefault("store.max_attempts", 3)
	v.SetDefault("store.retry_base_delay", "500ms")
	v.SetDefault("store.call_timeout", "15s")
	v.SetDefault("store.requests_per_second", 10)

	// Sync defaults
	v.SetDefault("sync.default_markup", 0)
	v.SetDefault("sync.batch_size", 50)
	v.SetDefault("sync.concurrency", 5)
	v.SetDefault("sync.chunk_delay", "200ms")

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")
}

// validate validates the configuration.
func validate(config *Config) error {
	if config.Store.BaseURL == "" {
		return fmt.Errorf("store base URL is required (set QUOTESYNC_STORE_BASE_URL)")
	}
	if config.Store.APIKey == "" {
		return fmt.Errorf("store API key is required (set QUOTESYNC_STORE_API_KEY)")
	}
	if config.Sync.DefaultMarkup < 0 {
		return fmt.Errorf("default markup must be non-negative, got: %v", config.Sync.DefaultMarkup)
	}
	if config.Sync.Concurrency <= 0 {
		return fmt.Errorf("sync concurrency must be positive, got: %d", config.Sync.Concurrency)
	}
	return nil
}
