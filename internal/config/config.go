package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	TagviewConfigPathEnvVar = "TAGVIEW_CONFIG_PATH" // Environment variable for config path
	envPrefix               = "TAGVIEW"
)

// ErrInvalidConfig is returned when a loaded value is outside its allowed range
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the application
type Config struct {
	// Debug enables verbose logging and additional debug information
	Debug bool `mapstructure:"debug"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // json or console
	} `mapstructure:"log"`

	// Extract configures metadata extraction
	Extract struct {
		Stealth        bool   `mapstructure:"stealth"`
		MaxConcurrency int    `mapstructure:"max_concurrency"`
		FollowSymlinks bool   `mapstructure:"follow_symlinks"`
		Output         string `mapstructure:"output"`
	} `mapstructure:"extract"`

	// Server configuration
	Server struct {
		Host           string        `mapstructure:"host"`
		Port           int           `mapstructure:"port"`
		Timeout        time.Duration `mapstructure:"timeout"`
		MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	} `mapstructure:"server"`

	// Cache configures the extraction result cache
	Cache struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"cache"`
}

// Load initializes and returns the configuration from all sources:
// 1. Command-line flags (highest priority)
// 2. Environment variables (prefixed with TAGVIEW_)
// 3. Configuration file (lowest priority)
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		if envPath := os.Getenv(TagviewConfigPathEnvVar); envPath != "" {
			if _, err := os.Stat(envPath); os.IsNotExist(err) {
				return nil, fmt.Errorf("config file specified in %s not found: %s", TagviewConfigPathEnvVar, envPath)
			}
			configPath = envPath
		}
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config.yml in the current directory
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		} else if configPath != "" {
			return nil, fmt.Errorf("specified config file not found: %s", configPath)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that viper cannot type-check
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format must be json or console, got %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Extract.MaxConcurrency < 1 {
		return fmt.Errorf("%w: extract.max_concurrency must be at least 1, got %d", ErrInvalidConfig, c.Extract.MaxConcurrency)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: server.max_upload_bytes must be positive", ErrInvalidConfig)
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("%w: cache.path is required when the cache is enabled", ErrInvalidConfig)
	}
	return nil
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("extract.stealth", true)
	v.SetDefault("extract.max_concurrency", runtime.NumCPU())
	v.SetDefault("extract.follow_symlinks", false)
	v.SetDefault("extract.output", "table")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.max_upload_bytes", 32<<20)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", "tagview.db")
}
