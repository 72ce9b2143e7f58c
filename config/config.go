// Package config loads service configuration from an optional YAML file and
// the environment, with sane defaults for everything except credentials.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Scraper    ScraperConfig    `mapstructure:"scraper"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	PageSpeed  PageSpeedConfig  `mapstructure:"pagespeed"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Stats      StatsConfig      `mapstructure:"stats"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

// ScraperConfig holds page-fetch settings.
type ScraperConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// PredictionConfig holds the text-generation job service settings. The API
// key is a hard requirement for the enhancement features.
type PredictionConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// PageSpeedConfig holds the performance measurement service settings. The
// API key is soft: absence degrades to fallback metrics.
type PageSpeedConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// StatsConfig holds usage-statistics persistence settings.
type StatsConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from config.yaml (if present) and the
// environment. Environment variables always win.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8082")
	v.SetDefault("server.gin_mode", "release")

	v.SetDefault("scraper.timeout", "30s")

	v.SetDefault("prediction.base_url", "https://api.replicate.com/v1")
	v.SetDefault("prediction.model", "openai/gpt-5-mini")
	v.SetDefault("prediction.poll_interval", "1s")
	v.SetDefault("prediction.poll_timeout", "150s")
	v.SetDefault("prediction.max_attempts", 3)

	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("stats.data_dir", "./data")

	v.SetDefault("logging.level", "info")
}

func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("SHOPAUDIT")
	v.AutomaticEnv()

	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.gin_mode", "GIN_MODE")
	v.BindEnv("prediction.api_key", "PREDICTION_API_KEY")
	v.BindEnv("prediction.model", "PREDICTION_MODEL")
	v.BindEnv("pagespeed.api_key", "PAGESPEED_API_KEY")
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("stats.data_dir", "STATS_DATA_DIR")
}
