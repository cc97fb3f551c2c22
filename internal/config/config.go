package config

import (
	"os"
	"strconv"

	"vidinsights/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig
	Server    ServerConfig
	Analytics AnalyticsConfig
	LogLevel  string
}

// DataConfig holds dataset location settings
type DataConfig struct {
	File string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string

	// MaxConcurrentAnalyses bounds how many API computations run at once
	MaxConcurrentAnalyses int
}

// AnalyticsConfig holds defaults applied when a request leaves them unset
type AnalyticsConfig struct {
	TopN          int
	HistogramBins int
	LikeIncrease  float64

	// MaxHistogramBins is the largest bin count a request may ask for
	MaxHistogramBins int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			File: getEnvOrDefault("DATA_FILE", "tiktok_dataset.csv"),
		},
		Server: ServerConfig{
			Port:                  getEnvOrDefault("PORT", "8080"),
			GinMode:               getEnvOrDefault("GIN_MODE", "release"),
			MaxConcurrentAnalyses: getEnvIntOrDefault("MAX_CONCURRENT_ANALYSES", 4),
		},
		Analytics: AnalyticsConfig{
			TopN:             getEnvIntOrDefault("TOP_N", 10),
			HistogramBins:    getEnvIntOrDefault("HISTOGRAM_BINS", 50),
			LikeIncrease:     getEnvFloatOrDefault("LIKE_INCREASE", 1.1),
			MaxHistogramBins: getEnvIntOrDefault("MAX_HISTOGRAM_BINS", 1000),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Data.File == "" {
		return errors.ConfigInvalid("DATA_FILE is required")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxConcurrentAnalyses <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_ANALYSES must be positive")
	}
	if config.Analytics.TopN <= 0 {
		return errors.ConfigInvalid("TOP_N must be positive")
	}
	if config.Analytics.HistogramBins <= 0 {
		return errors.ConfigInvalid("HISTOGRAM_BINS must be positive")
	}
	if config.Analytics.HistogramBins > config.Analytics.MaxHistogramBins {
		return errors.ConfigInvalid("HISTOGRAM_BINS must not exceed MAX_HISTOGRAM_BINS")
	}
	if config.Analytics.LikeIncrease <= 0 {
		return errors.ConfigInvalid("LIKE_INCREASE must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
