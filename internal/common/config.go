package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Parsing   ParsingConfig
	Detection DetectionConfig
	Ingest    IngestConfig
}

// ParsingConfig holds field-extraction configuration
type ParsingConfig struct {
	PreferEuropeanDates bool
	MaxTextLength       int
}

// DetectionConfig holds duplicate/anomaly detection configuration
type DetectionConfig struct {
	DuplicateThreshold float64
	AnomalySigma       float64
}

// IngestConfig holds directory-ingestion configuration
type IngestConfig struct {
	Roots         []string
	WatchDebounce time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Parsing: ParsingConfig{
			PreferEuropeanDates: getEnvAsBool("PREFER_EUROPEAN_DATES", true),
			MaxTextLength:       getEnvAsInt("MAX_TEXT_LENGTH", 50000),
		},
		Detection: DetectionConfig{
			DuplicateThreshold: getEnvAsFloat64("DUPLICATE_THRESHOLD", 0.95),
			AnomalySigma:       getEnvAsFloat64("ANOMALY_SIGMA", 3.0),
		},
		Ingest: IngestConfig{
			Roots:         getEnvAsList("INGEST_ROOTS", nil),
			WatchDebounce: getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Detection.DuplicateThreshold <= 0 || c.Detection.DuplicateThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "DUPLICATE_THRESHOLD must be in (0, 1]", ErrInvalidInput)
	}
	if c.Detection.AnomalySigma <= 0 {
		return NewAppError("CONFIG_ERROR", "ANOMALY_SIGMA must be positive", ErrInvalidInput)
	}
	if c.Parsing.MaxTextLength <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_TEXT_LENGTH must be positive", ErrInvalidInput)
	}
	return nil
}
