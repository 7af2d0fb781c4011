package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the QA backend
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Matching  MatchingConfig
	AutoLearn AutoLearnConfig
	Ingest    IngestConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	DatabasePath string
}

// MatchingConfig holds retrieval configuration
type MatchingConfig struct {
	QueryThreshold float64
}

// AutoLearnConfig holds corpus-curation configuration
type AutoLearnConfig struct {
	Window         time.Duration
	MinRepeat      int
	MaxBatch       int
	MaxBulkEntries int
}

// IngestConfig holds Kafka exchange-ingestion configuration.
// Ingestion is disabled when no brokers are configured.
type IngestConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Enabled reports whether exchange ingestion should run.
func (c IngestConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         GetStringEnv("SERVER_ADDR", ":8080"),
			ReadTimeout:  GetDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: GetDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			DatabasePath: GetStringEnv("DB_PATH", "./data/brain.db"),
		},
		Matching: MatchingConfig{
			QueryThreshold: GetFloatEnv("MATCH_THRESHOLD", 0.2),
		},
		AutoLearn: AutoLearnConfig{
			Window:         GetDurationEnv("AUTOLEARN_WINDOW", 7*24*time.Hour),
			MinRepeat:      GetIntEnv("AUTOLEARN_MIN_REPEAT", 2),
			MaxBatch:       GetIntEnv("AUTOLEARN_MAX_BATCH", 20),
			MaxBulkEntries: GetIntEnv("KNOWLEDGE_MAX_BATCH", 100),
		},
		Ingest: IngestConfig{
			Brokers: GetSliceEnv("KAFKA_BROKERS", nil),
			Topic:   GetStringEnv("KAFKA_TOPIC", "bot-exchanges"),
			GroupID: GetStringEnv("KAFKA_GROUP_ID", "brain-ingest"),
		},
	}
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetSliceEnv parses a comma-separated environment variable.
func GetSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
