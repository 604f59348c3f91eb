package common

import (
	"os"
	"strconv"
	"time"

	"github.com/autoesg/analyzer/constants"
)

// Config holds all application configuration
type Config struct {
	LLM       LLMConfig
	Retrieval RetrievalConfig
	Store     StoreConfig
	Rubric    RubricConfig
}

// LLMConfig holds generation/embedding client configuration
type LLMConfig struct {
	Model          string
	EmbeddingModel string
	APIKey         string
	BaseURL        string
	Temperature    float32
	Timeout        time.Duration
}

// RetrievalConfig holds chunking and consolidation configuration
type RetrievalConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	ContextChars int
	WorkerLimit  int
	Timeout      time.Duration
}

// StoreConfig holds run-history store configuration
type StoreConfig struct {
	Path string // SQLite file; empty disables persistence
}

// RubricConfig selects the active rubric revision
type RubricConfig struct {
	Version string
	Dir     string // optional on-disk override for the embedded documents
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			Temperature:    getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:        getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Retrieval: RetrievalConfig{
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", constants.DefaultChunkSize),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", constants.DefaultChunkOverlap),
			TopK:         getEnvAsInt("RETRIEVAL_TOP_K", constants.DefaultTopK),
			ContextChars: getEnvAsInt("CONTEXT_CHARS", constants.DefaultContextChars),
			WorkerLimit:  getEnvAsInt("RETRIEVAL_WORKERS", constants.DefaultWorkerLimit),
			Timeout:      getEnvAsDuration("RETRIEVAL_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Path: getEnv("RUN_STORE_PATH", "./.analyzer/runs.db"),
		},
		Rubric: RubricConfig{
			Version: getEnv("RUBRIC_VERSION", "2025.1"),
			Dir:     getEnv("RUBRIC_DIR", ""),
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrConfiguration)
	}
	if c.Rubric.Version == "" {
		return NewAppError("CONFIG_ERROR", "RUBRIC_VERSION is required", ErrConfiguration)
	}
	if c.Retrieval.TopK <= 0 {
		return NewAppError("CONFIG_ERROR", "RETRIEVAL_TOP_K must be positive", ErrConfiguration)
	}
	if c.Retrieval.ContextChars <= 0 {
		return NewAppError("CONFIG_ERROR", "CONTEXT_CHARS must be positive", ErrConfiguration)
	}
	if c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return NewAppError("CONFIG_ERROR", "CHUNK_OVERLAP must be smaller than CHUNK_SIZE", ErrConfiguration)
	}
	return nil
}
