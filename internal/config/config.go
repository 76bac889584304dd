// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings.
type Config struct {
	DatabaseURL string
	ListenAddr  string

	// Provider selects the generation backend: "openai" or "gemini".
	// OpenAIBaseURL lets the openai backend front any OpenAI-compatible
	// endpoint, including a local Ollama at http://localhost:11434/v1.
	Provider      string
	LLMModel      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GoogleAPIKey  string

	EmbeddingModel      string
	TopK                int
	SimilarityThreshold float64
	MaxContextChars     int
	HistoryLimit        int
	GenerateTimeout     time.Duration
	GenerateRetryDelay  time.Duration
}

// Load reads env vars, applies defaults, and validates required fields.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		Provider:      os.Getenv("LLM_PROVIDER"),
		LLMModel:      os.Getenv("LLM_MODEL"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),

		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),
	}

	cfg.TopK = getEnvInt("TOP_K", 5)
	cfg.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", 0.7)
	cfg.MaxContextChars = getEnvInt("MAX_CONTEXT_CHARS", 6000)
	cfg.HistoryLimit = getEnvInt("HISTORY_LIMIT", 10)
	cfg.GenerateTimeout = getEnvDuration("GENERATE_TIMEOUT", 30*time.Second)
	cfg.GenerateRetryDelay = getEnvDuration("GENERATE_RETRY_DELAY", 500*time.Millisecond)

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-004"
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			return cfg, fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required for provider openai")
		}
	case "gemini":
		if cfg.GoogleAPIKey == "" {
			return cfg, fmt.Errorf("GOOGLE_API_KEY is required for provider gemini")
		}
	default:
		return cfg, fmt.Errorf("unknown LLM_PROVIDER: %s", cfg.Provider)
	}

	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
