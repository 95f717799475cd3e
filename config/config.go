// Package config loads and validates docschat's environment configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultGroqBaseURL is Groq's OpenAI-compatible API endpoint.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// Settings holds the application configuration. All required values come
// from environment variables and are validated once at startup; the struct
// is then passed down by injection.
type Settings struct {
	// LLM configuration
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	// Embedding configuration
	EmbeddingsModel   string
	EmbeddingsBaseURL string
	EmbeddingsAPIKey  string

	// Vector store configuration
	PersistDirectory string

	// LangSmith configuration. The exporter is log-only but the contract
	// requires the full set to be present and well-formed.
	LangSmithAPIKey   string
	LangSmithEndpoint string
	LangSmithProject  string
	LangSmithTracing  bool

	// Checkpoint backends. Only consulted when the corresponding store
	// kind is selected.
	RedisAddr   string
	PostgresDSN string

	// Logging
	LogLevel string
}

// Load reads Settings from the environment. A .env file in the working
// directory is applied first when present. All missing or malformed
// required variables are reported in a single error.
func Load() (*Settings, error) {
	// Ignore absence of .env; explicit environment always wins below
	// because godotenv does not override existing variables.
	_ = godotenv.Load()

	var missing []string
	required := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Settings{
		GroqAPIKey:        required("GROQ_API_KEY"),
		GroqModel:         required("GROQ_MODEL"),
		GroqBaseURL:       getEnv("GROQ_BASE_URL", DefaultGroqBaseURL),
		EmbeddingsModel:   required("EMBEDDINGS_MODEL"),
		EmbeddingsBaseURL: getEnv("EMBEDDINGS_BASE_URL", ""),
		PersistDirectory:  required("PERSIST_DIRECTORY"),
		LangSmithAPIKey:   required("LANGSMITH_API_KEY"),
		LangSmithEndpoint: required("LANGSMITH_ENDPOINT"),
		LangSmithProject:  required("LANGSMITH_PROJECT"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	cfg.EmbeddingsAPIKey = getEnv("EMBEDDINGS_API_KEY", cfg.GroqAPIKey)

	var parseErrs []string
	if raw := required("LANGSMITH_TRACING"); raw != "" {
		tracing, err := strconv.ParseBool(raw)
		if err != nil {
			parseErrs = append(parseErrs, fmt.Sprintf("LANGSMITH_TRACING: %v", err))
		}
		cfg.LangSmithTracing = tracing
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(parseErrs) > 0 {
		return nil, fmt.Errorf("invalid environment variables: %s", strings.Join(parseErrs, "; "))
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
