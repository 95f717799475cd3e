package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("GROQ_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("EMBEDDINGS_MODEL", "sentence-transformers/all-mpnet-base-v2")
	t.Setenv("PERSIST_DIRECTORY", t.TempDir())
	t.Setenv("LANGSMITH_API_KEY", "ls_test")
	t.Setenv("LANGSMITH_ENDPOINT", "https://api.smith.langchain.com")
	t.Setenv("LANGSMITH_PROJECT", "docschat")
	t.Setenv("LANGSMITH_TRACING", "true")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gsk_test", cfg.GroqAPIKey)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.GroqModel)
	assert.Equal(t, "sentence-transformers/all-mpnet-base-v2", cfg.EmbeddingsModel)
	assert.Equal(t, "docschat", cfg.LangSmithProject)
	assert.True(t, cfg.LangSmithTracing)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GROQ_BASE_URL", "")
	t.Setenv("EMBEDDINGS_BASE_URL", "")
	t.Setenv("EMBEDDINGS_API_KEY", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultGroqBaseURL, cfg.GroqBaseURL)
	assert.Empty(t, cfg.EmbeddingsBaseURL)
	// Embeddings key falls back to the Groq key
	assert.Equal(t, cfg.GroqAPIKey, cfg.EmbeddingsAPIKey)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GROQ_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("EMBEDDINGS_BASE_URL", "http://localhost:9090/v1")
	t.Setenv("EMBEDDINGS_API_KEY", "emb_test")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/v1", cfg.GroqBaseURL)
	assert.Equal(t, "http://localhost:9090/v1", cfg.EmbeddingsBaseURL)
	assert.Equal(t, "emb_test", cfg.EmbeddingsAPIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingVariables(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LANGSMITH_PROJECT", "")

	_, err := Load()
	require.Error(t, err)

	// Every missing variable must be named so the operator fixes them all at once
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
	assert.Contains(t, err.Error(), "LANGSMITH_PROJECT")
}

func TestLoad_AllMissing(t *testing.T) {
	for _, key := range []string{
		"GROQ_API_KEY", "GROQ_MODEL", "EMBEDDINGS_MODEL", "PERSIST_DIRECTORY",
		"LANGSMITH_API_KEY", "LANGSMITH_ENDPOINT", "LANGSMITH_PROJECT", "LANGSMITH_TRACING",
	} {
		t.Setenv(key, "")
	}

	_, err := Load()
	require.Error(t, err)

	for _, key := range []string{
		"GROQ_API_KEY", "GROQ_MODEL", "EMBEDDINGS_MODEL", "PERSIST_DIRECTORY",
		"LANGSMITH_API_KEY", "LANGSMITH_ENDPOINT", "LANGSMITH_PROJECT", "LANGSMITH_TRACING",
	} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoad_InvalidTracingFlag(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LANGSMITH_TRACING", "maybe")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LANGSMITH_TRACING")
}

func TestLoad_TracingDisabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LANGSMITH_TRACING", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.LangSmithTracing)
}
