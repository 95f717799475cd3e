package groq

import (
	"net/http"
	"os"

	"github.com/tmc/langchaingo/callbacks"
)

// ModelName represents the model identifier for the Groq API.
type ModelName string

const (
	// Production models
	ModelNameLlama3370BVersatile ModelName = "llama-3.3-70b-versatile" // 128k context
	ModelNameLlama318BInstant    ModelName = "llama-3.1-8b-instant"    // 128k context, fastest
	ModelNameGPTOSS120B          ModelName = "openai/gpt-oss-120b"     // 128k context
	ModelNameGPTOSS20B           ModelName = "openai/gpt-oss-20b"      // 128k context

	// Preview models
	ModelNameLlama4Scout    ModelName = "meta-llama/llama-4-scout-17b-16e-instruct"
	ModelNameLlama4Maverick ModelName = "meta-llama/llama-4-maverick-17b-128e-instruct"
	ModelNameQwen332B       ModelName = "qwen/qwen3-32b"
	ModelNameKimiK2         ModelName = "moonshotai/kimi-k2-instruct"
	ModelNameDeepSeekR1     ModelName = "deepseek-r1-distill-llama-70b"
)

type options struct {
	apiKey           string
	modelName        ModelName
	baseURL          string
	httpClient       *http.Client
	callbacksHandler callbacks.Handler
}

// Option is a function that configures an LLM.
type Option func(*options)

// WithAPIKey sets the API key for the LLM.
func WithAPIKey(apiKey string) Option {
	return func(opts *options) {
		opts.apiKey = apiKey
	}
}

// WithModel sets the model name for the LLM.
func WithModel(model ModelName) Option {
	return func(opts *options) {
		opts.modelName = model
	}
}

// WithBaseURL sets the base URL for the LLM API.
// Default is "https://api.groq.com/openai/v1".
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the LLM.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// WithCallbacks sets the callbacks handler for the LLM.
func WithCallbacks(handler callbacks.Handler) Option {
	return func(opts *options) {
		opts.callbacksHandler = handler
	}
}

// getEnvOrDefault retrieves an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
