// Package groq implements the langchaingo llms.Model interface on top of
// the Groq chat completions API, which is OpenAI wire compatible.
package groq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
)

// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

var (
	ErrEmptyResponse = errors.New("no response")
	ErrMissingAPIKey = errors.New("missing the Groq API key")
)

// LLM is a client for the Groq chat completions API.
type LLM struct {
	client           *openai.Client
	model            ModelName
	CallbacksHandler callbacks.Handler
}

var _ llms.Model = (*LLM)(nil)

// New returns a new Groq LLM client.
//
// Authentication options:
// 1. WithAPIKey(apiKey) - pass API key directly
// 2. Set GROQ_API_KEY environment variable
//
// Example:
//
//	llm, err := groq.New(
//		groq.WithAPIKey("your-api-key"),
//		groq.WithModel(groq.ModelNameLlama3370BVersatile),
//	)
func New(opts ...Option) (*LLM, error) {
	options := &options{
		apiKey:    getEnvOrDefault("GROQ_API_KEY", ""),
		modelName: ModelNameLlama3370BVersatile,
		baseURL:   DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.apiKey == "" {
		return nil, fmt.Errorf(`%w
You can pass auth info by using groq.New(groq.WithAPIKey("{API Key}"))
or
export GROQ_API_KEY={API Key}`, ErrMissingAPIKey)
	}

	cfg := openai.DefaultConfig(options.apiKey)
	cfg.BaseURL = options.baseURL
	if options.httpClient != nil {
		cfg.HTTPClient = options.httpClient
	}

	return &LLM{
		client:           openai.NewClientWithConfig(cfg),
		model:            options.modelName,
		CallbacksHandler: options.callbacksHandler,
	}, nil
}

// Call generates a response from the LLM for the given prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentStart(ctx, messages)
	}

	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req := openai.ChatCompletionRequest{
		Model:       o.getModelString(*opts),
		Messages:    convertMessages(messages),
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
		MaxTokens:   opts.MaxTokens,
		Stop:        opts.StopWords,
		Tools:       convertTools(opts.Tools),
		ToolChoice:  convertToolChoice(opts.ToolChoice),
	}

	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var resp *llms.ContentResponse
	var err error
	if opts.StreamingFunc != nil {
		resp, err = o.generateStreaming(ctx, req, opts.StreamingFunc)
	} else {
		resp, err = o.generate(ctx, req)
	}

	if err != nil {
		if o.CallbacksHandler != nil {
			o.CallbacksHandler.HandleLLMError(ctx, err)
		}
		return nil, err
	}

	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}

	return resp, nil
}

func (o *LLM) generate(ctx context.Context, req openai.ChatCompletionRequest) (*llms.ContentResponse, error) {
	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, 0, len(result.Choices))
	for _, c := range result.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			ToolCalls:  convertToolCalls(c.Message.ToolCalls),
			GenerationInfo: map[string]any{
				"prompt_tokens":     result.Usage.PromptTokens,
				"completion_tokens": result.Usage.CompletionTokens,
				"total_tokens":      result.Usage.TotalTokens,
			},
		}
		choices = append(choices, choice)
	}

	return &llms.ContentResponse{Choices: choices}, nil
}

func (o *LLM) generateStreaming(ctx context.Context, req openai.ChatCompletionRequest, streamingFunc func(ctx context.Context, chunk []byte) error) (*llms.ContentResponse, error) {
	req.Stream = true

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var content strings.Builder
	var stopReason string

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta != "" {
			content.WriteString(delta)
			if err := streamingFunc(ctx, []byte(delta)); err != nil {
				return nil, err
			}
		}

		if chunk.Choices[0].FinishReason != "" {
			stopReason = string(chunk.Choices[0].FinishReason)
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:        content.String(),
				StopReason:     stopReason,
				GenerationInfo: make(map[string]any),
			},
		},
	}, nil
}

// convertMessages maps langchaingo message content to the OpenAI chat format.
func convertMessages(messages []llms.MessageContent) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		var content strings.Builder
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				content.WriteString(text.Text)
			}
		}

		converted = append(converted, openai.ChatCompletionMessage{
			Role:    convertRole(msg.Role),
			Content: content.String(),
		})
	}
	return converted
}

func convertRole(role llms.ChatMessageType) string {
	switch role {
	case llms.ChatMessageTypeSystem:
		return openai.ChatMessageRoleSystem
	case llms.ChatMessageTypeAI:
		return openai.ChatMessageRoleAssistant
	case llms.ChatMessageTypeTool:
		return openai.ChatMessageRoleTool
	case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric:
		return openai.ChatMessageRoleUser
	default:
		return openai.ChatMessageRoleUser
	}
}

func convertTools(tools []llms.Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}

	converted := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		if tool.Function == nil {
			continue
		}
		converted = append(converted, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}
	return converted
}

// convertToolChoice maps the langchaingo tool choice to the OpenAI format.
// Strings ("auto", "none") pass through unchanged.
func convertToolChoice(choice any) any {
	switch c := choice.(type) {
	case nil:
		return nil
	case string:
		return c
	case llms.ToolChoice:
		if c.Function == nil {
			return nil
		}
		return openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: c.Function.Name},
		}
	default:
		return nil
	}
}

func convertToolCalls(toolCalls []openai.ToolCall) []llms.ToolCall {
	if len(toolCalls) == 0 {
		return nil
	}

	converted := make([]llms.ToolCall, 0, len(toolCalls))
	for _, tc := range toolCalls {
		converted = append(converted, llms.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			FunctionCall: &llms.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return converted
}

func (o *LLM) getModelString(opts llms.CallOptions) string {
	model := o.model
	if opts.Model != "" {
		model = ModelName(opts.Model)
	}
	return string(model)
}
