package workflow

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/docschat/rag"
)

var errFake = errors.New("fake failure")

type llmCall struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
}

// systemPrompt returns the text of the first system message.
func (c llmCall) systemPrompt() string {
	for _, m := range c.messages {
		if m.Role != llms.ChatMessageTypeSystem {
			continue
		}
		for _, part := range m.Parts {
			if text, ok := part.(llms.TextContent); ok {
				return text.Text
			}
		}
	}
	return ""
}

// humanPrompt returns the text of the last human message.
func (c llmCall) humanPrompt() string {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role != llms.ChatMessageTypeHuman {
			continue
		}
		for _, part := range c.messages[i].Parts {
			if text, ok := part.(llms.TextContent); ok {
				return text.Text
			}
		}
	}
	return ""
}

// fakeLLM answers tool-forced calls with a route_query call for the
// configured category, and everything else with scripted contents.
type fakeLLM struct {
	category   string
	responses  []string
	err        error
	noToolCall bool
	calls      []llmCall
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	f.calls = append(f.calls, llmCall{messages: messages, opts: opts})

	if len(opts.Tools) > 0 && !f.noToolCall {
		args, _ := json.Marshal(map[string]string{"category": f.category})
		return &llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{
					ToolCalls: []llms.ToolCall{
						{
							ID:   "call-1",
							Type: "function",
							FunctionCall: &llms.FunctionCall{
								Name:      routeToolName,
								Arguments: string(args),
							},
						},
					},
				},
			},
		}, nil
	}

	content := "canned answer"
	if len(f.responses) > 0 {
		content = f.responses[0]
		f.responses = f.responses[1:]
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: content},
		},
	}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "canned answer", nil
}

type fakeRetriever struct {
	results []rag.DocumentSearchResult
	err     error
	queries []string
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string) ([]rag.DocumentSearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, query)
	return f.results, nil
}

type fakeFilter struct {
	err error
}

func (f *fakeFilter) Filter(ctx context.Context, results []rag.DocumentSearchResult) ([]rag.DocumentSearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return results, nil
}

type fakeReranker struct {
	err error
}

func (f *fakeReranker) Rerank(ctx context.Context, query string, results []rag.DocumentSearchResult) ([]rag.DocumentSearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return results, nil
}

func searchResult(id, content string, score float64, embedding ...float32) rag.DocumentSearchResult {
	return rag.DocumentSearchResult{
		Document: rag.Document{
			ID:        id,
			Content:   content,
			Embedding: embedding,
		},
		Score: score,
	}
}
