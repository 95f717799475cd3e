package retriever

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/docschat/rag"
)

type mockLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (m *mockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(messages) > 0 {
		for _, part := range messages[len(messages)-1].Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.lastPrompt = text.Text
			}
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: m.response},
		},
	}, nil
}

func (m *mockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.lastPrompt = prompt
	return m.response, nil
}

type mockEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (m *mockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	res := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

// mockRetriever returns canned results per query and records the
// queries it was asked.
type mockRetriever struct {
	results map[string][]rag.DocumentSearchResult
	queries []string
	err     error
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string) ([]rag.DocumentSearchResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.queries = append(m.queries, query)
	return m.results[query], nil
}

var errMock = errors.New("mock failure")

func result(id string, score float64, embedding ...float32) rag.DocumentSearchResult {
	return rag.DocumentSearchResult{
		Document: rag.Document{
			ID:        id,
			Content:   "content of " + id,
			Embedding: embedding,
		},
		Score: score,
	}
}
