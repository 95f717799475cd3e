package retriever

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/docschat/log"
	"github.com/smallnest/docschat/rag"
)

// DefaultNumQueries is the number of alternative queries generated per
// question.
const DefaultNumQueries = 3

const multiQueryPromptTemplate = `You are an AI language model assistant. Your task is to generate %d different versions of the given user question to retrieve relevant documents from a vector database. By generating multiple perspectives on the user question, your goal is to help the user overcome some of the limitations of distance-based similarity search. Provide these alternative questions separated by newlines.
Original question: %s`

// listMarker matches leading list numbering or bullets in LLM output.
var listMarker = regexp.MustCompile(`^(\d+[.)]|[-*])\s+`)

// MultiQueryRetriever expands a question into several alternative
// phrasings with an LLM, retrieves documents for each phrasing plus the
// original, and returns the union deduplicated by document ID.
type MultiQueryRetriever struct {
	llm        llms.Model
	base       rag.Retriever
	numQueries int
	logger     log.Logger
}

var _ rag.Retriever = (*MultiQueryRetriever)(nil)

// MultiQueryOption configures a MultiQueryRetriever.
type MultiQueryOption func(*MultiQueryRetriever)

// WithNumQueries sets how many alternative queries to generate.
func WithNumQueries(n int) MultiQueryOption {
	return func(r *MultiQueryRetriever) {
		if n > 0 {
			r.numQueries = n
		}
	}
}

// WithLogger sets the logger used to report expanded queries.
func WithLogger(logger log.Logger) MultiQueryOption {
	return func(r *MultiQueryRetriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewMultiQueryRetriever creates a retriever that expands queries with
// the given LLM and delegates retrieval to base.
func NewMultiQueryRetriever(llm llms.Model, base rag.Retriever, opts ...MultiQueryOption) *MultiQueryRetriever {
	r := &MultiQueryRetriever{
		llm:        llm,
		base:       base,
		numQueries: DefaultNumQueries,
		logger:     &log.NoOpLogger{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Retrieve expands the query, runs the base retriever for the original
// and every alternative, and merges the results. A document appearing
// under several queries keeps its highest score.
func (r *MultiQueryRetriever) Retrieve(ctx context.Context, query string) ([]rag.DocumentSearchResult, error) {
	queries, err := r.expandQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("expanded %q into %d queries", query, len(queries))

	var merged []rag.DocumentSearchResult
	seen := make(map[string]int)

	for _, q := range queries {
		results, err := r.base.Retrieve(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve for query %q: %w", q, err)
		}

		for _, result := range results {
			pos, ok := seen[result.Document.ID]
			if !ok {
				seen[result.Document.ID] = len(merged)
				merged = append(merged, result)
				continue
			}
			if result.Score > merged[pos].Score {
				merged[pos].Score = result.Score
			}
		}
	}

	return merged, nil
}

// expandQuery asks the LLM for alternative phrasings. The original
// query is always first in the returned slice.
func (r *MultiQueryRetriever) expandQuery(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(multiQueryPromptTemplate, r.numQueries, query)

	response, err := llms.GenerateFromSinglePrompt(ctx, r.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("failed to expand query: %w", err)
	}

	queries := []string{query}
	seen := map[string]bool{strings.ToLower(strings.TrimSpace(query)): true}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		queries = append(queries, line)
		if len(queries) > r.numQueries {
			break
		}
	}

	return queries, nil
}
