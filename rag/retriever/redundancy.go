package retriever

import (
	"context"
	"fmt"

	"github.com/smallnest/docschat/rag"
)

// DefaultRedundancyThreshold is the cosine similarity above which two
// documents are considered duplicates.
const DefaultRedundancyThreshold = 0.95

// RedundancyFilter drops documents that are near-duplicates of an
// earlier document, comparing embeddings pairwise. Documents arriving
// without an embedding are embedded on the fly.
type RedundancyFilter struct {
	embedder  rag.Embedder
	threshold float64
}

// NewRedundancyFilter creates a filter with the given similarity
// threshold. The embedder fills in missing document embeddings; it may
// be nil when all documents carry stored embeddings. A non-positive
// threshold falls back to DefaultRedundancyThreshold.
func NewRedundancyFilter(embedder rag.Embedder, threshold float64) *RedundancyFilter {
	if threshold <= 0 {
		threshold = DefaultRedundancyThreshold
	}

	return &RedundancyFilter{
		embedder:  embedder,
		threshold: threshold,
	}
}

// Filter returns the results whose embeddings are not redundant with a
// result kept before them. Input order is preserved.
func (f *RedundancyFilter) Filter(ctx context.Context, results []rag.DocumentSearchResult) ([]rag.DocumentSearchResult, error) {
	results, err := f.fillMissingEmbeddings(ctx, results)
	if err != nil {
		return nil, err
	}

	kept := make([]rag.DocumentSearchResult, 0, len(results))
	for _, candidate := range results {
		if f.isRedundant(candidate, kept) {
			continue
		}
		kept = append(kept, candidate)
	}

	return kept, nil
}

// fillMissingEmbeddings embeds the documents that have none, in one
// batch. Without an embedder the results pass through unchanged.
func (f *RedundancyFilter) fillMissingEmbeddings(ctx context.Context, results []rag.DocumentSearchResult) ([]rag.DocumentSearchResult, error) {
	if f.embedder == nil {
		return results, nil
	}

	var missing []int
	for i, r := range results {
		if len(r.Document.Embedding) == 0 {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return results, nil
	}

	texts := make([]string, len(missing))
	for i, pos := range missing {
		texts[i] = results[pos].Document.Content
	}

	embeddings, err := f.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents for redundancy filter: %w", err)
	}
	if len(embeddings) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d embeddings for %d documents", len(embeddings), len(missing))
	}

	filled := make([]rag.DocumentSearchResult, len(results))
	copy(filled, results)
	for i, pos := range missing {
		filled[pos].Document.Embedding = embeddings[i]
	}

	return filled, nil
}

func (f *RedundancyFilter) isRedundant(candidate rag.DocumentSearchResult, kept []rag.DocumentSearchResult) bool {
	if len(candidate.Document.Embedding) == 0 {
		return false
	}

	for _, existing := range kept {
		if len(existing.Document.Embedding) == 0 {
			continue
		}
		if rag.CosineSimilarity(candidate.Document.Embedding, existing.Document.Embedding) > f.threshold {
			return true
		}
	}

	return false
}
