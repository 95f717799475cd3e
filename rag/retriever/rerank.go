package retriever

import (
	"context"
	"sort"
	"strings"

	"github.com/smallnest/docschat/rag"
)

// Scoring weights for the vector score and the term overlap score.
const (
	vectorWeight = 0.7
	termWeight   = 0.3
)

// SimilarityReranker reorders results by blending the vector similarity
// score with the fraction of query terms found in the document, then
// keeps the top N.
type SimilarityReranker struct {
	topN int
}

var _ rag.Reranker = (*SimilarityReranker)(nil)

// NewSimilarityReranker creates a reranker keeping the topN best
// results. A non-positive topN falls back to DefaultTopK.
func NewSimilarityReranker(topN int) *SimilarityReranker {
	if topN <= 0 {
		topN = DefaultTopK
	}

	return &SimilarityReranker{topN: topN}
}

// Rerank rescores the results and returns the topN best, ordered by
// descending score.
func (r *SimilarityReranker) Rerank(ctx context.Context, query string, results []rag.DocumentSearchResult) ([]rag.DocumentSearchResult, error) {
	reranked := make([]rag.DocumentSearchResult, len(results))
	copy(reranked, results)

	for i := range reranked {
		overlap := termOverlap(query, reranked[i].Document.Content)
		reranked[i].Score = vectorWeight*reranked[i].Score + termWeight*overlap
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	if len(reranked) > r.topN {
		reranked = reranked[:r.topN]
	}

	return reranked, nil
}

// termOverlap returns the fraction of distinct query terms present in
// the content, both compared case-insensitively.
func termOverlap(query, content string) float64 {
	content = strings.ToLower(content)

	seen := make(map[string]bool)
	matched := 0

	for _, term := range strings.Fields(strings.ToLower(query)) {
		term = strings.Trim(term, `.,!?;:"'()`)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		if strings.Contains(content, term) {
			matched++
		}
	}

	if len(seen) == 0 {
		return 0
	}

	return float64(matched) / float64(len(seen))
}
