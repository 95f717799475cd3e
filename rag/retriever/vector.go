// Package retriever provides retrieval strategies over a vector store:
// plain similarity search, multi-query expansion, redundancy filtering
// and similarity reranking.
package retriever

import (
	"context"
	"fmt"

	"github.com/smallnest/docschat/rag"
)

// DefaultTopK is the number of documents fetched per query.
const DefaultTopK = 10

// VectorRetriever retrieves documents by embedding the query and
// running a similarity search against a vector store.
type VectorRetriever struct {
	store    rag.VectorStore
	embedder rag.Embedder
	topK     int
}

var _ rag.Retriever = (*VectorRetriever)(nil)

// NewVectorRetriever creates a retriever over the given store and
// embedder. A non-positive topK falls back to DefaultTopK.
func NewVectorRetriever(store rag.VectorStore, embedder rag.Embedder, topK int) *VectorRetriever {
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &VectorRetriever{
		store:    store,
		embedder: embedder,
		topK:     topK,
	}
}

// Retrieve embeds the query and returns the most similar documents,
// best first.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]rag.DocumentSearchResult, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := r.store.Search(ctx, queryEmbedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	return results, nil
}
