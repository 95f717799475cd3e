package rag

import (
	"context"
	"math"
)

// Document represents a retrievable unit of text.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
}

// DocumentSearchResult pairs a document with its similarity score.
type DocumentSearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Embedder converts text into dense vectors. The langchaingo
// embeddings.Embedder implementations satisfy this interface.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore stores embedded documents and answers similarity queries.
type VectorStore interface {
	// Add stores documents. Every document must carry an embedding.
	Add(ctx context.Context, docs []Document) error
	// Search returns the k most similar documents, best first.
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]DocumentSearchResult, error)
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
	Close() error
}

// Retriever fetches documents relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]DocumentSearchResult, error)
}

// Reranker reorders retrieved documents by relevance to the query.
type Reranker interface {
	Rerank(ctx context.Context, query string, results []DocumentSearchResult) ([]DocumentSearchResult, error)
}

// DocumentLoader loads documents from a source.
type DocumentLoader interface {
	Load(ctx context.Context) ([]Document, error)
}

// TextSplitter splits text into chunks suitable for embedding.
type TextSplitter interface {
	SplitText(text string) []string
	SplitDocuments(docs []Document) []Document
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Mismatched or zero-norm vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
