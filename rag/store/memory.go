// Package store provides vector store implementations for document
// retrieval. The memory store keeps everything in process; the sqlite
// store persists documents and embeddings on disk.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/smallnest/docschat/rag"
)

// MemoryVectorStore is an in-memory vector store using brute-force
// cosine similarity search. Suitable for small corpora and tests.
type MemoryVectorStore struct {
	mu        sync.RWMutex
	documents []rag.Document
	index     map[string]int
}

var _ rag.VectorStore = (*MemoryVectorStore)(nil)

// NewMemoryVectorStore creates an empty in-memory vector store.
func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{
		index: make(map[string]int),
	}
}

// Add stores documents, replacing any existing document with the same ID.
func (s *MemoryVectorStore) Add(ctx context.Context, docs []rag.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}
		if pos, ok := s.index[doc.ID]; ok {
			s.documents[pos] = doc
			continue
		}
		s.index[doc.ID] = len(s.documents)
		s.documents = append(s.documents, doc)
	}

	return nil
}

// Search returns the k documents most similar to the query embedding,
// ordered by descending cosine similarity.
func (s *MemoryVectorStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]rag.DocumentSearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]rag.DocumentSearchResult, 0, len(s.documents))
	for _, doc := range s.documents {
		results = append(results, rag.DocumentSearchResult{
			Document: doc,
			Score:    rag.CosineSimilarity(queryEmbedding, doc.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

// Count returns the number of stored documents.
func (s *MemoryVectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.documents), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryVectorStore) Close() error {
	return nil
}
