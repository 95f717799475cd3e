package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/docschat/rag"
	"github.com/smallnest/docschat/rag/store"
)

func TestVectorRetriever_Retrieve(t *testing.T) {
	ctx := context.Background()

	vectorStore := store.NewMemoryVectorStore()
	require.NoError(t, vectorStore.Add(ctx, []rag.Document{
		{ID: "doc-1", Content: "about go", Embedding: []float32{1, 0, 0}},
		{ID: "doc-2", Content: "about python", Embedding: []float32{0, 1, 0}},
		{ID: "doc-3", Content: "about rust", Embedding: []float32{0, 0, 1}},
	}))

	embedder := &mockEmbedder{vectors: map[string][]float32{
		"what is go?": {0.9, 0.1, 0},
	}}

	r := NewVectorRetriever(vectorStore, embedder, 2)

	results, err := r.Retrieve(ctx, "what is go?")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "doc-1", results[0].Document.ID)
}

func TestVectorRetriever_EmbedError(t *testing.T) {
	ctx := context.Background()

	r := NewVectorRetriever(store.NewMemoryVectorStore(), &mockEmbedder{err: errMock}, 2)

	_, err := r.Retrieve(ctx, "anything")
	assert.ErrorIs(t, err, errMock)
}

func TestVectorRetriever_DefaultTopK(t *testing.T) {
	r := NewVectorRetriever(store.NewMemoryVectorStore(), &mockEmbedder{}, 0)
	assert.Equal(t, DefaultTopK, r.topK)
}
