package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/docschat/rag"
)

func newTestSqliteStore(t *testing.T) (*SqliteVectorStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "documents.db")
	s, err := NewSqliteVectorStore(SqliteOptions{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, path
}

func TestSqliteVectorStore_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSqliteStore(t)

	err := s.Add(ctx, testDocuments())
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{0, 0.9, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "doc-2", results[0].Document.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSqliteVectorStore_MetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSqliteStore(t)

	err := s.Add(ctx, []rag.Document{
		{
			ID:        "doc-1",
			Content:   "with metadata",
			Metadata:  map[string]any{"source": "guide.md", "chunk_index": float64(2)},
			Embedding: []float32{1, 0},
		},
		{
			ID:        "doc-2",
			Content:   "without metadata",
			Embedding: []float32{0, 1},
		},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "guide.md", results[0].Document.Metadata["source"])
	assert.Equal(t, float64(2), results[0].Document.Metadata["chunk_index"])
	assert.Nil(t, results[1].Document.Metadata)
}

func TestSqliteVectorStore_AddWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSqliteStore(t)

	err := s.Add(ctx, []rag.Document{{ID: "doc-1", Content: "no embedding"}})
	assert.Error(t, err)
}

func TestSqliteVectorStore_Upsert(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSqliteStore(t)

	require.NoError(t, s.Add(ctx, testDocuments()))
	require.NoError(t, s.Add(ctx, []rag.Document{
		{ID: "doc-3", Content: "updated rust doc", Embedding: []float32{0, 0, 1}},
	}))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	results, err := s.Search(ctx, []float32{0, 0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "updated rust doc", results[0].Document.Content)
}

func TestSqliteVectorStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "documents.db")

	s, err := NewSqliteVectorStore(SqliteOptions{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, testDocuments()))
	require.NoError(t, s.Close())

	reopened, err := NewSqliteVectorStore(SqliteOptions{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	results, err := reopened.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0].Document.ID)
	assert.Equal(t, []float32{1, 0, 0}, results[0].Document.Embedding)
}

func TestSqliteVectorStore_SearchInvalidK(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSqliteStore(t)

	_, err := s.Search(ctx, []float32{1, 0, 0}, -1)
	assert.Error(t, err)
}

func TestSqliteVectorStore_CustomTableName(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "documents.db")

	s, err := NewSqliteVectorStore(SqliteOptions{Path: path, TableName: "chunks"})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Add(ctx, testDocuments()))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
