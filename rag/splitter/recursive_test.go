package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/docschat/rag"
)

func TestRecursiveCharacterSplitter_ShortTextPassesThrough(t *testing.T) {
	s := NewRecursiveCharacterSplitter()

	chunks := s.SplitText("a short paragraph")
	assert.Equal(t, []string{"a short paragraph"}, chunks)
}

func TestRecursiveCharacterSplitter_EmptyText(t *testing.T) {
	s := NewRecursiveCharacterSplitter()

	assert.Nil(t, s.SplitText(""))
	assert.Nil(t, s.SplitText("  \n\n  "))
}

func TestRecursiveCharacterSplitter_SplitsOnParagraphs(t *testing.T) {
	s := NewRecursiveCharacterSplitter(WithChunkSize(20), WithChunkOverlap(0))

	chunks := s.SplitText("alpha beta\n\ngamma delta\n\nepsilon")

	assert.Equal(t, []string{"alpha beta", "gamma delta\n\nepsilon"}, chunks)
}

func TestRecursiveCharacterSplitter_RespectsChunkSize(t *testing.T) {
	s := NewRecursiveCharacterSplitter(WithChunkSize(50), WithChunkOverlap(10))

	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("this is sentence number with several words\n\n")
	}

	chunks := s.SplitText(b.String())
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		// A chunk may exceed the size by at most the overlap prefix.
		assert.LessOrEqual(t, len(chunk), 60)
	}
}

func TestRecursiveCharacterSplitter_AppliesOverlap(t *testing.T) {
	s := NewRecursiveCharacterSplitter(WithChunkSize(10), WithChunkOverlap(3))

	chunks := s.SplitText("aaaa bbbb cccc")

	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa bbbb", chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], "bbb"), "second chunk should start with the tail of the first")
	assert.True(t, strings.HasSuffix(chunks[1], "cccc"))
}

func TestRecursiveCharacterSplitter_OversizedWordFallsBackToWindow(t *testing.T) {
	s := NewRecursiveCharacterSplitter(WithChunkSize(5), WithChunkOverlap(0))

	chunks := s.SplitText("abcdefghij")

	assert.Equal(t, []string{"abcde", "fghij"}, chunks)
}

func TestRecursiveCharacterSplitter_UnicodeSafe(t *testing.T) {
	s := NewRecursiveCharacterSplitter(WithChunkSize(4), WithChunkOverlap(0))

	text := "日本語のテキスト"
	chunks := s.SplitText(text)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk))
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestRecursiveCharacterSplitter_CustomSeparators(t *testing.T) {
	s := NewRecursiveCharacterSplitter(
		WithChunkSize(7),
		WithChunkOverlap(0),
		WithSeparators([]string{"|", ""}),
	)

	chunks := s.SplitText("aaa|bbb|ccc")

	// Adjacent pieces are rejoined with their separator while they fit.
	assert.Equal(t, []string{"aaa|bbb", "ccc"}, chunks)
}

func TestRecursiveCharacterSplitter_SplitDocuments(t *testing.T) {
	s := NewRecursiveCharacterSplitter(WithChunkSize(20), WithChunkOverlap(0))

	docs := []rag.Document{
		{
			ID:       "doc-1",
			Content:  "alpha beta\n\ngamma delta\n\nepsilon",
			Metadata: map[string]any{"source": "guide.md"},
		},
	}

	chunks := s.SplitDocuments(docs)
	require.Len(t, chunks, 2)

	assert.Equal(t, "doc-1_chunk_0", chunks[0].ID)
	assert.Equal(t, "doc-1_chunk_1", chunks[1].ID)

	for i, chunk := range chunks {
		assert.Equal(t, "guide.md", chunk.Metadata["source"])
		assert.Equal(t, i, chunk.Metadata["chunk_index"])
		assert.Equal(t, 2, chunk.Metadata["chunk_total"])
		assert.Equal(t, "doc-1", chunk.Metadata["parent_id"])
	}

	// Original document metadata is not mutated.
	assert.NotContains(t, docs[0].Metadata, "chunk_index")
}

func TestRecursiveCharacterSplitter_SplitDocumentsEmptyContent(t *testing.T) {
	s := NewRecursiveCharacterSplitter()

	chunks := s.SplitDocuments([]rag.Document{{ID: "doc-1", Content: ""}})
	assert.Empty(t, chunks)
}
