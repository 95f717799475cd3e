package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestTextLoader_Load(t *testing.T) {
	ctx := context.Background()
	path := writeTestFile(t, "notes.txt", "line one\nline two\n")

	docs, err := NewTextLoader(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "text_"+path, docs[0].ID)
	assert.Equal(t, "line one\nline two", docs[0].Content)
	assert.Equal(t, path, docs[0].Metadata["source"])
	assert.Equal(t, "text", docs[0].Metadata["type"])
}

func TestTextLoader_CustomMetadata(t *testing.T) {
	ctx := context.Background()
	path := writeTestFile(t, "notes.txt", "content")

	docs, err := NewTextLoader(path, WithTextMetadata(map[string]any{"lang": "en"})).Load(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "en", docs[0].Metadata["lang"])
	assert.Equal(t, path, docs[0].Metadata["source"])
}

func TestTextLoader_MissingFile(t *testing.T) {
	ctx := context.Background()

	_, err := NewTextLoader(filepath.Join(t.TempDir(), "missing.txt")).Load(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestMarkdownLoader_Load(t *testing.T) {
	ctx := context.Background()
	path := writeTestFile(t, "guide.md", `# User Guide

Some **bold** text about the product.

- item one
- item two
`)

	docs, err := NewMarkdownLoader(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "markdown_"+path, doc.ID)
	assert.Equal(t, "User Guide", doc.Metadata["title"])
	assert.Equal(t, "markdown", doc.Metadata["type"])

	assert.Contains(t, doc.Content, "User Guide")
	assert.Contains(t, doc.Content, "Some bold text about the product.")
	assert.Contains(t, doc.Content, "item one")
	assert.NotContains(t, doc.Content, "**")
	assert.NotContains(t, doc.Content, "#")
	assert.NotContains(t, doc.Content, "<")
}

func TestMarkdownLoader_NoHeading(t *testing.T) {
	ctx := context.Background()
	path := writeTestFile(t, "plain.md", "just a paragraph\n")

	docs, err := NewMarkdownLoader(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.NotContains(t, docs[0].Metadata, "title")
	assert.Equal(t, "just a paragraph", docs[0].Content)
}

func TestHTMLLoader_Load(t *testing.T) {
	ctx := context.Background()
	path := writeTestFile(t, "page.html", `<!DOCTYPE html>
<html>
<head>
	<title>Test Page</title>
	<script>console.log('test');</script>
	<style>body { color: blue; }</style>
</head>
<body>
	<h1>Test Content</h1>
	<p>This is a test paragraph.</p>
	<script>alert('test');</script>
</body>
</html>`)

	docs, err := NewHTMLLoader(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "html_"+path, doc.ID)
	assert.Equal(t, "Test Page", doc.Metadata["title"])
	assert.Equal(t, "html", doc.Metadata["type"])

	assert.Contains(t, doc.Content, "Test Content")
	assert.Contains(t, doc.Content, "This is a test paragraph.")
	assert.NotContains(t, doc.Content, "console.log")
	assert.NotContains(t, doc.Content, "color: blue")
	assert.NotContains(t, doc.Content, "<h1>")
}

func TestHTMLLoader_MissingFile(t *testing.T) {
	ctx := context.Background()

	_, err := NewHTMLLoader(filepath.Join(t.TempDir(), "missing.html")).Load(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses spaces within lines",
			input:    "hello    world",
			expected: "hello world",
		},
		{
			name:     "collapses blank line runs",
			input:    "para one\n\n\n\npara two",
			expected: "para one\n\npara two",
		},
		{
			name:     "trims leading and trailing blanks",
			input:    "\n\n  text  \n\n",
			expected: "text",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeText(tt.input))
		})
	}
}
