// Package loader provides document loaders for plain text, markdown
// and HTML files.
package loader

import (
	"context"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/smallnest/docschat/rag"
)

// TextLoader loads a plain text file as a single document.
type TextLoader struct {
	filePath string
	metadata map[string]any
}

var _ rag.DocumentLoader = (*TextLoader)(nil)

// TextLoaderOption configures the TextLoader.
type TextLoaderOption func(*TextLoader)

// WithTextMetadata adds metadata to every loaded document.
func WithTextMetadata(metadata map[string]any) TextLoaderOption {
	return func(l *TextLoader) {
		maps.Copy(l.metadata, metadata)
	}
}

// NewTextLoader creates a loader for the given file.
func NewTextLoader(filePath string, opts ...TextLoaderOption) *TextLoader {
	l := &TextLoader{
		filePath: filePath,
		metadata: map[string]any{
			"source": filePath,
			"type":   "text",
		},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads the file and returns it as one document.
func (l *TextLoader) Load(ctx context.Context) ([]rag.Document, error) {
	content, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", l.filePath, err)
	}

	metadata := make(map[string]any, len(l.metadata))
	maps.Copy(metadata, l.metadata)

	doc := rag.Document{
		ID:       fmt.Sprintf("text_%s", l.filePath),
		Content:  strings.TrimSpace(string(content)),
		Metadata: metadata,
	}

	return []rag.Document{doc}, nil
}

// normalizeText collapses runs of whitespace within lines and runs of
// blank lines down to a single blank line.
func normalizeText(s string) string {
	var out []string
	blank := false

	for _, line := range strings.Split(s, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			if !blank && len(out) > 0 {
				out = append(out, "")
				blank = true
			}
			continue
		}
		out = append(out, strings.Join(fields, " "))
		blank = false
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, "\n")
}
