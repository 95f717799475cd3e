package loader

import (
	"context"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/smallnest/docschat/rag"
)

// HTMLLoader loads an HTML file as a single plain text document,
// dropping scripts, styles and markup.
type HTMLLoader struct {
	filePath string
	metadata map[string]any
}

var _ rag.DocumentLoader = (*HTMLLoader)(nil)

// HTMLLoaderOption configures the HTMLLoader.
type HTMLLoaderOption func(*HTMLLoader)

// WithHTMLMetadata adds metadata to every loaded document.
func WithHTMLMetadata(metadata map[string]any) HTMLLoaderOption {
	return func(l *HTMLLoader) {
		maps.Copy(l.metadata, metadata)
	}
}

// NewHTMLLoader creates a loader for the given HTML file.
func NewHTMLLoader(filePath string, opts ...HTMLLoaderOption) *HTMLLoader {
	l := &HTMLLoader{
		filePath: filePath,
		metadata: map[string]any{
			"source": filePath,
			"type":   "html",
		},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load parses the file and returns its readable text as one document.
// The page title, when present, becomes the title metadata.
func (l *HTMLLoader) Load(ctx context.Context) ([]rag.Document, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", l.filePath, err)
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML in %s: %w", l.filePath, err)
	}

	doc.Find("script, style, noscript").Remove()

	metadata := make(map[string]any, len(l.metadata)+1)
	maps.Copy(metadata, l.metadata)

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		metadata["title"] = title
	}

	document := rag.Document{
		ID:       fmt.Sprintf("html_%s", l.filePath),
		Content:  normalizeText(doc.Find("body").Text()),
		Metadata: metadata,
	}

	return []rag.Document{document}, nil
}
