package loader

import (
	"context"
	"fmt"
	stdhtml "html"
	"maps"
	"os"
	"regexp"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/docschat/rag"
)

var markdownHeading = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// MarkdownLoader loads a markdown file as a single plain text document,
// stripping the markup while keeping the text content.
type MarkdownLoader struct {
	filePath string
	metadata map[string]any
}

var _ rag.DocumentLoader = (*MarkdownLoader)(nil)

// MarkdownLoaderOption configures the MarkdownLoader.
type MarkdownLoaderOption func(*MarkdownLoader)

// WithMarkdownMetadata adds metadata to every loaded document.
func WithMarkdownMetadata(metadata map[string]any) MarkdownLoaderOption {
	return func(l *MarkdownLoader) {
		maps.Copy(l.metadata, metadata)
	}
}

// NewMarkdownLoader creates a loader for the given markdown file.
func NewMarkdownLoader(filePath string, opts ...MarkdownLoaderOption) *MarkdownLoader {
	l := &MarkdownLoader{
		filePath: filePath,
		metadata: map[string]any{
			"source": filePath,
			"type":   "markdown",
		},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads the file, converts the markdown to plain text and returns
// it as one document. The first top-level heading becomes the title
// metadata.
func (l *MarkdownLoader) Load(ctx context.Context) ([]rag.Document, error) {
	content, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", l.filePath, err)
	}

	metadata := make(map[string]any, len(l.metadata)+1)
	maps.Copy(metadata, l.metadata)

	if m := markdownHeading.FindSubmatch(content); m != nil {
		metadata["title"] = string(m[1])
	}

	doc := rag.Document{
		ID:       fmt.Sprintf("markdown_%s", l.filePath),
		Content:  markdownToText(content),
		Metadata: metadata,
	}

	return []rag.Document{doc}, nil
}

// markdownToText renders markdown to HTML and strips all tags, leaving
// the readable text.
func markdownToText(src []byte) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(src)

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	rendered := markdown.Render(doc, renderer)

	stripped := bluemonday.StrictPolicy().SanitizeBytes(rendered)

	return normalizeText(stdhtml.UnescapeString(string(stripped)))
}
