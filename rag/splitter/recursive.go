// Package splitter provides text splitters for chunking documents
// before embedding.
package splitter

import (
	"fmt"
	"maps"
	"strings"

	"github.com/smallnest/docschat/rag"
)

// Default chunking parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// RecursiveCharacterSplitter splits text on a separator hierarchy,
// trying coarse separators first and falling back to finer ones for
// pieces that are still too large. Related text stays together as long
// as it fits in a chunk.
type RecursiveCharacterSplitter struct {
	separators   []string
	chunkSize    int
	chunkOverlap int
	lengthFunc   func(string) int
}

var _ rag.TextSplitter = (*RecursiveCharacterSplitter)(nil)

// Option configures a RecursiveCharacterSplitter.
type Option func(*RecursiveCharacterSplitter)

// WithChunkSize sets the maximum chunk length.
func WithChunkSize(size int) Option {
	return func(s *RecursiveCharacterSplitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithChunkOverlap sets how much of the previous chunk is repeated at
// the start of the next one.
func WithChunkOverlap(overlap int) Option {
	return func(s *RecursiveCharacterSplitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// WithSeparators sets the separator hierarchy, coarsest first.
func WithSeparators(separators []string) Option {
	return func(s *RecursiveCharacterSplitter) {
		if len(separators) > 0 {
			s.separators = separators
		}
	}
}

// WithLengthFunction sets the function used to measure text length.
func WithLengthFunction(fn func(string) int) Option {
	return func(s *RecursiveCharacterSplitter) {
		if fn != nil {
			s.lengthFunc = fn
		}
	}
}

// NewRecursiveCharacterSplitter creates a splitter with paragraph,
// line and word separators, a 1000 character chunk size and a 200
// character overlap.
func NewRecursiveCharacterSplitter(opts ...Option) *RecursiveCharacterSplitter {
	s := &RecursiveCharacterSplitter{
		separators:   []string{"\n\n", "\n", " ", ""},
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		lengthFunc:   func(text string) int { return len(text) },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SplitText splits text into chunks of at most the configured size,
// plus the overlap carried over from the preceding chunk.
func (s *RecursiveCharacterSplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	chunks := s.split(text, s.separators)

	return s.applyOverlap(chunks)
}

// SplitDocuments splits each document and tags every chunk with its
// position and parent document ID.
func (s *RecursiveCharacterSplitter) SplitDocuments(docs []rag.Document) []rag.Document {
	var chunks []rag.Document

	for _, doc := range docs {
		textChunks := s.SplitText(doc.Content)

		for i, chunk := range textChunks {
			metadata := make(map[string]any, len(doc.Metadata)+3)
			maps.Copy(metadata, doc.Metadata)
			metadata["chunk_index"] = i
			metadata["chunk_total"] = len(textChunks)
			metadata["parent_id"] = doc.ID

			chunks = append(chunks, rag.Document{
				ID:       fmt.Sprintf("%s_chunk_%d", doc.ID, i),
				Content:  chunk,
				Metadata: metadata,
			})
		}
	}

	return chunks
}

func (s *RecursiveCharacterSplitter) split(text string, separators []string) []string {
	if s.lengthFunc(text) <= s.chunkSize {
		return []string{text}
	}

	if len(separators) == 0 || separators[0] == "" {
		return s.splitByWindow(text)
	}

	separator := separators[0]
	rest := separators[1:]

	var pieces []string
	for _, part := range strings.Split(text, separator) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if s.lengthFunc(part) <= s.chunkSize {
			pieces = append(pieces, part)
			continue
		}
		pieces = append(pieces, s.split(part, rest)...)
	}

	return s.merge(pieces, separator)
}

// merge greedily joins adjacent pieces with their original separator
// while the result stays within the chunk size.
func (s *RecursiveCharacterSplitter) merge(pieces []string, separator string) []string {
	var merged []string
	var current string

	for _, piece := range pieces {
		if current == "" {
			current = piece
			continue
		}

		if s.lengthFunc(current)+s.lengthFunc(separator)+s.lengthFunc(piece) <= s.chunkSize {
			current += separator + piece
			continue
		}

		merged = append(merged, current)
		current = piece
	}

	if current != "" {
		merged = append(merged, current)
	}

	return merged
}

// splitByWindow slices text into contiguous windows of chunkSize runes.
// Last resort when no separator can break the text down.
func (s *RecursiveCharacterSplitter) splitByWindow(text string) []string {
	runes := []rune(text)

	var chunks []string
	for start := 0; start < len(runes); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}

// applyOverlap prepends the tail of each chunk to its successor.
func (s *RecursiveCharacterSplitter) applyOverlap(chunks []string) []string {
	if s.chunkOverlap <= 0 || len(chunks) < 2 {
		return chunks
	}

	overlapped := make([]string, len(chunks))
	overlapped[0] = chunks[0]

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		overlap := s.chunkOverlap
		if overlap > len(prev) {
			overlap = len(prev)
		}
		overlapped[i] = string(prev[len(prev)-overlap:]) + chunks[i]
	}

	return overlapped
}
