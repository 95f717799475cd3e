// Package ingest turns documentation files into embedded chunks in the
// vector store. Files are loaded by extension, split into chunks,
// embedded in batches and persisted.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/smallnest/docschat/log"
	"github.com/smallnest/docschat/rag"
	"github.com/smallnest/docschat/rag/loader"
	"github.com/smallnest/docschat/rag/splitter"
)

// DefaultBatchSize is how many chunks are embedded per call.
const DefaultBatchSize = 32

// Pipeline ingests files into a vector store.
type Pipeline struct {
	splitter  rag.TextSplitter
	embedder  rag.Embedder
	store     rag.VectorStore
	logger    log.Logger
	batchSize int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSplitter replaces the default recursive character splitter.
func WithSplitter(s rag.TextSplitter) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.splitter = s
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger log.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithBatchSize sets how many chunks are embedded per batch.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// NewPipeline creates a pipeline over the given embedder and store.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		splitter:  splitter.NewRecursiveCharacterSplitter(),
		embedder:  embedder,
		store:     store,
		logger:    &log.NoOpLogger{},
		batchSize: DefaultBatchSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Result reports what an ingestion run processed.
type Result struct {
	Files  int
	Chunks int
}

// IngestFile loads a single file, chunks it and persists the embedded
// chunks. The file type is picked from the extension.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (Result, error) {
	ld, err := loaderFor(path)
	if err != nil {
		return Result{}, err
	}

	docs, err := ld.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load %s: %w", path, err)
	}

	chunks := p.splitter.SplitDocuments(docs)
	if len(chunks) == 0 {
		p.logger.Warn("no content in %s", path)
		return Result{Files: 1}, nil
	}

	// Chunk IDs from the loaders encode the file path; replace them with
	// UUIDs so the store never collides, and keep the provenance in the
	// metadata the loaders already set.
	for i := range chunks {
		chunks[i].ID = uuid.New().String()
	}

	if err := p.embedChunks(ctx, chunks); err != nil {
		return Result{}, err
	}

	if err := p.store.Add(ctx, chunks); err != nil {
		return Result{}, fmt.Errorf("failed to store chunks from %s: %w", path, err)
	}

	p.logger.Info("ingested %s: %d chunks", path, len(chunks))

	return Result{Files: 1, Chunks: len(chunks)}, nil
}

// IngestDir walks the directory and ingests every supported file.
// Unsupported files are skipped, not errors.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (Result, error) {
	var total Result

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !Supported(path) {
			p.logger.Debug("skipping unsupported file %s", path)
			return nil
		}

		result, err := p.IngestFile(ctx, path)
		if err != nil {
			return err
		}
		total.Files += result.Files
		total.Chunks += result.Chunks
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("failed to ingest directory %s: %w", dir, err)
	}

	return total, nil
}

// embedChunks fills in chunk embeddings, batchSize chunks per call.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []rag.Document) error {
	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		embeddings, err := p.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedder returned %d embeddings for %d chunks", len(embeddings), len(batch))
		}

		for i := range batch {
			batch[i].Embedding = embeddings[i]
		}
	}

	return nil
}

// Supported reports whether the file extension has a loader.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".md", ".markdown", ".html", ".htm":
		return true
	}
	return false
}

// loaderFor picks a document loader from the file extension.
func loaderFor(path string) (rag.DocumentLoader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return loader.NewTextLoader(path), nil
	case ".md", ".markdown":
		return loader.NewMarkdownLoader(path), nil
	case ".html", ".htm":
		return loader.NewHTMLLoader(path), nil
	}
	return nil, fmt.Errorf("unsupported file type: %s", path)
}
