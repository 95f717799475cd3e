package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/docschat/rag"
)

// SqliteVectorStore persists documents and their embeddings in a SQLite
// database. Similarity search scans the full table and ranks by cosine
// similarity in process.
type SqliteVectorStore struct {
	db        *sql.DB
	tableName string
}

var _ rag.VectorStore = (*SqliteVectorStore)(nil)

// SqliteOptions configures the SQLite vector store.
type SqliteOptions struct {
	// Path is the database file path, e.g. "./chroma/docschat.db".
	Path string
	// TableName is the documents table name. Defaults to "documents".
	TableName string
}

// NewSqliteVectorStore opens the database at the given path and ensures
// the documents table exists.
func NewSqliteVectorStore(options SqliteOptions) (*SqliteVectorStore, error) {
	if options.TableName == "" {
		options.TableName = "documents"
	}

	db, err := sql.Open("sqlite3", options.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SqliteVectorStore{
		db:        db,
		tableName: options.TableName,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SqliteVectorStore) initSchema() error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		metadata TEXT,
		embedding TEXT NOT NULL
	)`, s.tableName)

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// Add stores documents, replacing any existing document with the same ID.
func (s *SqliteVectorStore) Add(ctx context.Context, docs []rag.Document) error {
	query := fmt.Sprintf(`
	INSERT INTO %s (id, content, metadata, embedding)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		content = excluded.content,
		metadata = excluded.metadata,
		embedding = excluded.embedding`, s.tableName)

	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}

		metadataJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}

		embeddingJSON, err := json.Marshal(doc.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}

		if _, err := s.db.ExecContext(ctx, query, doc.ID, doc.Content, string(metadataJSON), string(embeddingJSON)); err != nil {
			return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
		}
	}

	return nil
}

// Search returns the k documents most similar to the query embedding,
// ordered by descending cosine similarity.
func (s *SqliteVectorStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]rag.DocumentSearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	query := fmt.Sprintf("SELECT id, content, metadata, embedding FROM %s", s.tableName)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var results []rag.DocumentSearchResult
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rag.DocumentSearchResult{
			Document: doc,
			Score:    rag.CosineSimilarity(queryEmbedding, doc.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

func scanDocument(rows *sql.Rows) (rag.Document, error) {
	var doc rag.Document
	var metadataJSON sql.NullString
	var embeddingJSON string

	if err := rows.Scan(&doc.ID, &doc.Content, &metadataJSON, &embeddingJSON); err != nil {
		return rag.Document{}, fmt.Errorf("failed to scan document: %w", err)
	}

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &doc.Metadata); err != nil {
			return rag.Document{}, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	if err := json.Unmarshal([]byte(embeddingJSON), &doc.Embedding); err != nil {
		return rag.Document{}, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}

	return doc, nil
}

// Count returns the number of stored documents.
func (s *SqliteVectorStore) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.tableName)

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}

// Close closes the underlying database.
func (s *SqliteVectorStore) Close() error {
	return s.db.Close()
}
