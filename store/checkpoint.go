package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a checkpoint or thread has no saved data.
var ErrNotFound = errors.New("checkpoint not found")

// Checkpoint is a saved conversation state at a specific point in execution.
type Checkpoint struct {
	ID        string         `json:"id"`
	ThreadID  string         `json:"thread_id"`
	NodeName  string         `json:"node_name"`
	State     any            `json:"state"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
	Version   int            `json:"version"`
}

// CheckpointStore persists checkpoints keyed by thread ID. Implementations
// must order List results by ascending version and report missing data with
// ErrNotFound.
type CheckpointStore interface {
	// Save stores a checkpoint.
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by ID.
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// List returns all checkpoints for a thread, oldest first.
	List(ctx context.Context, threadID string) ([]*Checkpoint, error)

	// Latest returns the newest checkpoint for a thread.
	Latest(ctx context.Context, threadID string) (*Checkpoint, error)

	// Delete removes a checkpoint.
	Delete(ctx context.Context, checkpointID string) error

	// Clear removes all checkpoints for a thread.
	Clear(ctx context.Context, threadID string) error
}
