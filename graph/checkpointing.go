package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/docschat/store"
)

// CheckpointConfig configures conversation checkpointing for a Runnable.
type CheckpointConfig[S any] struct {
	// Store is the checkpoint storage backend.
	Store store.CheckpointStore

	// AutoSave persists the state after every node. When false only the
	// final state is saved.
	AutoSave bool

	// MaxCheckpoints caps stored checkpoints per thread; oldest are pruned
	// after each save. Zero means unlimited.
	MaxCheckpoints int

	// Restore merges a previously saved state with the new input when a
	// thread resumes. When nil the input state is used as-is.
	Restore func(saved S, input S) S
}

// DefaultCheckpointConfig returns a config that saves after every node and
// keeps the most recent 50 checkpoints per thread.
func DefaultCheckpointConfig[S any](st store.CheckpointStore) CheckpointConfig[S] {
	return CheckpointConfig[S]{
		Store:          st,
		AutoSave:       true,
		MaxCheckpoints: 50,
	}
}

// CheckpointableRunnable wraps a Runnable with checkpoint persistence keyed
// by thread ID. Every Invoke starts from the entry point: resumption
// restores conversation state, not execution position.
type CheckpointableRunnable[S any] struct {
	runnable *Runnable[S]
	config   CheckpointConfig[S]
}

// WithCheckpointing wraps the runnable with the given checkpoint config.
func (r *Runnable[S]) WithCheckpointing(config CheckpointConfig[S]) *CheckpointableRunnable[S] {
	return &CheckpointableRunnable[S]{
		runnable: r,
		config:   config,
	}
}

// Invoke restores the thread's latest state (if any), merges it with the
// input via Restore, executes the graph and persists checkpoints along the
// way. Without a thread ID in the configs a fresh one is generated, so the
// run is persisted but resumes nothing.
func (cr *CheckpointableRunnable[S]) Invoke(ctx context.Context, initialState S, configs ...*Config) (S, error) {
	var zero S

	threadID := threadIDFrom(configs)
	if threadID == "" {
		threadID = uuid.New().String()
	}

	state := initialState
	saved, found, err := cr.LatestState(ctx, threadID)
	if err != nil {
		return zero, err
	}
	if found && cr.config.Restore != nil {
		state = cr.config.Restore(saved, initialState)
	}

	listener := &checkpointListener[S]{
		store:          cr.config.Store,
		threadID:       threadID,
		autoSave:       cr.config.AutoSave,
		maxCheckpoints: cr.config.MaxCheckpoints,
	}

	return cr.runnable.withListeners(listener).Invoke(ctx, state, configs...)
}

// LatestState returns the most recent state saved for the thread. The
// second result reports whether one existed.
func (cr *CheckpointableRunnable[S]) LatestState(ctx context.Context, threadID string) (S, bool, error) {
	var zero S

	cp, err := cr.config.Store.Latest(ctx, threadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("failed to load latest checkpoint: %w", err)
	}

	state, err := decodeCheckpointState[S](cp.State)
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode checkpoint %s: %w", cp.ID, err)
	}
	return state, true, nil
}

// History lists the thread's checkpoints in version order.
func (cr *CheckpointableRunnable[S]) History(ctx context.Context, threadID string) ([]*store.Checkpoint, error) {
	return cr.config.Store.List(ctx, threadID)
}

// ClearThread removes all checkpoints for the thread.
func (cr *CheckpointableRunnable[S]) ClearThread(ctx context.Context, threadID string) error {
	return cr.config.Store.Clear(ctx, threadID)
}

// decodeCheckpointState converts a stored state back into S. In-process
// stores hold the value directly; serializing stores hand back generic JSON
// containers, which are re-marshalled into S.
func decodeCheckpointState[S any](raw any) (S, error) {
	if state, ok := raw.(S); ok {
		return state, nil
	}

	var state S
	data, err := json.Marshal(raw)
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, err
	}
	return state, nil
}

// checkpointListener saves checkpoints as the graph advances.
type checkpointListener[S any] struct {
	store          store.CheckpointStore
	threadID       string
	autoSave       bool
	maxCheckpoints int
	version        int
}

func (cl *checkpointListener[S]) OnNodeStart(ctx context.Context, nodeName string, state S) {}

func (cl *checkpointListener[S]) OnNodeEnd(ctx context.Context, nodeName string, state S, err error) {
	if err != nil || !cl.autoSave {
		return
	}
	cl.save(ctx, nodeName, state)
}

func (cl *checkpointListener[S]) OnGraphEnd(ctx context.Context, state S) {
	cl.save(ctx, END, state)
}

func (cl *checkpointListener[S]) save(ctx context.Context, nodeName string, state S) {
	if cl.version == 0 {
		cl.version = 1
		if latest, err := cl.store.Latest(ctx, cl.threadID); err == nil {
			cl.version = latest.Version + 1
		}
	} else {
		cl.version++
	}

	checkpoint := &store.Checkpoint{
		ID:        generateCheckpointID(),
		ThreadID:  cl.threadID,
		NodeName:  nodeName,
		State:     state,
		Timestamp: time.Now(),
		Version:   cl.version,
		Metadata:  map[string]any{"event": "step"},
	}

	// Best effort: checkpointing must not fail the turn.
	if err := cl.store.Save(ctx, checkpoint); err != nil {
		return
	}
	cl.prune(ctx)
}

func (cl *checkpointListener[S]) prune(ctx context.Context) {
	if cl.maxCheckpoints <= 0 {
		return
	}
	checkpoints, err := cl.store.List(ctx, cl.threadID)
	if err != nil || len(checkpoints) <= cl.maxCheckpoints {
		return
	}
	for _, cp := range checkpoints[:len(checkpoints)-cl.maxCheckpoints] {
		_ = cl.store.Delete(ctx, cp.ID)
	}
}

func generateCheckpointID() string {
	return fmt.Sprintf("checkpoint_%s", uuid.New().String())
}
