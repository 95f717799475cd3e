package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/docschat/store"
)

func newTestStore(t *testing.T) *RedisCheckpointStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := NewRedisCheckpointStore(RedisOptions{Addr: mr.Addr()})
	t.Cleanup(func() { s.Close() })

	return s
}

func newCheckpoint(id, threadID, nodeName string, version int) *store.Checkpoint {
	return &store.Checkpoint{
		ID:        id,
		ThreadID:  threadID,
		NodeName:  nodeName,
		State:     map[string]any{"category": "general"},
		Metadata:  map[string]any{"source": "test"},
		Timestamp: time.Now().UTC(),
		Version:   version,
	}
}

func TestRedisSaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cp := newCheckpoint("cp-1", "thread-1", "router_node", 1)
	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "cp-1", loaded.ID)
	assert.Equal(t, "thread-1", loaded.ThreadID)
	assert.Equal(t, "router_node", loaded.NodeName)
	assert.Equal(t, 1, loaded.Version)

	state, ok := loaded.State.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "general", state["category"])
}

func TestRedisLoadMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(context.Background(), "no-such-checkpoint")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRedisListOrdersByVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-2", "thread-1", "relevant_docs_node", 2)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "thread-1", "router_node", 1)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-3", "thread-1", "answer_generation_node", 3)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-other", "thread-2", "router_node", 1)))

	checkpoints, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, checkpoints, 3)
	assert.Equal(t, "cp-1", checkpoints[0].ID)
	assert.Equal(t, "cp-2", checkpoints[1].ID)
	assert.Equal(t, "cp-3", checkpoints[2].ID)
}

func TestRedisListEmptyThread(t *testing.T) {
	s := newTestStore(t)

	checkpoints, err := s.List(context.Background(), "empty-thread")
	require.NoError(t, err)
	assert.Empty(t, checkpoints)
}

func TestRedisLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "thread-1", "router_node", 1)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-2", "thread-1", "general_answer_node", 2)))

	latest, err := s.Latest(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "cp-2", latest.ID)
	assert.Equal(t, 2, latest.Version)
}

func TestRedisLatestMissingThread(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Latest(context.Background(), "empty-thread")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRedisDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "thread-1", "router_node", 1)))
	require.NoError(t, s.Delete(ctx, "cp-1"))

	_, err := s.Load(ctx, "cp-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Thread index entry goes with it.
	checkpoints, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	assert.Empty(t, checkpoints)

	// Deleting a missing checkpoint is not an error.
	assert.NoError(t, s.Delete(ctx, "cp-1"))
}

func TestRedisClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "thread-1", "router_node", 1)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-2", "thread-1", "general_answer_node", 2)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-3", "thread-2", "router_node", 1)))

	require.NoError(t, s.Clear(ctx, "thread-1"))

	checkpoints, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	assert.Empty(t, checkpoints)

	remaining, err := s.List(ctx, "thread-2")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestRedisKeyPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := NewRedisCheckpointStore(RedisOptions{Addr: mr.Addr(), Prefix: "chat:"})
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "thread-1", "router_node", 1)))

	assert.True(t, mr.Exists("chat:checkpoint:cp-1"))
	assert.True(t, mr.Exists("chat:thread:thread-1:checkpoints"))
}
