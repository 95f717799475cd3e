// Package store defines checkpoint persistence for conversation threads.
//
// A Checkpoint snapshots the conversation state after a graph step; a
// CheckpointStore keeps them per thread so a conversation can resume after
// a restart. Four backends are provided:
//
//   - store/memory: in-process map, for tests and single-run sessions
//   - store/sqlite: embedded file database
//   - store/redis: shared cache with per-thread ordering
//   - store/postgres: durable relational storage
//
// All backends serialize state as JSON, so states must round-trip through
// encoding/json.
package store
