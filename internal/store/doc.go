// Package store provides SQLite-backed storage for IR snapshots and graph
// analysis runs.
//
// The store is append-only:
//   - Snapshots: IR text per model and optimization level, content-addressed
//     by digest.SnapshotID so re-adding the same text is a no-op
//   - Runs: one record per graph or fusion analysis, identified by a UUIDv7
//
// # Ordering
//
// Every row carries a seq INTEGER assigned at insert time from a per-table
// logical clock. Queries order by seq (and id as a tiebreaker), never by
// wall time, so listings are reproducible.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait on lock contention
//   - user_version: incremental schema migrations
package store
