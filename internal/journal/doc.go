// Package journal records state transitions and log entries to SQLite.
//
// A Recorder subscribes to a state.Store and writes one transitions row per
// published snapshot plus every log entry it has not written yet. Writes
// are idempotent, so replaying a snapshot never duplicates rows.
//
// The journal is optional and process-scoped by default (":memory:"); a file
// path makes it durable. SQLite runs in WAL mode with a single connection.
package journal
