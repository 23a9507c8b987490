// Package store persists caption projects, their segments, and per-project
// style documents in SQLite. Writes retry briefly on lock contention, and the
// ingestion path stages project plus segments inside a single transaction so
// partially ingested projects never become visible.
package store
