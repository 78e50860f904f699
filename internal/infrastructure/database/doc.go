// Package database manages the embedded SQLite store backing the poll
// journal.
//
// The journal is operational metadata, not sensor data: one row per poll
// cycle recording how it ended. It deliberately lives apart from the
// time-series store so a TimescaleDB outage can still be journalled.
//
// This package owns the connection lifecycle and schema migrations;
// journal queries live in internal/journal.
//
// # Concurrency
//
// SQLite supports one writer. The pool is capped at a single connection
// and WAL mode keeps reads from blocking the collector's writes.
package database
