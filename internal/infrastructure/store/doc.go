// Package store manages the connection pool to the TimescaleDB
// time-series store holding sensor readings.
//
// It owns lifecycle only: open, schema bootstrap, health check, close.
// Queries against the pool live with the domain types that shape them
// (see internal/reading).
package store
