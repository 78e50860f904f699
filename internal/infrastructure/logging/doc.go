// Package logging provides structured logging for Hearth Core.
//
// It wraps the standard library's log/slog with service-level defaults:
// a configurable handler (JSON or text), level filtering, and default
// service/version attributes on every record.
//
// Components receive a *Logger at construction and typically derive a
// child with a "component" attribute:
//
//	log := logger.With("component", "collector")
package logging
