// Package logging constructs the slog loggers used across reelsort and
// standardizes the structured field names components attach to records.
//
// Two output formats exist: a compact console format for interactive use and
// a JSON format for machine consumption. Components derive their own loggers
// via NewComponentLogger so every record carries a component attribute, and
// WithContext folds batch/file/correlation annotations from a context into a
// logger before per-item work starts.
package logging
