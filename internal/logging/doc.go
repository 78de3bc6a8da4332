// Package logging assembles structured slog loggers and attribute helpers used
// across reviewflow.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so workflow code can tag log lines with the
// work item, step, and request identifiers stamped on a context by the services
// package. A no-op logger is provided for tests and wiring code that cannot fail.
package logging
