// Package services defines shared utilities consumed by the workflow engine,
// the processing actions, and the authorization delegate.
//
// Key responsibilities:
//   - Context helpers that stamp work item IDs, step names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (validation, not found, permission, conflict) with errors.Is.
//
// Use these helpers when wiring new actions so operational behaviour (error
// handling, observability) stays uniform across the workflow.
package services
