// Package store persists reviewflow state in SQLite.
//
// A single Store backs every collaborator the workflow core talks to: item
// metadata, people and groups, role assignments, administrator scopes, work
// items, and the per-step completion records the engine uses to decide when a
// multi-reviewer step is satisfied.
//
// Lookups by identifier return (nil, nil) when no row exists so callers can
// treat "not found" as data rather than failure. Writes that only trusted system
// operations may perform (group creation, membership changes, provenance
// notes) require an elevated context from the privilege package.
//
// Schema changes ship as new files under migrations/; applied versions are
// recorded in schema_migrations.
package store
