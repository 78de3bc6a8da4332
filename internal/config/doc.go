// Package config loads, normalizes, and validates reviewflow configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// workflow engine, the processing actions, and the CLI need: where the SQLite
// database lives, scoring limits, the reviewer-pool group, and which
// administrators may manage accounts.
//
// Actions never read Config directly. They consume the dotted-key Properties
// view returned by Config.Properties, which mirrors the property names used in
// deployed workflow configuration files.
package config
