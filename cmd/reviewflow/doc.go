// Package main hosts the reviewflow CLI entrypoint and command graph.
//
// The Cobra command tree seeds people, groups, and administrators, submits
// items into the review workflow, performs step actions on behalf of an actor
// named with --as, and asks the group read delegate for decisions. It resolves
// configuration once, opens the SQLite store lazily, and builds the review
// engine so subcommands only translate flags into calls on internal packages.
package main
