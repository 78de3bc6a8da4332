// Package workflow moves work items through the review step graph.
//
// A Definition, loaded from YAML, lists the steps an item visits and the
// processing action each step runs. The Engine dispatches an actor's request to
// the action of the item's current step, serializes executions per item with a
// file lock, and applies the returned outcome: advancing along the step graph,
// leaving the item in place, or recognising that the action sent the item back
// to its submitter. Steps marked automatic run as soon as an item enters them.
//
// The Engine also implements the send-back operation actions use to return an
// item, which clears its assignments and writes a rejection provenance note.
package workflow
