// Package processing implements the review workflow's processing actions:
// reviewer and advisor selection, score intake, and score evaluation, together
// with the reviewer-pool cache they share with the authorization delegate.
//
// Actions never hold per-request state. Everything an execution needs arrives
// through the item, the step, the request, or the collaborators injected at
// construction, so one instance can serve every item in the workflow.
package processing
