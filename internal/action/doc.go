// Package action defines the contract every workflow processing action
// implements and the types that flow across it.
//
// An action is a fixed decision step. The engine hands it the item, the step it
// runs in, and the request parameters; the action reads and writes through the
// collaborator interfaces declared here and returns exactly one Outcome. Expected
// business conditions such as a bad score or an empty reviewer list are Failure
// outcomes, never Go errors. Errors are reserved for collaborator failures and
// propagate to the caller unchanged.
package action
