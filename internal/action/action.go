package action

import (
	"context"

	"reviewflow/internal/store"
)

// Option identifiers presented to the calling layer.
const (
	OptionSubmitScore          = "submit_score"
	OptionEditMetadata         = "submit_edit_metadata"
	OptionReturnToPool         = "return_to_pool"
	OptionSubmitSelectReviewer = "submit_select_reviewer"
	OptionCancel               = "submit_cancel"
)

// Step is the workflow step an action executes in.
type Step struct {
	ID string
	// Role names the assignment role whose holders act at this step.
	Role string
	// RequireAll means every holder of Role must complete the step.
	RequireAll bool
}

// Action is the contract shared by all processing actions.
type Action interface {
	// ID returns the stable identifier used in workflow definitions.
	ID() string
	// Activate runs when an item enters a step using this action.
	Activate(ctx context.Context, item *store.Item) error
	// Execute decides the outcome of one request.
	Execute(ctx context.Context, item *store.Item, step Step, req Request) (Outcome, error)
	// Options lists the choices presented to the actor, in display order.
	Options() []string
}

// Advanced is implemented by actions that describe their configuration to clients.
type Advanced interface {
	AdvancedOptions() []string
	AdvancedInfo(ctx context.Context) ([]AdvancedInfo, error)
}

// Health summarizes whether an action can serve requests.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}

// HealthChecker is implemented by actions whose readiness depends on configuration
// or stored data.
type HealthChecker interface {
	HealthCheck(ctx context.Context) Health
}
