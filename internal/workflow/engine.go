package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"reviewflow/internal/action"
	"reviewflow/internal/config"
	"reviewflow/internal/logging"
	"reviewflow/internal/metadata"
	"reviewflow/internal/services"
	"reviewflow/internal/session"
	"reviewflow/internal/store"
)

// Store is the persistence the engine needs. *store.Store satisfies it.
type Store interface {
	GetItem(ctx context.Context, id int64) (*store.Item, error)
	UpdateItem(ctx context.Context, item *store.Item) error
	RolesForItem(ctx context.Context, itemID int64) ([]store.RoleAssignment, error)
	DeleteRolesForItem(ctx context.Context, itemID int64) error
	IsMember(ctx context.Context, personID, groupID uuid.UUID) (bool, error)
	GroupMembers(ctx context.Context, groupID uuid.UUID) ([]store.Person, error)
	RecordCompletion(ctx context.Context, itemID int64, step string, personID uuid.UUID) error
	Completions(ctx context.Context, itemID int64, step string) ([]uuid.UUID, error)
	ClearCompletions(ctx context.Context, itemID int64) error
	AddMetadata(ctx context.Context, itemID int64, field metadata.Field, lang string, values ...string) error
}

// Recorder observes action executions. *metrics.Recorder satisfies it.
type Recorder interface {
	ObserveAction(actionID, outcome string, elapsed time.Duration, err error)
}

// Engine dispatches requests to the processing action of an item's current step.
type Engine struct {
	def         *Definition
	store       Store
	recorder    Recorder
	logger      *slog.Logger
	lockDir     string
	lockTimeout time.Duration
	now         func() time.Time

	mu      sync.RWMutex
	actions map[string]action.Action
}

// NewEngine constructs an engine over def. Actions must be registered before
// items are started.
func NewEngine(cfg *config.Config, def *Definition, st Store, recorder Recorder, logger *slog.Logger) *Engine {
	if def == nil {
		def = DefaultDefinition()
	}
	timeout := 2 * time.Second
	lockDir := ""
	if cfg != nil {
		timeout = time.Duration(cfg.Workflow.LockTimeoutMillis) * time.Millisecond
		lockDir = cfg.LockDir()
	}
	return &Engine{
		def:         def,
		store:       st,
		recorder:    recorder,
		logger:      logging.NewComponentLogger(logger, "workflow"),
		lockDir:     lockDir,
		lockTimeout: timeout,
		now:         time.Now,
		actions:     make(map[string]action.Action),
	}
}

// Register makes an action available to steps that name its id.
func (e *Engine) Register(a action.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions[a.ID()] = a
}

// Definition returns the step graph the engine runs.
func (e *Engine) Definition() *Definition {
	return e.def
}

func (e *Engine) action(id string) (action.Action, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.actions[id]
	return a, ok
}

// Result describes the effect of one Perform call.
type Result struct {
	Item *store.Item
	// Step is the step the request was executed in.
	Step    string
	Outcome action.Outcome
	// Advanced is true when the item left Step.
	Advanced bool
}

// Start places a newly submitted item on the first step.
func (e *Engine) Start(ctx context.Context, itemID int64) (*store.Item, error) {
	unlock, err := e.lockItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	item, err := e.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != store.StatusActive && item.Status != store.StatusReturned {
		return nil, services.Wrap(services.ErrConflict, "workflow", "start", fmt.Sprintf("item %d is %s", item.ID, item.Status), nil)
	}
	if item.Status == store.StatusActive && item.Step != "" {
		return nil, services.Wrap(services.ErrConflict, "workflow", "start", fmt.Sprintf("item %d is already at step %s", item.ID, item.Step), nil)
	}
	actor := session.Actor(ctx)
	if actor == nil || actor.ID != item.SubmitterID {
		return nil, services.Wrap(services.ErrPermission, "workflow", "start", "only the submitter can start an item", nil)
	}

	item.Status = store.StatusActive
	if err := e.enter(ctx, item, e.def.First()); err != nil {
		return nil, err
	}
	logging.WithContext(services.ForItem(ctx, item.ID), e.logger).Info("item started",
		logging.String(logging.FieldStep, item.Step),
		logging.String(logging.FieldActor, actor.DisplayName()),
	)
	return item, nil
}

// Perform executes req as the session actor against the item's current step.
func (e *Engine) Perform(ctx context.Context, itemID int64, req action.Request) (*Result, error) {
	unlock, err := e.lockItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	item, err := e.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	step, err := e.currentStep(item)
	if err != nil {
		return nil, err
	}
	actor := session.Actor(ctx)
	if err := e.authorize(ctx, item, step, actor); err != nil {
		return nil, err
	}

	result := &Result{Item: item, Step: step.ID}
	outcome, err := e.execute(ctx, item, step, req)
	if err != nil {
		return nil, err
	}
	result.Outcome = outcome
	advanced, err := e.apply(ctx, item, step, actor, outcome)
	if err != nil {
		return nil, err
	}
	result.Advanced = advanced
	return result, nil
}

// execute runs the step's action and records metrics.
func (e *Engine) execute(ctx context.Context, item *store.Item, step StepDefinition, req action.Request) (action.Outcome, error) {
	a, ok := e.action(step.Action)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "execute", fmt.Sprintf("action %q is not registered", step.Action), nil)
	}
	if req == nil {
		req = action.Params{}
	}
	ctx = services.WithScope(ctx, services.Scope{ItemID: item.ID, Step: step.ID})
	if services.ScopeFrom(ctx).RequestID == "" {
		ctx = services.WithScope(ctx, services.Scope{RequestID: uuid.NewString()})
	}
	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldAction, a.ID()))

	started := e.now()
	outcome, err := a.Execute(ctx, item, step.ActionStep(), req)
	elapsed := e.now().Sub(started)
	if err != nil {
		e.observe(a.ID(), "", elapsed, err)
		logger.Error("action failed", logging.Error(err), logging.Duration("elapsed", elapsed))
		return nil, fmt.Errorf("%s: %w", a.ID(), err)
	}
	if outcome == nil {
		err := fmt.Errorf("%s: action returned no outcome", a.ID())
		e.observe(a.ID(), "", elapsed, err)
		return nil, err
	}
	e.observe(a.ID(), string(outcome.Type()), elapsed, nil)
	logger.Info("action executed",
		logging.String(logging.FieldOutcome, action.Describe(outcome)),
		logging.Duration("elapsed", elapsed),
	)
	return outcome, nil
}

func (e *Engine) observe(actionID, outcome string, elapsed time.Duration, err error) {
	if e.recorder != nil {
		e.recorder.ObserveAction(actionID, outcome, elapsed, err)
	}
}

// apply updates workflow state for outcome and reports whether the item left step.
func (e *Engine) apply(ctx context.Context, item *store.Item, step StepDefinition, actor *store.Person, outcome action.Outcome) (bool, error) {
	switch o := outcome.(type) {
	case action.Advance:
		if actor != nil {
			if err := e.store.RecordCompletion(ctx, item.ID, step.ID, actor.ID); err != nil {
				return false, fmt.Errorf("record completion: %w", err)
			}
		}
		done, err := e.stepSatisfied(ctx, item, step)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
		return true, e.transition(ctx, item, step, o.Result)
	case action.SubmissionPage:
		// The action already returned the item through SendBackToSubmitter.
		return true, nil
	case action.Cancel, action.Failure:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected outcome %T", outcome)
	}
}

// transition moves item to the step after from and runs automatic steps.
func (e *Engine) transition(ctx context.Context, item *store.Item, from StepDefinition, result string) error {
	nextID := e.def.Next(from.ID, result)
	if nextID == "" {
		return e.archive(ctx, item)
	}
	next, ok := e.def.Step(nextID)
	if !ok {
		return services.Wrap(services.ErrConfiguration, "workflow", "transition", fmt.Sprintf("unknown step %q", nextID), nil)
	}
	if err := e.enter(ctx, item, next); err != nil {
		return err
	}
	if !next.Automatic {
		return nil
	}
	outcome, err := e.execute(ctx, item, next, action.Params{})
	if err != nil {
		return err
	}
	_, err = e.apply(ctx, item, next, nil, outcome)
	return err
}

func (e *Engine) enter(ctx context.Context, item *store.Item, step StepDefinition) error {
	item.Step = step.ID
	if err := e.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("update item step: %w", err)
	}
	a, ok := e.action(step.Action)
	if !ok {
		return services.Wrap(services.ErrConfiguration, "workflow", "enter step", fmt.Sprintf("action %q is not registered", step.Action), nil)
	}
	if err := a.Activate(services.WithScope(ctx, services.Scope{ItemID: item.ID, Step: step.ID}), item); err != nil {
		return fmt.Errorf("activate %s: %w", a.ID(), err)
	}
	return nil
}

func (e *Engine) archive(ctx context.Context, item *store.Item) error {
	item.Step = ""
	item.Status = store.StatusArchived
	if err := e.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("archive item: %w", err)
	}
	logging.WithContext(services.ForItem(ctx, item.ID), e.logger).Info("item archived")
	return nil
}

// stepSatisfied reports whether enough holders of the step role have completed.
func (e *Engine) stepSatisfied(ctx context.Context, item *store.Item, step StepDefinition) (bool, error) {
	if !step.RequireAll {
		return true, nil
	}
	holders, err := e.roleHolders(ctx, item, step.Role)
	if err != nil {
		return false, err
	}
	completed, err := e.store.Completions(ctx, item.ID, step.ID)
	if err != nil {
		return false, fmt.Errorf("load completions: %w", err)
	}
	done := make(map[uuid.UUID]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}
	for _, id := range holders {
		if _, ok := done[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// roleHolders returns the people bound to role on item, expanding groups.
func (e *Engine) roleHolders(ctx context.Context, item *store.Item, role string) ([]uuid.UUID, error) {
	if role == RoleSubmitter {
		return []uuid.UUID{item.SubmitterID}, nil
	}
	assignment, err := e.assignment(ctx, item.ID, role)
	if err != nil || assignment == nil {
		return nil, err
	}
	if assignment.PersonID != nil {
		return []uuid.UUID{*assignment.PersonID}, nil
	}
	members, err := e.store.GroupMembers(ctx, *assignment.GroupID)
	if err != nil {
		return nil, fmt.Errorf("list role group: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (e *Engine) assignment(ctx context.Context, itemID int64, role string) (*store.RoleAssignment, error) {
	roles, err := e.store.RolesForItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	for i := range roles {
		if roles[i].RoleID == role {
			return &roles[i], nil
		}
	}
	return nil, nil
}

// authorize checks that actor holds the step role and has not already completed
// a step that every holder must complete.
func (e *Engine) authorize(ctx context.Context, item *store.Item, step StepDefinition, actor *store.Person) error {
	if step.Automatic {
		return services.Wrap(services.ErrConflict, "workflow", "perform", fmt.Sprintf("step %s runs automatically", step.ID), nil)
	}
	if actor == nil {
		return services.Wrap(services.ErrPermission, "workflow", "perform", "an authenticated actor is required", nil)
	}
	allowed, err := e.holdsRole(ctx, item, step.Role, actor)
	if err != nil {
		return err
	}
	if !allowed {
		return services.Wrap(services.ErrPermission, "workflow", "perform",
			fmt.Sprintf("%s does not hold role %s at step %s", actor.DisplayName(), step.Role, step.ID), nil)
	}
	if step.RequireAll {
		completed, err := e.store.Completions(ctx, item.ID, step.ID)
		if err != nil {
			return fmt.Errorf("load completions: %w", err)
		}
		for _, id := range completed {
			if id == actor.ID {
				return services.Wrap(services.ErrConflict, "workflow", "perform",
					fmt.Sprintf("%s already completed step %s", actor.DisplayName(), step.ID), nil)
			}
		}
	}
	return nil
}

func (e *Engine) holdsRole(ctx context.Context, item *store.Item, role string, actor *store.Person) (bool, error) {
	if role == RoleSubmitter {
		return actor.ID == item.SubmitterID, nil
	}
	assignment, err := e.assignment(ctx, item.ID, role)
	if err != nil || assignment == nil {
		return false, err
	}
	if assignment.PersonID != nil {
		return *assignment.PersonID == actor.ID, nil
	}
	member, err := e.store.IsMember(ctx, actor.ID, *assignment.GroupID)
	if err != nil {
		return false, fmt.Errorf("check role group membership: %w", err)
	}
	return member, nil
}

func (e *Engine) loadItem(ctx context.Context, itemID int64) (*store.Item, error) {
	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "workflow", "load item", fmt.Sprintf("item %d", itemID), nil)
	}
	return item, nil
}

func (e *Engine) currentStep(item *store.Item) (StepDefinition, error) {
	if item.Status != store.StatusActive || item.Step == "" {
		return StepDefinition{}, services.Wrap(services.ErrConflict, "workflow", "current step",
			fmt.Sprintf("item %d is %s and not at a step", item.ID, item.Status), nil)
	}
	step, ok := e.def.Step(item.Step)
	if !ok {
		return StepDefinition{}, services.Wrap(services.ErrConfiguration, "workflow", "current step",
			fmt.Sprintf("item %d is at unknown step %q", item.ID, item.Step), nil)
	}
	return step, nil
}

// StepView describes what an actor can do with an item at its current step.
type StepView struct {
	Item            *store.Item
	Step            StepDefinition
	Options         []string
	AdvancedOptions []string
	AdvancedInfo    []action.AdvancedInfo
}

// Options returns the options of the item's current step action.
func (e *Engine) Options(ctx context.Context, itemID int64) (*StepView, error) {
	item, err := e.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	step, err := e.currentStep(item)
	if err != nil {
		return nil, err
	}
	a, ok := e.action(step.Action)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "options", fmt.Sprintf("action %q is not registered", step.Action), nil)
	}
	view := &StepView{Item: item, Step: step, Options: a.Options()}
	if adv, ok := a.(action.Advanced); ok {
		view.AdvancedOptions = adv.AdvancedOptions()
		info, err := adv.AdvancedInfo(ctx)
		if err != nil {
			return nil, fmt.Errorf("advanced info: %w", err)
		}
		view.AdvancedInfo = info
	}
	return view, nil
}

// Health reports the readiness of every action the step graph uses.
func (e *Engine) Health(ctx context.Context) []action.Health {
	ids := e.def.Actions()
	sort.Strings(ids)
	health := make([]action.Health, 0, len(ids))
	for _, id := range ids {
		a, ok := e.action(id)
		switch {
		case !ok:
			health = append(health, action.Unhealthy(id, "action is not registered"))
		case isHealthChecker(a):
			health = append(health, a.(action.HealthChecker).HealthCheck(ctx))
		default:
			health = append(health, action.Healthy(id))
		}
	}
	return health
}

func isHealthChecker(a action.Action) bool {
	_, ok := a.(action.HealthChecker)
	return ok
}
