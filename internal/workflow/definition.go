package workflow

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"reviewflow/internal/action"
	"reviewflow/internal/config"
)

// RoleSubmitter lets the item's submitter act at a step.
const RoleSubmitter = "submitter"

//go:embed default_workflow.yaml
var defaultWorkflow []byte

// StepDefinition describes one step of the graph.
type StepDefinition struct {
	ID     string `yaml:"id"`
	Action string `yaml:"action"`
	// Role is RoleSubmitter or an assignment role id. Automatic steps have none.
	Role       string `yaml:"role"`
	RequireAll bool   `yaml:"require_all"`
	// Automatic steps execute on entry with the actor that completed the
	// previous step.
	Automatic bool `yaml:"automatic"`
	// Outcomes maps an advance result to the next step id. An empty id archives
	// the item. Results not listed fall through to the next declared step.
	Outcomes map[string]string `yaml:"outcomes"`
}

// ActionStep returns the view of the step handed to actions.
func (s StepDefinition) ActionStep() action.Step {
	return action.Step{ID: s.ID, Role: s.Role, RequireAll: s.RequireAll}
}

// Definition is an ordered step graph. The first step is the start step.
type Definition struct {
	Name  string           `yaml:"name"`
	Steps []StepDefinition `yaml:"steps"`
}

// ParseDefinition decodes and validates a YAML step graph.
func ParseDefinition(data []byte) (*Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("workflow: definition is empty")
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var def Definition
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("workflow: decode definition: %w", err)
	}
	def.normalize()
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadDefinitionFile reads and parses a step graph from disk.
func LoadDefinitionFile(path string) (*Definition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("workflow: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("workflow: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workflow: read %s: %w", path, err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// DefaultDefinition returns the embedded graph: reviewer selection, scoring by
// every reviewer, then automatic evaluation.
func DefaultDefinition() *Definition {
	def, err := ParseDefinition(defaultWorkflow)
	if err != nil {
		panic(fmt.Sprintf("embedded workflow definition is invalid: %v", err))
	}
	return def
}

// LoadDefinition returns the graph named by workflow.definition_path, or the
// embedded default when none is configured.
func LoadDefinition(cfg *config.Config) (*Definition, error) {
	if cfg == nil || strings.TrimSpace(cfg.Workflow.DefinitionPath) == "" {
		return DefaultDefinition(), nil
	}
	return LoadDefinitionFile(cfg.Workflow.DefinitionPath)
}

func (d *Definition) normalize() {
	d.Name = strings.TrimSpace(d.Name)
	for i := range d.Steps {
		step := &d.Steps[i]
		step.ID = strings.TrimSpace(step.ID)
		step.Action = strings.ToLower(strings.TrimSpace(step.Action))
		step.Role = strings.TrimSpace(step.Role)
		for result, next := range step.Outcomes {
			step.Outcomes[result] = strings.TrimSpace(next)
		}
	}
}

// Validate checks step ids, actions, roles, and outcome targets.
func (d *Definition) Validate() error {
	if d == nil || len(d.Steps) == 0 {
		return errors.New("workflow: definition has no steps")
	}
	seen := make(map[string]struct{}, len(d.Steps))
	var problems []string
	for i, step := range d.Steps {
		if step.ID == "" {
			problems = append(problems, fmt.Sprintf("steps[%d].id is required", i))
			continue
		}
		if _, dup := seen[step.ID]; dup {
			problems = append(problems, fmt.Sprintf("step %q is declared twice", step.ID))
		}
		seen[step.ID] = struct{}{}
		if step.Action == "" {
			problems = append(problems, fmt.Sprintf("step %q has no action", step.ID))
		}
		switch {
		case step.Automatic && step.Role != "":
			problems = append(problems, fmt.Sprintf("step %q is automatic and cannot declare a role", step.ID))
		case !step.Automatic && step.Role == "":
			problems = append(problems, fmt.Sprintf("step %q needs a role", step.ID))
		case step.RequireAll && step.Role == RoleSubmitter:
			problems = append(problems, fmt.Sprintf("step %q cannot require all for the submitter role", step.ID))
		}
	}
	for _, step := range d.Steps {
		for result, next := range step.Outcomes {
			if next == "" {
				continue
			}
			if _, ok := seen[next]; !ok {
				problems = append(problems, fmt.Sprintf("step %q outcome %q targets unknown step %q", step.ID, result, next))
			}
		}
	}
	if len(d.Steps) > 0 && d.Steps[0].Automatic {
		problems = append(problems, "the first step cannot be automatic")
	}
	if len(problems) > 0 {
		return fmt.Errorf("workflow: invalid definition: %s", strings.Join(problems, "; "))
	}
	return nil
}

// First returns the start step.
func (d *Definition) First() StepDefinition {
	return d.Steps[0]
}

// Step looks up a step by id.
func (d *Definition) Step(id string) (StepDefinition, bool) {
	for _, step := range d.Steps {
		if step.ID == id {
			return step, true
		}
	}
	return StepDefinition{}, false
}

// Next returns the step that follows id for result. An empty id means the item
// leaves the graph and is archived.
func (d *Definition) Next(id, result string) string {
	for i, step := range d.Steps {
		if step.ID != id {
			continue
		}
		if next, ok := step.Outcomes[result]; ok {
			return next
		}
		if i+1 < len(d.Steps) {
			return d.Steps[i+1].ID
		}
		return ""
	}
	return ""
}

// Actions returns the distinct action ids used by the graph in step order.
func (d *Definition) Actions() []string {
	seen := make(map[string]struct{}, len(d.Steps))
	ids := make([]string, 0, len(d.Steps))
	for _, step := range d.Steps {
		if _, ok := seen[step.Action]; ok {
			continue
		}
		seen[step.Action] = struct{}{}
		ids = append(ids, step.Action)
	}
	return ids
}
