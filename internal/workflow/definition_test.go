package workflow_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reviewflow/internal/workflow"
)

func TestDefaultDefinition(t *testing.T) {
	def := workflow.DefaultDefinition()
	if got := def.First().ID; got != "selectReviewer" {
		t.Fatalf("first step = %q, want selectReviewer", got)
	}
	review, ok := def.Step("scoreReview")
	if !ok {
		t.Fatal("scoreReview step missing")
	}
	if review.Role != "reviewer" || !review.RequireAll {
		t.Fatalf("scoreReview = %+v, want reviewer role requiring all", review)
	}
	evaluation, _ := def.Step("evaluation")
	if !evaluation.Automatic {
		t.Fatal("evaluation step should be automatic")
	}
	if next := def.Next("selectReviewer", "complete"); next != "scoreReview" {
		t.Fatalf("next after selectReviewer = %q", next)
	}
	if next := def.Next("evaluation", "complete"); next != "" {
		t.Fatalf("evaluation should archive, got %q", next)
	}
	want := []string{"selectrevieweraction", "scorereview", "scoreevaluation"}
	if got := def.Actions(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("actions = %v, want %v", got, want)
	}
}

func TestNextFallsThroughToDeclaredOrder(t *testing.T) {
	def, err := workflow.ParseDefinition([]byte(`
steps:
  - id: one
    action: a
    role: submitter
  - id: two
    action: b
    role: editor
`))
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	if next := def.Next("one", "complete"); next != "two" {
		t.Fatalf("next = %q, want two", next)
	}
	if next := def.Next("two", "complete"); next != "" {
		t.Fatalf("last step should archive, got %q", next)
	}
}

func TestParseDefinitionRejectsInvalidGraphs(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"no steps":       "name: x\nsteps: []\n",
		"unknown field":  "steps:\n  - id: a\n    action: x\n    role: submitter\n    colour: red\n",
		"missing action": "steps:\n  - id: a\n    role: submitter\n",
		"missing role":   "steps:\n  - id: a\n    action: x\n",
		"duplicate id":   "steps:\n  - id: a\n    action: x\n    role: submitter\n  - id: a\n    action: y\n    role: submitter\n",
		"bad target":     "steps:\n  - id: a\n    action: x\n    role: submitter\n    outcomes:\n      complete: nowhere\n",
		"automatic first": "steps:\n  - id: a\n    action: x\n    automatic: true\n",
		"automatic role": "steps:\n  - id: a\n    action: x\n    role: submitter\n  - id: b\n    action: y\n    role: reviewer\n    automatic: true\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := workflow.ParseDefinition([]byte(doc)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestLoadDefinitionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.yaml")
	doc := "name: short\nsteps:\n  - id: pick\n    action: SelectReviewerAction\n    role: submitter\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	def, err := workflow.LoadDefinitionFile(path)
	if err != nil {
		t.Fatalf("LoadDefinitionFile: %v", err)
	}
	if def.Name != "short" || def.First().Action != "selectrevieweraction" {
		t.Fatalf("unexpected definition %+v", def)
	}
	if _, err := workflow.LoadDefinitionFile(dir); err == nil {
		t.Fatal("expected error for directory")
	}
	if _, err := workflow.LoadDefinitionFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
