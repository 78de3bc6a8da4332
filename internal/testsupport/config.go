package testsupport

import (
	"path/filepath"
	"testing"

	"reviewflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Workflow.LockTimeoutMillis = 200

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithReviewerGroup configures the reviewer pool group.
func WithReviewerGroup(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Review.ReviewerGroup = name
	}
}

// WithScoring overrides the maximum score and the acceptance threshold.
func WithScoring(maxValue, minimumAcceptance float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.ScoreReview.MaxValue = maxValue
		cfg.Evaluation.MinimumAcceptanceScore = minimumAcceptance
	}
}

// WithDefinition points the workflow at a YAML step graph.
func WithDefinition(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.DefinitionPath = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
