package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reviewflow/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	t.Setenv(config.EnvConfigPath, "")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Source.Path != filepath.Join(tempHome, ".config", "reviewflow", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", cfg.Source.Path)
	}
	if cfg.Source.Found {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "reviewflow")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "reviewflow.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Review.ReviewManagersGroup != "reviewmanagers" {
		t.Fatalf("unexpected review managers group: %q", cfg.Review.ReviewManagersGroup)
	}
	if cfg.ScoreReview.MaxValue != 10 {
		t.Fatalf("unexpected max score: %v", cfg.ScoreReview.MaxValue)
	}
	if cfg.Evaluation.MinimumAcceptanceScore != 7 {
		t.Fatalf("unexpected minimum acceptance score: %v", cfg.Evaluation.MinimumAcceptanceScore)
	}
	if cfg.Review.AdvisorRequired {
		t.Fatal("expected advisor to be optional by default")
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
data_dir = "~/data"

[logging]
format = "JSON"
level = "Debug"

[review]
reviewer_group = " Professores "
reviewer_file_edit = true

[score_review]
max_value = 5.5
description_required = true

[evaluation]
minimum_acceptance_score = 3.25

[properties]
"custom.key" = "value"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Source.Found {
		t.Fatal("expected config file to exist")
	}
	if cfg.Source.Path != configPath {
		t.Fatalf("unexpected resolved path: %q", cfg.Source.Path)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging settings, got %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
	if cfg.Review.ReviewerGroup != "Professores" {
		t.Fatalf("expected trimmed reviewer group, got %q", cfg.Review.ReviewerGroup)
	}
	if cfg.ScoreReview.MaxValue != 5.5 || !cfg.ScoreReview.DescriptionRequired {
		t.Fatalf("unexpected score review settings: %+v", cfg.ScoreReview)
	}
	if cfg.Evaluation.MinimumAcceptanceScore != 3.25 {
		t.Fatalf("unexpected threshold: %v", cfg.Evaluation.MinimumAcceptanceScore)
	}

	props := cfg.Properties()
	if got := props.String(config.KeyReviewerGroup); got != "Professores" {
		t.Fatalf("unexpected reviewer group property: %q", got)
	}
	if !props.Bool(config.KeyReviewerFileEdit, false) {
		t.Fatal("expected reviewer file edit property to be true")
	}
	if got := props.String("custom.key"); got != "value" {
		t.Fatalf("unexpected custom property: %q", got)
	}
}

func TestLoadPrefersEnvironmentPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	envPath := filepath.Join(t.TempDir(), "env.toml")
	if err := os.WriteFile(envPath, []byte("[evaluation]\nminimum_acceptance_score = 4.5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile("reviewflow.toml", []byte("[evaluation]\nminimum_acceptance_score = 9\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	t.Setenv(config.EnvConfigPath, envPath)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Source.Path != envPath || !cfg.Source.Found {
		t.Fatalf("unexpected source: %+v", cfg.Source)
	}
	if cfg.Evaluation.MinimumAcceptanceScore != 4.5 {
		t.Fatalf("threshold = %v, want 4.5", cfg.Evaluation.MinimumAcceptanceScore)
	}

	t.Setenv(config.EnvConfigPath, "")
	cfg, err = config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Source.Found || cfg.Evaluation.MinimumAcceptanceScore != 9 {
		t.Fatalf("expected project config, got %+v threshold %v", cfg.Source, cfg.Evaluation.MinimumAcceptanceScore)
	}
}

func TestLoadRejectsDirectoryPath(t *testing.T) {
	if _, err := config.Load(t.TempDir()); err == nil {
		t.Fatal("expected error for directory config path")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[review]\nunknown = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to fail parsing")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "non-positive max",
			mutate:  func(c *config.Config) { c.ScoreReview.MaxValue = 0 },
			wantErr: "score_review.max_value",
		},
		{
			name:    "negative lock timeout",
			mutate:  func(c *config.Config) { c.Workflow.LockTimeoutMillis = -1 },
			wantErr: "workflow.lock_timeout_ms",
		},
		{
			name:    "threshold above max",
			mutate:  func(c *config.Config) { c.Evaluation.MinimumAcceptanceScore = 11 },
			wantErr: "exceeds score_review.max_value",
		},
		{
			name:    "missing data dir",
			mutate:  func(c *config.Config) { c.Paths.DataDir = "" },
			wantErr: "paths.data_dir must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = t.TempDir()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPropertiesBoolFallback(t *testing.T) {
	props := config.NewProperties(map[string]string{
		"a": "yes",
		"b": "nonsense",
		"c": " false ",
	})
	if !props.Bool("a", false) {
		t.Fatal("expected yes to parse as true")
	}
	if !props.Bool("b", true) {
		t.Fatal("expected unparsable value to use fallback")
	}
	if props.Bool("c", true) {
		t.Fatal("expected trimmed false")
	}
	if !props.Bool("missing", true) {
		t.Fatal("expected missing key to use fallback")
	}
	var nilProps *config.Properties
	if nilProps.String("a") != "" {
		t.Fatal("expected nil properties to return empty string")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var parsed config.Config
	if err := toml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if parsed.ScoreReview.MaxValue != config.Default().ScoreReview.MaxValue {
		t.Fatalf("sample max value drifted from defaults: %v", parsed.ScoreReview.MaxValue)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("sample config fails to load: %v", err)
	}
}
