package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir" validate:"required"`
	LogDir  string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" validate:"oneof=console json"`
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
}

// Workflow contains configuration for the step graph and execution locking.
type Workflow struct {
	// DefinitionPath points at a YAML step graph. Empty selects the embedded default.
	DefinitionPath    string `toml:"definition_path"`
	LockTimeoutMillis int    `toml:"lock_timeout_ms" validate:"gte=0"`
}

// Review contains reviewer assignment settings.
type Review struct {
	// ReviewerGroup is the reviewer pool, by group name or UUID.
	ReviewerGroup       string `toml:"reviewer_group"`
	ReviewManagersGroup string `toml:"review_managers_group" validate:"required"`
	ReviewerFileEdit    bool   `toml:"reviewer_file_edit"`
	AdvisorRequired     bool   `toml:"advisor_required"`
}

// ScoreReview contains limits applied when a reviewer submits a score.
type ScoreReview struct {
	MaxValue            float64 `toml:"max_value" validate:"gt=0"`
	DescriptionRequired bool    `toml:"description_required"`
}

// Evaluation contains the acceptance threshold for the mean review score.
type Evaluation struct {
	MinimumAcceptanceScore float64 `toml:"minimum_acceptance_score" validate:"gte=0"`
}

// Authorization controls which administrators may read groups.
type Authorization struct {
	CommunityAdminManageAccounts  bool `toml:"community_admin_manage_accounts"`
	CollectionAdminManageAccounts bool `toml:"collection_admin_manage_accounts"`
}

// Source records where a configuration was read from. Found is false when
// Path did not exist and defaults were used.
type Source struct {
	Path  string
	Found bool
}

// EnvConfigPath names the environment variable consulted when no explicit
// path is given.
const EnvConfigPath = "REVIEWFLOW_CONFIG"

// Config encapsulates all configuration values for reviewflow.
//
// Configuration sections by subsystem:
//   - Paths: database and log directories
//   - Logging: log format and level
//   - Workflow: step graph location and per-item lock timeout
//   - Review: reviewer pool, review managers, reviewer options
//   - ScoreReview: maximum score and mandatory commentary
//   - Evaluation: minimum acceptance score
//   - Authorization: account-management capabilities of administrators
//   - Properties: free-form dotted keys for actions
type Config struct {
	Paths         Paths             `toml:"paths"`
	Logging       Logging           `toml:"logging"`
	Workflow      Workflow          `toml:"workflow"`
	Review        Review            `toml:"review"`
	ScoreReview   ScoreReview       `toml:"score_review"`
	Evaluation    Evaluation        `toml:"evaluation"`
	Authorization Authorization     `toml:"authorization"`
	Extra         map[string]string `toml:"properties"`

	Source Source `toml:"-"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reviewflow/config.toml")
}

// Load reads the configuration at path, or the first existing candidate when
// path is empty, then normalizes and validates it. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	src, err := locate(path)
	if err != nil {
		return nil, err
	}
	if src.Found {
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", src.Path, err)
		}
	}
	cfg.Source = src

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// locate resolves an explicit path as given. Otherwise it tries the
// environment override, the per-user file and ./reviewflow.toml in order,
// falling back to the per-user path when none exist.
func locate(path string) (Source, error) {
	if path = strings.TrimSpace(path); path != "" {
		return probe(path)
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return Source{}, err
	}
	candidates := []string{os.Getenv(EnvConfigPath), defaultPath, "reviewflow.toml"}
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		src, err := probe(candidate)
		if err != nil {
			return Source{}, err
		}
		if src.Found {
			return src, nil
		}
	}
	return Source{Path: defaultPath}, nil
}

func probe(path string) (Source, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return Source{}, err
	}
	info, err := os.Stat(expanded)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Source{Path: expanded}, nil
	case err != nil:
		return Source{}, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return Source{}, fmt.Errorf("config path %s is a directory", expanded)
	}
	return Source{Path: expanded, Found: true}, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "reviewflow.db")
}

// LockDir returns the directory holding per-item execution locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.DataDir, "locks")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
