package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance used for struct rules.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describeValidationError(err)
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScoring() error {
	if math.IsNaN(c.ScoreReview.MaxValue) || math.IsInf(c.ScoreReview.MaxValue, 0) {
		return errors.New("score_review.max_value must be a finite number")
	}
	if math.IsNaN(c.Evaluation.MinimumAcceptanceScore) || math.IsInf(c.Evaluation.MinimumAcceptanceScore, 0) {
		return errors.New("evaluation.minimum_acceptance_score must be a finite number")
	}
	if c.Evaluation.MinimumAcceptanceScore > c.ScoreReview.MaxValue {
		return fmt.Errorf("evaluation.minimum_acceptance_score (%.2f) exceeds score_review.max_value (%.2f); no item could pass",
			c.Evaluation.MinimumAcceptanceScore, c.ScoreReview.MaxValue)
	}
	return nil
}

// describeValidationError rewrites validator failures using the TOML key names
// users see in their configuration file.
func describeValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("invalid config: %w", err)
	}
	fe := fieldErrs[0]
	key := tomlKey(fe.StructNamespace())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s must be set", key)
	case "oneof":
		return fmt.Errorf("%s: unsupported value %q (expected one of: %s)", key, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Errorf("%s must be greater than %s", key, fe.Param())
	case "gte":
		return fmt.Errorf("%s must be at least %s", key, fe.Param())
	default:
		return fmt.Errorf("%s failed %s validation", key, fe.Tag())
	}
}

var tomlSections = map[string]string{
	"Paths":         "paths",
	"Logging":       "logging",
	"Workflow":      "workflow",
	"Review":        "review",
	"ScoreReview":   "score_review",
	"Evaluation":    "evaluation",
	"Authorization": "authorization",
}

var tomlFields = map[string]string{
	"DataDir":                "data_dir",
	"Format":                 "format",
	"Level":                  "level",
	"LockTimeoutMillis":      "lock_timeout_ms",
	"ReviewManagersGroup":    "review_managers_group",
	"MaxValue":               "max_value",
	"MinimumAcceptanceScore": "minimum_acceptance_score",
}

func tomlKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, part := range parts {
		if mapped, ok := tomlSections[part]; ok && i == 0 {
			parts[i] = mapped
			continue
		}
		if mapped, ok := tomlFields[part]; ok {
			parts[i] = mapped
		}
	}
	return strings.Join(parts, ".")
}
