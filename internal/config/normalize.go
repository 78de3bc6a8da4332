package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeReview()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Workflow.DefinitionPath, err = expandPath(strings.TrimSpace(c.Workflow.DefinitionPath)); err != nil {
		return fmt.Errorf("workflow.definition_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeReview() {
	c.Review.ReviewerGroup = strings.TrimSpace(c.Review.ReviewerGroup)
	c.Review.ReviewManagersGroup = strings.TrimSpace(c.Review.ReviewManagersGroup)
	if c.Review.ReviewManagersGroup == "" {
		c.Review.ReviewManagersGroup = defaultReviewManagersGroup
	}
}
