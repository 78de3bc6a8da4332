package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"reviewflow/internal/authz"
	"reviewflow/internal/config"
	"reviewflow/internal/logging"
	"reviewflow/internal/metrics"
	"reviewflow/internal/services"
	"reviewflow/internal/session"
	"reviewflow/internal/store"
	"reviewflow/internal/workflow"
)

type commandContext struct {
	configFlag *string
	actorFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	storeOnce sync.Once
	store     *store.Store
	storeErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	recorder *metrics.Recorder
}

func newCommandContext(configFlag, actorFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		actorFlag:  actorFlag,
		recorder:   metrics.New(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.config)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) ensureStore() (*store.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		c.store, c.storeErr = store.Open(cfg)
	})
	return c.store, c.storeErr
}

func (c *commandContext) withStore(fn func(*store.Store) error) error {
	st, err := c.ensureStore()
	if err != nil {
		return err
	}
	return fn(st)
}

func (c *commandContext) engine() (*workflow.ReviewEngine, error) {
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	return workflow.NewReviewEngine(c.config, st, c.recorder, c.ensureLogger())
}

func (c *commandContext) evaluator() (*authz.GroupReadEvaluator, error) {
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	return authz.NewGroupReadEvaluator(st, c.config.Properties(), c.recorder, c.ensureLogger()), nil
}

// actorContext returns cmd's context carrying the --as session. Without --as
// the session is anonymous.
func (c *commandContext) actorContext(cmd *cobra.Command) (context.Context, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ref := ""
	if c.actorFlag != nil {
		ref = strings.TrimSpace(*c.actorFlag)
	}
	if ref == "" {
		return session.With(ctx, session.Session{}), nil
	}
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	person, err := resolvePerson(ctx, st, ref)
	if err != nil {
		return nil, err
	}
	return session.With(ctx, session.Session{Actor: person}), nil
}

// requireActor is actorContext for commands that cannot run anonymously.
func (c *commandContext) requireActor(cmd *cobra.Command) (context.Context, *store.Person, error) {
	ctx, err := c.actorContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	actor := session.Actor(ctx)
	if actor == nil {
		return nil, nil, services.Wrap(services.ErrValidation, "cli", cmd.Name(), "--as is required", nil)
	}
	return ctx, actor, nil
}

func (c *commandContext) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil && c.logger != nil {
			c.logger.Warn("failed to close store", logging.Error(err))
		}
		c.store = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func printStats(cmd *cobra.Command, ctx *commandContext) error {
	samples, err := ctx.recorder.Snapshot()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(samples) == 0 {
		fmt.Fprintln(out, "No metrics recorded")
		return nil
	}
	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, []string{s.Name, s.Labels, formatMetric(s.Value)})
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Labels", "Value"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	return nil
}

func formatMetric(value float64) string {
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d", int64(value))
	}
	return fmt.Sprintf("%.4f", value)
}
