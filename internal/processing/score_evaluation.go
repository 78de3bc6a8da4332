package processing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reviewflow/internal/action"
	"reviewflow/internal/logging"
	"reviewflow/internal/metadata"
	"reviewflow/internal/privilege"
	"reviewflow/internal/session"
	"reviewflow/internal/store"
)

// ScoreEvaluationID identifies the evaluation action in workflow definitions.
const ScoreEvaluationID = "scoreevaluation"

// RejectReason is recorded when an item's mean score misses the threshold.
const RejectReason = "The item was rejected due to a low review score."

// ScoreEvaluation consumes every recorded score and accepts or rejects the item.
type ScoreEvaluation struct {
	minimum  float64
	meta     action.MetadataStore
	workflow action.Workflow
	logger   *slog.Logger
}

// NewScoreEvaluation constructs the evaluation action with an inclusive
// acceptance threshold.
func NewScoreEvaluation(minimum float64, meta action.MetadataStore, workflow action.Workflow, logger *slog.Logger) *ScoreEvaluation {
	return &ScoreEvaluation{
		minimum:  minimum,
		meta:     meta,
		workflow: workflow,
		logger:   logging.NewComponentLogger(logger, ScoreEvaluationID),
	}
}

func (a *ScoreEvaluation) ID() string { return ScoreEvaluationID }

func (a *ScoreEvaluation) Activate(context.Context, *store.Item) error { return nil }

// Execute averages the scores, clears them, and either writes a provenance note
// or sends the item back to its submitter.
func (a *ScoreEvaluation) Execute(ctx context.Context, item *store.Item, step action.Step, _ action.Request) (action.Outcome, error) {
	scores, err := a.meta.GetMetadata(ctx, item.ID, metadata.Score, metadata.AnyLanguage)
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	mean := MeanScore(scores)
	passed := Passes(mean, a.minimum)

	if err := a.meta.ClearMetadata(ctx, item.ID, metadata.Score, metadata.AnyLanguage); err != nil {
		return nil, fmt.Errorf("clear scores: %w", err)
	}

	logger := logging.WithContext(ctx, a.logger).With(
		logging.Float64("mean", mean),
		logging.Float64("threshold", a.minimum),
		logging.Int("scores", len(scores)),
	)
	start := action.ProvenanceStart(step, a.ID())

	if !passed {
		logger.Info("item rejected", logging.String(logging.FieldDecision, "reject"))
		if err := a.workflow.SendBackToSubmitter(ctx, item, session.Actor(ctx), start, RejectReason); err != nil {
			return nil, fmt.Errorf("send back to submitter: %w", err)
		}
		return action.SubmissionPage{}, nil
	}

	note, err := a.approvalNote(ctx, item, start, mean)
	if err != nil {
		return nil, err
	}
	err = privilege.Run(ctx, func(ctx context.Context) error {
		if err := a.meta.AddMetadata(ctx, item.ID, metadata.Provenance, metadata.ProvenanceLanguage, note); err != nil {
			return fmt.Errorf("add provenance: %w", err)
		}
		return a.meta.TouchItem(ctx, item.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("item approved", logging.String(logging.FieldDecision, "accept"))
	return action.Complete(), nil
}

func (a *ScoreEvaluation) approvalNote(ctx context.Context, item *store.Item, start string, mean float64) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Approved for entry into archive with a score of: %s", start, metadata.FormatFixed(mean))

	reviews, err := a.meta.GetMetadata(ctx, item.ID, metadata.Review, metadata.AnyLanguage)
	if err != nil {
		return "", fmt.Errorf("read reviews: %w", err)
	}
	if len(reviews) > 0 {
		b.WriteString(" | Reviews: ")
		for _, review := range reviews {
			b.WriteString("; ")
			b.WriteString(review)
		}
	}
	return b.String(), nil
}

// Options returns return to pool, the only choice presented at evaluation.
func (a *ScoreEvaluation) Options() []string {
	return []string{action.OptionReturnToPool}
}
