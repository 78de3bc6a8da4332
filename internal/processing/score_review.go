package processing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"reviewflow/internal/action"
	"reviewflow/internal/config"
	"reviewflow/internal/logging"
	"reviewflow/internal/metadata"
	"reviewflow/internal/store"
)

// ScoreReviewID identifies the score intake action in workflow definitions.
const ScoreReviewID = "scorereview"

const (
	paramScore  = "score"
	paramReview = "review"
)

// ScoreReviewSettings configures score intake.
type ScoreReviewSettings struct {
	MaxValue            float64
	DescriptionRequired bool
}

// ScoreReview records one reviewer's decimal score and optional commentary.
type ScoreReview struct {
	settings ScoreReviewSettings
	meta     action.MetadataStore
	props    action.ConfigProvider
	logger   *slog.Logger
}

// NewScoreReview constructs the score intake action.
func NewScoreReview(settings ScoreReviewSettings, meta action.MetadataStore, props action.ConfigProvider, logger *slog.Logger) *ScoreReview {
	return &ScoreReview{
		settings: settings,
		meta:     meta,
		props:    props,
		logger:   logging.NewComponentLogger(logger, ScoreReviewID),
	}
}

func (a *ScoreReview) ID() string { return ScoreReviewID }

func (a *ScoreReview) Activate(context.Context, *store.Item) error { return nil }

// Execute validates the submitted score and review and appends them to the item.
// Requests that do not press the score button are cancelled.
func (a *ScoreReview) Execute(ctx context.Context, item *store.Item, _ action.Step, req action.Request) (action.Outcome, error) {
	button := action.SubmitButton(req, action.OptionCancel)
	if !containsFold(a.Options(), button) || !strings.EqualFold(button, action.OptionSubmitScore) {
		return action.Cancel{}, nil
	}

	logger := logging.WithContext(ctx, a.logger)
	rawScore := req.Param(paramScore)
	score := ParseScore(rawScore)
	if math.IsInf(score, 1) && strings.TrimSpace(rawScore) != "" {
		logger.Warn("invalid score format received", logging.String(paramScore, rawScore))
	}
	review := req.Param(paramReview)

	if reason, ok := a.validate(score, review); !ok {
		logger.Error("score rejected", logging.String(logging.FieldReason, reason))
		return action.Fail(reason), nil
	}

	if err := a.meta.AddMetadata(ctx, item.ID, metadata.Score, "", metadata.FormatDecimal(score)); err != nil {
		return nil, fmt.Errorf("record score: %w", err)
	}
	if strings.TrimSpace(review) != "" {
		entry := metadata.FormatFixed(score) + " - " + review
		if err := a.meta.AddMetadata(ctx, item.ID, metadata.Review, "", entry); err != nil {
			return nil, fmt.Errorf("record review: %w", err)
		}
	}
	if err := a.meta.TouchItem(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	logger.Info("score recorded", logging.Float64(paramScore, score))
	return action.Complete(), nil
}

func (a *ScoreReview) validate(score float64, review string) (string, bool) {
	if math.IsInf(score, 1) {
		return "score is missing or not a decimal number", false
	}
	if score > a.settings.MaxValue {
		return fmt.Sprintf("score %s exceeds the maximum of %s", metadata.FormatDecimal(score), metadata.FormatDecimal(a.settings.MaxValue)), false
	}
	if a.settings.DescriptionRequired && strings.TrimSpace(review) == "" {
		return "a review description is required", false
	}
	return "", true
}

// Options returns the score button, the optional metadata edit, and return to pool.
func (a *ScoreReview) Options() []string {
	options := []string{action.OptionSubmitScore}
	if a.props != nil && a.props.Bool(config.KeyReviewerFileEdit, false) {
		options = append(options, action.OptionEditMetadata)
	}
	return append(options, action.OptionReturnToPool)
}

func (a *ScoreReview) AdvancedOptions() []string {
	return []string{action.OptionSubmitScore}
}

func (a *ScoreReview) AdvancedInfo(context.Context) ([]action.AdvancedInfo, error) {
	return []action.AdvancedInfo{action.ScoreReviewInfo{
		DescriptionRequired: a.settings.DescriptionRequired,
		MaxValue:            a.settings.MaxValue,
	}}, nil
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}
