package workflow

import (
	"log/slog"

	"reviewflow/internal/config"
	"reviewflow/internal/metrics"
	"reviewflow/internal/processing"
	"reviewflow/internal/store"
)

// ReviewEngine is an Engine with the review actions registered, plus the
// reviewer pool cache they share.
type ReviewEngine struct {
	*Engine
	Pool *processing.ReviewerPool
}

// NewReviewEngine loads the configured step graph and registers the reviewer
// selection, score intake, and score evaluation actions against st.
func NewReviewEngine(cfg *config.Config, st *store.Store, recorder *metrics.Recorder, logger *slog.Logger) (*ReviewEngine, error) {
	def, err := LoadDefinition(cfg)
	if err != nil {
		return nil, err
	}
	engine := NewEngine(cfg, def, st, recorder, logger)
	props := cfg.Properties()
	pool := processing.NewReviewerPool(st, props, logger)

	engine.Register(processing.NewSelectReviewer(processing.SelectReviewerDeps{
		Identity: st,
		Roles:    st,
		Pool:     pool,
		Props:    props,
		Observer: recorder,
		Logger:   logger,
	}))
	engine.Register(processing.NewScoreReview(processing.ScoreReviewSettings{
		MaxValue:            cfg.ScoreReview.MaxValue,
		DescriptionRequired: cfg.ScoreReview.DescriptionRequired,
	}, st, props, logger))
	engine.Register(processing.NewScoreEvaluation(cfg.Evaluation.MinimumAcceptanceScore, st, engine, logger))

	return &ReviewEngine{Engine: engine, Pool: pool}, nil
}
