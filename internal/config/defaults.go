package config

const (
	defaultDataDir                = "~/.local/share/reviewflow"
	defaultLogDir                 = "~/.local/share/reviewflow/logs"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLockTimeoutMillis      = 2000
	defaultReviewManagersGroup    = "reviewmanagers"
	defaultScoreMaxValue          = 10
	defaultMinimumAcceptanceScore = 7
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Workflow: Workflow{
			LockTimeoutMillis: defaultLockTimeoutMillis,
		},
		Review: Review{
			ReviewManagersGroup: defaultReviewManagersGroup,
		},
		ScoreReview: ScoreReview{
			MaxValue: defaultScoreMaxValue,
		},
		Evaluation: Evaluation{
			MinimumAcceptanceScore: defaultMinimumAcceptanceScore,
		},
		Authorization: Authorization{
			CommunityAdminManageAccounts:  true,
			CollectionAdminManageAccounts: true,
		},
	}
}
