package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"reviewflow/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set review.reviewer_group to the group reviewers are chosen from.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asTOML {
				data, err := toml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("encode config: %w", err)
				}
				_, err = out.Write(data)
				return err
			}

			props := cfg.Properties()
			source := cfg.Source.Path
			if !cfg.Source.Found {
				source += " (not found, using defaults)"
			}
			rows := [][]string{
				{"config file", source},
				{"database", cfg.DatabasePath()},
				{"log dir", cfg.Paths.LogDir},
				{"workflow definition", orDefault(cfg.Workflow.DefinitionPath, "(embedded)")},
				{config.KeyReviewerGroup, orDefault(props.String(config.KeyReviewerGroup), "(unrestricted)")},
				{config.KeyReviewManagersGroup, props.String(config.KeyReviewManagersGroup)},
				{config.KeyReviewerFileEdit, yesNo(props.Bool(config.KeyReviewerFileEdit, false))},
				{config.KeyAdvisorRequired, yesNo(props.Bool(config.KeyAdvisorRequired, false))},
				{"score_review.max_value", fmt.Sprintf("%.2f", cfg.ScoreReview.MaxValue)},
				{"score_review.description_required", yesNo(cfg.ScoreReview.DescriptionRequired)},
				{"evaluation.minimum_acceptance_score", fmt.Sprintf("%.2f", cfg.Evaluation.MinimumAcceptanceScore)},
				{config.KeyCommunityAdminAccounts, yesNo(props.Bool(config.KeyCommunityAdminAccounts, false))},
				{config.KeyCollectionAdminAccount, yesNo(props.Bool(config.KeyCollectionAdminAccount, false))},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTOML, "toml", false, "Print the configuration as TOML")
	return cmd
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
