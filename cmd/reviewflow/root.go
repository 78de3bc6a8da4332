package main

import (
	"errors"

	"github.com/spf13/cobra"

	"reviewflow/internal/services"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var actorFlag string
	var statsFlag bool

	ctx := newCommandContext(&configFlag, &actorFlag)

	rootCmd := &cobra.Command{
		Use:           "reviewflow",
		Short:         "Scored review workflow CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			if statsFlag && !shouldSkipConfig(cmd) {
				return printStats(cmd, ctx)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "as", "", "Act as this person (UUID or email)")
	rootCmd.PersistentFlags().BoolVar(&statsFlag, "stats", false, "Print metrics recorded by the command")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newPersonCommand(ctx))
	rootCmd.AddCommand(newGroupCommand(ctx))
	rootCmd.AddCommand(newAdminCommand(ctx))
	rootCmd.AddCommand(newItemCommand(ctx))
	rootCmd.AddCommand(newAuthzCommand(ctx))
	rootCmd.AddCommand(newHealthCommand(ctx))

	return rootCmd
}

// exitCode maps error classes onto distinct process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConfiguration):
		return 2
	case errors.Is(err, services.ErrPermission):
		return 3
	case errors.Is(err, services.ErrNotFound):
		return 4
	case errors.Is(err, services.ErrConflict):
		return 5
	default:
		return 1
	}
}
