package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewflow/internal/authz"
)

func newAuthzCommand(ctx *commandContext) *cobra.Command {
	authzCmd := &cobra.Command{
		Use:   "authz",
		Short: "Query authorization decisions",
	}
	var jsonOut bool
	canRead := &cobra.Command{
		Use:   "can-read-group <group>",
		Short: "Report whether --as may read a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorCtx, err := ctx.actorContext(cmd)
			if err != nil {
				return err
			}
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			group, err := resolveGroup(actorCtx, st, args[0])
			if err != nil {
				return err
			}
			evaluator, err := ctx.evaluator()
			if err != nil {
				return err
			}
			decision := evaluator.Decide(actorCtx, authz.Target{Type: authz.ResourceGroup, ID: group.ID}, authz.PermissionRead)
			if jsonOut {
				return writeJSON(cmd, decision)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", verdict(out, decision.Allowed), decision.Reason)
			return nil
		},
	}
	canRead.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	authzCmd.AddCommand(canRead)
	return authzCmd
}
