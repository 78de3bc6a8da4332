package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reviewflow/internal/services"
	"reviewflow/internal/store"
)

func newAdminCommand(ctx *commandContext) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrators",
	}
	adminCmd.AddCommand(&cobra.Command{
		Use:   "grant <person> <site|community|collection>",
		Short: "Grant an administrator scope",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, ok := store.ParseAdminScope(strings.ToLower(strings.TrimSpace(args[1])))
			if !ok {
				return services.Wrap(services.ErrValidation, "cli", "admin grant", fmt.Sprintf("unknown scope %q", args[1]), nil)
			}
			return ctx.withStore(func(st *store.Store) error {
				person, err := resolvePerson(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				if err := st.GrantAdmin(cmd.Context(), person.ID, scope); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now a %s administrator\n", person.Email, scope)
				return nil
			})
		},
	})
	return adminCmd
}
