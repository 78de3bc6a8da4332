package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewflow/internal/store"
)

func newPersonCommand(ctx *commandContext) *cobra.Command {
	personCmd := &cobra.Command{
		Use:   "person",
		Short: "Manage people",
	}
	personCmd.AddCommand(newPersonAddCommand(ctx))
	personCmd.AddCommand(newPersonListCommand(ctx))
	return personCmd
}

func newPersonAddCommand(ctx *commandContext) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Register a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				person, err := st.CreatePerson(cmd.Context(), args[0], name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", person.Email, person.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	return cmd
}

func newPersonListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List people",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				persons, err := st.ListPersons(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, persons)
				}
				if len(persons) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No people registered")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Email", "Name"}, personRows(persons), nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func personRows(persons []store.Person) [][]string {
	rows := make([][]string, 0, len(persons))
	for _, p := range persons {
		rows = append(rows, []string{p.ID.String(), p.Email, p.Name})
	}
	return rows
}
