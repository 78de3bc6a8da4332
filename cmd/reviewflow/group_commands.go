package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"reviewflow/internal/privilege"
	"reviewflow/internal/store"
)

func newGroupCommand(ctx *commandContext) *cobra.Command {
	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}
	groupCmd.AddCommand(newGroupAddCommand(ctx))
	groupCmd.AddCommand(newGroupAddMemberCommand(ctx))
	groupCmd.AddCommand(newGroupRenameCommand(ctx))
	groupCmd.AddCommand(newGroupListCommand(ctx))
	groupCmd.AddCommand(newGroupMembersCommand(ctx))
	return groupCmd
}

func newGroupAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				var group *store.Group
				err := privilege.Run(cmd.Context(), func(ctx context.Context) error {
					var err error
					group, err = st.CreateGroup(ctx, args[0])
					return err
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added group %s (%s)\n", group.Name, group.ID)
				return nil
			})
		},
	}
}

func newGroupAddMemberCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-member <group> <person>...",
		Short: "Add people to a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				group, err := resolveGroup(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				persons := make([]*store.Person, 0, len(args)-1)
				for _, ref := range args[1:] {
					person, err := resolvePerson(cmd.Context(), st, ref)
					if err != nil {
						return err
					}
					persons = append(persons, person)
				}
				err = privilege.Run(cmd.Context(), func(ctx context.Context) error {
					for _, person := range persons {
						if err := st.AddMember(ctx, group.ID, person.ID); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d member(s) to %s\n", len(persons), group.Name)
				return nil
			})
		},
	}
}

func newGroupRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <group> <new-name>",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				group, err := resolveGroup(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				err = privilege.Run(cmd.Context(), func(ctx context.Context) error {
					return st.SetGroupName(ctx, group.ID, args[1])
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", group.Name, args[1])
				return nil
			})
		},
	}
}

func newGroupListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				groups, err := st.ListGroups(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, groups)
				}
				rows := make([][]string, 0, len(groups))
				for _, g := range groups {
					rows = append(rows, []string{g.ID.String(), g.Name, yesNo(g.Special)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Special"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newGroupMembersCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "members <group>",
		Short: "List the members of a group visible to --as",
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
			members, err := evaluator.GroupMembers(actorCtx, group.ID)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, members)
			}
			if len(members) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no members\n", group.Name)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Email", "Name"}, personRows(members), nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
