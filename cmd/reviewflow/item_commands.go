package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reviewflow/internal/action"
	"reviewflow/internal/metadata"
	"reviewflow/internal/services"
	"reviewflow/internal/store"
)

func newItemCommand(ctx *commandContext) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Submit and review work items",
	}
	itemCmd.AddCommand(newItemSubmitCommand(ctx))
	itemCmd.AddCommand(newItemListCommand(ctx))
	itemCmd.AddCommand(newItemShowCommand(ctx))
	itemCmd.AddCommand(newItemOptionsCommand(ctx))
	itemCmd.AddCommand(newItemActCommand(ctx))
	return itemCmd
}

func newItemSubmitCommand(ctx *commandContext) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new item as --as and start its workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			actorCtx, actor, err := ctx.requireActor(cmd)
			if err != nil {
				return err
			}
			engine, err := ctx.engine()
			if err != nil {
				return err
			}
			item, err := ctx.store.CreateItem(actorCtx, actor.ID, title)
			if err != nil {
				return err
			}
			if strings.TrimSpace(title) != "" {
				if err := ctx.store.AddMetadata(actorCtx, item.ID, metadata.Title, "", title); err != nil {
					return err
				}
			}
			item, err = engine.Start(actorCtx, item.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted item %d at step %s\n", item.ID, item.Step)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Item title")
	return cmd
}

func newItemListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := make([]store.Status, 0, len(statuses))
			for _, raw := range statuses {
				status, ok := store.ParseStatus(strings.ToLower(strings.TrimSpace(raw)))
				if !ok {
					return services.Wrap(services.ErrValidation, "cli", "item list", fmt.Sprintf("unknown status %q", raw), nil)
				}
				filter = append(filter, status)
			}
			return ctx.withStore(func(st *store.Store) error {
				items, err := st.ListItems(cmd.Context(), filter...)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No items")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.Title,
						string(item.Status),
						orDefault(item.Step, "-"),
						item.SubmitterID.String(),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Status", "Step", "Submitter"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (active, returned, archived)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

type itemDetail struct {
	Item     *store.Item            `json:"item"`
	Metadata []store.MetadataValue  `json:"metadata"`
	Roles    []store.RoleAssignment `json:"roles"`
}

func newItemShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an item with its metadata and role assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				detail, err := loadItemDetail(cmd.Context(), st, id)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, detail)
				}
				out := cmd.OutOrStdout()
				item := detail.Item
				fmt.Fprintf(out, "Item %d: %s\n", item.ID, orDefault(item.Title, "(untitled)"))
				fmt.Fprintf(out, "Status: %s  Step: %s  Submitter: %s\n", item.Status, orDefault(item.Step, "-"), item.SubmitterID)
				if len(detail.Metadata) > 0 {
					rows := make([][]string, 0, len(detail.Metadata))
					for _, m := range detail.Metadata {
						rows = append(rows, []string{m.Field, m.Language, m.Value})
					}
					fmt.Fprintln(out, renderTable([]string{"Field", "Lang", "Value"}, rows, nil))
				}
				if len(detail.Roles) > 0 {
					rows := make([][]string, 0, len(detail.Roles))
					for _, r := range detail.Roles {
						holder := ""
						if r.PersonID != nil {
							holder = "person " + r.PersonID.String()
						} else if r.GroupID != nil {
							holder = "group " + r.GroupID.String()
						}
						rows = append(rows, []string{r.RoleID, holder})
					}
					fmt.Fprintln(out, renderTable([]string{"Role", "Holder"}, rows, nil))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func loadItemDetail(ctx context.Context, st *store.Store, id int64) (*itemDetail, error) {
	item, err := st.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "cli", "item show", fmt.Sprintf("item %d", id), nil)
	}
	values, err := st.ListMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	roles, err := st.RolesForItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return &itemDetail{Item: item, Metadata: values, Roles: roles}, nil
}

func newItemOptionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "options <id>",
		Short: "Show the options available at an item's current step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			engine, err := ctx.engine()
			if err != nil {
				return err
			}
			actorCtx, err := ctx.actorContext(cmd)
			if err != nil {
				return err
			}
			view, err := engine.Options(actorCtx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Step: %s (action %s, role %s)\n", view.Step.ID, view.Step.Action, orDefault(view.Step.Role, "automatic"))
			fmt.Fprintf(out, "Options: %s\n", strings.Join(view.Options, ", "))
			if len(view.AdvancedInfo) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(view.AdvancedInfo))
			for _, info := range view.AdvancedInfo {
				fields := make([]string, 0, len(info.Fields()))
				for _, f := range info.Fields() {
					fields = append(fields, f.Name+"="+f.Value)
				}
				rows = append(rows, []string{info.Option(), strings.Join(fields, " "), action.Fingerprint(info)})
			}
			fmt.Fprintln(out, renderTable([]string{"Option", "Settings", "Fingerprint"}, rows, nil))
			return nil
		},
	}
}

func newItemActCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "act <id> [name=value]...",
		Short: "Perform the current step as --as",
		Long: "Perform the current step as --as. Parameters are name=value pairs; a bare\n" +
			"name such as submit_score selects the button pressed.",
		Example: "  reviewflow --as reviewer@example.org item act 7 submit_score score=8.5 review=\"Well argued\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			actorCtx, _, err := ctx.requireActor(cmd)
			if err != nil {
				return err
			}
			engine, err := ctx.engine()
			if err != nil {
				return err
			}
			res, err := engine.Perform(actorCtx, id, action.ParseParams(args[1:]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Outcome: %s\n", action.Describe(res.Outcome))
			switch {
			case res.Item.Status != store.StatusActive:
				fmt.Fprintf(out, "Item %d is now %s\n", res.Item.ID, res.Item.Status)
			case res.Advanced:
				fmt.Fprintf(out, "Item %d moved from %s to %s\n", res.Item.ID, res.Step, res.Item.Step)
			default:
				fmt.Fprintf(out, "Item %d remains at %s\n", res.Item.ID, res.Item.Step)
			}
			if failure, ok := res.Outcome.(action.Failure); ok {
				return services.Wrap(services.ErrValidation, "cli", "item act", failure.Reason, nil)
			}
			return nil
		},
	}
}
