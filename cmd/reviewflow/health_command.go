package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewflow/internal/store"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check workflow actions and item counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.engine()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rows := [][]string{}
			ready := true
			for _, h := range engine.Health(cmd.Context()) {
				rows = append(rows, []string{h.Name, yesNo(h.Ready), h.Detail})
				ready = ready && h.Ready
			}
			fmt.Fprintln(out, renderTable([]string{"Action", "Ready", "Detail"}, rows, nil))

			stats, err := ctx.store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			statRows := make([][]string, 0, 3)
			for _, status := range []store.Status{store.StatusActive, store.StatusReturned, store.StatusArchived} {
				statRows = append(statRows, []string{string(status), fmt.Sprintf("%d", stats[status])})
			}
			fmt.Fprintln(out, renderTable([]string{"Status", "Items"}, statRows, []columnAlignment{alignLeft, alignRight}))
			version, err := ctx.store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Schema version: %d\n", version)
			if !ready {
				return fmt.Errorf("one or more workflow actions are not ready")
			}
			return nil
		},
	}
}
