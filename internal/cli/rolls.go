package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/exifnotes/logbook/internal/database/rolls"
)

func rollsCommand(rt *Runtime) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "rolls",
		Short: "List rolls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := rolls.FilterMode(filter)
			if !mode.Valid() {
				return fmt.Errorf("unknown filter %q", filter)
			}
			app, err := rt.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Rolls.SetFilter(rolls.RollFilter{Mode: mode}); err != nil {
				return err
			}
			snapshot := app.Rolls.Snapshot()
			if len(snapshot.Rolls) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rolls")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tNAME\tFRAMES")
			for _, roll := range snapshot.Rolls {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", roll.ID, roll.Date.Format("2006-01-02"), roll.Name, roll.FrameCount)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(rolls.FilterActive), "Rolls to list: active, archived, favorites or all")
	return cmd
}
