package cli

import (
	"github.com/spf13/cobra"

	"github.com/exifnotes/logbook/internal/entrypoint"
)

func serveCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(rt.Config, rt.Version, rt.Logger)
		},
	}
}
