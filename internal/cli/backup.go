package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/exifnotes/logbook/internal/backup"
)

func backupCommand(rt *Runtime) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the database to the configured target or a local file",
		Long: "Back up the database. Without --out the backup is stored on the configured\n" +
			"backup target (local directory, SFTP or FTP).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if out != "" {
				if err := backup.Export(cmd.Context(), app.DB.DB, out); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}

			svc, err := app.BackupService()
			if err != nil {
				return err
			}
			result, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s on %s (%d bytes, %s)\n",
				result.Name, result.Target, result.Size, result.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the backup to this file instead of the backup target")
	return cmd
}

func importCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "import BACKUP_PATH",
		Short: "Replace the database with a backup",
		Long: "Replace the database with a backup file. The server must not be running\n" +
			"against the same database.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := backup.Import(args[0], rt.Config.Database.Path, rt.Logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", args[0])
			return nil
		},
	}
}
