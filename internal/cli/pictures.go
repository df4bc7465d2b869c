package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func exportPicturesCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "export-pictures ZIP_PATH",
		Short: "Write every complementary picture into a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			path := args[0]
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create archive: %w", err)
			}
			missing, err := app.Pictures.ExportZip(cmd.Context(), f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(path)
				return err
			}
			for _, name := range missing {
				fmt.Fprintf(cmd.ErrOrStderr(), "missing: %s\n", name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func cleanupPicturesCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-pictures",
		Short: "Delete stored pictures no frame refers to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			deleted, err := app.Pictures.CleanupUnusedPictures(cmd.Context())
			if err != nil {
				return err
			}
			rt.Logger.Info("cleaned up pictures", zap.Int("deleted", len(deleted)))
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d unused pictures\n", len(deleted))
			return nil
		},
	}
}
