package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/exporters"
	"github.com/exifnotes/logbook/internal/sorting"
)

func exportCommand(rt *Runtime) *cobra.Command {
	var (
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export ROLL_ID",
		Short: "Export a roll as ExifTool commands, CSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid roll id %q", args[0])
			}
			if !slices.Contains(exporters.Formats, exporters.Format(format)) {
				return fmt.Errorf("unknown export format %q", format)
			}

			app, err := rt.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			exporter, err := exporters.ForFormat(exporters.Format(format), app.ExifToolOptions())
			if err != nil {
				return err
			}

			roll, err := app.Rolls.GetRoll(id)
			if err != nil {
				return err
			}
			snapshot, err := app.Frames.Frames(id)
			if err != nil {
				return err
			}
			frames := slices.Clone(snapshot.Frames)
			sorting.SortFrames(frames, sorting.FrameSortCount)

			var buf bytes.Buffer
			result, err := exporter.Export(&buf, exporters.RollData{Roll: *roll, Frames: frames})
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			path := filepath.Join(outDir, exporters.Filename(exporter, *roll))
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}

			rt.Logger.Info("exported roll",
				zap.Int64("roll_id", id),
				zap.String("format", format),
				zap.Int("frames", result.FramesProcessed),
				zap.Int("skipped", result.FramesSkipped))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(exporters.FormatExifTool), "Export format: exiftool, csv or json")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory the export is written to")
	return cmd
}
