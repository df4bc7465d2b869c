// Package cli implements the logbook command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/config"
	"github.com/exifnotes/logbook/internal/entrypoint"
	"github.com/exifnotes/logbook/internal/logging"
)

// Runtime carries the configuration and logger resolved before a subcommand
// runs.
type Runtime struct {
	Version string
	Config  *config.Config
	Logger  *zap.Logger

	viper      *viper.Viper
	configFile string
}

// RootCommand creates and returns the root command.
func RootCommand(version string) *cobra.Command {
	rt := &Runtime{Version: version, viper: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:           "logbook",
		Short:         "Film photography logbook",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := setupFlags(rootCmd, rt); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		serveCommand(rt),
		rollsCommand(rt),
		exportCommand(rt),
		exportPicturesCommand(rt),
		cleanupPicturesCommand(rt),
		backupCommand(rt),
		importCommand(rt),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rt.initialize()
	}

	return rootCmd
}

func setupFlags(rootCmd *cobra.Command, rt *Runtime) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rt.configFile, "config", "c", "", "Path to a configuration file (yaml, toml or json)")
	flags.String("db", config.DefaultDatabasePath, "Path to the logbook database")
	flags.String("pictures-dir", config.DefaultPicturesDir, "Directory holding complementary pictures")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")

	for key, flag := range map[string]string{
		"database_path": "db",
		"pictures_dir":  "pictures-dir",
		"log_level":     "log-level",
	} {
		if err := rt.viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}

func (rt *Runtime) initialize() error {
	cfg, err := config.Load(rt.viper, rt.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	rt.Config = cfg
	rt.Logger = logger
	return nil
}

// openApp opens the database and loads the services.
func (rt *Runtime) openApp() (*entrypoint.App, error) {
	app, err := entrypoint.NewApp(rt.Config, rt.Logger)
	if err != nil {
		return nil, err
	}
	if err := app.Load(); err != nil {
		app.Close()
		return nil, fmt.Errorf("load data: %w", err)
	}
	return app, nil
}

// Execute runs the root command.
func Execute(version string) error {
	return RootCommand(version).Execute()
}
