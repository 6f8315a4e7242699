package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/artidentifier/artid/cmd/config"
	"github.com/artidentifier/artid/cmd/dbsetup"
	"github.com/artidentifier/artid/internal/conf"
	"github.com/artidentifier/artid/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "artid",
		Short:         "Artwork identifier catalog tools",
		Version:       settings.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		dbsetup.Command(settings),
		config.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// flags take precedence over the config file and environment
		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
			settings.Database.Debug = true
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Enable debug output and SQL logging")
	rootCmd.PersistentFlags().StringVar(&settings.Database.URL, "database-url", settings.Database.URL, "Database connection URL, overrides the configuration")
}
