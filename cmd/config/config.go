// Package config implements commands that show and create the configuration file.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artidentifier/artid/internal/conf"
	"github.com/artidentifier/artid/internal/datastore"
)

// Command creates the config parent command. Without a subcommand it prints
// the resolved configuration with secrets masked.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			redacted := settings.Redacted()
			out, err := yaml.Marshal(&redacted)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))

			target, err := datastore.ParseTarget(datastore.ResolveConnectionString(settings.Database))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# database backend: %s (%s)\n", target.Backend, target.Redacted)
			return nil
		},
	}

	cmd.AddCommand(initCommand())
	return cmd
}

func initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := conf.ConfigFileName
			if len(args) == 1 {
				path = args[0]
			}
			if err := conf.WriteDefaultConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
