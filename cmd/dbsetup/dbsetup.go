// Package dbsetup implements the database setup and diagnostic command.
package dbsetup

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artidentifier/artid/internal/conf"
	"github.com/artidentifier/artid/internal/datastore"
	"github.com/artidentifier/artid/internal/diagnostics"
	"github.com/artidentifier/artid/internal/errors"
	"github.com/artidentifier/artid/internal/logging"
	"github.com/artidentifier/artid/internal/observability"
)

// Command creates the dbsetup command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		sel         diagnostics.Selection
		metricsFile string
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "dbsetup",
		Short: "Initialize and test the catalog database",
		Long: `Runs the requested steps in the order test, reset, setup, sample-data,
test-crud. A failed step is logged and the remaining steps still run; the
command fails if any step failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := sel.Steps()
			if len(steps) == 0 {
				return cmd.Help()
			}

			m, err := observability.NewMetrics()
			if err != nil {
				return err
			}

			// The process-wide engine lives until the process exits. Metrics
			// are attached by whichever caller creates it first.
			engine, err := datastore.Default(settings.Database, datastore.WithMetrics(m.Datastore))
			if err != nil {
				logging.Error("database connection failed", "error", err)
				return err
			}

			report := diagnostics.NewRunner(engine, diagnostics.WithMetrics(m.Datastore)).Run(cmd.Context(), steps)

			if !quiet {
				out, err := yaml.Marshal(report)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(out))
			}

			if metricsFile != "" {
				// already logged, the report stays authoritative
				_ = m.WriteTextfile(metricsFile)
			}

			if !report.OK() {
				return errors.Newf("some operations failed").
					Component("dbsetup").
					Category(errors.CategoryDatabase).
					Build()
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&sel.Setup, "setup", false, "Create missing tables and indexes")
	flags.BoolVar(&sel.Test, "test", false, "Test the database connection")
	flags.BoolVar(&sel.SampleData, "sample-data", false, "Create sample data")
	flags.BoolVar(&sel.TestCRUD, "test-crud", false, "Test CRUD operations")
	flags.BoolVar(&sel.All, "all", false, "Run test, setup, sample-data and test-crud")
	flags.BoolVar(&sel.Reset, "reset", false, "Drop all catalog tables and their data before setup")
	flags.StringVar(&metricsFile, "metrics-file", "", "Write datastore metrics in Prometheus text format to this file")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Do not print the run report")

	return cmd
}
