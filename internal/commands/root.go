// Package commands wires the CLI surface: ingestion runs, the dashboard,
// status reporting, spending insights and the BigQuery export.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/gastos-tracker/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "gastos",
		Short:   "Credit card statement tracker",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newDashboardCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newInsightsCommand())
	rootCmd.AddCommand(newExportCommand())

	return rootCmd
}
