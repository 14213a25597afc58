package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/gastos-tracker/internal/config"
	"github.com/rbarbosa/gastos-tracker/internal/insights"
	"github.com/rbarbosa/gastos-tracker/internal/store"
)

func newInsightsCommand() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Summarize spending and ask the model for an analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DataDir)
			if err != nil {
				return err
			}
			ledger, err := st.Load()
			if err != nil {
				return err
			}
			if len(ledger.Transactions) == 0 {
				return fmt.Errorf("ledger is empty, run an ingestion first")
			}

			summary := insights.BuildSummary(ledger.Transactions)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, insights.Render(summary))

			if offline {
				return nil
			}

			analysis, err := insights.Advise(cmd.Context(), cfg.GeminiModel, summary)
			if err != nil {
				return fmt.Errorf("generating analysis: %w", err)
			}
			fmt.Fprintln(out, "Análise:")
			fmt.Fprintln(out, analysis)
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "only print the local summary, skip the model call")

	return cmd
}
