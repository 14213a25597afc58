package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/gastos-tracker/internal/config"
	"github.com/rbarbosa/gastos-tracker/internal/model"
	"github.com/rbarbosa/gastos-tracker/internal/store"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show ledger totals and processing state",
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
			processed, err := st.ProcessedFiles()
			if err != nil {
				return err
			}

			stats := ledger.Summarize()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Ledger: %s\n", st.Path())
			fmt.Fprintf(out, "Registros: %d\n", stats.Records)
			fmt.Fprintf(out, "Total: R$ %s\n", stats.Total.StringFixed(2))
			fmt.Fprintf(out, "Sem categoria: %d\n", stats.Unclassified)
			fmt.Fprintf(out, "Arquivos processados: %d\n", len(processed))

			banks := make([]string, 0, len(stats.ByBank))
			for bank := range stats.ByBank {
				banks = append(banks, string(bank))
			}
			sort.Strings(banks)
			for _, bank := range banks {
				fmt.Fprintf(out, "  %s: %d registros\n", bank, stats.ByBank[model.Bank(bank)])
			}

			if len(stats.Periods) > 0 {
				fmt.Fprintf(out, "Períodos: %d\n", len(stats.Periods))
			}
			return nil
		},
	}
}
