package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/gastos-tracker/internal/bqexport"
	"github.com/rbarbosa/gastos-tracker/internal/config"
	"github.com/rbarbosa/gastos-tracker/internal/logger"
	"github.com/rbarbosa/gastos-tracker/internal/store"
)

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the ledger to BigQuery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.BQProject == "" {
				return fmt.Errorf("export requires GASTOS_BQ_PROJECT")
			}
			log := logger.New(cfg.LogLevel)

			st, err := store.Open(cfg.DataDir)
			if err != nil {
				return err
			}
			ledger, err := st.Load()
			if err != nil {
				return err
			}

			exporter := bqexport.NewExporter(cfg.BQProject, cfg.BQDataset, cfg.BQTable, log)
			inserted, err := exporter.Export(cmd.Context(), ledger.Transactions)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exportados %d registros para %s.%s.%s\n",
				inserted, cfg.BQProject, cfg.BQDataset, cfg.BQTable)
			return nil
		},
	}
}
