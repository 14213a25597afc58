package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/gastos-tracker/internal/backup"
	"github.com/rbarbosa/gastos-tracker/internal/classify"
	"github.com/rbarbosa/gastos-tracker/internal/config"
	"github.com/rbarbosa/gastos-tracker/internal/dashboard"
	"github.com/rbarbosa/gastos-tracker/internal/drive"
	"github.com/rbarbosa/gastos-tracker/internal/logger"
	"github.com/rbarbosa/gastos-tracker/internal/pipeline"
	"github.com/rbarbosa/gastos-tracker/internal/store"
)

func newRunCommand() *cobra.Command {
	var withDrive bool
	var withDashboard bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest statement CSVs into the ledger and classify new records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := store.Open(cfg.DataDir)
			if err != nil {
				return err
			}

			runner := &pipeline.Runner{
				Store:      st,
				FaturasDir: cfg.FaturasDir,
				Log:        log,
			}

			classifier, err := classify.NewGeminiClassifier(ctx, cfg.GeminiModel, cfg.ClassifyTimeout)
			if err != nil {
				// Records stay pending and are classified on a later run.
				log.Warn().Err(err).Msg("classifier unavailable, skipping classification")
			} else {
				runner.Classifier = classifier
			}

			if withDrive {
				if cfg.DriveFolderID == "" {
					return fmt.Errorf("--drive requires GASTOS_DRIVE_FOLDER_ID")
				}
				source, err := drive.NewSource(ctx, cfg.DriveFolderID, log)
				if err != nil {
					return err
				}
				runner.Source = source
			}

			if cfg.BackupBucket != "" {
				runner.Snapshotter = backup.NewUploader(cfg.BackupBucket, log)
			}

			report, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			printReport(cmd, report)

			if withDashboard {
				srv := dashboard.NewServer(st, log)
				return srv.ListenAndServe(ctx, cfg.DashboardAddr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withDrive, "drive", false, "download new statements from Google Drive first")
	cmd.Flags().BoolVar(&withDashboard, "dashboard", false, "serve the dashboard after the run")

	return cmd
}

func printReport(cmd *cobra.Command, r *pipeline.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Execução %s\n", r.RunID)
	if len(r.Downloaded) > 0 {
		fmt.Fprintf(out, "  Baixados do Drive: %d\n", len(r.Downloaded))
	}
	for _, f := range r.Files {
		if f.Err != nil {
			fmt.Fprintf(out, "  %s: FALHOU (%v)\n", f.Name, f.Err)
			continue
		}
		fmt.Fprintf(out, "  %s: %d linhas", f.Name, f.Rows)
		if f.BadRows > 0 {
			fmt.Fprintf(out, " (%d ignoradas)", f.BadRows)
		}
		fmt.Fprintln(out)
	}
	if r.AlreadyProcessed > 0 {
		fmt.Fprintf(out, "  Já processados: %d\n", r.AlreadyProcessed)
	}
	for _, name := range r.SkippedNames {
		fmt.Fprintf(out, "  %s: formato desconhecido, ignorado\n", name)
	}
	fmt.Fprintf(out, "  Novos registros: %d (duplicados: %d)\n", r.NewRecords, r.Duplicates)
	if r.Classified > 0 || r.ClassifyFailed > 0 {
		fmt.Fprintf(out, "  Classificados: %d (falhas: %d)\n", r.Classified, r.ClassifyFailed)
	}
	if r.SnapshotObject != "" {
		fmt.Fprintf(out, "  Backup: %s\n", r.SnapshotObject)
	}
}
