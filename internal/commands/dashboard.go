package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/gastos-tracker/internal/config"
	"github.com/rbarbosa/gastos-tracker/internal/dashboard"
	"github.com/rbarbosa/gastos-tracker/internal/logger"
	"github.com/rbarbosa/gastos-tracker/internal/store"
)

func newDashboardCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the spending dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel)

			if addr == "" {
				addr = cfg.DashboardAddr
			}

			st, err := store.Open(cfg.DataDir)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return dashboard.NewServer(st, log).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to GASTOS_DASHBOARD_ADDR)")

	return cmd
}
