// Package cli: команды процесса cashier.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Spok95/print-cashier/internal/config"
	"github.com/Spok95/print-cashier/internal/infra/logger"
	"github.com/Spok95/print-cashier/internal/store"
	"github.com/Spok95/print-cashier/internal/store/postgres"
	"github.com/Spok95/print-cashier/internal/store/sqlite"
)

type RootOptions struct {
	ConfigPath string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "cashier",
		Short:         "Print-shop cashier core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config/example.yaml", "path to config file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewPricesCommand(opts))
	return cmd
}

// env: то, что нужно почти каждой команде.
type env struct {
	cfg config.Config
	log *slog.Logger
}

func load(opts *RootOptions) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.App.Timezone != "" {
		loc, err := time.LoadLocation(cfg.App.Timezone)
		if err != nil {
			return nil, fmt.Errorf("timezone %q: %w", cfg.App.Timezone, err)
		}
		time.Local = loc
	}
	return &env{cfg: cfg, log: logger.New(cfg.App.Env)}, nil
}

// openStore подключает хранилище из конфига. SQLite мигрирует при открытии,
// Postgres: отдельным шагом.
func (e *env) openStore(ctx context.Context) (store.Store, error) {
	switch e.cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := postgres.Migrate(ctx, e.cfg.Postgres.DSN); err != nil {
			return nil, err
		}
		e.log.Info("migrations applied")
		st, err := postgres.Connect(ctx, e.cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		st, err := sqlite.Open(ctx, e.cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}
