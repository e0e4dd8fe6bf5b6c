package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Spok95/print-cashier/internal/checkout"
	"github.com/Spok95/print-cashier/internal/dashboard"
	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/pricing"
	httpx "github.com/Spok95/print-cashier/internal/infra/http"
	"github.com/Spok95/print-cashier/internal/infra/notify"
	"github.com/Spok95/print-cashier/internal/jobs"
	"github.com/Spok95/print-cashier/internal/service"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the cashier HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := load(opts)
			if err != nil {
				return err
			}
			return e.serve(cmd.Context())
		},
	}
}

func (e *env) serve(parent context.Context) error {
	log := e.log
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := e.openStore(ctx)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return err
	}
	defer func() { _ = st.Close() }()
	log.Info("db connected", "driver", e.cfg.Storage.Driver)

	cat, err := pricing.Load(e.cfg.Prices.Path)
	if err != nil {
		log.Error("price catalogue load failed", "path", e.cfg.Prices.Path, "err", err)
		return err
	}
	prices, err := pricing.NewProvider(cat)
	if err != nil {
		return err
	}

	tg, err := notify.New(e.cfg.Telegram.Token, e.cfg.Recipients(), log)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return err
	}

	ledger := inventory.NewLedger(log)
	dash := dashboard.New(st, prices, log)
	machine := jobs.NewMachine(st, prices, log, dash, tg)
	finalizer := checkout.NewFinalizer(st, ledger, prices, log, tg)
	finalizer.Subscribe(dash)
	desk := checkout.NewDesk(st, prices, finalizer, log)

	api := httpx.NewHandler(log, httpx.Deps{
		Receipts:  st,
		Jobs:      machine,
		Dashboard: dash,
		Desk:      desk,
		Customers: service.NewCustomers(st, log),
		Stock:     service.NewInventory(st, ledger, log),
		Expenses:  service.NewExpenses(st, log, dash),
	})
	srv := httpx.New(e.cfg.HTTP.Addr, e.cfg.Metrics.Enabled, api)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", e.cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
	return nil
}
