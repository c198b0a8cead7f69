// README: Entry point; loads config, wires stores and services, starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"colis/internal/config"
	httptransport "colis/internal/http"
	"colis/internal/infra"
	"colis/internal/modules/cashbook"
	"colis/internal/modules/cashclosing"
	"colis/internal/modules/debt"
	"colis/internal/modules/ledger"
	"colis/internal/modules/merchant"
	"colis/internal/modules/order"
	"colis/internal/modules/remittance"
	"colis/internal/modules/shortfall"
	"colis/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := infra.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	merchantStore := merchant.NewStore(dbPool)
	ledgerStore := ledger.NewStore(dbPool)
	debtStore := debt.NewStore(dbPool)
	cashbookStore := cashbook.NewStore(dbPool)
	orderStore := order.NewStore(dbPool)
	remittanceStore := remittance.NewStore(dbPool)
	shortfallStore := shortfall.NewStore(dbPool)
	closingStore := cashclosing.NewStore(dbPool)

	publisher := notify.NewPublisher(redisClient, log)
	dedupe := notify.NewDedupe(redisClient, time.Duration(cfg.Webhook.DedupeTTLHours)*time.Hour)

	ledgerSvc := ledger.NewService(dbPool, ledgerStore)
	cashbookSvc := cashbook.NewService(dbPool, cashbookStore)
	debtSvc := debt.NewService(dbPool, debtStore, ledgerStore)
	orderSvc := order.NewService(dbPool, orderStore, merchantStore, ledgerStore, debtStore, cashbookStore, publisher)
	remittanceSvc := remittance.NewService(dbPool, remittanceStore, ledgerStore, debtStore)
	shortfallSvc := shortfall.NewService(dbPool, shortfallStore, cashbookStore)
	closingSvc := cashclosing.NewService(dbPool, closingStore, ledgerStore, debtStore, shortfallStore, cashbookStore)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Order:       orderSvc,
		Ledger:      ledgerSvc,
		Debts:       debtSvc,
		Remittances: remittanceSvc,
		Shortfalls:  shortfallSvc,
		Cashbook:    cashbookSvc,
		Closings:    closingSvc,
		Dedupe:      dedupe,
		Log:         log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server")
	}
}
