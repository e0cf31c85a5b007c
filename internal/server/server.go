package server

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/shieldtip/shieldtip-backend/internal/handler"
	"github.com/shieldtip/shieldtip-backend/internal/ledger"
	"github.com/shieldtip/shieldtip-backend/internal/monitoring"
	"github.com/shieldtip/shieldtip-backend/internal/oracle"
	"github.com/shieldtip/shieldtip-backend/internal/orchestrator"
	"github.com/shieldtip/shieldtip-backend/internal/shieldedrpc"
	"github.com/shieldtip/shieldtip-backend/internal/store"
	"github.com/shieldtip/shieldtip-backend/internal/swaprpc"
	"github.com/shieldtip/shieldtip-backend/internal/transport/http"
	"github.com/shieldtip/shieldtip-backend/internal/utils/config"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
	"github.com/shieldtip/shieldtip-backend/internal/walletrpc"
	"github.com/shieldtip/shieldtip-backend/internal/watcher"
)

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	db := store.NewPostgresStore(appConfig, logger)
	s := store.New()

	metricsRegistry := prometheus.NewRegistry()
	apiMetrics := monitoring.NewExternalAPIMetrics(metricsRegistry)
	httpMetrics := monitoring.NewHTTPMetrics(metricsRegistry)

	walletRPC := walletrpc.New(appConfig, logger)
	swapRPC := monitoring.NewCircuitBreakerSwapRPC(
		swaprpc.New(appConfig, logger),
		monitoring.DefaultCircuitBreakerConfig,
		apiMetrics,
		logger,
	)
	shieldedRPC := monitoring.NewCircuitBreakerShieldedRPC(
		shieldedrpc.New(appConfig, logger),
		monitoring.DefaultCircuitBreakerConfig,
		apiMetrics,
		logger,
	)
	priceOracle := oracle.New(appConfig, logger)

	ledgerSvc := ledger.New(db, s, logger)
	orchestratorSvc := orchestrator.New(
		walletRPC, swapRPC, shieldedRPC, priceOracle, ledgerSvc, appConfig, logger,
	)

	reconcileWatcher := watcher.New(db, s, ledgerSvc, shieldedRPC, appConfig, logger)

	c := cron.New()
	c.AddFunc(appConfig.Reconcile.Period, func() {
		if err := reconcileWatcher.ReconcilePendingTransactions(context.Background()); err != nil {
			logger.Error("reconciliation run failed", map[string]string{
				"error": err.Error(),
			})
		}
	})
	c.Start()
	defer c.Stop()

	h := handler.New(ledgerSvc, orchestratorSvc, db, metricsRegistry, logger)
	httpServer := http.NewHttpServer(appConfig, logger, h, httpMetrics)

	logger.Info("starting api server", map[string]string{
		"port": appConfig.ApiServer.Port,
	})
	if err := httpServer.Run(":" + appConfig.ApiServer.Port); err != nil {
		logger.Fatal("api server stopped", map[string]string{
			"error": err.Error(),
		})
	}
}
