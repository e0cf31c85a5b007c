package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/shieldtip/shieldtip-backend/internal/handler/health"
	"github.com/shieldtip/shieldtip-backend/internal/handler/metrics"
	"github.com/shieldtip/shieldtip-backend/internal/handler/stats"
	"github.com/shieldtip/shieldtip-backend/internal/handler/tip"
	"github.com/shieldtip/shieldtip-backend/internal/handler/transaction"
	"github.com/shieldtip/shieldtip-backend/internal/ledger"
	"github.com/shieldtip/shieldtip-backend/internal/orchestrator"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

type Handler struct {
	TransactionHandler transaction.IHandler
	StatsHandler       stats.IHandler
	TipHandler         tip.IHandler
	HealthHandler      health.IHealthHandler
	MetricsHandler     *metrics.MetricsHandler
}

func New(
	ledgerSvc ledger.ILedger,
	orchestratorSvc orchestrator.IOrchestrator,
	db *gorm.DB,
	metricsRegistry *prometheus.Registry,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		TransactionHandler: transaction.New(ledgerSvc, logger),
		StatsHandler:       stats.New(ledgerSvc, logger),
		TipHandler:         tip.New(orchestratorSvc, logger),
		HealthHandler:      health.New(db, logger),
		MetricsHandler:     metrics.NewMetricsHandler(metricsRegistry),
	}
}
