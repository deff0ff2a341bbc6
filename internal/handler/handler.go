package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/riftresearch/swap-coordinator/internal/assets"
	"github.com/riftresearch/swap-coordinator/internal/baserpc"
	"github.com/riftresearch/swap-coordinator/internal/btcrpc"
	"github.com/riftresearch/swap-coordinator/internal/executor"
	"github.com/riftresearch/swap-coordinator/internal/handler/health"
	"github.com/riftresearch/swap-coordinator/internal/handler/metrics"
	"github.com/riftresearch/swap-coordinator/internal/handler/swaphistory"
	"github.com/riftresearch/swap-coordinator/internal/handler/swapsession"
	historyService "github.com/riftresearch/swap-coordinator/internal/history"
	"github.com/riftresearch/swap-coordinator/internal/orderwatch"
	"github.com/riftresearch/swap-coordinator/internal/quote"
	"github.com/riftresearch/swap-coordinator/internal/session"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

type Handler struct {
	SessionHandler swapsession.IHandler
	HistoryHandler swaphistory.IHandler
	HealthHandler  health.IHealthHandler
	MetricsHandler *metrics.MetricsHandler
}

func New(appConfig *config.AppConfig, logger *logger.Logger,
	registry *session.Registry,
	quoteSvc quote.IQuoteService,
	exec executor.IExecutor,
	watchers *orderwatch.Registry,
	catalog *assets.Catalog,
	hist historyService.IHistory,
	baseRpc baserpc.IBaseRpc,
	btcRpc btcrpc.IBtcRpc,
	db *gorm.DB,
	metricsRegistry *prometheus.Registry) *Handler {
	return &Handler{
		SessionHandler: swapsession.New(registry, quoteSvc, exec, watchers, catalog, baseRpc, appConfig, logger),
		HistoryHandler: swaphistory.New(hist, logger),
		HealthHandler:  health.New(appConfig, logger, db, btcRpc, baseRpc),
		MetricsHandler: metrics.NewMetricsHandler(metricsRegistry),
	}
}
