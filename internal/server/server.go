package server

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/riftresearch/swap-coordinator/internal/aggrpc"
	"github.com/riftresearch/swap-coordinator/internal/assets"
	"github.com/riftresearch/swap-coordinator/internal/baserpc"
	"github.com/riftresearch/swap-coordinator/internal/btcrpc"
	"github.com/riftresearch/swap-coordinator/internal/executor"
	"github.com/riftresearch/swap-coordinator/internal/handler"
	"github.com/riftresearch/swap-coordinator/internal/history"
	"github.com/riftresearch/swap-coordinator/internal/monitoring"
	"github.com/riftresearch/swap-coordinator/internal/orderwatch"
	"github.com/riftresearch/swap-coordinator/internal/otcrpc"
	"github.com/riftresearch/swap-coordinator/internal/quote"
	"github.com/riftresearch/swap-coordinator/internal/rfqrpc"
	"github.com/riftresearch/swap-coordinator/internal/session"
	"github.com/riftresearch/swap-coordinator/internal/store"
	pgstore "github.com/riftresearch/swap-coordinator/internal/store/postgres"
	"github.com/riftresearch/swap-coordinator/internal/transport/http"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	db := pgstore.New(appConfig, logger)
	s := store.New()

	metricsRegistry := prometheus.NewRegistry()
	apiMetrics := monitoring.NewExternalAPIMetrics()
	apiMetrics.MustRegister(metricsRegistry)

	btcRpc := btcrpc.New(appConfig, logger)
	baseRpc, err := baserpc.New(appConfig, logger)
	if err != nil {
		logger.Error("Failed to init base rpc", map[string]string{
			"error": err.Error(),
		})
		return
	}

	aggRpc := monitoring.NewCircuitBreakerAggRpc(
		aggrpc.New(appConfig, logger),
		monitoring.CircuitBreakerConfigs["aggregator"], apiMetrics, logger)
	rfqRpc := monitoring.NewCircuitBreakerRfqRpc(
		rfqrpc.New(appConfig, logger),
		monitoring.CircuitBreakerConfigs["rfq"], apiMetrics, logger)
	otcRpc := monitoring.NewCircuitBreakerOtcRpc(
		otcrpc.New(appConfig, logger),
		monitoring.CircuitBreakerConfigs["otc"], apiMetrics, logger)

	catalog := assets.NewCatalog(appConfig)
	prices := quote.NewPriceCache()

	combiner := quote.NewCombiner(aggRpc, rfqRpc, prices, catalog.Synthetic(), appConfig, logger)
	quoteSvc := quote.NewService(combiner, prices, appConfig, logger, apiMetrics)

	registry := session.NewRegistry()
	watchers := orderwatch.NewRegistry()

	exec := executor.New(aggRpc, otcRpc, baseRpc, btcRpc, prices, s, db, appConfig, logger,
		func(sess executor.Sess, otcSwapID, orderID string) {
			w := orderwatch.New(aggRpc, s, db, logger, appConfig.Swap.OrderPollInterval, sess, otcSwapID, orderID)
			watchers.Track(sess.ID(), w)
		})

	hist := history.New(otcRpc, btcRpc, s, db, appConfig, logger)

	c := cron.New()

	// Keep persisted records converging on the OTC service's view even
	// when nobody is paging the history.
	c.AddFunc("@every 5m", func() {
		if err := hist.ReconcileUnsettled(context.Background()); err != nil {
			logger.Error("[ReconcileUnsettled]", map[string]string{
				"error": err.Error(),
			})
		}
	})
	c.Start()
	defer c.Stop()

	defer watchers.StopAll()

	h := handler.New(appConfig, logger, registry, quoteSvc, exec, watchers, catalog, hist, baseRpc, btcRpc, db, metricsRegistry)

	httpServer := http.NewHttpServer(appConfig, logger, h)

	httpServer.Run()
}
