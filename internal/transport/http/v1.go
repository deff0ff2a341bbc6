package http

import (
	"github.com/gin-gonic/gin"

	"github.com/riftresearch/swap-coordinator/internal/handler"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler, appConfig *config.AppConfig, logger *logger.Logger) {
	v1 := r.Group("/api/v1")

	sessions := v1.Group("/sessions")
	{
		sessions.POST("", h.SessionHandler.Create)
		sessions.GET("/:id", h.SessionHandler.Get)
		sessions.DELETE("/:id", h.SessionHandler.Delete)

		sessions.PUT("/:id/direction", h.SessionHandler.SetDirection)
		sessions.PUT("/:id/amount", h.SessionHandler.EditAmount)
		sessions.POST("/:id/max", h.SessionHandler.UseMax)
		sessions.POST("/:id/min", h.SessionHandler.UseMin)
		sessions.PUT("/:id/destination", h.SessionHandler.SetDestination)
		sessions.PUT("/:id/wallet", h.SessionHandler.SetWallet)

		sessions.POST("/:id/submit", h.SessionHandler.Submit)
		sessions.POST("/:id/refetch", h.SessionHandler.Refetch)
		sessions.POST("/:id/poke", h.SessionHandler.Poke)
	}

	v1.GET("/assets", h.SessionHandler.ListAssets)
	v1.GET("/history", h.HistoryHandler.List)

	healthGroup := v1.Group("/health")
	{
		healthGroup.GET("/db", h.HealthHandler.Database)
		healthGroup.GET("/external", h.HealthHandler.External)
	}

	r.GET("/metrics", h.MetricsHandler.Handler())

	// health check
	r.GET("/healthz", h.HealthHandler.Basic)
}
