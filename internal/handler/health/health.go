package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riftresearch/swap-coordinator/internal/baserpc"
	"github.com/riftresearch/swap-coordinator/internal/btcrpc"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

// HealthHandler implements IHealthHandler interface
type HealthHandler struct {
	config  *config.AppConfig
	logger  *logger.Logger
	db      *gorm.DB
	btcRpc  btcrpc.IBtcRpc
	baseRpc baserpc.IBaseRpc
}

// New creates a new health handler instance
func New(config *config.AppConfig, logger *logger.Logger, db *gorm.DB, btcRpc btcrpc.IBtcRpc, baseRpc baserpc.IBaseRpc) IHealthHandler {
	return &HealthHandler{
		config:  config,
		logger:  logger,
		db:      db,
		btcRpc:  btcRpc,
		baseRpc: baseRpc,
	}
}

// Basic handles the basic health check endpoint (/healthz)
// @Summary Basic health check
// @Description Returns basic system availability status
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} BasicHealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Basic(c *gin.Context) {
	c.JSON(http.StatusOK, BasicHealthResponse{Message: "ok"})
}

// Database handles the database health check endpoint
// @Summary Database health check
// @Description Validates database connectivity and performance
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /api/v1/health/db [get]
func (h *HealthHandler) Database(c *gin.Context) {
	start := time.Now()

	response := HealthResponse{
		Timestamp: start,
		Checks:    make(map[string]HealthCheck),
	}

	ctx := context.Background()
	if c.Request != nil {
		ctx = c.Request.Context()
	}

	dbCheck := h.checkDatabase(ctx)
	response.Checks["database"] = dbCheck
	response.DurationMs = time.Since(start).Milliseconds()

	if dbCheck.Status == "healthy" {
		response.Status = "healthy"
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

// External handles the external dependencies health check endpoint
// @Summary External dependencies health check
// @Description Validates esplora and EVM RPC connectivity
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /api/v1/health/external [get]
func (h *HealthHandler) External(c *gin.Context) {
	start := time.Now()

	response := HealthResponse{
		Timestamp: start,
		Checks:    make(map[string]HealthCheck),
	}

	baseCtx := context.Background()
	if c.Request != nil {
		baseCtx = c.Request.Context()
	}
	ctx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		check := h.checkEsplora(ctx)
		mu.Lock()
		response.Checks["esplora_api"] = check
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		check := h.checkEvmRpc(ctx)
		mu.Lock()
		response.Checks["evm_rpc"] = check
		mu.Unlock()
	}()

	wg.Wait()
	response.DurationMs = time.Since(start).Milliseconds()

	allHealthy := true
	for _, check := range response.Checks {
		if check.Status != "healthy" {
			allHealthy = false
			break
		}
	}

	if allHealthy {
		response.Status = "healthy"
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

// checkDatabase performs database health validation
func (h *HealthHandler) checkDatabase(ctx context.Context) HealthCheck {
	start := time.Now()

	check := HealthCheck{
		Metadata: make(map[string]interface{}),
	}

	if h.db == nil {
		check.Status = "unhealthy"
		check.Error = "database connection not available"
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		check.Status = "unhealthy"
		check.Error = fmt.Sprintf("failed to get underlying database: %v", err)
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		check.Status = "unhealthy"
		if pingCtx.Err() == context.DeadlineExceeded {
			check.Error = "timeout"
		} else {
			check.Error = err.Error()
		}
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	stats := sqlDB.Stats()

	check.Status = "healthy"
	check.Latency = time.Since(start).Milliseconds()
	check.Metadata["driver"] = "postgres"
	check.Metadata["connection_pool"] = map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"max_open":         stats.MaxOpenConnections,
	}

	return check
}

// checkEsplora performs bitcoin indexer health validation
func (h *HealthHandler) checkEsplora(ctx context.Context) HealthCheck {
	start := time.Now()

	check := HealthCheck{
		Metadata: make(map[string]interface{}),
	}

	if h.btcRpc == nil {
		check.Status = "unhealthy"
		check.Error = "bitcoin rpc not available"
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := h.btcRpc.Ping(checkCtx)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			check.Status = "unhealthy"
			check.Error = err.Error()
		} else {
			check.Status = "healthy"
			check.Metadata["endpoint"] = h.config.Bitcoin.EsploraAPIURL
		}
	case <-checkCtx.Done():
		check.Status = "unhealthy"
		if checkCtx.Err() == context.DeadlineExceeded {
			check.Error = "timeout"
		} else {
			check.Error = checkCtx.Err().Error()
		}
	}

	check.Latency = time.Since(start).Milliseconds()
	return check
}

// checkEvmRpc performs EVM RPC health validation
func (h *HealthHandler) checkEvmRpc(ctx context.Context) HealthCheck {
	start := time.Now()

	check := HealthCheck{
		Metadata: make(map[string]interface{}),
	}

	if h.baseRpc == nil || h.baseRpc.Client() == nil {
		check.Status = "unhealthy"
		check.Error = "evm rpc not available"
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := h.baseRpc.Client().BlockNumber(checkCtx)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			check.Status = "unhealthy"
			check.Error = err.Error()
		} else {
			check.Status = "healthy"
			check.Metadata["endpoint"] = "evm_rpc"
		}
	case <-checkCtx.Done():
		check.Status = "unhealthy"
		if checkCtx.Err() == context.DeadlineExceeded {
			check.Error = "timeout"
		} else {
			check.Error = checkCtx.Err().Error()
		}
	}

	check.Latency = time.Since(start).Milliseconds()
	return check
}
