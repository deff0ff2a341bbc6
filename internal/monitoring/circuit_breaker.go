package monitoring

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/riftresearch/swap-coordinator/internal/aggrpc"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/otcrpc"
	"github.com/riftresearch/swap-coordinator/internal/rfqrpc"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

// CircuitBreakerAggRpc wraps aggrpc.IAggRpc with circuit breaker functionality
type CircuitBreakerAggRpc struct {
	wrapped        aggrpc.IAggRpc
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *ExternalAPIMetrics
	logger         *logger.Logger
}

// CircuitBreakerRfqRpc wraps rfqrpc.IRfqRpc with circuit breaker functionality
type CircuitBreakerRfqRpc struct {
	wrapped        rfqrpc.IRfqRpc
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *ExternalAPIMetrics
	logger         *logger.Logger
}

// CircuitBreakerOtcRpc wraps otcrpc.IOtcRpc with circuit breaker functionality
type CircuitBreakerOtcRpc struct {
	wrapped        otcrpc.IOtcRpc
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *ExternalAPIMetrics
	logger         *logger.Logger
}

func newBreaker(name string, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.ConsecutiveFailureThreshold)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state change", map[string]string{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.UpdateCircuitBreakerState(name, to)
		},
	})
}

// NewCircuitBreakerAggRpc creates a new circuit breaker wrapper for the aggregator service
func NewCircuitBreakerAggRpc(wrapped aggrpc.IAggRpc, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerAggRpc {
	return &CircuitBreakerAggRpc{
		wrapped:        wrapped,
		circuitBreaker: newBreaker("aggregator", config, metrics, logger),
		metrics:        metrics,
		logger:         logger,
	}
}

// NewCircuitBreakerRfqRpc creates a new circuit breaker wrapper for the RFQ service
func NewCircuitBreakerRfqRpc(wrapped rfqrpc.IRfqRpc, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerRfqRpc {
	return &CircuitBreakerRfqRpc{
		wrapped:        wrapped,
		circuitBreaker: newBreaker("rfq", config, metrics, logger),
		metrics:        metrics,
		logger:         logger,
	}
}

// NewCircuitBreakerOtcRpc creates a new circuit breaker wrapper for the OTC service
func NewCircuitBreakerOtcRpc(wrapped otcrpc.IOtcRpc, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerOtcRpc {
	return &CircuitBreakerOtcRpc{
		wrapped:        wrapped,
		circuitBreaker: newBreaker("otc", config, metrics, logger),
		metrics:        metrics,
		logger:         logger,
	}
}

// execute runs one wrapped call through the breaker, recording duration and
// status. A tripped breaker surfaces as ErrServiceUnavailable so callers
// treat it exactly like a failing upstream.
func execute(cb *gobreaker.CircuitBreaker, metrics *ExternalAPIMetrics, log *logger.Logger, service, operation string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()

	result, err := cb.Execute(fn)

	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
		log.Error("External API call failed", map[string]string{
			"service":    service,
			"operation":  operation,
			"duration":   strconv.FormatFloat(duration, 'f', 3, 64),
			"error":      err.Error(),
			"error_type": string(classifyError(err)),
			"cb_state":   cb.State().String(),
		})
	}
	metrics.RecordAPICall(service, operation, status, duration)

	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, model.NewSwapError(model.ErrServiceUnavailable, err.Error())
	}
	return result, err
}

// Aggregator methods

func (cb *CircuitBreakerAggRpc) GetQuote(ctx context.Context, req *aggrpc.QuoteRequest) (*aggrpc.QuoteResponse, error) {
	result, err := execute(cb.circuitBreaker, cb.metrics, cb.logger, "aggregator", "get_quote", func() (interface{}, error) {
		return cb.wrapped.GetQuote(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*aggrpc.QuoteResponse), nil
}

func (cb *CircuitBreakerAggRpc) SubmitOrder(ctx context.Context, req *aggrpc.OrderRequest) (string, error) {
	result, err := execute(cb.circuitBreaker, cb.metrics, cb.logger, "aggregator", "submit_order", func() (interface{}, error) {
		return cb.wrapped.SubmitOrder(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (cb *CircuitBreakerAggRpc) GetOrderStatus(ctx context.Context, orderID string) (*aggrpc.OrderStatusResponse, error) {
	result, err := execute(cb.circuitBreaker, cb.metrics, cb.logger, "aggregator", "get_order_status", func() (interface{}, error) {
		return cb.wrapped.GetOrderStatus(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*aggrpc.OrderStatusResponse), nil
}

// RFQ methods

func (cb *CircuitBreakerRfqRpc) Quote(ctx context.Context, req *rfqrpc.QuoteRequest) (*rfqrpc.QuoteResponse, error) {
	result, err := execute(cb.circuitBreaker, cb.metrics, cb.logger, "rfq", "quote", func() (interface{}, error) {
		return cb.wrapped.Quote(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*rfqrpc.QuoteResponse), nil
}

// OTC methods

func (cb *CircuitBreakerOtcRpc) CreateSwap(ctx context.Context, req *otcrpc.CreateSwapRequest) (*otcrpc.CreateSwapResponse, error) {
	result, err := execute(cb.circuitBreaker, cb.metrics, cb.logger, "otc", "create_swap", func() (interface{}, error) {
		return cb.wrapped.CreateSwap(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*otcrpc.CreateSwapResponse), nil
}

func (cb *CircuitBreakerOtcRpc) GetSwap(ctx context.Context, swapID string) (*otcrpc.SwapRecord, error) {
	result, err := execute(cb.circuitBreaker, cb.metrics, cb.logger, "otc", "get_swap", func() (interface{}, error) {
		return cb.wrapped.GetSwap(ctx, swapID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*otcrpc.SwapRecord), nil
}

// classifyError classifies errors into different types for metrics and logging
func classifyError(err error) APIErrorType {
	if err == nil {
		return ""
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") ||
		strings.Contains(errMsg, "context canceled") {
		return ErrorTypeTimeout
	}

	if strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "connection") ||
		strings.Contains(errMsg, "unreachable") ||
		strings.Contains(errMsg, "dns") {
		return ErrorTypeNetworkError
	}

	if strings.Contains(errMsg, "500") ||
		strings.Contains(errMsg, "502") ||
		strings.Contains(errMsg, "503") ||
		strings.Contains(errMsg, "504") ||
		strings.Contains(errMsg, "internal server error") ||
		strings.Contains(errMsg, "service unavailable") {
		return ErrorTypeServerError
	}

	if strings.Contains(errMsg, "400") ||
		strings.Contains(errMsg, "401") ||
		strings.Contains(errMsg, "403") ||
		strings.Contains(errMsg, "404") ||
		strings.Contains(errMsg, "429") ||
		strings.Contains(errMsg, "bad request") ||
		strings.Contains(errMsg, "rate limit") {
		return ErrorTypeClientError
	}

	return ErrorTypeUnknown
}

var (
	_ aggrpc.IAggRpc = (*CircuitBreakerAggRpc)(nil)
	_ rfqrpc.IRfqRpc = (*CircuitBreakerRfqRpc)(nil)
	_ otcrpc.IOtcRpc = (*CircuitBreakerOtcRpc)(nil)
)
