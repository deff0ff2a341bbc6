package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/rfqrpc"
	"github.com/riftresearch/swap-coordinator/internal/types/environments"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

type MockRfqRpc struct {
	mock.Mock
}

func (m *MockRfqRpc) Quote(ctx context.Context, req *rfqrpc.QuoteRequest) (*rfqrpc.QuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rfqrpc.QuoteResponse), args.Error(1)
}

func setupTestLogger() *logger.Logger {
	return logger.New(environments.Test)
}

func getLabelValue(labels []*dto.LabelPair, name string) string {
	for _, label := range labels {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}

func TestCircuitBreaker_InitialState(t *testing.T) {
	config := CircuitBreakerConfig{
		MaxRequests:                 5,
		Interval:                    30 * time.Second,
		Timeout:                     60 * time.Second,
		ConsecutiveFailureThreshold: 3,
	}

	metrics := NewExternalAPIMetrics()
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	cb := NewCircuitBreakerRfqRpc(&MockRfqRpc{}, config, metrics, setupTestLogger())

	assert.Equal(t, gobreaker.StateClosed, cb.circuitBreaker.State())
}

func TestCircuitBreaker_ClosedToOpen(t *testing.T) {
	config := CircuitBreakerConfig{
		MaxRequests:                 5,
		Interval:                    30 * time.Second,
		Timeout:                     60 * time.Second,
		ConsecutiveFailureThreshold: 3,
	}

	metrics := NewExternalAPIMetrics()
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	mockRfq := &MockRfqRpc{}
	mockRfq.On("Quote", mock.Anything, mock.Anything).Return(nil, errors.New("API unavailable"))

	cb := NewCircuitBreakerRfqRpc(mockRfq, config, metrics, setupTestLogger())

	for i := 0; i < 3; i++ {
		_, err := cb.Quote(context.Background(), &rfqrpc.QuoteRequest{})
		assert.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.circuitBreaker.State())

	metricFamilies, err := registry.Gather()
	assert.NoError(t, err)

	errorCountFound := false
	stateFound := false

	for _, mf := range metricFamilies {
		switch mf.GetName() {
		case "swap_coordinator_external_api_calls_total":
			for _, metric := range mf.GetMetric() {
				labels := metric.GetLabel()
				if getLabelValue(labels, "status") == "error" {
					errorCountFound = true
					assert.Equal(t, float64(3), metric.GetCounter().GetValue())
				}
			}
		case "swap_coordinator_circuit_breaker_state":
			stateFound = true
			metric := mf.GetMetric()[0]
			assert.Equal(t, float64(gobreaker.StateOpen), metric.GetGauge().GetValue())
		}
	}

	assert.True(t, errorCountFound, "error count metric not found")
	assert.True(t, stateFound, "circuit breaker state metric not found")
}

func TestCircuitBreaker_OpenMapsToServiceUnavailable(t *testing.T) {
	config := CircuitBreakerConfig{
		MaxRequests:                 5,
		Interval:                    30 * time.Second,
		Timeout:                     60 * time.Second,
		ConsecutiveFailureThreshold: 2,
	}

	mockRfq := &MockRfqRpc{}
	mockRfq.On("Quote", mock.Anything, mock.Anything).Return(nil, errors.New("network error"))

	metrics := NewExternalAPIMetrics()
	cb := NewCircuitBreakerRfqRpc(mockRfq, config, metrics, setupTestLogger())

	for i := 0; i < 2; i++ {
		_, err := cb.Quote(context.Background(), &rfqrpc.QuoteRequest{})
		assert.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.circuitBreaker.State())

	// The open breaker short-circuits and the error is normalized so the
	// session layer can latch its service-down state.
	quote, err := cb.Quote(context.Background(), &rfqrpc.QuoteRequest{})
	assert.Error(t, err)
	assert.Nil(t, quote)
	assert.Equal(t, model.ErrServiceUnavailable, model.AsSwapError(err).Code)

	// The wrapped service saw only the two calls made while closed.
	mockRfq.AssertNumberOfCalls(t, "Quote", 2)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		error        error
		expectedType APIErrorType
	}{
		{
			name:         "timeout error",
			error:        errors.New("request timeout after 5s"),
			expectedType: ErrorTypeTimeout,
		},
		{
			name:         "context deadline",
			error:        errors.New("context deadline exceeded"),
			expectedType: ErrorTypeTimeout,
		},
		{
			name:         "network error",
			error:        errors.New("network unreachable"),
			expectedType: ErrorTypeNetworkError,
		},
		{
			name:         "server error",
			error:        errors.New("HTTP 500 Internal Server Error"),
			expectedType: ErrorTypeServerError,
		},
		{
			name:         "client error",
			error:        errors.New("HTTP 400 Bad Request"),
			expectedType: ErrorTypeClientError,
		},
		{
			name:         "unknown error",
			error:        errors.New("unexpected error occurred"),
			expectedType: ErrorTypeUnknown,
		},
		{
			name:         "nil error",
			error:        nil,
			expectedType: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifyError(tt.error)
			assert.Equal(t, tt.expectedType, result)
		})
	}
}
