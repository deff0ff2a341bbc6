package monitoring

import (
	"time"
)

// CircuitBreakerConfig defines the configuration for circuit breakers
type CircuitBreakerConfig struct {
	MaxRequests                 uint32        `json:"max_requests"`
	Interval                    time.Duration `json:"interval"`
	Timeout                     time.Duration `json:"timeout"`
	ConsecutiveFailureThreshold int           `json:"consecutive_failure_threshold"`
}

// APIErrorType represents different types of API errors for classification
type APIErrorType string

const (
	ErrorTypeTimeout      APIErrorType = "timeout"
	ErrorTypeNetworkError APIErrorType = "network_error"
	ErrorTypeServerError  APIErrorType = "server_error"
	ErrorTypeClientError  APIErrorType = "client_error"
	ErrorTypeUnknown      APIErrorType = "unknown"
)

// CircuitBreakerConfigs provides default configurations for the external
// quoting and escrow services. The aggregator and RFQ services trip fast so
// the session can surface a service-unavailable state quickly; the OTC
// service is more tolerant since a tripped breaker there blocks submission.
var CircuitBreakerConfigs = map[string]CircuitBreakerConfig{
	"aggregator": {
		MaxRequests:                 5,
		Interval:                    30 * time.Second,
		Timeout:                     30 * time.Second,
		ConsecutiveFailureThreshold: 3,
	},
	"rfq": {
		MaxRequests:                 5,
		Interval:                    30 * time.Second,
		Timeout:                     30 * time.Second,
		ConsecutiveFailureThreshold: 3,
	},
	"otc": {
		MaxRequests:                 3,
		Interval:                    45 * time.Second,
		Timeout:                     60 * time.Second,
		ConsecutiveFailureThreshold: 5,
	},
}
