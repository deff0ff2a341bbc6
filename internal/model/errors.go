package model

import "errors"

type SwapErrorCode string

const (
	ErrInsufficientLiquidity SwapErrorCode = "insufficient_liquidity"
	ErrNoRoute               SwapErrorCode = "no_route"
	ErrQuoteExpired          SwapErrorCode = "quote_expired"
	ErrQuoteTimeout          SwapErrorCode = "quote_timeout"
	ErrWrongChain            SwapErrorCode = "wrong_chain"
	ErrInvalidDestination    SwapErrorCode = "invalid_destination_address"
	ErrBelowMinimum          SwapErrorCode = "below_minimum"
	ErrExceedsLiquidity      SwapErrorCode = "exceeds_liquidity"
	ErrExceedsBalance        SwapErrorCode = "exceeds_balance"
	ErrApprovalRejected      SwapErrorCode = "approval_rejected"
	ErrSignerRejected        SwapErrorCode = "signer_rejected"
	ErrTransport             SwapErrorCode = "transport_error"
	ErrServiceUnavailable    SwapErrorCode = "service_unavailable"
	ErrComplianceRejected    SwapErrorCode = "compliance_rejected"
)

// SwapError is the typed failure surfaced by adapters and the executor.
type SwapError struct {
	Code      SwapErrorCode `json:"code"`
	Message   string        `json:"message"`
	Retryable bool          `json:"retryable"`
}

func (e *SwapError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

func NewSwapError(code SwapErrorCode, message string) *SwapError {
	return &SwapError{
		Code:      code,
		Message:   message,
		Retryable: code != ErrComplianceRejected && code != ErrInvalidDestination,
	}
}

// AsSwapError unwraps err into a SwapError, mapping unknown errors to a
// retryable transport failure so no raw error escapes to callers.
func AsSwapError(err error) *SwapError {
	if err == nil {
		return nil
	}
	var swapErr *SwapError
	if errors.As(err, &swapErr) {
		return swapErr
	}
	return NewSwapError(ErrTransport, err.Error())
}

func IsSwapErrorCode(err error, code SwapErrorCode) bool {
	var swapErr *SwapError
	if errors.As(err, &swapErr) {
		return swapErr.Code == code
	}
	return false
}
