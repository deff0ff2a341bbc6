package session

import (
	"time"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

// QuoteWriter is the capability handed to the quoting pipeline. It cannot
// touch execution state.
type QuoteWriter interface {
	NextRequestID() uint64
	IsCurrent(id uint64) bool
	ApplyQuote(q *model.Quote) bool
	FailQuote(requestID uint64, quality model.QualityTier, err *model.SwapError) bool
	ClearQuote()
	SetServiceDown()
	RequestRefetch()
	ConsumeRefetch() bool
}

// ExecutionWriter is the capability handed to the executor and the order
// watcher. It cannot issue request ids or install quotes.
type ExecutionWriter interface {
	SetApproval(state model.ApprovalState)
	ConsumeApprovalResume() bool
	SetSwapPressed(pressed bool)
	SetOrderStatus(status model.OrderStatus)
	SetOrder(orderID string)
	SetPendingOtcID(otcID string)
	SetLastError(err *model.SwapError)
	FailExecution(err *model.SwapError)
}

// Reader is the read-only surface for handlers and collaborators.
type Reader interface {
	ID() string
	Snapshot() Snapshot
	HasExecutableQuote(now time.Time) bool
}

var (
	_ QuoteWriter     = (*Session)(nil)
	_ ExecutionWriter = (*Session)(nil)
	_ Reader          = (*Session)(nil)
)
