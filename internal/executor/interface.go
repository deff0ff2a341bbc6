package executor

import (
	"context"
	"time"

	"github.com/riftresearch/swap-coordinator/internal/session"
)

// Sess is the slice of the swap session the executor may touch: the
// execution-writer capability plus the read surface.
type Sess interface {
	session.ExecutionWriter
	ID() string
	Snapshot() session.Snapshot
	HasExecutableQuote(now time.Time) bool
	ArmReconnectSubmit(now time.Time) bool
	SetWalletConnected(connected bool)
}

// SubmitResult reports what the submission produced: an aggregator order,
// an on-chain transfer, or a deposit address the user must pay.
type SubmitResult struct {
	OtcSwapID      string `json:"otc_swap_id"`
	DepositAddress string `json:"deposit_address,omitempty"`
	OrderID        string `json:"order_id,omitempty"`
	UserTxHash     string `json:"user_tx_hash,omitempty"`
}

var _ Sess = (*session.Session)(nil)

type IExecutor interface {
	// Submit drives one swap attempt end to end. It blocks until the
	// irreversible step (order submitted, transfer broadcast, or deposit
	// address issued) or a typed failure.
	Submit(ctx context.Context, sess Sess) (*SubmitResult, error)

	// HandleWalletConnected auto-invokes Submit at most once when a
	// live optimal quote is already present at connect time.
	HandleWalletConnected(ctx context.Context, sess Sess) (*SubmitResult, error)
}
