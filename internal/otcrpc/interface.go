package otcrpc

import (
	"context"
	"time"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

// CreateSwapRequest opens a server-side escrow record pairing a deposit
// address with an expected amount.
type CreateSwapRequest struct {
	Direction          string
	InputSymbol        string
	OutputSymbol       string
	InputAmount        *model.Web3BigInt
	OutputAmount       *model.Web3BigInt
	DestinationAddress string
	EvmAddress         string
	Metadata           map[string]string
}

type CreateSwapResponse struct {
	SwapID         string
	DepositAddress string
	ExpectedAmount *model.Web3BigInt
}

// SwapRecord is the OTC service's view of one tracked swap.
type SwapRecord struct {
	SwapID          string
	Status          model.SwapStatus
	DepositAddress  string
	UserTxHash      string
	MMTxHash        string
	RefundAvailable bool
	CreatedAt       time.Time
}

type IOtcRpc interface {
	CreateSwap(ctx context.Context, req *CreateSwapRequest) (*CreateSwapResponse, error)
	GetSwap(ctx context.Context, swapID string) (*SwapRecord, error)
}
