package baserpc

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

// IBaseRpc is the coordinator's on-chain EVM surface: allowance checks,
// approvals, and token transfers signed with the configured key. All token
// amounts carry the token's decimals.
type IBaseRpc interface {
	Client() *ethclient.Client
	SignerAddress() string

	Allowance(ctx context.Context, token, owner, spender string, decimals int) (*model.Web3BigInt, error)
	BalanceOf(ctx context.Context, token, owner string, decimals int) (*model.Web3BigInt, error)

	// Approve and TransferToken sign and broadcast, returning the tx hash.
	Approve(ctx context.Context, token, spender string, amount *model.Web3BigInt) (string, error)
	TransferToken(ctx context.Context, token, to string, amount *model.Web3BigInt) (string, error)

	// SignMessage signs an arbitrary digest with the configured key,
	// returning a hex signature. Used for aggregator order placement.
	SignMessage(message []byte) (string, error)

	// WaitMined blocks until the transaction is mined or ctx expires, and
	// returns an error for a reverted transaction.
	WaitMined(ctx context.Context, txHash string) error
}
