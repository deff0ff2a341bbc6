package btcrpc

import (
	"context"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

type IBtcRpc interface {
	// ValidateAddress rejects addresses that do not parse for the
	// configured network.
	ValidateAddress(address string) error

	// AddressBalance returns the unspent balance of an address in satoshis.
	AddressBalance(ctx context.Context, address string) (*model.Web3BigInt, error)

	// Ping checks indexer reachability. Used by health checks.
	Ping(ctx context.Context) error
}
