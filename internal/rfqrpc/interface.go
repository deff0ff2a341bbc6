package rfqrpc

import (
	"context"
	"time"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

// QuoteRequest asks the market maker for a committed, time-bounded price on
// the direct native-asset leg. Amount is denominated in From for ExactInput
// and in To for ExactOutput.
type QuoteRequest struct {
	Type   model.Exactness
	From   model.Asset
	To     model.Asset
	Amount *model.Web3BigInt
}

type QuoteResponse struct {
	FromAmount *model.Web3BigInt
	ToAmount   *model.Web3BigInt

	FeesUsd float64
	FeesRaw *model.Web3BigInt

	BitcoinMarkPriceUsd float64
	ExpiresAt           time.Time
}

type IRfqRpc interface {
	Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error)
}
