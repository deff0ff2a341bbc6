package aggrpc

import (
	"context"
	"time"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

// QuoteRequest is a normalized quote request against the DEX aggregation
// service. Exactly one of SellAmount/BuyAmount is set, per Kind. Receiver
// routes proceeds directly to an escrow address instead of the caller.
type QuoteRequest struct {
	SellToken    string
	BuyToken     string
	SellDecimals int
	BuyDecimals  int
	SellAmount   *model.Web3BigInt
	BuyAmount    *model.Web3BigInt
	Kind         model.Exactness
	Quality      model.QualityTier
	SlippageBps  int
	ChainID      int64
	Receiver     string
}

type QuoteResponse struct {
	SellAmount *model.Web3BigInt
	BuyAmount  *model.Web3BigInt
	FeeUsd     float64
	ValidFor   time.Duration
}

type OrderRequest struct {
	SellToken  string
	BuyToken   string
	SellAmount *model.Web3BigInt
	BuyAmount  *model.Web3BigInt
	Kind       model.Exactness
	Receiver   string
	From       string
	Signature  string
	ValidTo    int64
}

type OrderFillState string

const (
	OrderFillOpen              OrderFillState = "open"
	OrderFillScheduled         OrderFillState = "scheduled"
	OrderFillActive            OrderFillState = "active"
	OrderFillSolved            OrderFillState = "solved"
	OrderFillExecuting         OrderFillState = "executing"
	OrderFillTraded            OrderFillState = "traded"
	OrderFillFulfilled         OrderFillState = "fulfilled"
	OrderFillCancelled         OrderFillState = "cancelled"
	OrderFillExpired           OrderFillState = "expired"
)

// Settled reports whether the fill state is irrevocable on the success path.
// "traded" precedes indexing of the final "fulfilled" state but can no
// longer revert.
func (s OrderFillState) Settled() bool {
	return s == OrderFillFulfilled || s == OrderFillTraded
}

func (s OrderFillState) Dead() bool {
	return s == OrderFillCancelled || s == OrderFillExpired
}

type OrderStatusResponse struct {
	Status     OrderFillState
	SellAmount *model.Web3BigInt
	BuyAmount  *model.Web3BigInt
	TxHash     string
}

type IAggRpc interface {
	GetQuote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error)
	SubmitOrder(ctx context.Context, req *OrderRequest) (string, error)
	GetOrderStatus(ctx context.Context, orderID string) (*OrderStatusResponse, error)
}
