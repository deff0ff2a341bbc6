package model

import "time"

type QuoteSource string

const (
	QuoteSourceAggregator QuoteSource = "aggregator"
	QuoteSourceRfq        QuoteSource = "rfq"
	QuoteSourceCombined   QuoteSource = "combined"
)

type Exactness string

const (
	ExactInput  Exactness = "exact_input"
	ExactOutput Exactness = "exact_output"
)

type QualityTier string

const (
	QualityFast    QualityTier = "fast"
	QualityOptimal QualityTier = "optimal"
)

// Rank orders quality tiers so an applied optimal quote is never
// overwritten by a late fast result carrying the same request id.
func (q QualityTier) Rank() int {
	switch q {
	case QualityOptimal:
		return 2
	case QualityFast:
		return 1
	default:
		return 0
	}
}

// FeeBreakdown is USD-denominated. RoutingUsd is the implicit cost of the
// aggregator hop: max(0, input leg USD value - output leg USD value).
type FeeBreakdown struct {
	ProtocolUsd    float64 `json:"protocol_usd"`
	NetworkUsd     float64 `json:"network_usd"`
	MarketMakerUsd float64 `json:"market_maker_usd"`
	RoutingUsd     float64 `json:"routing_usd"`
}

func (f FeeBreakdown) TotalUsd() float64 {
	return f.ProtocolUsd + f.NetworkUsd + f.MarketMakerUsd + f.RoutingUsd
}

func (f FeeBreakdown) Add(other FeeBreakdown) FeeBreakdown {
	return FeeBreakdown{
		ProtocolUsd:    f.ProtocolUsd + other.ProtocolUsd,
		NetworkUsd:     f.NetworkUsd + other.NetworkUsd,
		MarketMakerUsd: f.MarketMakerUsd + other.MarketMakerUsd,
		RoutingUsd:     f.RoutingUsd + other.RoutingUsd,
	}
}

// Quote is a priced offer to exchange SellAmount of SellAsset for BuyAmount
// of BuyAsset. Both amounts of a combined quote derive from the same user
// edit and the same exactness mode; legs from different request ids must
// never be mixed.
type Quote struct {
	Source    QuoteSource `json:"source"`
	Exactness Exactness   `json:"exactness"`

	SellAsset  Asset       `json:"sell_asset"`
	BuyAsset   Asset       `json:"buy_asset"`
	SellAmount *Web3BigInt `json:"sell_amount"`
	BuyAmount  *Web3BigInt `json:"buy_amount"`

	Fees      FeeBreakdown `json:"fees"`
	ExpiresAt time.Time    `json:"expires_at"`
	Quality   QualityTier  `json:"quality"`
	RequestID uint64       `json:"request_id"`

	// BitcoinMarkPriceUsd is the RFQ market maker's reference BTC price at
	// quote time, used for USD threshold checks downstream.
	BitcoinMarkPriceUsd float64 `json:"bitcoin_mark_price_usd"`
}

func (q *Quote) Expired(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && now.After(q.ExpiresAt)
}
