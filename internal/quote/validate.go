package quote

import (
	"github.com/riftresearch/swap-coordinator/internal/model"
)

type AmountCheck string

const (
	AmountOK             AmountCheck = "ok"
	AmountBelowMinimum   AmountCheck = "below_minimum"
	AmountExceedsBalance AmountCheck = "exceeds_balance"
)

// CheckAmount is the total, explicit amount validation. The balance check
// compares base units of the same asset and needs no price feed at all; the
// USD floor applies only when a price is known. Counterparty liquidity is
// never guessed here — the RFQ service reports its own limits as typed
// quote failures.
func CheckAmount(amount *model.Web3BigInt, asset model.Asset, balance *model.Web3BigInt, prices *PriceCache, minUsd float64) AmountCheck {
	if balance != nil && amount.Cmp(balance) > 0 {
		return AmountExceedsBalance
	}

	if price, ok := prices.UsdPrice(asset.Symbol); ok {
		if amount.ToFloat()*price < minUsd {
			return AmountBelowMinimum
		}
	}

	return AmountOK
}
