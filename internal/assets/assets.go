package assets

import (
	"strings"

	"github.com/riftresearch/swap-coordinator/internal/consts"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
)

// NativeGasSentinel is the conventional pseudo-address aggregators accept
// for the chain's native gas asset.
const NativeGasSentinel = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// Catalog resolves tradable assets by symbol. The synthetic bitcoin token's
// address comes from deployment config; the rest are mainnet constants.
type Catalog struct {
	bySymbol map[string]model.Asset
}

func NewCatalog(appConfig *config.AppConfig) *Catalog {
	assets := []model.Asset{
		{
			Symbol:   "BTC",
			Chain:    model.ChainBitcoin,
			Decimals: consts.BTC_DECIMALS,
		},
		{
			Symbol:      "sBTC",
			Chain:       model.ChainEthereum,
			Address:     appConfig.Ethereum.SyntheticAssetAddr,
			Decimals:    consts.SYNTHETIC_DECIMALS,
			IsSynthetic: true,
		},
		{
			Symbol:      "ETH",
			Chain:       model.ChainEthereum,
			Address:     NativeGasSentinel,
			Decimals:    consts.ETH_DECIMALS,
			IsNativeGas: true,
		},
		{
			Symbol:   "WETH",
			Chain:    model.ChainEthereum,
			Address:  "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			Decimals: consts.ETH_DECIMALS,
		},
		{
			Symbol:   "USDC",
			Chain:    model.ChainEthereum,
			Address:  "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			Decimals: 6,
		},
		{
			Symbol:   "USDT",
			Chain:    model.ChainEthereum,
			Address:  "0xdac17f958d2ee523a2206206994597c13d831ec7",
			Decimals: 6,
		},
		{
			Symbol:   "WBTC",
			Chain:    model.ChainEthereum,
			Address:  "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599",
			Decimals: consts.BTC_DECIMALS,
		},
	}

	bySymbol := make(map[string]model.Asset, len(assets))
	for _, a := range assets {
		bySymbol[strings.ToUpper(a.Symbol)] = a
	}
	return &Catalog{bySymbol: bySymbol}
}

func (c *Catalog) Resolve(symbol string) (model.Asset, bool) {
	a, ok := c.bySymbol[strings.ToUpper(symbol)]
	return a, ok
}

func (c *Catalog) Bitcoin() model.Asset {
	return c.bySymbol["BTC"]
}

func (c *Catalog) Synthetic() model.Asset {
	return c.bySymbol["SBTC"]
}

// List returns the catalog in a stable display order.
func (c *Catalog) List() []model.Asset {
	order := []string{"BTC", "SBTC", "ETH", "WETH", "WBTC", "USDC", "USDT"}
	out := make([]model.Asset, 0, len(order))
	for _, sym := range order {
		if a, ok := c.bySymbol[sym]; ok {
			out = append(out, a)
		}
	}
	return out
}
