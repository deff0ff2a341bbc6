package quote

import (
	"context"
	"time"

	"github.com/riftresearch/swap-coordinator/internal/aggrpc"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/rfqrpc"
	"github.com/riftresearch/swap-coordinator/internal/session"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

// CombineRequest is one leg-composition job. Amount is denominated in the
// input asset for ExactInput and in the output asset for ExactOutput.
type CombineRequest struct {
	Direction   session.Direction
	InputAsset  model.Asset
	OutputAsset model.Asset
	Exactness   model.Exactness
	Amount      *model.Web3BigInt
	Quality     model.QualityTier
	RequestID   uint64
}

// Combiner composes the aggregator and RFQ adapters into a single
// BTC-leg quote for each (direction x exactness) case. When the EVM asset
// is the synthetic asset itself the aggregator hop is skipped.
type Combiner struct {
	agg       aggrpc.IAggRpc
	rfq       rfqrpc.IRfqRpc
	prices    *PriceCache
	synthetic model.Asset
	appConfig *config.AppConfig
	logger    *logger.Logger
}

func NewCombiner(agg aggrpc.IAggRpc, rfq rfqrpc.IRfqRpc, prices *PriceCache, synthetic model.Asset, appConfig *config.AppConfig, logger *logger.Logger) *Combiner {
	return &Combiner{
		agg:       agg,
		rfq:       rfq,
		prices:    prices,
		synthetic: synthetic,
		appConfig: appConfig,
		logger:    logger,
	}
}

func (c *Combiner) Combine(ctx context.Context, req *CombineRequest) (*model.Quote, error) {
	switch req.Direction {
	case session.DirectionToNative:
		if req.InputAsset.IsSynthetic {
			return c.rfqOnly(ctx, req)
		}
		if req.Exactness == model.ExactInput {
			return c.toNativeExactInput(ctx, req)
		}
		return c.toNativeExactOutput(ctx, req)
	case session.DirectionToSynthetic:
		return c.rfqOnly(ctx, req)
	}
	return nil, model.NewSwapError(model.ErrNoRoute, "unknown direction")
}

// rfqOnly covers both BTC->synthetic and synthetic->BTC: a single
// market-maker leg, no aggregator hop.
func (c *Combiner) rfqOnly(ctx context.Context, req *CombineRequest) (*model.Quote, error) {
	rfqResp, err := c.rfq.Quote(ctx, &rfqrpc.QuoteRequest{
		Type:   req.Exactness,
		From:   req.InputAsset,
		To:     req.OutputAsset,
		Amount: req.Amount,
	})
	if err != nil {
		return nil, err
	}

	c.recordMarkPrice(rfqResp.BitcoinMarkPriceUsd)

	return &model.Quote{
		Source:     model.QuoteSourceCombined,
		Exactness:  req.Exactness,
		SellAsset:  req.InputAsset,
		BuyAsset:   req.OutputAsset,
		SellAmount: rfqResp.FromAmount,
		BuyAmount:  rfqResp.ToAmount,
		Fees: model.FeeBreakdown{
			MarketMakerUsd: rfqResp.FeesUsd,
		},
		ExpiresAt:           rfqResp.ExpiresAt,
		Quality:             req.Quality,
		RequestID:           req.RequestID,
		BitcoinMarkPriceUsd: rfqResp.BitcoinMarkPriceUsd,
	}, nil
}

// toNativeExactInput sells the EVM asset into the synthetic asset on the
// aggregator, then prices that synthetic amount into BTC with the market
// maker. The combined buy amount is the RFQ leg's "to" amount exactly.
func (c *Combiner) toNativeExactInput(ctx context.Context, req *CombineRequest) (*model.Quote, error) {
	aggResp, err := c.agg.GetQuote(ctx, &aggrpc.QuoteRequest{
		SellToken:    req.InputAsset.Address,
		BuyToken:     c.synthetic.Address,
		SellDecimals: req.InputAsset.Decimals,
		BuyDecimals:  c.synthetic.Decimals,
		SellAmount:   req.Amount,
		Kind:         model.ExactInput,
		Quality:      req.Quality,
		SlippageBps:  c.appConfig.Ethereum.SlippageBps,
		ChainID:      c.appConfig.Ethereum.ChainID,
	})
	if err != nil {
		return nil, err
	}

	rfqResp, err := c.rfq.Quote(ctx, &rfqrpc.QuoteRequest{
		Type:   model.ExactInput,
		From:   c.synthetic,
		To:     req.OutputAsset,
		Amount: aggResp.BuyAmount,
	})
	if err != nil {
		return nil, err
	}

	c.recordMarkPrice(rfqResp.BitcoinMarkPriceUsd)
	c.recordImpliedPrice(req.InputAsset, aggResp.SellAmount, aggResp.BuyAmount, rfqResp.BitcoinMarkPriceUsd)

	return &model.Quote{
		Source:     model.QuoteSourceCombined,
		Exactness:  model.ExactInput,
		SellAsset:  req.InputAsset,
		BuyAsset:   req.OutputAsset,
		SellAmount: aggResp.SellAmount,
		BuyAmount:  rfqResp.ToAmount,
		Fees: c.combinedFees(aggResp, rfqResp.FeesUsd,
			req.InputAsset, rfqResp.BitcoinMarkPriceUsd),
		ExpiresAt:           minExpiry(time.Now().Add(aggResp.ValidFor), rfqResp.ExpiresAt),
		Quality:             req.Quality,
		RequestID:           req.RequestID,
		BitcoinMarkPriceUsd: rfqResp.BitcoinMarkPriceUsd,
	}, nil
}

// toNativeExactOutput works backward: the RFQ leg learns the synthetic
// amount required for the desired BTC amount, then the aggregator learns
// the EVM input required for that synthetic amount.
func (c *Combiner) toNativeExactOutput(ctx context.Context, req *CombineRequest) (*model.Quote, error) {
	rfqResp, err := c.rfq.Quote(ctx, &rfqrpc.QuoteRequest{
		Type:   model.ExactOutput,
		From:   c.synthetic,
		To:     req.OutputAsset,
		Amount: req.Amount,
	})
	if err != nil {
		return nil, err
	}

	aggResp, err := c.agg.GetQuote(ctx, &aggrpc.QuoteRequest{
		SellToken:    req.InputAsset.Address,
		BuyToken:     c.synthetic.Address,
		SellDecimals: req.InputAsset.Decimals,
		BuyDecimals:  c.synthetic.Decimals,
		BuyAmount:    rfqResp.FromAmount,
		Kind:         model.ExactOutput,
		Quality:      req.Quality,
		SlippageBps:  c.appConfig.Ethereum.SlippageBps,
		ChainID:      c.appConfig.Ethereum.ChainID,
	})
	if err != nil {
		return nil, err
	}

	c.recordMarkPrice(rfqResp.BitcoinMarkPriceUsd)
	c.recordImpliedPrice(req.InputAsset, aggResp.SellAmount, aggResp.BuyAmount, rfqResp.BitcoinMarkPriceUsd)

	return &model.Quote{
		Source:     model.QuoteSourceCombined,
		Exactness:  model.ExactOutput,
		SellAsset:  req.InputAsset,
		BuyAsset:   req.OutputAsset,
		SellAmount: aggResp.SellAmount,
		BuyAmount:  rfqResp.ToAmount,
		Fees: c.combinedFees(aggResp, rfqResp.FeesUsd,
			req.InputAsset, rfqResp.BitcoinMarkPriceUsd),
		ExpiresAt:           minExpiry(time.Now().Add(aggResp.ValidFor), rfqResp.ExpiresAt),
		Quality:             req.Quality,
		RequestID:           req.RequestID,
		BitcoinMarkPriceUsd: rfqResp.BitcoinMarkPriceUsd,
	}, nil
}

// combinedFees sums the legs' USD components. The implicit routing fee of
// the aggregator hop is max(0, input leg USD value - output leg USD value);
// it degrades to zero when the input asset's price is unknown.
func (c *Combiner) combinedFees(aggResp *aggrpc.QuoteResponse, rfqFeesUsd float64, inputAsset model.Asset, markPrice float64) model.FeeBreakdown {
	fees := model.FeeBreakdown{
		ProtocolUsd:    aggResp.FeeUsd,
		MarketMakerUsd: rfqFeesUsd,
	}

	inputPrice, ok := c.prices.UsdPrice(inputAsset.Symbol)
	if ok && markPrice > 0 {
		inputLegUsd := aggResp.SellAmount.ToFloat() * inputPrice
		outputLegUsd := aggResp.BuyAmount.ToFloat() * markPrice
		if routing := inputLegUsd - outputLegUsd; routing > 0 {
			fees.RoutingUsd = routing
		}
	}
	return fees
}

func (c *Combiner) recordMarkPrice(markPrice float64) {
	c.prices.SetUsdPrice("BTC", markPrice)
	c.prices.SetUsdPrice(c.synthetic.Symbol, markPrice)
}

// recordImpliedPrice derives the input asset's USD price from the
// aggregator leg so later edits get an instant USD echo.
func (c *Combiner) recordImpliedPrice(inputAsset model.Asset, sellAmount, buyAmount *model.Web3BigInt, markPrice float64) {
	sellFloat := sellAmount.ToFloat()
	if sellFloat <= 0 || markPrice <= 0 {
		return
	}
	c.prices.SetUsdPrice(inputAsset.Symbol, buyAmount.ToFloat()*markPrice/sellFloat)
}

func minExpiry(a, b time.Time) time.Time {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	if a.Before(b) {
		return a
	}
	return b
}
