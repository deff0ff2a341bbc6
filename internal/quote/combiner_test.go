package quote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/riftresearch/swap-coordinator/internal/aggrpc"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/rfqrpc"
	"github.com/riftresearch/swap-coordinator/internal/session"
	"github.com/riftresearch/swap-coordinator/internal/types/environments"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

type MockAggRpc struct {
	mock.Mock
}

func (m *MockAggRpc) GetQuote(ctx context.Context, req *aggrpc.QuoteRequest) (*aggrpc.QuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggrpc.QuoteResponse), args.Error(1)
}

func (m *MockAggRpc) SubmitOrder(ctx context.Context, req *aggrpc.OrderRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockAggRpc) GetOrderStatus(ctx context.Context, orderID string) (*aggrpc.OrderStatusResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggrpc.OrderStatusResponse), args.Error(1)
}

type MockRfqRpc struct {
	mock.Mock
}

func (m *MockRfqRpc) Quote(ctx context.Context, req *rfqrpc.QuoteRequest) (*rfqrpc.QuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rfqrpc.QuoteResponse), args.Error(1)
}

var (
	wbtcAsset = model.Asset{
		Symbol:   "WBTC",
		Chain:    model.ChainEthereum,
		Address:  "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599",
		Decimals: 8,
	}
	syntheticAsset = model.Asset{
		Symbol:      "sBTC",
		Chain:       model.ChainEthereum,
		Address:     "0x1111111111111111111111111111111111111111",
		Decimals:    8,
		IsSynthetic: true,
	}
	btcAsset = model.Asset{
		Symbol:   "BTC",
		Chain:    model.ChainBitcoin,
		Decimals: 8,
	}
)

func testCombiner(agg aggrpc.IAggRpc, rfq rfqrpc.IRfqRpc) *Combiner {
	appConfig := &config.AppConfig{
		Swap: config.DefaultSwapConfig(),
	}
	appConfig.Ethereum.SlippageBps = 50
	appConfig.Ethereum.ChainID = 1

	return NewCombiner(agg, rfq, NewPriceCache(), syntheticAsset, appConfig, logger.New(environments.Test))
}

func amount(value string) *model.Web3BigInt {
	return &model.Web3BigInt{Value: value, Decimal: 8}
}

func TestCombine_ToNativeExactInput_BuyAmountIsRfqToAmount(t *testing.T) {
	agg := new(MockAggRpc)
	rfq := new(MockRfqRpc)

	// Aggregator sells WBTC into the synthetic asset.
	agg.On("GetQuote", mock.Anything, mock.MatchedBy(func(req *aggrpc.QuoteRequest) bool {
		return req.SellToken == wbtcAsset.Address &&
			req.BuyToken == syntheticAsset.Address &&
			req.Kind == model.ExactInput &&
			req.SellAmount.Value == "100000000"
	})).Return(&aggrpc.QuoteResponse{
		SellAmount: amount("100000000"),
		BuyAmount:  amount("99500000"),
		FeeUsd:     12.5,
		ValidFor:   time.Minute,
	}, nil)

	// RFQ prices exactly the aggregator's synthetic proceeds into BTC.
	rfq.On("Quote", mock.Anything, mock.MatchedBy(func(req *rfqrpc.QuoteRequest) bool {
		return req.Type == model.ExactInput &&
			req.From.IsSynthetic &&
			req.Amount.Value == "99500000"
	})).Return(&rfqrpc.QuoteResponse{
		FromAmount:          amount("99500000"),
		ToAmount:            amount("99000000"),
		FeesUsd:             3.0,
		BitcoinMarkPriceUsd: 60000,
		ExpiresAt:           time.Now().Add(30 * time.Second),
	}, nil)

	c := testCombiner(agg, rfq)
	q, err := c.Combine(context.Background(), &CombineRequest{
		Direction:   session.DirectionToNative,
		InputAsset:  wbtcAsset,
		OutputAsset: btcAsset,
		Exactness:   model.ExactInput,
		Amount:      amount("100000000"),
		Quality:     model.QualityOptimal,
		RequestID:   7,
	})

	assert.NoError(t, err)
	// The quoted receive amount is the market maker's to-amount verbatim;
	// no second conversion is applied on top.
	assert.Equal(t, "99000000", q.BuyAmount.Value)
	assert.Equal(t, "100000000", q.SellAmount.Value)
	assert.Equal(t, uint64(7), q.RequestID)
	assert.Equal(t, model.QualityOptimal, q.Quality)
	assert.Equal(t, 12.5, q.Fees.ProtocolUsd)
	assert.Equal(t, 3.0, q.Fees.MarketMakerUsd)
	assert.Equal(t, float64(60000), q.BitcoinMarkPriceUsd)

	agg.AssertExpectations(t)
	rfq.AssertExpectations(t)
}

func TestCombine_ToNativeExactOutput_RfqLegRunsFirst(t *testing.T) {
	agg := new(MockAggRpc)
	rfq := new(MockRfqRpc)

	// RFQ learns the synthetic amount needed for the desired BTC output.
	rfq.On("Quote", mock.Anything, mock.MatchedBy(func(req *rfqrpc.QuoteRequest) bool {
		return req.Type == model.ExactOutput && req.Amount.Value == "50000000"
	})).Return(&rfqrpc.QuoteResponse{
		FromAmount:          amount("50400000"),
		ToAmount:            amount("50000000"),
		FeesUsd:             2.0,
		BitcoinMarkPriceUsd: 60000,
		ExpiresAt:           time.Now().Add(30 * time.Second),
	}, nil)

	// Aggregator then works backward to the WBTC input.
	agg.On("GetQuote", mock.Anything, mock.MatchedBy(func(req *aggrpc.QuoteRequest) bool {
		return req.Kind == model.ExactOutput && req.BuyAmount.Value == "50400000"
	})).Return(&aggrpc.QuoteResponse{
		SellAmount: amount("50700000"),
		BuyAmount:  amount("50400000"),
		FeeUsd:     8.0,
		ValidFor:   time.Minute,
	}, nil)

	c := testCombiner(agg, rfq)
	q, err := c.Combine(context.Background(), &CombineRequest{
		Direction:   session.DirectionToNative,
		InputAsset:  wbtcAsset,
		OutputAsset: btcAsset,
		Exactness:   model.ExactOutput,
		Amount:      amount("50000000"),
		Quality:     model.QualityOptimal,
		RequestID:   3,
	})

	assert.NoError(t, err)
	assert.Equal(t, "50700000", q.SellAmount.Value)
	assert.Equal(t, "50000000", q.BuyAmount.Value)

	agg.AssertExpectations(t)
	rfq.AssertExpectations(t)
}

func TestCombine_SyntheticInputSkipsAggregator(t *testing.T) {
	agg := new(MockAggRpc)
	rfq := new(MockRfqRpc)

	rfq.On("Quote", mock.Anything, mock.MatchedBy(func(req *rfqrpc.QuoteRequest) bool {
		return req.From.IsSynthetic && req.To.IsBitcoin()
	})).Return(&rfqrpc.QuoteResponse{
		FromAmount:          amount("100000000"),
		ToAmount:            amount("99900000"),
		FeesUsd:             1.0,
		BitcoinMarkPriceUsd: 60000,
		ExpiresAt:           time.Now().Add(30 * time.Second),
	}, nil)

	c := testCombiner(agg, rfq)
	q, err := c.Combine(context.Background(), &CombineRequest{
		Direction:   session.DirectionToNative,
		InputAsset:  syntheticAsset,
		OutputAsset: btcAsset,
		Exactness:   model.ExactInput,
		Amount:      amount("100000000"),
		Quality:     model.QualityFast,
		RequestID:   1,
	})

	assert.NoError(t, err)
	assert.Equal(t, "99900000", q.BuyAmount.Value)
	assert.Zero(t, q.Fees.ProtocolUsd)

	// No aggregator hop at all.
	agg.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
}

func TestCombine_ToSyntheticIsRfqOnly(t *testing.T) {
	agg := new(MockAggRpc)
	rfq := new(MockRfqRpc)

	rfq.On("Quote", mock.Anything, mock.MatchedBy(func(req *rfqrpc.QuoteRequest) bool {
		return req.From.IsBitcoin() && req.To.IsSynthetic
	})).Return(&rfqrpc.QuoteResponse{
		FromAmount:          amount("100000000"),
		ToAmount:            amount("99800000"),
		FeesUsd:             1.5,
		BitcoinMarkPriceUsd: 60000,
		ExpiresAt:           time.Now().Add(30 * time.Second),
	}, nil)

	c := testCombiner(agg, rfq)
	q, err := c.Combine(context.Background(), &CombineRequest{
		Direction:   session.DirectionToSynthetic,
		InputAsset:  btcAsset,
		OutputAsset: syntheticAsset,
		Exactness:   model.ExactInput,
		Amount:      amount("100000000"),
		Quality:     model.QualityOptimal,
		RequestID:   2,
	})

	assert.NoError(t, err)
	assert.Equal(t, "99800000", q.BuyAmount.Value)
	agg.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
}

func TestCombine_RecordsMarkPrice(t *testing.T) {
	agg := new(MockAggRpc)
	rfq := new(MockRfqRpc)

	rfq.On("Quote", mock.Anything, mock.Anything).Return(&rfqrpc.QuoteResponse{
		FromAmount:          amount("100000000"),
		ToAmount:            amount("99900000"),
		BitcoinMarkPriceUsd: 61234,
		ExpiresAt:           time.Now().Add(30 * time.Second),
	}, nil)

	c := testCombiner(agg, rfq)
	_, err := c.Combine(context.Background(), &CombineRequest{
		Direction:   session.DirectionToSynthetic,
		InputAsset:  btcAsset,
		OutputAsset: syntheticAsset,
		Exactness:   model.ExactInput,
		Amount:      amount("100000000"),
		Quality:     model.QualityOptimal,
		RequestID:   1,
	})
	assert.NoError(t, err)

	price, ok := c.prices.UsdPrice("BTC")
	assert.True(t, ok)
	assert.Equal(t, float64(61234), price)

	price, ok = c.prices.UsdPrice("sBTC")
	assert.True(t, ok)
	assert.Equal(t, float64(61234), price)
}
