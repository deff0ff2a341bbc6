package quote

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/session"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals int
		want     string
		wantErr  bool
	}{
		{name: "whole number", input: "1", decimals: 8, want: "100000000"},
		{name: "decimal", input: "0.5", decimals: 8, want: "50000000"},
		{name: "leading dot", input: ".25", decimals: 8, want: "25000000"},
		{name: "full precision", input: "0.00000001", decimals: 8, want: "1"},
		{name: "whitespace trimmed", input: " 2 ", decimals: 8, want: "200000000"},
		{name: "too many places", input: "0.000000001", decimals: 8, wantErr: true},
		{name: "negative", input: "-1", decimals: 8, wantErr: true},
		{name: "empty", input: "", decimals: 8, wantErr: true},
		{name: "bare dot", input: ".", decimals: 8, wantErr: true},
		{name: "garbage", input: "abc", decimals: 8, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input, tt.decimals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.decimals, got.Decimal)
		})
	}
}

func TestDebouncer_ResetsNotQueues(t *testing.T) {
	d := NewDebouncer(50*time.Millisecond, 30*time.Millisecond)

	var fired int32
	for i := 0; i < 5; i++ {
		d.Trigger(session.FieldInput, func() {
			atomic.AddInt32(&fired, 1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired), "rapid edits collapse into one fetch")
}

func TestDebouncer_PerFieldTimers(t *testing.T) {
	d := NewDebouncer(30*time.Millisecond, 30*time.Millisecond)

	var inputFired, outputFired int32
	d.Trigger(session.FieldInput, func() { atomic.AddInt32(&inputFired, 1) })
	d.Trigger(session.FieldOutput, func() { atomic.AddInt32(&outputFired, 1) })

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inputFired))
	assert.Equal(t, int32(1), atomic.LoadInt32(&outputFired))
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(30*time.Millisecond, 30*time.Millisecond)

	var fired int32
	d.Trigger(session.FieldInput, func() { atomic.AddInt32(&fired, 1) })
	d.Cancel()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestCheckAmount_BalanceNeedsNoPrice(t *testing.T) {
	prices := NewPriceCache()
	asset := model.Asset{Symbol: "WBTC", Chain: model.ChainEthereum, Decimals: 8}

	amt := &model.Web3BigInt{Value: "200000000", Decimal: 8}
	balance := &model.Web3BigInt{Value: "100000000", Decimal: 8}

	// No price feed at all: the balance comparison still fires.
	assert.Equal(t, AmountExceedsBalance, CheckAmount(amt, asset, balance, prices, 10))
}

func TestCheckAmount_MinimumOnlyWithPrice(t *testing.T) {
	prices := NewPriceCache()
	asset := model.Asset{Symbol: "WBTC", Chain: model.ChainEthereum, Decimals: 8}

	tiny := &model.Web3BigInt{Value: "100", Decimal: 8}

	// Unknown price: the USD floor is disabled, not guessed.
	assert.Equal(t, AmountOK, CheckAmount(tiny, asset, nil, prices, 10))

	prices.SetUsdPrice("WBTC", 60000)
	assert.Equal(t, AmountBelowMinimum, CheckAmount(tiny, asset, nil, prices, 10))

	enough := &model.Web3BigInt{Value: "100000", Decimal: 8}
	assert.Equal(t, AmountOK, CheckAmount(enough, asset, nil, prices, 10))
}
