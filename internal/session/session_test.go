package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

func testAssets() (model.Asset, model.Asset) {
	wbtc := model.Asset{
		Symbol:   "WBTC",
		Chain:    model.ChainEthereum,
		Address:  "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599",
		Decimals: 8,
	}
	btc := model.Asset{
		Symbol:   "BTC",
		Chain:    model.ChainBitcoin,
		Decimals: 8,
	}
	return wbtc, btc
}

func testQuote(requestID uint64, quality model.QualityTier) *model.Quote {
	wbtc, btc := testAssets()
	return &model.Quote{
		Exactness:  model.ExactInput,
		SellAsset:  wbtc,
		BuyAsset:   btc,
		SellAmount: &model.Web3BigInt{Value: "100000000", Decimal: 8},
		BuyAmount:  &model.Web3BigInt{Value: "99000000", Decimal: 8},
		ExpiresAt:  time.Now().Add(time.Minute),
		Quality:    quality,
		RequestID:  requestID,
	}
}

func TestApplyQuote_StaleRequestDropped(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	i1 := s.NextRequestID()
	i2 := s.NextRequestID()
	assert.Less(t, i1, i2)

	// The older edit's result resolves after the newer id was issued. It
	// must be dropped even though the newer result has not arrived yet.
	applied := s.ApplyQuote(testQuote(i1, model.QualityOptimal))
	assert.False(t, applied)
	assert.Nil(t, s.Snapshot().ActiveQuote)

	applied = s.ApplyQuote(testQuote(i2, model.QualityOptimal))
	assert.True(t, applied)
	assert.Equal(t, i2, s.Snapshot().ActiveQuote.RequestID)
}

func TestApplyQuote_FastNeverOverwritesOptimal(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	id := s.NextRequestID()

	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))

	// Same id, worse tier, arriving late.
	assert.False(t, s.ApplyQuote(testQuote(id, model.QualityFast)))
	assert.Equal(t, model.QualityOptimal, s.Snapshot().ActiveQuote.Quality)
}

func TestApplyQuote_OptimalUpgradesFast(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	id := s.NextRequestID()

	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityFast)))
	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))
	assert.Equal(t, model.QualityOptimal, s.Snapshot().ActiveQuote.Quality)
}

func TestApplyQuote_WritesOppositeField(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	s.EditAmount(FieldInput, "1", nil)
	id := s.NextRequestID()
	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))

	snap := s.Snapshot()
	assert.Equal(t, "1", snap.InputAmount)
	assert.Equal(t, "0.99", snap.OutputAmount)
}

func TestApplyQuote_ClearsServiceDown(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	s.SetServiceDown()
	assert.True(t, s.Snapshot().ServiceDown)

	id := s.NextRequestID()
	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))
	assert.False(t, s.Snapshot().ServiceDown)
}

func TestFailQuote_FollowsApplyRules(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	id := s.NextRequestID()
	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))

	// A lower-tier failure under the same id is as stale as a lower-tier
	// result: it must not clear the applied quote.
	dropped := s.FailQuote(id, model.QualityFast, model.NewSwapError(model.ErrTransport, "late failure"))
	assert.False(t, dropped)
	assert.NotNil(t, s.Snapshot().ActiveQuote)
	assert.Nil(t, s.Snapshot().LastError)

	// A failure holding an old id is dropped outright.
	newID := s.NextRequestID()
	assert.False(t, s.FailQuote(id, model.QualityOptimal, model.NewSwapError(model.ErrTransport, "stale")))

	// A current failure with nothing better applied lands.
	assert.True(t, s.FailQuote(newID, model.QualityOptimal, model.NewSwapError(model.ErrTransport, "fresh")))
	snap := s.Snapshot()
	assert.Nil(t, snap.ActiveQuote)
	assert.Equal(t, "fresh", snap.LastError.Message)
}

func TestFailQuote_ServiceUnavailableLatches(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	id := s.NextRequestID()
	assert.True(t, s.FailQuote(id, model.QualityOptimal,
		model.NewSwapError(model.ErrServiceUnavailable, "circuit open")))
	assert.True(t, s.Snapshot().ServiceDown)

	id = s.NextRequestID()
	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))
	assert.False(t, s.Snapshot().ServiceDown)
}

func TestEditAmount_ClearsQuote(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	id := s.NextRequestID()
	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))

	s.EditAmount(FieldInput, "2", nil)
	assert.Nil(t, s.Snapshot().ActiveQuote)

	// A fresh result for the old id must not resurrect the cleared quote
	// with a different quality.
	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityFast)))
}

func TestSetDirection_ResetsState(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	s.EditAmount(FieldInput, "1", nil)
	id := s.NextRequestID()
	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))
	s.SetApproval(model.ApprovalApproved)

	s.SetDirection(DirectionToSynthetic, btc, wbtc)

	snap := s.Snapshot()
	assert.Nil(t, snap.ActiveQuote)
	assert.Empty(t, snap.InputAmount)
	assert.Empty(t, snap.OutputAmount)
	assert.Equal(t, model.ApprovalUnknown, snap.Approval)

	// The old id is dead after a direction change.
	assert.False(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))
}

func TestArmReconnectSubmit_OncePerConnection(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)
	now := time.Now()

	// Not connected yet.
	assert.False(t, s.ArmReconnectSubmit(now))

	s.SetWalletConnected(true)

	// Connected but no quote.
	assert.False(t, s.ArmReconnectSubmit(now))

	id := s.NextRequestID()
	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityFast)))

	// A fast quote is indicative only.
	assert.False(t, s.ArmReconnectSubmit(now))

	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))
	assert.True(t, s.ArmReconnectSubmit(now))

	// Second reconnect event in the same connection cycle.
	assert.False(t, s.ArmReconnectSubmit(now))

	// A disconnect re-arms the next connection.
	s.SetWalletConnected(false)
	s.SetWalletConnected(true)
	assert.True(t, s.ArmReconnectSubmit(now))
}

func TestConsumeApprovalResume_OncePerCycle(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	s.SetApproval(model.ApprovalApproving)

	// Approval confirmed but the user never pressed swap.
	assert.False(t, s.ConsumeApprovalResume())

	s.SetSwapPressed(true)
	s.SetApproval(model.ApprovalApproving)
	assert.True(t, s.ConsumeApprovalResume())
	assert.False(t, s.ConsumeApprovalResume())
}

func TestFailExecution_ResetsAndRequestsRefetch(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	id := s.NextRequestID()
	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))
	s.SetSwapPressed(true)

	s.FailExecution(model.NewSwapError(model.ErrTransport, "boom"))

	snap := s.Snapshot()
	assert.Nil(t, snap.ActiveQuote)
	assert.False(t, snap.SwapPressed)
	assert.Equal(t, model.ErrTransport, snap.LastError.Code)
	assert.True(t, s.ConsumeRefetch())
	assert.False(t, s.ConsumeRefetch())
}

func TestHasExecutableQuote(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)
	now := time.Now()

	assert.False(t, s.HasExecutableQuote(now))

	s.EditAmount(FieldInput, "1", nil)
	id := s.NextRequestID()

	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityFast)))
	assert.False(t, s.HasExecutableQuote(now), "fast tier is not executable")

	assert.True(t, s.ApplyQuote(testQuote(id, model.QualityOptimal)))
	assert.True(t, s.HasExecutableQuote(now))

	// Exactness must match the edited field.
	s.EditAmount(FieldOutput, "0.5", nil)
	id = s.NextRequestID()
	q := testQuote(id, model.QualityOptimal)
	q.Exactness = model.ExactInput
	assert.True(t, s.ApplyQuote(q))
	assert.False(t, s.HasExecutableQuote(now))

	q2 := testQuote(id, model.QualityOptimal)
	q2.Exactness = model.ExactOutput
	assert.True(t, s.ApplyQuote(q2))
	assert.True(t, s.HasExecutableQuote(now))

	// Expired quotes are unusable.
	assert.False(t, s.HasExecutableQuote(now.Add(2*time.Minute)))
}

func TestSetPendingOtcID_SurvivesFailure(t *testing.T) {
	wbtc, btc := testAssets()
	s := New("test", DirectionToNative, wbtc, btc)

	s.SetPendingOtcID("otc-123")
	s.FailExecution(model.NewSwapError(model.ErrTransport, "order submit failed"))

	assert.Equal(t, "otc-123", s.Snapshot().PendingOtcID)
}
