package quote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/monitoring"
	"github.com/riftresearch/swap-coordinator/internal/session"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

type Service struct {
	combiner  *Combiner
	prices    *PriceCache
	appConfig *config.AppConfig
	logger    *logger.Logger
	metrics   *monitoring.ExternalAPIMetrics

	mu         sync.Mutex
	debouncers map[string]*Debouncer
	refreshers map[string]*Refresher
}

func NewService(combiner *Combiner, prices *PriceCache, appConfig *config.AppConfig, logger *logger.Logger, metrics *monitoring.ExternalAPIMetrics) IQuoteService {
	return &Service{
		combiner:   combiner,
		prices:     prices,
		appConfig:  appConfig,
		logger:     logger,
		metrics:    metrics,
		debouncers: make(map[string]*Debouncer),
		refreshers: make(map[string]*Refresher),
	}
}

func (s *Service) Prices() *PriceCache {
	return s.prices
}

func (s *Service) Edit(sess Session, field session.Field, amount string) error {
	sess.EditAmount(field, amount, nil)
	s.echoUsd(sess, field, amount)

	if amount == "" {
		s.debouncerFor(sess.ID()).Cancel()
		return nil
	}

	s.debouncerFor(sess.ID()).Trigger(field, func() {
		s.fetchUserInitiated(sess)
	})
	return nil
}

// UseMax enters the full balance; when the true balance carries more
// precision than the display cap, the full-precision value rides along so
// execution spends the real balance, not the rounded one.
func (s *Service) UseMax(sess Session, balance *model.Web3BigInt) error {
	display, fullPrecision := DisplayAmount(balance)

	sess.EditAmount(session.FieldInput, display, fullPrecision)
	s.echoUsd(sess, session.FieldInput, display)
	s.debouncerFor(sess.ID()).Cancel()
	s.fetchUserInitiated(sess)
	return nil
}

// UseMin enters the minimum swappable amount, converted from the USD floor
// at the last-known BTC price.
func (s *Service) UseMin(sess Session) error {
	snap := sess.Snapshot()
	price, ok := s.prices.UsdPrice(snap.InputAsset.Symbol)
	if !ok {
		return model.NewSwapError(model.ErrTransport, "no price available for minimum amount")
	}

	minAmount := model.FromFloat(s.appConfig.Swap.MinSwapUsd/price, snap.InputAsset.Decimals)
	sess.EditAmount(session.FieldInput, minAmount.DecimalString(), nil)
	s.echoUsd(sess, session.FieldInput, minAmount.DecimalString())
	s.debouncerFor(sess.ID()).Cancel()
	s.fetchUserInitiated(sess)
	return nil
}

// Refetch marks the session for one immediate optimal refresh. The flag
// coalesces: back-to-back calls cost a single fetch when the refresh loop
// consumes it.
func (s *Service) Refetch(sess Session) {
	sess.RequestRefetch()
}

// echoUsd refreshes the USD-equivalent display for the edited field from
// last-known prices, so the number updates at keystroke time without waiting
// for a quote. Zero when no price is cached or the amount does not parse.
func (s *Service) echoUsd(sess Session, field session.Field, amount string) {
	snap := sess.Snapshot()
	asset := snap.InputAsset
	if field == session.FieldOutput {
		asset = snap.OutputAsset
	}

	usd := 0.0
	if amount != "" {
		if parsed, err := ParseAmount(amount, asset.Decimals); err == nil {
			if price, ok := s.prices.UsdPrice(asset.Symbol); ok {
				usd = parsed.ToFloat() * price
			}
		}
	}
	sess.SetUsdEquivalent(usd)
}

// fetchUserInitiated issues a fast quote immediately and an optimal quote
// independently under one request id. The session's apply rule keeps a late
// fast result from clobbering an already-applied optimal one.
func (s *Service) fetchUserInitiated(sess Session) {
	id := sess.NextRequestID()
	req, err := s.buildRequest(sess, id)
	if err != nil {
		return
	}

	if !s.aboveMinimum(sess, req) {
		return
	}

	for _, tier := range []model.QualityTier{model.QualityFast, model.QualityOptimal} {
		go s.fetchOne(sess, req, tier)
	}
}

func (s *Service) fetchOne(sess Session, base *CombineRequest, tier model.QualityTier) {
	req := *base
	req.Quality = tier

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	quote, err := s.combiner.Combine(ctx, &req)
	if err != nil {
		// A failure is dropped under the same rules as a result: a late
		// fast-tier error must not wipe an applied optimal quote.
		if !sess.FailQuote(req.RequestID, tier, model.AsSwapError(err)) {
			return
		}
		s.logger.Error("[fetchOne][Combine]", map[string]string{
			"session": sess.ID(),
			"tier":    string(tier),
			"error":   err.Error(),
		})
		return
	}

	if !sess.ApplyQuote(quote) {
		if s.metrics != nil {
			s.metrics.RecordStaleQuote(string(tier))
		}
		s.logger.Debug("[fetchOne] dropped stale quote", map[string]string{
			"session":   sess.ID(),
			"tier":      string(tier),
			"requestId": fmt.Sprintf("%d", req.RequestID),
		})
	}
}

func (s *Service) buildRequest(sess Session, id uint64) (*CombineRequest, error) {
	snap := sess.Snapshot()

	exactness := model.ExactInput
	editedAmount := snap.InputAmount
	amountAsset := snap.InputAsset
	if snap.LastEdited == session.FieldOutput {
		exactness = model.ExactOutput
		editedAmount = snap.OutputAmount
		amountAsset = snap.OutputAsset
	}

	var amount *model.Web3BigInt
	if exactness == model.ExactInput && snap.FullPrecisionInput != nil {
		amount = snap.FullPrecisionInput
	} else {
		parsed, err := ParseAmount(editedAmount, amountAsset.Decimals)
		if err != nil {
			return nil, err
		}
		amount = parsed
	}
	if amount.IsZero() {
		return nil, model.NewSwapError(model.ErrBelowMinimum, "zero amount")
	}

	return &CombineRequest{
		Direction:   snap.Direction,
		InputAsset:  snap.InputAsset,
		OutputAsset: snap.OutputAsset,
		Exactness:   exactness,
		Amount:      amount,
		RequestID:   id,
	}, nil
}

// aboveMinimum enforces the USD floor when a price for the edited asset is
// known. A missing price feed disables the check rather than faking a
// balance error; the RFQ service remains the authority on its own limits.
func (s *Service) aboveMinimum(sess Session, req *CombineRequest) bool {
	symbol := req.InputAsset.Symbol
	if req.Exactness == model.ExactOutput {
		symbol = req.OutputAsset.Symbol
	}
	price, ok := s.prices.UsdPrice(symbol)
	if !ok {
		return true
	}

	usd := req.Amount.ToFloat() * price
	if usd < s.appConfig.Swap.MinSwapUsd {
		sess.SetLastError(model.NewSwapError(model.ErrBelowMinimum,
			fmt.Sprintf("amount is below the $%.0f minimum", s.appConfig.Swap.MinSwapUsd)))
		return false
	}
	return true
}

// refreshTick re-fetches only the optimal tier: the fast tier exists for
// first paint, not for keeping an already-displayed price fresh.
func (s *Service) refreshTick(sess Session, force bool) {
	snap := sess.Snapshot()
	if !force {
		if snap.ActiveQuote == nil || !snap.WalletConnected {
			return
		}
		if snap.InputAmount == "" && snap.OutputAmount == "" {
			return
		}
	}

	id := sess.NextRequestID()
	req, err := s.buildRequest(sess, id)
	if err != nil {
		return
	}
	go s.fetchOne(sess, req, model.QualityOptimal)
}

func (s *Service) StartAutoRefresh(sess Session, direction session.Direction) {
	interval := s.appConfig.Swap.RefreshToNative
	if direction == session.DirectionToSynthetic {
		interval = s.appConfig.Swap.RefreshToSynthetic
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refreshers[sess.ID()]; ok {
		return
	}
	r := NewRefresher(interval, func(force bool) {
		s.refreshTick(sess, force)
	}, func() bool {
		return sess.ConsumeRefetch()
	})
	s.refreshers[sess.ID()] = r
	r.Start()
}

func (s *Service) Teardown(sessID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.debouncers[sessID]; ok {
		d.Cancel()
		delete(s.debouncers, sessID)
	}
	if r, ok := s.refreshers[sessID]; ok {
		r.Stop()
		delete(s.refreshers, sessID)
	}
}

func (s *Service) debouncerFor(sessID string) *Debouncer {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.debouncers[sessID]
	if !ok {
		d = NewDebouncer(s.appConfig.Swap.InputDebounce, s.appConfig.Swap.OutputDebounce)
		s.debouncers[sessID] = d
	}
	return d
}
