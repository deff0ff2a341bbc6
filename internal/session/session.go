package session

import (
	"sync"
	"time"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

type Direction string

const (
	DirectionToNative    Direction = "to_native"
	DirectionToSynthetic Direction = "to_synthetic"
)

type Field string

const (
	FieldInput  Field = "input"
	FieldOutput Field = "output"
)

// Session is the single mutable state for one quoting/execution attempt.
// Quote fields are written only through the QuoteWriter capability and
// execution fields only through the ExecutionWriter capability; every
// asynchronous write re-validates the request id under the lock.
type Session struct {
	mu sync.Mutex

	id          string
	direction   Direction
	inputAsset  model.Asset
	outputAsset model.Asset

	inputAmount        string
	fullPrecisionInput *model.Web3BigInt
	outputAmount       string
	lastEdited         Field
	usdEquivalent      float64

	requestID      uint64
	activeQuote    *model.Quote
	appliedQuality model.QualityTier

	approval     model.ApprovalState
	orderStatus  model.OrderStatus
	orderID      string
	pendingOtcID string

	destinationAddress string
	evmAddress         string
	walletConnected    bool

	swapPressed         bool
	approvalResumeArmed bool
	reconnectSubmitUsed bool

	serviceDown      bool
	refetchRequested bool
	lastError        *model.SwapError
}

func New(id string, direction Direction, inputAsset, outputAsset model.Asset) *Session {
	return &Session{
		id:          id,
		direction:   direction,
		inputAsset:  inputAsset,
		outputAsset: outputAsset,
		lastEdited:  FieldInput,
		approval:    model.ApprovalUnknown,
		orderStatus: model.OrderStatusNoOrder,
	}
}

func (s *Session) ID() string {
	return s.id
}

// NextRequestID supersedes every in-flight quote fetch. Callbacks holding an
// older id will be dropped by ApplyQuote.
func (s *Session) NextRequestID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestID++
	s.appliedQuality = ""
	return s.requestID
}

func (s *Session) IsCurrent(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return id == s.requestID
}

// ApplyQuote installs a quote if and only if its request id is still
// current and its quality does not regress an already-applied quote of the
// same id. Returns false when the result was dropped as stale.
func (s *Session) ApplyQuote(q *model.Quote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.RequestID != s.requestID {
		return false
	}
	if s.appliedQuality != "" && q.Quality.Rank() < s.appliedQuality.Rank() {
		return false
	}

	s.activeQuote = q
	s.appliedQuality = q.Quality
	s.serviceDown = false
	s.lastError = nil

	switch s.lastEdited {
	case FieldInput:
		s.outputAmount = formatAmount(q.BuyAmount)
	case FieldOutput:
		s.inputAmount = formatAmount(q.SellAmount)
	}
	return true
}

// FailQuote records a fetch failure under the same staleness rules as
// ApplyQuote: a failure whose request id is no longer current, or whose tier
// is outranked by an already-applied quote of the same id, is discarded
// without touching the applied quote. Returns false when dropped.
func (s *Session) FailQuote(requestID uint64, quality model.QualityTier, err *model.SwapError) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requestID != s.requestID {
		return false
	}
	if s.appliedQuality != "" && quality.Rank() < s.appliedQuality.Rank() {
		return false
	}

	s.activeQuote = nil
	s.appliedQuality = ""
	s.lastError = err
	if err != nil && err.Code == model.ErrServiceUnavailable {
		s.serviceDown = true
	}
	return true
}

func (s *Session) ClearQuote() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeQuote = nil
	s.appliedQuality = ""
}

func (s *Session) SetServiceDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serviceDown = true
	s.activeQuote = nil
	s.appliedQuality = ""
}

// RequestRefetch marks the session for one immediate optimal refresh.
// Repeated requests before the refresh loop consumes the flag collapse into
// a single fetch.
func (s *Session) RequestRefetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refetchRequested = true
}

// ConsumeRefetch clears the manual refetch flag, reporting whether it was
// set. The auto-refresh loop uses this for its one-shot immediate refresh.
func (s *Session) ConsumeRefetch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.refetchRequested
	s.refetchRequested = false
	return was
}

// EditAmount records a user edit on one field, clearing the active quote.
// A "max" shortcut passes fullPrecision when the true balance exceeds
// display precision.
func (s *Session) EditAmount(field Field, amount string, fullPrecision *model.Web3BigInt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastEdited = field
	switch field {
	case FieldInput:
		s.inputAmount = amount
		s.fullPrecisionInput = fullPrecision
	case FieldOutput:
		s.outputAmount = amount
		s.fullPrecisionInput = nil
	}
	s.activeQuote = nil
	s.appliedQuality = ""
}

func (s *Session) SetDirection(direction Direction, inputAsset, outputAsset model.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.direction = direction
	s.inputAsset = inputAsset
	s.outputAsset = outputAsset
	s.approval = model.ApprovalUnknown
	s.activeQuote = nil
	s.appliedQuality = ""
	s.requestID++
	s.inputAmount = ""
	s.outputAmount = ""
	s.fullPrecisionInput = nil
	s.usdEquivalent = 0
}

// SetUsdEquivalent records the USD value of the last-edited amount at
// last-known prices, for display only.
func (s *Session) SetUsdEquivalent(usd float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usdEquivalent = usd
}

func (s *Session) SetDestination(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destinationAddress = address
}

func (s *Session) SetEvmAddress(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evmAddress = address
}

// SetWalletConnected flips the connection flag. The first reconnect with a
// live quote may auto-trigger one submission; the caller decides via
// ArmReconnectSubmit.
func (s *Session) SetWalletConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.walletConnected = connected
	if !connected {
		s.reconnectSubmitUsed = false
	}
}

// ArmReconnectSubmit reports true at most once per connection cycle, and
// only when a live, optimal quote is present.
func (s *Session) ArmReconnectSubmit(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reconnectSubmitUsed || !s.walletConnected {
		return false
	}
	if s.activeQuote == nil || s.activeQuote.Expired(now) || s.activeQuote.Quality != model.QualityOptimal {
		return false
	}
	s.reconnectSubmitUsed = true
	return true
}

func formatAmount(amount *model.Web3BigInt) string {
	if amount == nil {
		return ""
	}
	return amount.DecimalString()
}
