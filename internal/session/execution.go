package session

import (
	"time"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

// Execution-side writes. Only the executor calls these.

func (s *Session) SetApproval(state model.ApprovalState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approval = state
	if state == model.ApprovalApproving {
		s.approvalResumeArmed = true
	}
}

// ConsumeApprovalResume reports whether a confirmed approval should
// auto-resume a pending swap. Fires at most once per approval cycle.
func (s *Session) ConsumeApprovalResume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.approvalResumeArmed || !s.swapPressed {
		return false
	}
	s.approvalResumeArmed = false
	return true
}

func (s *Session) SetSwapPressed(pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swapPressed = pressed
}

func (s *Session) SetOrderStatus(status model.OrderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderStatus = status
}

func (s *Session) SetOrder(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderID = orderID
}

// SetPendingOtcID keeps a created OTC record visible on the session when
// the follow-up order submission failed, for support and retry.
func (s *Session) SetPendingOtcID(otcID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingOtcID = otcID
}

func (s *Session) SetLastError(err *model.SwapError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
}

// FailExecution resets intent flags and clears the quote after any
// submission-path failure; the quote that drove the attempt can no longer
// be trusted.
func (s *Session) FailExecution(err *model.SwapError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
	s.swapPressed = false
	s.approvalResumeArmed = false
	s.activeQuote = nil
	s.appliedQuality = ""
	s.refetchRequested = true
}

// Snapshot is the read-only view handed to readers.
type Snapshot struct {
	ID                 string               `json:"id"`
	Direction          Direction            `json:"direction"`
	InputAsset         model.Asset          `json:"input_asset"`
	OutputAsset        model.Asset          `json:"output_asset"`
	InputAmount        string               `json:"input_amount"`
	FullPrecisionInput *model.Web3BigInt    `json:"full_precision_input,omitempty"`
	OutputAmount       string               `json:"output_amount"`
	UsdEquivalent      float64              `json:"usd_equivalent,omitempty"`
	LastEdited         Field                `json:"last_edited"`
	RequestID          uint64               `json:"request_id"`
	ActiveQuote        *model.Quote         `json:"active_quote,omitempty"`
	Approval           model.ApprovalState  `json:"approval"`
	OrderStatus        model.OrderStatus    `json:"order_status"`
	OrderID            string               `json:"order_id,omitempty"`
	PendingOtcID       string               `json:"pending_otc_id,omitempty"`
	DestinationAddress string               `json:"destination_address,omitempty"`
	EvmAddress         string               `json:"evm_address,omitempty"`
	WalletConnected    bool                 `json:"wallet_connected"`
	SwapPressed        bool                 `json:"swap_pressed"`
	ServiceDown        bool                 `json:"service_down"`
	LastError          *model.SwapError     `json:"last_error,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var quote *model.Quote
	if s.activeQuote != nil {
		q := *s.activeQuote
		quote = &q
	}

	return Snapshot{
		ID:                 s.id,
		Direction:          s.direction,
		InputAsset:         s.inputAsset,
		OutputAsset:        s.outputAsset,
		InputAmount:        s.inputAmount,
		FullPrecisionInput: s.fullPrecisionInput,
		OutputAmount:       s.outputAmount,
		UsdEquivalent:      s.usdEquivalent,
		LastEdited:         s.lastEdited,
		RequestID:          s.requestID,
		ActiveQuote:        quote,
		Approval:           s.approval,
		OrderStatus:        s.orderStatus,
		OrderID:            s.orderID,
		PendingOtcID:       s.pendingOtcID,
		DestinationAddress: s.destinationAddress,
		EvmAddress:         s.evmAddress,
		WalletConnected:    s.walletConnected,
		SwapPressed:        s.swapPressed,
		ServiceDown:        s.serviceDown,
		LastError:          s.lastError,
	}
}

// HasExecutableQuote reports whether an optimal, unexpired quote whose
// exactness matches the last-edited field is installed.
func (s *Session) HasExecutableQuote(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeQuote == nil || s.serviceDown {
		return false
	}
	if s.activeQuote.Quality != model.QualityOptimal {
		return false
	}
	if s.activeQuote.Expired(now) {
		return false
	}
	expected := model.ExactInput
	if s.lastEdited == FieldOutput {
		expected = model.ExactOutput
	}
	return s.activeQuote.Exactness == expected
}
