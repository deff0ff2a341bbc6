package model

import "time"

type SwapStatus string

const (
	SwapStatusPending                     SwapStatus = "pending"
	SwapStatusWaitingUserDepositInitiated SwapStatus = "waiting_user_deposit_initiated"
	SwapStatusWaitingUserDepositConfirmed SwapStatus = "waiting_user_deposit_confirmed"
	SwapStatusWaitingMMDepositInitiated   SwapStatus = "waiting_mm_deposit_initiated"
	SwapStatusWaitingMMDepositConfirmed   SwapStatus = "waiting_mm_deposit_confirmed"
	SwapStatusSettled                     SwapStatus = "settled"

	SwapStatusRefundingUser        SwapStatus = "refunding_user"
	SwapStatusRefundingMM          SwapStatus = "refunding_mm"
	SwapStatusUserRefundedDetected SwapStatus = "user_refunded_detected"
)

// swapStatusOrder positions each non-terminal status in the settlement
// pipeline. Refund branches are appended out of band and carry no position.
var swapStatusOrder = map[SwapStatus]int{
	SwapStatusPending:                     0,
	SwapStatusWaitingUserDepositInitiated: 1,
	SwapStatusWaitingUserDepositConfirmed: 2,
	SwapStatusWaitingMMDepositInitiated:   3,
	SwapStatusWaitingMMDepositConfirmed:   4,
	SwapStatusSettled:                     5,
}

func (s SwapStatus) PipelineIndex() (int, bool) {
	idx, ok := swapStatusOrder[s]
	return idx, ok
}

func (s SwapStatus) IsRefund() bool {
	switch s {
	case SwapStatusRefundingUser, SwapStatusRefundingMM, SwapStatusUserRefundedDetected:
		return true
	}
	return false
}

func (s SwapStatus) IsTerminal() bool {
	return s == SwapStatusSettled || s == SwapStatusUserRefundedDetected
}

type StepState string

const (
	StepNotStarted StepState = "not_started"
	StepInProgress StepState = "in_progress"
	StepCompleted  StepState = "completed"
)

// ExecutionPipelineStep is derived at read time from a persisted swap
// record; step lists are never mutated in place.
type ExecutionPipelineStep struct {
	Status   SwapStatus     `json:"status"`
	Label    string         `json:"label"`
	State    StepState      `json:"state"`
	TxHash   string         `json:"tx_hash,omitempty"`
	TxChain  Chain          `json:"tx_chain,omitempty"`
	Duration *time.Duration `json:"duration,omitempty"`
}

var stepLabels = map[SwapStatus]string{
	SwapStatusPending:                     "Awaiting deposit",
	SwapStatusWaitingUserDepositInitiated: "Deposit detected",
	SwapStatusWaitingUserDepositConfirmed: "Deposit confirmed",
	SwapStatusWaitingMMDepositInitiated:   "Market maker sending",
	SwapStatusWaitingMMDepositConfirmed:   "Market maker confirmed",
	SwapStatusSettled:                     "Settled",
	SwapStatusRefundingUser:               "Refunding",
	SwapStatusRefundingMM:                 "Market maker refunding",
	SwapStatusUserRefundedDetected:        "Refunded",
}

func (s SwapStatus) Label() string {
	if label, ok := stepLabels[s]; ok {
		return label
	}
	return string(s)
}
