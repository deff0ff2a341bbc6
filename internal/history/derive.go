package history

import (
	"github.com/riftresearch/swap-coordinator/internal/model"
)

// pipeline is the canonical ordered settlement flow a swap walks through.
var pipeline = []model.SwapStatus{
	model.SwapStatusPending,
	model.SwapStatusWaitingUserDepositInitiated,
	model.SwapStatusWaitingUserDepositConfirmed,
	model.SwapStatusWaitingMMDepositInitiated,
	model.SwapStatusWaitingMMDepositConfirmed,
	model.SwapStatusSettled,
}

// DeriveSteps maps a persisted swap record to its ordered pipeline steps.
// Pure: the record is the single source of truth and step state is always
// recomputed on read, never persisted.
//
// Steps strictly before the record's status are completed, the status's own
// step is in progress (completed when the status is terminal), and later
// steps have not started. A refund-branch status renders the walked prefix
// plus the refund step itself.
func DeriveSteps(order *model.SwapOrder) []model.ExecutionPipelineStep {
	if order.Status.IsRefund() {
		return deriveRefundSteps(order)
	}

	idx, ok := order.Status.PipelineIndex()
	if !ok {
		idx = 0
	}

	steps := make([]model.ExecutionPipelineStep, 0, len(pipeline))
	for i, status := range pipeline {
		state := model.StepNotStarted
		switch {
		case i < idx:
			state = model.StepCompleted
		case i == idx:
			if order.Status.IsTerminal() {
				state = model.StepCompleted
			} else {
				state = model.StepInProgress
			}
		}
		steps = append(steps, model.ExecutionPipelineStep{
			Status:  status,
			Label:   status.Label(),
			State:   state,
			TxHash:  stepTxHash(order, status),
			TxChain: stepTxChain(order, status),
		})
	}
	return steps
}

// deriveRefundSteps renders a swap that left the settlement pipeline: every
// pipeline step the swap actually reached stays completed, followed by the
// refund status itself.
func deriveRefundSteps(order *model.SwapOrder) []model.ExecutionPipelineStep {
	refundState := model.StepInProgress
	if order.Status.IsTerminal() {
		refundState = model.StepCompleted
	}

	// Without a recorded stall point, assume the user deposit landed; a
	// refund implies at least an initiated deposit.
	reached := 1

	steps := make([]model.ExecutionPipelineStep, 0, reached+2)
	for i := 0; i <= reached; i++ {
		steps = append(steps, model.ExecutionPipelineStep{
			Status:  pipeline[i],
			Label:   pipeline[i].Label(),
			State:   model.StepCompleted,
			TxHash:  stepTxHash(order, pipeline[i]),
			TxChain: stepTxChain(order, pipeline[i]),
		})
	}
	steps = append(steps, model.ExecutionPipelineStep{
		Status: order.Status,
		Label:  order.Status.Label(),
		State:  refundState,
	})
	return steps
}

// MarkRefunded rewrites a derived step list after a confirmed silent refund:
// the stalled in-progress step is completed with its original label (it did
// happen, it just never led to settlement), everything after it is dropped,
// and a terminal refunded step is appended.
func MarkRefunded(steps []model.ExecutionPipelineStep) []model.ExecutionPipelineStep {
	cut := len(steps)
	for i := range steps {
		if steps[i].State == model.StepInProgress {
			steps[i].State = model.StepCompleted
			cut = i + 1
			break
		}
	}

	out := make([]model.ExecutionPipelineStep, 0, cut+1)
	out = append(out, steps[:cut]...)
	out = append(out, model.ExecutionPipelineStep{
		Status: model.SwapStatusUserRefundedDetected,
		Label:  model.SwapStatusUserRefundedDetected.Label(),
		State:  model.StepCompleted,
	})
	return out
}

func stepTxHash(order *model.SwapOrder, status model.SwapStatus) string {
	switch status {
	case model.SwapStatusWaitingUserDepositInitiated:
		return order.UserTxHash
	case model.SwapStatusWaitingMMDepositInitiated, model.SwapStatusSettled:
		return order.MMTxHash
	}
	return ""
}

func stepTxChain(order *model.SwapOrder, status model.SwapStatus) model.Chain {
	if stepTxHash(order, status) == "" {
		return ""
	}
	// The user leg moves the input asset, the market-maker leg the output.
	userOnBitcoin := order.Direction == "to_synthetic"
	switch status {
	case model.SwapStatusWaitingUserDepositInitiated:
		if userOnBitcoin {
			return model.ChainBitcoin
		}
		return model.ChainEthereum
	case model.SwapStatusWaitingMMDepositInitiated, model.SwapStatusSettled:
		if userOnBitcoin {
			return model.ChainEthereum
		}
		return model.ChainBitcoin
	}
	return ""
}
