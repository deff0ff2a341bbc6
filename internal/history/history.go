package history

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/riftresearch/swap-coordinator/internal/btcrpc"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/otcrpc"
	"github.com/riftresearch/swap-coordinator/internal/store"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
	"github.com/riftresearch/swap-coordinator/internal/view"
)

type History struct {
	otc       otcrpc.IOtcRpc
	btcRpc    btcrpc.IBtcRpc
	store     *store.Store
	db        *gorm.DB
	appConfig *config.AppConfig
	logger    *logger.Logger
}

func New(
	otc otcrpc.IOtcRpc,
	btcRpc btcrpc.IBtcRpc,
	s *store.Store,
	db *gorm.DB,
	appConfig *config.AppConfig,
	logger *logger.Logger,
) IHistory {
	return &History{
		otc:       otc,
		btcRpc:    btcRpc,
		store:     s,
		db:        db,
		appConfig: appConfig,
		logger:    logger,
	}
}

func (h *History) List(ctx context.Context, evmAddress string, page int) (*view.PagingResponse[Entry], error) {
	pageSize := h.appConfig.Otc.PageSize
	orders, total, err := h.store.SwapOrder.ListByEvmAddress(h.db, evmAddress, page, pageSize)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(orders))
	for i := range orders {
		order := &orders[i]
		h.refreshFromOtc(ctx, order)

		if !visible(order) {
			continue
		}

		steps := DeriveSteps(order)
		status := order.Status
		if h.refundDetected(ctx, order) {
			steps = MarkRefunded(steps)
			status = model.SwapStatusUserRefundedDetected
		}

		entries = append(entries, Entry{
			OtcSwapID:       order.OtcSwapID,
			Direction:       order.Direction,
			InputSymbol:     order.InputSymbol,
			InputAmount:     order.InputAmount,
			OutputSymbol:    order.OutputSymbol,
			OutputAmount:    order.OutputAmount,
			Status:          status,
			RefundAvailable: order.RefundAvailable,
			Steps:           steps,
			CreatedAt:       order.CreatedAt.Format(time.RFC3339),
		})
	}

	// Paging runs over storage rows, not visible entries: Total and HasMore
	// count hidden pre-deposit drafts too, so page boundaries stay stable
	// when a draft later becomes refundable and surfaces. A page can carry
	// fewer than pageSize entries while HasMore is still true.
	return &view.PagingResponse[Entry]{
		Data:    entries,
		Page:    page,
		HasMore: int64(page*pageSize) < total,
		Total:   total,
	}, nil
}

// visible hides pre-deposit records: they are abandoned drafts unless the
// server independently marks them refundable, which covers partial or
// abandoned deposits that are nonetheless refundable.
func visible(order *model.SwapOrder) bool {
	return order.Status != model.SwapStatusPending || order.RefundAvailable
}

// refreshFromOtc overlays the OTC service's live status and refund flag on a
// non-terminal record, persisting what changed. Failures degrade to the
// stored snapshot.
func (h *History) refreshFromOtc(ctx context.Context, order *model.SwapOrder) {
	if order.Status.IsTerminal() {
		return
	}

	record, err := h.otc.GetSwap(ctx, order.OtcSwapID)
	if err != nil {
		h.logger.Error("[refreshFromOtc][GetSwap]", map[string]string{
			"otcSwapId": order.OtcSwapID,
			"error":     err.Error(),
		})
		return
	}

	if record.Status != order.Status {
		order.Status = record.Status
		if record.MMTxHash != "" {
			order.MMTxHash = record.MMTxHash
		}
		if err := h.store.SwapOrder.UpdateStatus(h.db, order.OtcSwapID, record.Status); err != nil {
			h.logger.Error("[refreshFromOtc][UpdateStatus]", map[string]string{
				"otcSwapId": order.OtcSwapID,
				"error":     err.Error(),
			})
		}
	}
	if record.RefundAvailable != order.RefundAvailable {
		order.RefundAvailable = record.RefundAvailable
		if err := h.store.SwapOrder.UpdateRefundAvailable(h.db, order.OtcSwapID, record.RefundAvailable); err != nil {
			h.logger.Error("[refreshFromOtc][UpdateRefundAvailable]", map[string]string{
				"otcSwapId": order.OtcSwapID,
				"error":     err.Error(),
			})
		}
	}
}

// refundDetected confirms a silent refund: the server flags the swap as
// refund-eligible AND the escrow deposit address no longer carries the
// balance the server expected to sweep. Requiring both sides keeps a
// still-sweepable deposit from being mislabeled.
func (h *History) refundDetected(ctx context.Context, order *model.SwapOrder) bool {
	if !order.RefundAvailable || order.Status.IsTerminal() {
		return false
	}
	if order.DepositAddress == "" || order.Direction != "to_synthetic" {
		// Only bitcoin-side deposits are checkable from here; EVM-side
		// escrow is settled by the contract itself.
		return false
	}

	balance, err := h.btcRpc.AddressBalance(ctx, order.DepositAddress)
	if err != nil {
		h.logger.Error("[refundDetected][AddressBalance]", map[string]string{
			"address": order.DepositAddress,
			"error":   err.Error(),
		})
		return false
	}
	if balance.IsZero() {
		return true
	}
	// Residue under the sweep floor is unspendable change, not a live deposit.
	sats, ok := balance.Int64()
	return ok && sats < h.appConfig.Bitcoin.MinSweepSats
}

func (h *History) ReconcileUnsettled(ctx context.Context) error {
	orders, err := h.store.SwapOrder.FindUnsettled(h.db)
	if err != nil {
		return err
	}
	for i := range orders {
		h.refreshFromOtc(ctx, &orders[i])
		if orders[i].Status == model.SwapStatusSettled {
			if err := h.store.SwapOrder.MarkSettled(h.db, orders[i].OtcSwapID, orders[i].MMTxHash); err != nil {
				h.logger.Error("[ReconcileUnsettled][MarkSettled]", map[string]string{
					"otcSwapId": orders[i].OtcSwapID,
					"error":     err.Error(),
				})
			}
		}
	}
	return nil
}
