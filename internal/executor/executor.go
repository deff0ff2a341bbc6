package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"

	"github.com/riftresearch/swap-coordinator/internal/aggrpc"
	"github.com/riftresearch/swap-coordinator/internal/baserpc"
	"github.com/riftresearch/swap-coordinator/internal/btcrpc"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/otcrpc"
	"github.com/riftresearch/swap-coordinator/internal/quote"
	"github.com/riftresearch/swap-coordinator/internal/session"
	"github.com/riftresearch/swap-coordinator/internal/store"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

type Executor struct {
	agg       aggrpc.IAggRpc
	otc       otcrpc.IOtcRpc
	baseRpc   baserpc.IBaseRpc
	btcRpc    btcrpc.IBtcRpc
	prices    *quote.PriceCache
	store     *store.Store
	db        *gorm.DB
	appConfig *config.AppConfig
	logger    *logger.Logger

	// onOrderSubmitted starts status polling for a submitted order.
	onOrderSubmitted func(sess Sess, otcSwapID, orderID string)
}

func New(
	agg aggrpc.IAggRpc,
	otc otcrpc.IOtcRpc,
	baseRpc baserpc.IBaseRpc,
	btcRpc btcrpc.IBtcRpc,
	prices *quote.PriceCache,
	s *store.Store,
	db *gorm.DB,
	appConfig *config.AppConfig,
	logger *logger.Logger,
	onOrderSubmitted func(sess Sess, otcSwapID, orderID string),
) IExecutor {
	return &Executor{
		agg:              agg,
		otc:              otc,
		baseRpc:          baseRpc,
		btcRpc:           btcRpc,
		prices:           prices,
		store:            s,
		db:               db,
		appConfig:        appConfig,
		logger:           logger,
		onOrderSubmitted: onOrderSubmitted,
	}
}

func (e *Executor) Submit(ctx context.Context, sess Sess) (*SubmitResult, error) {
	sess.SetSwapPressed(true)

	snap := sess.Snapshot()
	if snap.ServiceDown {
		err := model.NewSwapError(model.ErrServiceUnavailable, "quoting service is unavailable")
		sess.SetLastError(err)
		sess.SetSwapPressed(false)
		return nil, err
	}

	if err := e.validateDestination(snap); err != nil {
		sess.SetLastError(model.AsSwapError(err))
		sess.SetSwapPressed(false)
		return nil, err
	}

	// Block until an optimal quote with matching exactness is installed.
	// A fast quote is indicative only and must never be executed.
	if err := e.waitForOptimalQuote(ctx, sess); err != nil {
		sess.FailExecution(model.AsSwapError(err))
		return nil, err
	}

	snap = sess.Snapshot()
	q := snap.ActiveQuote
	if q == nil {
		// An edit or direction change raced the wait and cleared the quote.
		err := model.NewSwapError(model.ErrQuoteExpired, "quote was invalidated before submission")
		sess.FailExecution(err)
		return nil, err
	}

	if err := e.checkAmount(ctx, snap, q); err != nil {
		sess.SetLastError(model.AsSwapError(err))
		sess.SetSwapPressed(false)
		return nil, err
	}

	if snap.InputAsset.RequiresApproval() {
		approved, err := e.ensureApproved(ctx, sess, snap, q)
		if err != nil {
			sess.FailExecution(model.AsSwapError(err))
			return nil, err
		}
		if !approved {
			// Approval tx is in flight; its confirmation auto-resumes
			// the pending swap exactly once.
			return nil, nil
		}
	}

	result, err := e.submitLeg(ctx, sess, snap, q)
	if err != nil {
		sess.FailExecution(model.AsSwapError(err))
		return nil, err
	}

	sess.SetSwapPressed(false)
	return result, nil
}

func (e *Executor) HandleWalletConnected(ctx context.Context, sess Sess) (*SubmitResult, error) {
	sess.SetWalletConnected(true)
	if !sess.ArmReconnectSubmit(time.Now()) {
		return nil, nil
	}
	return e.Submit(ctx, sess)
}

func (e *Executor) validateDestination(snap session.Snapshot) error {
	switch snap.Direction {
	case session.DirectionToNative:
		return e.btcRpc.ValidateAddress(snap.DestinationAddress)
	case session.DirectionToSynthetic:
		if !common.IsHexAddress(snap.DestinationAddress) {
			return model.NewSwapError(model.ErrInvalidDestination,
				"destination is not a valid EVM address")
		}
		return nil
	}
	return model.NewSwapError(model.ErrInvalidDestination, "unknown direction")
}

// waitForOptimalQuote polls the session until an executable optimal quote
// appears. Bounded; fails closed with QuoteTimeout rather than submitting
// a possibly-unfavorable fast quote.
func (e *Executor) waitForOptimalQuote(ctx context.Context, sess Sess) error {
	deadline := time.Now().Add(e.appConfig.Swap.OptimalWaitTimeout)
	for {
		if sess.HasExecutableQuote(time.Now()) {
			return nil
		}
		if time.Now().After(deadline) {
			return model.NewSwapError(model.ErrQuoteTimeout,
				"timed out waiting for an executable quote")
		}
		select {
		case <-ctx.Done():
			return model.NewSwapError(model.ErrQuoteTimeout, ctx.Err().Error())
		case <-time.After(e.appConfig.Swap.OptimalWaitInterval):
		}
	}
}

func (e *Executor) checkAmount(ctx context.Context, snap session.Snapshot, q *model.Quote) error {
	var balance *model.Web3BigInt
	if snap.InputAsset.Chain == model.ChainEthereum && !snap.InputAsset.IsNativeGas && snap.EvmAddress != "" {
		b, err := e.baseRpc.BalanceOf(ctx, snap.InputAsset.Address, snap.EvmAddress, snap.InputAsset.Decimals)
		if err != nil {
			e.logger.Error("[checkAmount][BalanceOf]", map[string]string{
				"error": err.Error(),
			})
		} else {
			balance = b
		}
	}

	switch quote.CheckAmount(q.SellAmount, snap.InputAsset, balance, e.prices, e.appConfig.Swap.MinSwapUsd) {
	case quote.AmountExceedsBalance:
		return model.NewSwapError(model.ErrExceedsBalance, "amount exceeds wallet balance")
	case quote.AmountBelowMinimum:
		return model.NewSwapError(model.ErrBelowMinimum,
			fmt.Sprintf("amount is below the $%.0f minimum", e.appConfig.Swap.MinSwapUsd))
	}
	return nil
}

// ensureApproved returns (true, nil) when the allowance already covers the
// sell amount, (false, nil) when an approval tx was broadcast and the swap
// will auto-resume on confirmation.
func (e *Executor) ensureApproved(ctx context.Context, sess Sess, snap session.Snapshot, q *model.Quote) (bool, error) {
	allowance, err := e.baseRpc.Allowance(ctx, snap.InputAsset.Address, snap.EvmAddress,
		e.appConfig.Ethereum.SettlementAddr, snap.InputAsset.Decimals)
	if err != nil {
		return false, err
	}

	if allowance.Cmp(q.SellAmount) >= 0 {
		sess.SetApproval(model.ApprovalApproved)
		return true, nil
	}

	sess.SetApproval(model.ApprovalNeeded)
	sess.SetApproval(model.ApprovalApproving)

	txHash, err := e.baseRpc.Approve(ctx, snap.InputAsset.Address,
		e.appConfig.Ethereum.SettlementAddr, q.SellAmount)
	if err != nil {
		sess.SetApproval(model.ApprovalNeeded)
		return false, model.NewSwapError(model.ErrApprovalRejected, err.Error())
	}

	go e.watchApproval(sess, txHash)
	return false, nil
}

// watchApproval confirms the approval tx and auto-resumes a pending swap
// attempt without a second user action.
func (e *Executor) watchApproval(sess Sess, txHash string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := e.baseRpc.WaitMined(ctx, txHash); err != nil {
		e.logger.Error("[watchApproval][WaitMined]", map[string]string{
			"txHash": txHash,
			"error":  err.Error(),
		})
		sess.FailExecution(model.NewSwapError(model.ErrApprovalRejected, err.Error()))
		return
	}

	sess.SetApproval(model.ApprovalApproved)

	if sess.ConsumeApprovalResume() {
		if _, err := e.Submit(context.Background(), sess); err != nil {
			e.logger.Error("[watchApproval][Submit]", map[string]string{
				"error": err.Error(),
			})
		}
	}
}

func (e *Executor) submitLeg(ctx context.Context, sess Sess, snap session.Snapshot, q *model.Quote) (*SubmitResult, error) {
	created, err := e.createOtcSwap(ctx, snap, q)
	if err != nil {
		return nil, err
	}

	switch {
	case snap.Direction == session.DirectionToSynthetic:
		// User pays BTC to the deposit address; nothing to sign here.
		e.persistOrder(snap, q, created, "", "", model.SwapStatusPending)
		return &SubmitResult{
			OtcSwapID:      created.SwapID,
			DepositAddress: created.DepositAddress,
		}, nil

	case snap.InputAsset.IsSynthetic:
		// Direct leg: transfer the synthetic asset into escrow.
		txHash, err := e.baseRpc.TransferToken(ctx, snap.InputAsset.Address, created.DepositAddress, q.SellAmount)
		if err != nil {
			sess.SetPendingOtcID(created.SwapID)
			return nil, err
		}
		e.persistOrder(snap, q, created, "", txHash, model.SwapStatusWaitingUserDepositInitiated)
		return &SubmitResult{
			OtcSwapID:      created.SwapID,
			DepositAddress: created.DepositAddress,
			UserTxHash:     txHash,
		}, nil

	default:
		// Aggregator hop: sell the EVM asset, routing proceeds straight to
		// the escrow deposit address.
		orderID, err := e.submitAggregatorOrder(ctx, sess, snap, q, created)
		if err != nil {
			// The OTC record was created; keep its id on the session for
			// support and retry visibility instead of dropping it.
			sess.SetPendingOtcID(created.SwapID)
			return nil, err
		}
		e.persistOrder(snap, q, created, orderID, "", model.SwapStatusWaitingUserDepositInitiated)
		sess.SetOrder(orderID)
		sess.SetOrderStatus(model.OrderStatusSigned)
		if e.onOrderSubmitted != nil {
			e.onOrderSubmitted(sess, created.SwapID, orderID)
		}
		return &SubmitResult{
			OtcSwapID:      created.SwapID,
			DepositAddress: created.DepositAddress,
			OrderID:        orderID,
		}, nil
	}
}

func (e *Executor) createOtcSwap(ctx context.Context, snap session.Snapshot, q *model.Quote) (*otcrpc.CreateSwapResponse, error) {
	return e.otc.CreateSwap(ctx, &otcrpc.CreateSwapRequest{
		Direction:          string(snap.Direction),
		InputSymbol:        snap.InputAsset.Symbol,
		OutputSymbol:       snap.OutputAsset.Symbol,
		InputAmount:        q.SellAmount,
		OutputAmount:       q.BuyAmount,
		DestinationAddress: snap.DestinationAddress,
		EvmAddress:         snap.EvmAddress,
		Metadata: map[string]string{
			"exactness":  string(q.Exactness),
			"quality":    string(q.Quality),
			"request_id": fmt.Sprintf("%d", q.RequestID),
		},
	})
}

func (e *Executor) submitAggregatorOrder(ctx context.Context, sess Sess, snap session.Snapshot, q *model.Quote, created *otcrpc.CreateSwapResponse) (string, error) {
	sess.SetOrderStatus(model.OrderStatusSigning)

	validTo := q.ExpiresAt.Unix()
	orderMsg := fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		snap.InputAsset.Address, e.appConfig.Ethereum.SyntheticAssetAddr,
		q.SellAmount.Value, q.BuyAmount.Value, created.DepositAddress, validTo)
	signature, err := e.baseRpc.SignMessage([]byte(orderMsg))
	if err != nil {
		sess.SetOrderStatus(model.OrderStatusNoOrder)
		return "", err
	}

	buyAmount := created.ExpectedAmount
	if buyAmount == nil {
		buyAmount = q.BuyAmount
	}
	orderID, err := e.agg.SubmitOrder(ctx, &aggrpc.OrderRequest{
		SellToken:  snap.InputAsset.Address,
		BuyToken:   e.appConfig.Ethereum.SyntheticAssetAddr,
		SellAmount: q.SellAmount,
		BuyAmount:  buyAmount,
		Kind:       q.Exactness,
		Receiver:   created.DepositAddress,
		From:       e.baseRpc.SignerAddress(),
		Signature:  signature,
		ValidTo:    validTo,
	})
	if err != nil {
		sess.SetOrderStatus(model.OrderStatusNoOrder)
		return "", err
	}
	return orderID, nil
}

func (e *Executor) persistOrder(snap session.Snapshot, q *model.Quote, created *otcrpc.CreateSwapResponse, orderID, userTxHash string, status model.SwapStatus) {
	if e.db == nil {
		return
	}
	err := store.DoInTx(e.db, func(tx *gorm.DB) error {
		_, err := e.store.SwapOrder.Create(tx, &model.SwapOrder{
			OtcSwapID:      created.SwapID,
			EvmAddress:     snap.EvmAddress,
			Direction:      string(snap.Direction),
			InputSymbol:    snap.InputAsset.Symbol,
			OutputSymbol:   snap.OutputAsset.Symbol,
			InputAmount:    q.SellAmount.Value,
			OutputAmount:   q.BuyAmount.Value,
			DepositAddress: created.DepositAddress,
			Status:         status,
			OrderID:        orderID,
			UserTxHash:     userTxHash,
		})
		return err
	})
	if err != nil {
		e.logger.Error("[persistOrder][Create]", map[string]string{
			"otcSwapId": created.SwapID,
			"error":     err.Error(),
		})
	}
}
