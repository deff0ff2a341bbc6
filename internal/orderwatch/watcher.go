package orderwatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/riftresearch/swap-coordinator/internal/aggrpc"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/store"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

// Sess is the slice of session state the watcher writes back into.
type Sess interface {
	ID() string
	SetOrderStatus(status model.OrderStatus)
	FailExecution(err *model.SwapError)
}

// Watcher polls one aggregator order until it settles or dies. A poke
// channel delivers out-of-band wakeups (e.g. a client regaining focus)
// that trigger an immediate poll instead of waiting out the interval.
type Watcher struct {
	agg       aggrpc.IAggRpc
	store     *store.Store
	db        *gorm.DB
	logger    *logger.Logger
	interval  time.Duration

	sess      Sess
	otcSwapID string
	orderID   string

	poke     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	inFlight atomic.Bool

	// onDone, when set, runs exactly once as the watch loop exits.
	onDone func()
}

func New(
	agg aggrpc.IAggRpc,
	s *store.Store,
	db *gorm.DB,
	logger *logger.Logger,
	interval time.Duration,
	sess Sess,
	otcSwapID, orderID string,
) *Watcher {
	return &Watcher{
		agg:       agg,
		store:     s,
		db:        db,
		logger:    logger,
		interval:  interval,
		sess:      sess,
		otcSwapID: otcSwapID,
		orderID:   orderID,
		poke:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
}

func (w *Watcher) Start() {
	go w.run()
}

// Poke requests an immediate poll. Non-blocking; a poke arriving while one
// is already queued collapses into it.
func (w *Watcher) Poke() {
	select {
	case w.poke <- struct{}{}:
	default:
	}
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}

func (w *Watcher) run() {
	if w.onDone != nil {
		defer w.onDone()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Poll once up front so a fast fill is not hidden for a full interval.
	if w.pollOnce() {
		return
	}

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if w.pollOnce() {
				return
			}
		case <-w.poke:
			if w.pollOnce() {
				return
			}
		}
	}
}

// pollOnce returns true when the order reached a terminal state. The
// in-flight guard keeps a poke that lands mid-poll from doubling requests.
func (w *Watcher) pollOnce() bool {
	if !w.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer w.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	status, err := w.agg.GetOrderStatus(ctx, w.orderID)
	if err != nil {
		w.logger.Error("[pollOnce][GetOrderStatus]", map[string]string{
			"orderId": w.orderID,
			"error":   err.Error(),
		})
		return false
	}

	switch {
	case status.Status.Settled():
		w.sess.SetOrderStatus(model.OrderStatusSuccess)
		w.markSettled(status.TxHash)
		return true
	case status.Status.Dead():
		w.sess.SetOrderStatus(model.OrderStatusFail)
		// The quote that produced the dead order can no longer be trusted:
		// reset intent flags and ask for a fresh one.
		w.sess.FailExecution(model.NewSwapError(model.ErrTransport,
			"order "+string(status.Status)))
		w.updateStatus(model.SwapStatusRefundingUser)
		return true
	}
	return false
}

func (w *Watcher) markSettled(txHash string) {
	if w.db == nil {
		return
	}
	if err := w.store.SwapOrder.MarkSettled(w.db, w.otcSwapID, txHash); err != nil {
		w.logger.Error("[markSettled][MarkSettled]", map[string]string{
			"otcSwapId": w.otcSwapID,
			"error":     err.Error(),
		})
	}
}

func (w *Watcher) updateStatus(status model.SwapStatus) {
	if w.db == nil {
		return
	}
	if err := w.store.SwapOrder.UpdateStatus(w.db, w.otcSwapID, status); err != nil {
		w.logger.Error("[updateStatus][UpdateStatus]", map[string]string{
			"otcSwapId": w.otcSwapID,
			"error":     err.Error(),
		})
	}
}
