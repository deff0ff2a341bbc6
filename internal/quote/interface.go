package quote

import (
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/session"
)

// Session is the slice of the swap session the quoting pipeline may touch:
// the quote-writer capability plus the read surface. Execution state is out
// of reach by construction.
type Session interface {
	session.QuoteWriter
	ID() string
	Snapshot() session.Snapshot
	EditAmount(field session.Field, amount string, fullPrecision *model.Web3BigInt)
	SetUsdEquivalent(usd float64)
	SetLastError(err *model.SwapError)
}

var _ Session = (*session.Session)(nil)

type IQuoteService interface {
	// Edit records a keystroke-level change and schedules a debounced
	// fetch for the edited field.
	Edit(sess Session, field session.Field, amount string) error

	// UseMax and UseMin bypass the debouncer and fetch immediately.
	UseMax(sess Session, balance *model.Web3BigInt) error
	UseMin(sess Session) error

	// Refetch requests one immediate optimal-tier refresh.
	Refetch(sess Session)

	StartAutoRefresh(sess Session, direction session.Direction)
	Teardown(sessID string)

	Prices() *PriceCache
}
