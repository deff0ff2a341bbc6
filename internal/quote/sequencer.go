package quote

// Sequencer issues monotonically increasing request ids and answers whether
// an id is still current. Every asynchronous quote callback must check
// IsCurrent before writing; a stale result is dropped, never surfaced as an
// error. This is the sole race-freedom mechanism in the quoting pipeline —
// arrival order is never relied on.
//
// The session is the canonical implementation: its request counter and its
// quote slot live under the same lock, so check-then-write is atomic.
type Sequencer interface {
	NextRequestID() uint64
	IsCurrent(id uint64) bool
}

var _ Sequencer = (Session)(nil)
