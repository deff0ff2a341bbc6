package quote

import (
	"sync"
	"time"

	"github.com/riftresearch/swap-coordinator/internal/session"
)

// Debouncer coalesces rapid edits into one fetch per field. Timers are
// reset, not queued: at most one pending fetch per field at any time. The
// output field uses a shorter delay because edits there are rarer and the
// user is working backward from a target receive amount.
type Debouncer struct {
	mu          sync.Mutex
	timers      map[session.Field]*time.Timer
	inputDelay  time.Duration
	outputDelay time.Duration
}

func NewDebouncer(inputDelay, outputDelay time.Duration) *Debouncer {
	return &Debouncer{
		timers:      make(map[session.Field]*time.Timer),
		inputDelay:  inputDelay,
		outputDelay: outputDelay,
	}
}

// Trigger schedules fn after the field's quiet period, replacing any timer
// already pending for that field.
func (d *Debouncer) Trigger(field session.Field, fn func()) {
	delay := d.inputDelay
	if field == session.FieldOutput {
		delay = d.outputDelay
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[field]; ok {
		t.Stop()
	}
	d.timers[field] = time.AfterFunc(delay, fn)
}

// Cancel stops all pending timers. Used on teardown, direction change,
// asset change and chain change.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for field, t := range d.timers {
		t.Stop()
		delete(d.timers, field)
	}
}
