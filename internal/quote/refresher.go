package quote

import (
	"sync"
	"time"
)

// Refresher keeps a displayed price from going stale: a fixed-interval
// optimal-tier refresh plus a fast poll of the manual refetch flag, which
// fires one immediate forced refresh and clears itself.
type Refresher struct {
	interval time.Duration
	tick     func(force bool)
	refetch  func() bool

	stopOnce sync.Once
	stop     chan struct{}
}

func NewRefresher(interval time.Duration, tick func(force bool), refetch func() bool) *Refresher {
	return &Refresher{
		interval: interval,
		tick:     tick,
		refetch:  refetch,
		stop:     make(chan struct{}),
	}
}

func (r *Refresher) Start() {
	go r.run()
}

func (r *Refresher) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	flagPoll := time.NewTicker(250 * time.Millisecond)
	defer flagPoll.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.tick(false)
		case <-flagPoll.C:
			if r.refetch() {
				r.tick(true)
			}
		}
	}
}

func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}
