package engine

import (
	"sync"
	"time"

	"github.com/tutu-network/timebank/internal/infra/clock"
)

// Scheduler drives a fixed-interval callback. Arming a new schedule stops
// the previous one, and every armed schedule carries a generation number
// so a callback that was already in flight can tell it has been replaced.
type Scheduler struct {
	clock    clock.Clock
	interval time.Duration

	mu     sync.Mutex
	stop   chan struct{}
	ticker clock.Ticker
	gen    uint64
	active bool
}

// NewScheduler creates a scheduler ticking every interval on clk. A nil
// clock means the system clock.
func NewScheduler(clk clock.Clock, interval time.Duration) *Scheduler {
	if clk == nil {
		clk = clock.Real()
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Scheduler{clock: clk, interval: interval}
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Arm cancels any running schedule and starts a new one that calls fn
// with the new generation on every tick. It returns that generation.
// The ticker exists when Arm returns.
func (s *Scheduler) Arm(fn func(gen uint64)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.gen++
	s.active = true
	s.stop = make(chan struct{})
	s.ticker = s.clock.NewTicker(s.interval)

	go s.loop(s.stop, s.ticker.Chan(), s.gen, fn)
	return s.gen
}

// Cancel stops the running schedule, if any. It does not wait for an
// in-flight callback; that callback sees Current(gen) == false.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()
}

// Current reports whether gen identifies the schedule that is armed now.
func (s *Scheduler) Current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && s.gen == gen
}

// Active reports whether a schedule is armed.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scheduler) cancelLocked() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.active = false
}

func (s *Scheduler) loop(stop <-chan struct{}, ticks <-chan time.Time, gen uint64, fn func(uint64)) {
	for {
		select {
		case <-stop:
			return
		case <-ticks:
			// Prefer the stop signal when both are ready.
			select {
			case <-stop:
				return
			default:
			}
			fn(gen)
		}
	}
}
