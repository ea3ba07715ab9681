package engine

import (
	"context"
	"testing"
	"time"

	"github.com/tutu-network/timebank/internal/infra/clock"
)

const testInterval = 100 * time.Millisecond

// tickRecorder forwards every callback generation to a channel.
type tickRecorder struct {
	ticks chan uint64
}

func newTickRecorder() *tickRecorder { return &tickRecorder{ticks: make(chan uint64, 16)} }

func (r *tickRecorder) fn(gen uint64) { r.ticks <- gen }

// next waits for the next callback.
func (r *tickRecorder) next(t *testing.T) uint64 {
	t.Helper()
	select {
	case gen := <-r.ticks:
		return gen
	case <-time.After(2 * time.Second):
		t.Fatal("no tick delivered")
		return 0
	}
}

// none asserts no callback is pending.
func (r *tickRecorder) none(t *testing.T) {
	t.Helper()
	select {
	case gen := <-r.ticks:
		t.Errorf("unexpected tick for generation %d", gen)
	default:
	}
}

func blockUntilTickers(t *testing.T, clk *clock.Mock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := clk.BlockUntilContext(ctx, n); err != nil {
		t.Fatalf("waiting for %d tickers: %v", n, err)
	}
}

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(nil, 0)
	if got := s.Interval(); got != 100*time.Millisecond {
		t.Errorf("Interval() = %v, want 100ms", got)
	}
	if s.clock == nil {
		t.Error("nil clock not replaced by the system clock")
	}
}

func TestScheduler_ArmTicksOnClockAdvance(t *testing.T) {
	clk := clock.NewMock(t0)
	s := NewScheduler(clk, testInterval)
	r := newTickRecorder()

	gen := s.Arm(r.fn)
	defer s.Cancel()
	blockUntilTickers(t, clk, 1)

	r.none(t)
	for i := 0; i < 3; i++ {
		clk.Advance(testInterval)
		if got := r.next(t); got != gen {
			t.Errorf("tick %d generation = %d, want %d", i, got, gen)
		}
	}
	if !s.Active() || !s.Current(gen) {
		t.Error("armed schedule not reported as active/current")
	}
}

func TestScheduler_NoTickBeforeInterval(t *testing.T) {
	clk := clock.NewMock(t0)
	s := NewScheduler(clk, testInterval)
	r := newTickRecorder()

	s.Arm(r.fn)
	defer s.Cancel()
	blockUntilTickers(t, clk, 1)

	clk.Advance(testInterval - time.Millisecond)
	r.none(t)
}

func TestScheduler_RearmReplacesPrevious(t *testing.T) {
	clk := clock.NewMock(t0)
	s := NewScheduler(clk, testInterval)
	r := newTickRecorder()

	first := s.Arm(r.fn)
	second := s.Arm(r.fn)
	defer s.Cancel()

	if first == second {
		t.Fatal("re-arm reused the generation")
	}
	if s.Current(first) {
		t.Error("Current(first) = true after re-arm")
	}

	// Only the second schedule's ticker is left on the clock.
	blockUntilTickers(t, clk, 1)
	clk.Advance(testInterval)
	if got := r.next(t); got != second {
		t.Errorf("tick generation = %d, want %d", got, second)
	}
	r.none(t)
}

func TestScheduler_CancelStopsTicks(t *testing.T) {
	clk := clock.NewMock(t0)
	s := NewScheduler(clk, testInterval)
	r := newTickRecorder()

	gen := s.Arm(r.fn)
	blockUntilTickers(t, clk, 1)
	clk.Advance(testInterval)
	r.next(t)

	s.Cancel()
	if s.Active() || s.Current(gen) {
		t.Error("schedule still active after Cancel")
	}
	blockUntilTickers(t, clk, 0)

	clk.Advance(10 * testInterval)
	r.none(t)

	s.Cancel() // second cancel is a no-op
}
