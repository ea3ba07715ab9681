// Package clock provides the time source the timer engine and its
// scheduler read. Production code runs on the real clock; tests drive a
// fake clock whose tickers fire only when the test advances it.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock reads the current time and creates tickers.
type Clock = clockwork.Clock

// Ticker delivers ticks on Chan until stopped.
type Ticker = clockwork.Ticker

// Mock is a controllable clock for tests.
type Mock = clockwork.FakeClock

// Real returns the system clock.
func Real() Clock { return clockwork.NewRealClock() }

// NewMock creates a Mock clock set to the given time. The zero time maps
// to 2024-01-01 UTC.
func NewMock(t time.Time) *Mock {
	if t.IsZero() {
		t = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return clockwork.NewFakeClockAt(t)
}

// NewMockMillis creates a Mock clock at the given epoch milliseconds.
func NewMockMillis(ms int64) *Mock {
	return clockwork.NewFakeClockAt(time.UnixMilli(ms))
}

// Set moves a Mock to an absolute time, backwards included. Tickers whose
// next fire time is reached on the way fire as with Advance.
func Set(m *Mock, t time.Time) {
	m.Advance(t.Sub(m.Now()))
}
