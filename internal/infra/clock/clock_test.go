package clock

import (
	"context"
	"testing"
	"time"
)

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	if got.Before(before) {
		t.Errorf("Real().Now() = %v, before %v", got, before)
	}
}

func TestMock_ZeroDefaults(t *testing.T) {
	m := NewMock(time.Time{})
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !m.Now().Equal(want) {
		t.Errorf("Now() = %v, want %v", m.Now(), want)
	}
}

func TestMock_AdvanceAndSet(t *testing.T) {
	m := NewMockMillis(1_000)
	m.Advance(5 * time.Second)
	if got := m.Now().UnixMilli(); got != 6_000 {
		t.Errorf("after Advance UnixMilli = %d, want 6000", got)
	}

	Set(m, time.UnixMilli(42))
	if got := m.Now().UnixMilli(); got != 42 {
		t.Errorf("after Set UnixMilli = %d, want 42", got)
	}
}

func TestMock_TickerFiresOnAdvance(t *testing.T) {
	m := NewMockMillis(0)
	tk := m.NewTicker(100 * time.Millisecond)
	defer tk.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("ticker not registered: %v", err)
	}

	select {
	case <-tk.Chan():
		t.Fatal("ticker fired before the clock advanced")
	default:
	}

	m.Advance(100 * time.Millisecond)
	select {
	case <-tk.Chan():
	case <-ctx.Done():
		t.Fatal("ticker did not fire after Advance")
	}
}
