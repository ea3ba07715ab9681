package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tutu-network/timebank/internal/domain"
	"github.com/tutu-network/timebank/internal/infra/clock"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(msg string) {
	n.mu.Lock()
	n.msgs = append(n.msgs, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

func newBonusEngine(t *testing.T, start time.Time) (*Engine, *clock.Mock, *countingStore, *recordingNotifier) {
	t.Helper()
	clk := clock.NewMock(start)
	st := newCountingStore()
	n := &recordingNotifier{}

	cfg := DefaultConfig()
	cfg.TickInterval = handDriven
	cfg.Bonus = &BonusPolicy{Hour: domain.BonusHour, Amount: domain.BonusAmount, Location: time.UTC}

	e := New(cfg, clk, st)
	e.SetNotifier(n)
	t.Cleanup(e.Close)
	return e, clk, st, n
}

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

// ─── Policy ─────────────────────────────────────────────────────────────────

func TestBonusPolicy_TodayAndTomorrow(t *testing.T) {
	p := &BonusPolicy{Hour: 14, Amount: domain.BonusAmount, Location: time.UTC}
	now := time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)

	if got, want := p.Today(now), time.Date(2024, 1, 31, 14, 0, 0, 0, time.UTC).UnixMilli(); got != want {
		t.Errorf("Today() = %d, want %d", got, want)
	}
	if got, want := p.Tomorrow(now), time.Date(2024, 2, 1, 14, 0, 0, 0, time.UTC).UnixMilli(); got != want {
		t.Errorf("Tomorrow() = %d, want %d", got, want)
	}
}

func TestDefaultBonusPolicy(t *testing.T) {
	p := DefaultBonusPolicy()
	if p.Hour != 14 || p.Amount != 14_400_000 {
		t.Errorf("DefaultBonusPolicy() = %+v, want 14h / 14400000", p)
	}
	if p.location() != time.Local {
		t.Error("nil Location should resolve to time.Local")
	}
}

// ─── Claims ─────────────────────────────────────────────────────────────────

func TestBonus_FirstLoadAfterBonusHourGrants(t *testing.T) {
	e, _, st, n := newBonusEngine(t, at(10, 15))
	e.Open()

	rec := e.Record()
	if rec.Balance != domain.BonusAmount {
		t.Errorf("Balance = %d, want %d", rec.Balance, domain.BonusAmount)
	}
	if rec.NextBonus == nil || *rec.NextBonus != at(11, 14).UnixMilli() {
		t.Errorf("NextBonus = %v, want %d", rec.NextBonus, at(11, 14).UnixMilli())
	}
	if n.Count() != 1 || !strings.Contains(n.msgs[0], "04:00:00") {
		t.Errorf("notifications = %v, want one mentioning 04:00:00", n.msgs)
	}
	stored, _ := st.Load()
	if stored.Balance != domain.BonusAmount {
		t.Errorf("stored balance = %d, want %d", stored.Balance, domain.BonusAmount)
	}
}

func TestBonus_OncePerDay(t *testing.T) {
	e, clk, _, n := newBonusEngine(t, at(10, 10))
	e.Open()

	if rec := e.Record(); rec.Balance != 0 || rec.NextBonus == nil || *rec.NextBonus != at(10, 14).UnixMilli() {
		t.Fatalf("fresh record = %+v, want no bonus yet, next at 14:00 today", rec)
	}
	if e.ClaimBonusIfDue() {
		t.Error("ClaimBonusIfDue() = true before bonus hour")
	}

	clock.Set(clk, at(10, 14))
	if !e.ClaimBonusIfDue() {
		t.Error("ClaimBonusIfDue() = false at bonus hour")
	}
	if e.ClaimBonusIfDue() {
		t.Error("ClaimBonusIfDue() granted twice on the same day")
	}

	clock.Set(clk, at(11, 14).Add(-time.Minute))
	if e.ClaimBonusIfDue() {
		t.Error("ClaimBonusIfDue() = true before next day's bonus hour")
	}

	clock.Set(clk, at(11, 14))
	if !e.ClaimBonusIfDue() {
		t.Error("ClaimBonusIfDue() = false on next day")
	}

	if got := e.Record().Balance; got != 2*domain.BonusAmount {
		t.Errorf("Balance = %d, want %d", got, 2*domain.BonusAmount)
	}
	if n.Count() != 2 {
		t.Errorf("notifications = %d, want 2", n.Count())
	}
}

func TestBonus_NotClampedAtGrant(t *testing.T) {
	e, _, st, _ := newBonusEngine(t, at(10, 15))
	past := at(10, 14).UnixMilli()
	st.seed(t, domain.TimerRecord{Balance: domain.MaxBalance, Mode: domain.ModeStopped, LastTimestamp: at(10, 15).UnixMilli(), NextBonus: &past})

	if !e.ClaimBonusIfDue() {
		t.Fatal("ClaimBonusIfDue() = false, want true")
	}
	if got := e.Record().Balance; got != domain.MaxBalance+domain.BonusAmount {
		t.Errorf("Balance = %d, want unclamped %d", got, domain.MaxBalance+domain.BonusAmount)
	}

	e.StartEarning()
	if rec := e.Record(); rec.Balance != domain.MaxBalance || rec.Mode != domain.ModeStopped {
		t.Errorf("after StartEarning record = %+v, want clamped and stopped", rec)
	}
}

func TestBonus_ReconcilesBeforeGrant(t *testing.T) {
	e, clk, st, _ := newBonusEngine(t, at(10, 13))
	next := at(10, 14).UnixMilli()
	st.seed(t, domain.TimerRecord{Balance: 30 * 60_000, Mode: domain.ModeUsing, LastTimestamp: at(10, 13).UnixMilli(), NextBonus: &next})

	clock.Set(clk, at(10, 15))
	e.Open()

	// Two hours of using drained the 30 minutes before the bonus landed.
	rec := e.Record()
	if rec.Balance != domain.BonusAmount || rec.Mode != domain.ModeUsing {
		t.Errorf("record = %+v, want %d using", rec, domain.BonusAmount)
	}
}

func TestBonus_MissingTimestampInitialisedToToday(t *testing.T) {
	e, _, st, _ := newBonusEngine(t, at(10, 9))
	st.seed(t, domain.TimerRecord{Balance: 1_000, Mode: domain.ModeStopped, LastTimestamp: at(10, 9).UnixMilli()})

	if e.ClaimBonusIfDue() {
		t.Error("ClaimBonusIfDue() = true before bonus hour")
	}
	if rec := e.Record(); rec.NextBonus == nil || *rec.NextBonus != at(10, 14).UnixMilli() {
		t.Errorf("NextBonus = %v, want today 14:00", rec.NextBonus)
	}
}

func TestBonus_DisabledPolicy(t *testing.T) {
	e, _, st, _ := newTestEngine(t)
	past := int64(0)
	st.seed(t, domain.TimerRecord{Balance: 0, Mode: domain.ModeStopped, LastTimestamp: ms(t0), NextBonus: &past})

	if e.ClaimBonusIfDue() {
		t.Error("ClaimBonusIfDue() = true with no bonus policy")
	}
	if got := e.Record().Balance; got != 0 {
		t.Errorf("Balance = %d, want 0", got)
	}
}
