// Package engine owns the timer record and drives its state machine.
//
// The engine:
//  1. Reconciles the balance against elapsed wall-clock time
//  2. Applies mode transitions (stopped, earning, using) and persists them
//  3. Arms a projection schedule while a mode is active
//  4. Stops automatically when the balance saturates or depletes
//  5. Grants the optional daily login bonus
//
// Every operation and every projection tick runs under the engine mutex and
// reads the clock exactly once.
package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tutu-network/timebank/internal/app/presenter"
	"github.com/tutu-network/timebank/internal/domain"
	"github.com/tutu-network/timebank/internal/infra/clock"
	"github.com/tutu-network/timebank/internal/infra/observability"
)

// Config controls engine behavior.
type Config struct {
	TickInterval time.Duration // projection period (default: 100ms)
	MaxBalance   int64         // saturation bound in ms (default: 99:59:59)
	Bonus        *BonusPolicy  // nil disables the login bonus
}

// DefaultConfig returns the contract defaults with the bonus enabled.
func DefaultConfig() Config {
	return Config{
		TickInterval: domain.TickInterval,
		MaxBalance:   domain.MaxBalance,
		Bonus:        DefaultBonusPolicy(),
	}
}

// Status is a read-only view of the engine at one instant.
type Status struct {
	Balance       int64       `json:"balance"`
	Projected     int64       `json:"projected"`
	Mode          domain.Mode `json:"mode"`
	Label         string      `json:"label"`
	Display       string      `json:"display"`
	LastTimestamp int64       `json:"lastTimestamp"`
	NextBonus     *int64      `json:"nextBonusTimestamp,omitempty"`
	Ticking       bool        `json:"ticking"`
	LastSaveError string      `json:"lastSaveError,omitempty"`
}

// Engine is the balance state machine. The zero value is not usable; call New.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	clock     clock.Clock
	store     domain.Store
	presenter *presenter.Presenter
	notifier  domain.Notifier
	sched     *Scheduler

	rec         domain.TimerRecord
	loaded      bool
	lastSaveErr error
}

// New creates an engine. The record is loaded on Open or on the first
// operation, whichever comes first.
func New(cfg Config, clk clock.Clock, st domain.Store) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = domain.TickInterval
	}
	if cfg.MaxBalance <= 0 {
		cfg.MaxBalance = domain.MaxBalance
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Engine{
		cfg:       cfg,
		clock:     clk,
		store:     st,
		presenter: presenter.New(nil),
		sched:     NewScheduler(clk, cfg.TickInterval),
	}
}

// SetDisplay sets the render sink.
func (e *Engine) SetDisplay(d domain.Display) {
	e.mu.Lock()
	e.presenter = presenter.New(d)
	e.mu.Unlock()
}

// SetNotifier sets the user notification sink.
func (e *Engine) SetNotifier(n domain.Notifier) {
	e.mu.Lock()
	e.notifier = n
	e.mu.Unlock()
}

// MaxBalance returns the configured saturation bound.
func (e *Engine) MaxBalance() int64 { return e.cfg.MaxBalance }

// ─── Public Operations ──────────────────────────────────────────────────────

// Open loads the stored record (or creates the default), grants a due
// bonus, and resumes the stored mode.
func (e *Engine) Open() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.loaded = false
	e.ensureLoadedLocked(now)
	e.claimBonusLocked(now)

	switch e.rec.Mode {
	case domain.ModeEarning:
		log.Printf("[engine] resuming earning from %s", presenter.Render(e.rec.Balance))
		e.startEarningLocked(now)
	case domain.ModeUsing:
		log.Printf("[engine] resuming using from %s", presenter.Render(e.rec.Balance))
		e.startUsingLocked(now)
	default:
		e.presenter.Present(e.rec.Balance, e.rec.Mode)
	}
}

// Reconcile applies elapsed time to the balance in memory and returns the
// result. Persistence is left to the caller.
func (e *Engine) Reconcile() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.ensureLoadedLocked(now)
	e.reconcileLocked(now)
	return e.rec.Balance
}

// StartEarning switches to earning. A full balance stops instead.
func (e *Engine) StartEarning() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.ensureLoadedLocked(now)
	e.startEarningLocked(now)
}

// StartUsing switches to using. An empty balance stops instead.
func (e *Engine) StartUsing() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.ensureLoadedLocked(now)
	e.startUsingLocked(now)
}

// Stop reconciles, stops, persists and renders the final balance.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.ensureLoadedLocked(now)
	e.stopLocked(now)
}

// SetBalance overwrites the balance with max(0, ms) and stops. The upper
// bound is not applied here; the next earning reconciliation clamps it.
// Confirmation is the caller's responsibility.
func (e *Engine) SetBalance(ms int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.ensureLoadedLocked(now)
	e.sched.Cancel()
	// Settle the outgoing mode first so the new value is not shifted by
	// time that elapsed before the override.
	e.reconcileLocked(now)
	if ms < 0 {
		ms = 0
	}
	if ms > e.cfg.MaxBalance {
		log.Printf("[engine] manual balance %s exceeds max %s; kept until next earning reconcile",
			presenter.Render(ms), presenter.Render(e.cfg.MaxBalance))
	}
	e.rec.Balance = ms
	e.stopLocked(now)
}

// ClaimBonusIfDue grants the daily bonus when its instant has been reached.
// It reports whether a bonus was granted. Engines without a bonus policy
// always return false.
func (e *Engine) ClaimBonusIfDue() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.ensureLoadedLocked(now)
	return e.claimBonusLocked(now)
}

// Snapshot returns the current view without mutating or persisting state.
func (e *Engine) Snapshot() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.ensureLoadedLocked(now)

	projected := e.project(now)
	if projected < 0 {
		projected = 0
	}
	if e.rec.Mode == domain.ModeEarning && projected > e.cfg.MaxBalance {
		projected = e.cfg.MaxBalance
	}

	st := Status{
		Balance:       e.rec.Balance,
		Projected:     projected,
		Mode:          e.rec.Mode,
		Label:         e.rec.Mode.Label(),
		Display:       presenter.Render(projected),
		LastTimestamp: e.rec.LastTimestamp,
		NextBonus:     e.rec.Clone().NextBonus,
		Ticking:       e.sched.Active(),
	}
	if e.lastSaveErr != nil {
		st.LastSaveError = e.lastSaveErr.Error()
	}
	return st
}

// Record returns a copy of the in-memory record.
func (e *Engine) Record() domain.TimerRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Clone()
}

// LastSaveError returns the error of the most recent save, or nil.
func (e *Engine) LastSaveError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaveErr
}

// Ticking reports whether a projection schedule is armed.
func (e *Engine) Ticking() bool { return e.sched.Active() }

// Close cancels the projection schedule. The record is left as persisted
// so the next Open resumes it.
func (e *Engine) Close() {
	e.mu.Lock()
	e.sched.Cancel()
	e.mu.Unlock()
}

// ─── State Machine ──────────────────────────────────────────────────────────

func (e *Engine) now() int64 { return e.clock.Now().UnixMilli() }

// ensureLoadedLocked loads the record once, substituting the default when
// the store has nothing usable.
func (e *Engine) ensureLoadedLocked(now int64) {
	if e.loaded {
		return
	}
	e.loaded = true

	if e.store != nil {
		if rec, ok := e.store.Load(); ok {
			e.rec = rec
			return
		}
	}

	var nextBonus *int64
	if e.cfg.Bonus != nil {
		v := e.cfg.Bonus.Today(time.UnixMilli(now))
		nextBonus = &v
	}
	e.rec = domain.NewTimerRecord(now, nextBonus)
	log.Printf("[engine] no stored record, starting from default")
}

// elapsed returns the non-negative time since the last reconciliation.
// A clock that moved backwards contributes nothing.
func (e *Engine) elapsed(now int64) int64 {
	d := now - e.rec.LastTimestamp
	if d < 0 {
		return 0
	}
	return d
}

// project returns balance ± elapsed under the current mode, unclamped.
func (e *Engine) project(now int64) int64 {
	switch e.rec.Mode {
	case domain.ModeEarning:
		return e.rec.Balance + e.elapsed(now)
	case domain.ModeUsing:
		return e.rec.Balance - e.elapsed(now)
	default:
		return e.rec.Balance
	}
}

func (e *Engine) reconcileLocked(now int64) {
	switch e.rec.Mode {
	case domain.ModeEarning:
		e.rec.Balance = min(e.rec.Balance+e.elapsed(now), e.cfg.MaxBalance)
	case domain.ModeUsing:
		e.rec.Balance = max(e.rec.Balance-e.elapsed(now), 0)
	}
	e.rec.LastTimestamp = now
}

func (e *Engine) startEarningLocked(now int64) {
	e.sched.Cancel()
	e.reconcileLocked(now)

	if e.rec.Balance >= e.cfg.MaxBalance {
		e.rec.Balance = e.cfg.MaxBalance
		observability.TimerAutoStops.WithLabelValues("saturated").Inc()
		e.stopLocked(now)
		return
	}

	e.transitionLocked(domain.ModeEarning)
}

func (e *Engine) startUsingLocked(now int64) {
	e.sched.Cancel()
	e.reconcileLocked(now)

	if e.rec.Balance <= 0 {
		e.rec.Balance = 0
		observability.TimerAutoStops.WithLabelValues("depleted").Inc()
		e.stopLocked(now)
		return
	}

	e.transitionLocked(domain.ModeUsing)
}

// transitionLocked enters an active mode on a freshly reconciled record.
func (e *Engine) transitionLocked(mode domain.Mode) {
	e.rec.Mode = mode
	e.persistLocked()
	observability.TimerTransitions.WithLabelValues(string(mode)).Inc()

	e.sched.Arm(e.tick)
	e.presenter.Present(e.rec.Balance, mode)
}

func (e *Engine) stopLocked(now int64) {
	e.sched.Cancel()
	e.reconcileLocked(now)
	e.rec.Mode = domain.ModeStopped
	e.persistLocked()
	observability.TimerTransitions.WithLabelValues(string(domain.ModeStopped)).Inc()

	e.presenter.Present(e.rec.Balance, domain.ModeStopped)
}

// tick is the projection step. It never persists unless it hits a bound,
// in which case it stops and the stop persists the clamped value.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.sched.Current(gen) {
		return
	}
	observability.TimerTicks.Inc()

	now := e.now()
	projected := e.project(now)

	switch {
	case e.rec.Mode == domain.ModeEarning && projected >= e.cfg.MaxBalance:
		log.Printf("[engine] balance saturated at %s, stopping", presenter.Render(e.cfg.MaxBalance))
		observability.TimerAutoStops.WithLabelValues("saturated").Inc()
		e.stopLocked(now)
	case e.rec.Mode == domain.ModeUsing && projected <= 0:
		log.Printf("[engine] balance depleted, stopping")
		observability.TimerAutoStops.WithLabelValues("depleted").Inc()
		e.stopLocked(now)
	case e.rec.Mode.Active():
		observability.TimerProjectedBalance.Set(float64(projected))
		e.presenter.Present(projected, e.rec.Mode)
	default:
		e.sched.Cancel()
	}
}

// claimBonusLocked adds the bonus without clamping to MaxBalance; the
// next earning reconciliation clamps it.
func (e *Engine) claimBonusLocked(now int64) bool {
	policy := e.cfg.Bonus
	if policy == nil {
		return false
	}

	nowT := time.UnixMilli(now)
	if e.rec.NextBonus == nil {
		v := policy.Today(nowT)
		e.rec.NextBonus = &v
	}
	if now < *e.rec.NextBonus {
		return false
	}

	e.reconcileLocked(now)
	next := policy.Tomorrow(nowT)
	e.rec.NextBonus = &next
	e.rec.Balance += policy.Amount
	e.persistLocked()
	observability.BonusClaims.Inc()

	msg := fmt.Sprintf("Login bonus granted: +%s", presenter.Render(policy.Amount))
	log.Printf("[engine] %s (next at %s)", msg, time.UnixMilli(next).Format(time.RFC3339))
	if e.notifier != nil {
		e.notifier.Notify(msg)
	}
	return true
}

// persistLocked saves the record. A failure is logged and remembered; the
// in-memory record stays authoritative.
func (e *Engine) persistLocked() {
	observability.TimerBalance.Set(float64(e.rec.Balance))
	if e.store == nil {
		return
	}
	if err := e.store.Save(e.rec.Clone()); err != nil {
		log.Printf("[engine] save failed, keeping in-memory state: %v", err)
		e.lastSaveErr = err
		return
	}
	e.lastSaveErr = nil
}
