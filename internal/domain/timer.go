// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "time"

// ─── Contract Constants ─────────────────────────────────────────────────────

const (
	// MaxBalance is the saturation bound in milliseconds (99:59:59).
	MaxBalance int64 = 359_999_000

	// BonusAmount is the login bonus granted once per day (4h).
	BonusAmount int64 = 14_400_000

	// BonusHour is the local hour at which the daily bonus becomes claimable.
	BonusHour = 14

	// TickInterval is the projection re-render period.
	TickInterval = 100 * time.Millisecond

	// StorageKey is the key of the single persisted record.
	StorageKey = "timer_data"
)

// ─── Mode ───────────────────────────────────────────────────────────────────

// Mode is the direction the balance moves in while real time passes.
type Mode string

const (
	ModeStopped Mode = "stopped"
	ModeEarning Mode = "earning"
	ModeUsing   Mode = "using"
)

// Valid reports whether m is one of the three known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeStopped, ModeEarning, ModeUsing:
		return true
	}
	return false
}

// Active reports whether the balance moves with time in this mode.
func (m Mode) Active() bool {
	return m == ModeEarning || m == ModeUsing
}

// Label is the caption a display shows for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeEarning:
		return "Now Earning..."
	case ModeUsing:
		return "Now Using..."
	default:
		return "Stopped"
	}
}

// ─── Timer Record ───────────────────────────────────────────────────────────

// TimerRecord is the single persisted entity. All timestamps are
// milliseconds since the Unix epoch.
type TimerRecord struct {
	Balance       int64  `json:"balance"`
	Mode          Mode   `json:"mode"`
	LastTimestamp int64  `json:"lastTimestamp"`
	NextBonus     *int64 `json:"nextBonusTimestamp,omitempty"`
}

// NewTimerRecord returns the record created on first load: zero balance,
// stopped, reconciled at now. The bonus timestamp is only set when the
// caller passes one.
func NewTimerRecord(now int64, nextBonus *int64) TimerRecord {
	return TimerRecord{
		Balance:       0,
		Mode:          ModeStopped,
		LastTimestamp: now,
		NextBonus:     nextBonus,
	}
}

// Clone returns a deep copy so callers never alias the engine's bonus pointer.
func (r TimerRecord) Clone() TimerRecord {
	if r.NextBonus != nil {
		v := *r.NextBonus
		r.NextBonus = &v
	}
	return r
}

// Equal reports whether two records hold the same values.
func (r TimerRecord) Equal(o TimerRecord) bool {
	if r.Balance != o.Balance || r.Mode != o.Mode || r.LastTimestamp != o.LastTimestamp {
		return false
	}
	if (r.NextBonus == nil) != (o.NextBonus == nil) {
		return false
	}
	return r.NextBonus == nil || *r.NextBonus == *o.NextBonus
}
