package engine

import (
	"time"

	"github.com/tutu-network/timebank/internal/domain"
)

// BonusPolicy schedules the once-per-day login bonus. An engine without a
// policy never touches the record's bonus timestamp.
type BonusPolicy struct {
	Hour     int            // local hour the bonus becomes claimable
	Amount   int64          // milliseconds granted per claim
	Location *time.Location // nil means time.Local
}

// DefaultBonusPolicy returns the 4h-at-14:00 policy.
func DefaultBonusPolicy() *BonusPolicy {
	return &BonusPolicy{
		Hour:   domain.BonusHour,
		Amount: domain.BonusAmount,
	}
}

func (p *BonusPolicy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// Today returns the bonus instant on the calendar day of now, even when
// that instant has already passed.
func (p *BonusPolicy) Today(now time.Time) int64 {
	return p.onDay(now, 0)
}

// Tomorrow returns the bonus instant on the calendar day after now.
func (p *BonusPolicy) Tomorrow(now time.Time) int64 {
	return p.onDay(now, 1)
}

func (p *BonusPolicy) onDay(now time.Time, offset int) int64 {
	loc := p.location()
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d+offset, p.Hour, 0, 0, 0, loc).UnixMilli()
}
