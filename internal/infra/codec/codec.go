// Package codec encodes the persisted timer record.
//
// The wire format is a JSON object with camelCase keys. Records written by
// the earlier snake_case layout (last_time_stamp, next_bonus_time_stamp) are
// still accepted on decode.
package codec

import (
	"fmt"
	"math"

	json "github.com/goccy/go-json"

	"github.com/tutu-network/timebank/internal/domain"
)

// Codec serializes timer records.
type Codec interface {
	Marshal(rec domain.TimerRecord) ([]byte, error)
	Unmarshal(data []byte) (domain.TimerRecord, error)
	Name() string
}

// JSON is the default codec backed by goccy/go-json.
type JSON struct{}

// Default is the default codec instance.
var Default Codec = JSON{}

// Name returns "json".
func (JSON) Name() string { return "json" }

// Marshal serializes rec to JSON bytes.
func (JSON) Marshal(rec domain.TimerRecord) ([]byte, error) {
	return json.Marshal(rec)
}

type wireRecord struct {
	Balance       *float64     `json:"balance"`
	Mode          *domain.Mode `json:"mode"`
	LastTimestamp *float64     `json:"lastTimestamp"`
	NextBonus     *float64     `json:"nextBonusTimestamp"`

	LegacyLast  *float64 `json:"last_time_stamp"`
	LegacyBonus *float64 `json:"next_bonus_time_stamp"`
}

// Unmarshal decodes and validates a record. Any structural problem is
// reported as domain.ErrRecordMalformed.
func (JSON) Unmarshal(data []byte) (domain.TimerRecord, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return domain.TimerRecord{}, fmt.Errorf("%w: %v", domain.ErrRecordMalformed, err)
	}

	last := w.LastTimestamp
	if last == nil {
		last = w.LegacyLast
	}
	bonus := w.NextBonus
	if bonus == nil {
		bonus = w.LegacyBonus
	}

	switch {
	case w.Balance == nil:
		return domain.TimerRecord{}, fmt.Errorf("%w: missing balance", domain.ErrRecordMalformed)
	case w.Mode == nil || !w.Mode.Valid():
		return domain.TimerRecord{}, fmt.Errorf("%w: %w", domain.ErrRecordMalformed, domain.ErrUnknownMode)
	case last == nil:
		return domain.TimerRecord{}, fmt.Errorf("%w: missing lastTimestamp", domain.ErrRecordMalformed)
	}

	balance, err := toMillis("balance", *w.Balance)
	if err != nil {
		return domain.TimerRecord{}, err
	}
	lastMs, err := toMillis("lastTimestamp", *last)
	if err != nil {
		return domain.TimerRecord{}, err
	}

	// A balance above MaxBalance is kept: manual overrides and bonus grants
	// may leave one behind, and the next earning reconcile clamps it.
	rec := domain.TimerRecord{
		Balance:       balance,
		Mode:          *w.Mode,
		LastTimestamp: lastMs,
	}
	if bonus != nil {
		v, err := toMillis("nextBonusTimestamp", *bonus)
		if err != nil {
			return domain.TimerRecord{}, err
		}
		rec.NextBonus = &v
	}
	return rec, nil
}

// maxExact is the largest magnitude a JSON number holds without losing
// integer precision.
const maxExact = 1 << 53

// toMillis floors fractional milliseconds, which a manual entry such as
// "0.5" seconds can leave behind. Values outside [0, 2^53) are malformed.
func toMillis(field string, f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= maxExact {
		return 0, fmt.Errorf("%w: %s %v out of range", domain.ErrRecordMalformed, field, f)
	}
	return int64(math.Floor(f)), nil
}
