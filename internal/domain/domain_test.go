package domain

import "testing"

func TestMode_Valid(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeStopped, true},
		{ModeEarning, true},
		{ModeUsing, true},
		{"paused", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := tt.mode.Valid(); got != tt.want {
				t.Errorf("Mode(%q).Valid() = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestMode_ActiveAndLabel(t *testing.T) {
	if ModeStopped.Active() {
		t.Error("stopped should not be active")
	}
	if !ModeEarning.Active() || !ModeUsing.Active() {
		t.Error("earning and using should be active")
	}
	if ModeEarning.Label() != "Now Earning..." || ModeUsing.Label() != "Now Using..." {
		t.Errorf("labels = %q / %q", ModeEarning.Label(), ModeUsing.Label())
	}
}

func TestConstants(t *testing.T) {
	if MaxBalance != 359_999_000 {
		t.Errorf("MaxBalance = %d", MaxBalance)
	}
	if BonusAmount != 14_400_000 {
		t.Errorf("BonusAmount = %d", BonusAmount)
	}
	if StorageKey != "timer_data" {
		t.Errorf("StorageKey = %q", StorageKey)
	}
}

func TestNewTimerRecord(t *testing.T) {
	rec := NewTimerRecord(1_000, nil)
	if rec.Balance != 0 || rec.Mode != ModeStopped || rec.LastTimestamp != 1_000 || rec.NextBonus != nil {
		t.Errorf("NewTimerRecord() = %+v", rec)
	}
}

func TestTimerRecord_CloneDoesNotAlias(t *testing.T) {
	bonus := int64(5)
	rec := TimerRecord{Balance: 1, Mode: ModeUsing, LastTimestamp: 2, NextBonus: &bonus}

	cp := rec.Clone()
	*cp.NextBonus = 99
	if *rec.NextBonus != 5 {
		t.Errorf("original bonus = %d after mutating clone, want 5", *rec.NextBonus)
	}
}

func TestTimerRecord_Equal(t *testing.T) {
	a, b := int64(7), int64(7)
	x := TimerRecord{Balance: 1, Mode: ModeEarning, LastTimestamp: 2, NextBonus: &a}
	y := TimerRecord{Balance: 1, Mode: ModeEarning, LastTimestamp: 2, NextBonus: &b}
	if !x.Equal(y) {
		t.Error("records with equal values should be Equal")
	}

	y.NextBonus = nil
	if x.Equal(y) {
		t.Error("records differing in bonus presence should not be Equal")
	}

	z := x
	z.Mode = ModeUsing
	if x.Equal(z) {
		t.Error("records differing in mode should not be Equal")
	}
}
