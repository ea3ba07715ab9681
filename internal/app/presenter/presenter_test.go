package presenter

import (
	"testing"

	"github.com/tutu-network/timebank/internal/domain"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{"zero", 0, "00:00:00"},
		{"one hour one minute one second", 3_661_000, "01:01:01"},
		{"max balance", domain.MaxBalance, "99:59:59"},
		{"sub-second floors", 999, "00:00:00"},
		{"just under a minute", 59_999, "00:00:59"},
		{"negative clamps", -5_000, "00:00:00"},
		{"manual override", 3_723_000, "01:02:03"},
		{"bonus", domain.BonusAmount, "04:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.ms); got != tt.want {
				t.Errorf("Render(%d) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}

func TestPresenter_Present(t *testing.T) {
	var gotText string
	var gotMode domain.Mode
	p := New(domain.DisplayFunc(func(text string, mode domain.Mode) {
		gotText, gotMode = text, mode
	}))

	out := p.Present(5_000, domain.ModeEarning)
	if out != "00:00:05" || gotText != "00:00:05" {
		t.Errorf("Present() = %q, sink got %q, want %q", out, gotText, "00:00:05")
	}
	if gotMode != domain.ModeEarning {
		t.Errorf("sink mode = %q, want %q", gotMode, domain.ModeEarning)
	}
}

func TestPresenter_NilSink(t *testing.T) {
	if got := New(nil).Present(1_000, domain.ModeStopped); got != "00:00:01" {
		t.Errorf("Present() = %q, want %q", got, "00:00:01")
	}
}
