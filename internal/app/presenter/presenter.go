// Package presenter formats balances for display.
package presenter

import (
	"fmt"

	"github.com/tutu-network/timebank/internal/domain"
)

// Render maps a balance in milliseconds to a zero-padded HH:MM:SS string.
// Negative input renders as zero. Hours wider than two digits are not
// truncated by the format verb; MaxBalance keeps them below 100.
func Render(balanceMs int64) string {
	if balanceMs < 0 {
		balanceMs = 0
	}
	totalSeconds := balanceMs / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds / 60) % 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Presenter writes rendered balances to a display sink.
type Presenter struct {
	sink domain.Display
}

// New creates a presenter. A nil sink discards output.
func New(sink domain.Display) *Presenter {
	return &Presenter{sink: sink}
}

// Present renders balanceMs and hands it to the sink with the mode label.
func (p *Presenter) Present(balanceMs int64, mode domain.Mode) string {
	text := Render(balanceMs)
	if p != nil && p.sink != nil {
		p.sink.Show(text, mode)
	}
	return text
}
