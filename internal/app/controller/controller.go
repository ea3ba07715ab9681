// Package controller maps user intents onto engine operations.
//
// It owns the confirmation gate for destructive actions and the lenient
// parsing of the manual hour/minute/second fields.
package controller

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/tutu-network/timebank/internal/app/engine"
	"github.com/tutu-network/timebank/internal/domain"
)

// Prompts shown by the confirmation gate.
const (
	UpdatePrompt = "Do you really want to change the time?"
	ResetPrompt  = "Do you really want to reset the timer?"
)

// maxManualMillis bounds manual input so float→int64 conversion stays defined.
const maxManualMillis = 1e15

// Clearer removes the persisted record.
type Clearer interface {
	Clear() error
}

// Controller dispatches intents to an engine.
type Controller struct {
	engine    *engine.Engine
	confirmer domain.Confirmer
	clearer   Clearer
}

// New creates a controller. A nil confirmer declines every prompt.
func New(e *engine.Engine, confirmer domain.Confirmer) *Controller {
	if confirmer == nil {
		confirmer = AutoConfirm(false)
	}
	return &Controller{engine: e, confirmer: confirmer}
}

// SetClearer enables Reset.
func (c *Controller) SetClearer(cl Clearer) { c.clearer = cl }

// Engine returns the engine the controller drives.
func (c *Controller) Engine() *engine.Engine { return c.engine }

// OnEarnClicked starts earning.
func (c *Controller) OnEarnClicked() { c.engine.StartEarning() }

// OnUseClicked starts using.
func (c *Controller) OnUseClicked() { c.engine.StartUsing() }

// OnStopClicked stops the timer.
func (c *Controller) OnStopClicked() { c.engine.Stop() }

// OnUpdateClicked asks for confirmation and then overwrites the balance with
// the parsed fields. Fields that are not numbers count as zero. When the
// user declines, nothing changes and ErrNotConfirmed is returned.
func (c *Controller) OnUpdateClicked(hours, minutes, seconds string) error {
	if !c.confirmer.Confirm(UpdatePrompt) {
		return domain.ErrNotConfirmed
	}
	c.engine.SetBalance(ManualBalance(hours, minutes, seconds))
	return nil
}

// Reset asks for confirmation, deletes the stored record and reopens the
// engine on a fresh default record.
func (c *Controller) Reset() error {
	if c.clearer == nil {
		return fmt.Errorf("reset: no storage configured")
	}
	if !c.confirmer.Confirm(ResetPrompt) {
		return domain.ErrNotConfirmed
	}

	c.engine.Close()
	if err := c.clearer.Clear(); err != nil {
		// The record is still stored; resume it so an active mode keeps
		// ticking and auto-stopping.
		c.engine.Open()
		return fmt.Errorf("reset: %w", err)
	}
	log.Printf("[controller] stored record cleared")
	c.engine.Open()
	return nil
}

// ─── Manual Input ───────────────────────────────────────────────────────────

// ParseField reads one manual input field. Blank, non-numeric, NaN and
// infinite values are coerced to zero; fractions and negatives pass through.
func ParseField(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ManualBalance converts the three fields to milliseconds. The result may
// be negative; the engine floors it at zero.
func ManualBalance(hours, minutes, seconds string) int64 {
	total := (ParseField(hours)*3600 + ParseField(minutes)*60 + ParseField(seconds)) * 1000
	total = math.Max(math.Min(total, maxManualMillis), -maxManualMillis)
	return int64(math.Floor(total))
}

// ─── Confirmers ─────────────────────────────────────────────────────────────

// AutoConfirm answers every prompt with the same value.
type AutoConfirm bool

// Confirm implements domain.Confirmer.
func (a AutoConfirm) Confirm(string) bool { return bool(a) }

// PromptConfirmer asks on a terminal and accepts "y" or "yes".
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements domain.Confirmer. Read errors count as a decline.
func (p PromptConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
