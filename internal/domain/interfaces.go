package domain

// ─── Collaborator Interfaces ────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the engine depends on them.

// Store persists the single timer record.
type Store interface {
	// Load returns the stored record. ok is false when the record is
	// absent or could not be decoded.
	Load() (rec TimerRecord, ok bool)

	// Save writes the record. A failure leaves the caller's in-memory
	// state authoritative.
	Save(rec TimerRecord) error
}

// Display is the render sink. It receives the formatted HH:MM:SS string
// and the mode the balance is moving in.
type Display interface {
	Show(text string, mode Mode)
}

// Notifier is a fire-and-forget user message sink.
type Notifier interface {
	Notify(msg string)
}

// Confirmer blocks until the user accepts or declines a prompt.
type Confirmer interface {
	Confirm(prompt string) bool
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(text string, mode Mode)

// Show calls f(text, mode).
func (f DisplayFunc) Show(text string, mode Mode) { f(text, mode) }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify calls f(msg).
func (f NotifierFunc) Notify(msg string) { f(msg) }
