package api

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/tutu-network/timebank/internal/domain"
)

// ─── Live Display Feed ──────────────────────────────────────────────────────
// DisplayHub is the engine's render sink when serving HTTP. Every rendered
// HH:MM:SS string is fanned out to Server-Sent Events subscribers.
//
// GET /api/timer/live — text/event-stream of {"display","mode"} frames

// Frame is one rendered display update.
type Frame struct {
	Display string      `json:"display"`
	Mode    domain.Mode `json:"mode"`
}

// DisplayHub broadcasts frames to subscribers without ever blocking the
// engine: a subscriber that falls behind misses frames.
type DisplayHub struct {
	mu   sync.RWMutex
	subs map[chan Frame]struct{}
	last Frame
}

// NewDisplayHub creates an empty hub.
func NewDisplayHub() *DisplayHub {
	return &DisplayHub{subs: make(map[chan Frame]struct{})}
}

// Show implements domain.Display.
func (h *DisplayHub) Show(text string, mode domain.Mode) {
	f := Frame{Display: text, Mode: mode}

	h.mu.Lock()
	h.last = f
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- f:
		default:
		}
	}
}

// Last returns the most recent frame.
func (h *DisplayHub) Last() Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Subscribe registers a new subscriber. Call the returned func to leave.
func (h *DisplayHub) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// Subscribers returns the number of active subscribers.
func (h *DisplayHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// HandleSSE streams frames until the client disconnects.
func (h *DisplayHub) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, leave := h.Subscribe()
	defer leave()

	writeFrame(w, h.Last())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case f := <-ch:
			writeFrame(w, f)
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, f Frame) {
	fmt.Fprintf(w, "event: display\ndata: {\"display\":%q,\"mode\":%q}\n\n", f.Display, string(f.Mode))
}
