package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ─── Notification Inbox ─────────────────────────────────────────────────────
// The engine's Notifier for HTTP clients. Messages are held in memory
// until a client marks them shown.
//
// GET  /api/notifications            — pending notifications
// POST /api/notifications/{id}/shown — mark a notification shown

// Notification is one user-facing message.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Shown     bool      `json:"shown"`
}

// Inbox keeps the most recent notifications.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
	max   int
}

// NewInbox creates an inbox holding at most max notifications.
func NewInbox(max int) *Inbox {
	if max <= 0 {
		max = 50
	}
	return &Inbox{max: max}
}

// Notify implements domain.Notifier.
func (in *Inbox) Notify(msg string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if len(in.items) >= in.max {
		in.items = in.items[1:]
	}
	in.items = append(in.items, Notification{
		ID:        uuid.NewString(),
		Message:   msg,
		CreatedAt: time.Now(),
	})
}

// Pending returns notifications not yet shown, oldest first.
func (in *Inbox) Pending() []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()

	out := make([]Notification, 0, len(in.items))
	for _, n := range in.items {
		if !n.Shown {
			out = append(out, n)
		}
	}
	return out
}

// MarkShown flags a notification as shown. It reports whether id exists.
func (in *Inbox) MarkShown(id string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	for i := range in.items {
		if in.items[i].ID == id {
			in.items[i].Shown = true
			return true
		}
	}
	return false
}

// HandleList returns pending notifications.
// GET /api/notifications
func (in *Inbox) HandleList(w http.ResponseWriter, r *http.Request) {
	pending := in.Pending()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": pending,
		"count":         len(pending),
	})
}

// HandleShown marks a notification shown.
// POST /api/notifications/{id}/shown
func (in *Inbox) HandleShown(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if !in.MarkShown(id) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
