// Package api provides the HTTP controller surface for timebank.
// Each endpoint maps a user intent onto the engine and answers with the
// current timer status.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tutu-network/timebank/internal/app/controller"
	"github.com/tutu-network/timebank/internal/app/engine"
	"github.com/tutu-network/timebank/internal/domain"
)

// Server is the timebank HTTP API server.
type Server struct {
	engine         *engine.Engine
	clearer        controller.Clearer
	metricsEnabled bool
	inbox          *Inbox      // notification inbox (nil if not set)
	live           *DisplayHub // live display SSE feed (nil if not set)
}

// NewServer creates a new API server.
func NewServer(e *engine.Engine) *Server {
	return &Server{engine: e}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetClearer enables POST /api/timer/reset.
func (s *Server) SetClearer(c controller.Clearer) { s.clearer = c }

// SetInbox sets the notification inbox.
func (s *Server) SetInbox(in *Inbox) { s.inbox = in }

// SetDisplayHub sets the live display hub.
func (s *Server) SetDisplayHub(h *DisplayHub) { s.live = h }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api/timer", func(r chi.Router) {
		r.With(middleware.Timeout(10*time.Second)).Group(func(r chi.Router) {
			r.Get("/", s.handleStatus)
			r.Post("/earn", s.handleEarn)
			r.Post("/use", s.handleUse)
			r.Post("/stop", s.handleStop)
			r.Post("/balance", s.handleSetBalance)
			r.Post("/reset", s.handleReset)
		})
		if s.live != nil {
			r.Get("/live", s.live.HandleSSE)
		}
	})

	if s.inbox != nil {
		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", s.inbox.HandleList)
			r.Post("/{id}/shown", s.inbox.HandleShown)
		})
	}

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Timer Handlers ─────────────────────────────────────────────────────────

// GET /api/timer
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// POST /api/timer/earn
func (s *Server) handleEarn(w http.ResponseWriter, r *http.Request) {
	s.controller(false).OnEarnClicked()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// POST /api/timer/use
func (s *Server) handleUse(w http.ResponseWriter, r *http.Request) {
	s.controller(false).OnUseClicked()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// POST /api/timer/stop
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.controller(false).OnStopClicked()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// setBalanceRequest carries the manual override. Fields may be JSON
// strings or numbers; anything unparseable counts as zero.
type setBalanceRequest struct {
	Hours   manualField `json:"hours"`
	Minutes manualField `json:"minutes"`
	Seconds manualField `json:"seconds"`
	Confirm bool        `json:"confirm"`
}

// POST /api/timer/balance
func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	var req setBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := s.controller(req.Confirm).OnUpdateClicked(string(req.Hours), string(req.Minutes), string(req.Seconds))
	if errors.Is(err, domain.ErrNotConfirmed) {
		writeError(w, http.StatusConflict, "balance change requires confirm=true")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

// POST /api/timer/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if s.clearer == nil {
		writeError(w, http.StatusServiceUnavailable, "reset not available")
		return
	}
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ctrl := s.controller(req.Confirm)
	ctrl.SetClearer(s.clearer)
	if err := ctrl.Reset(); err != nil {
		if errors.Is(err, domain.ErrNotConfirmed) {
			writeError(w, http.StatusConflict, "reset requires confirm=true")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// controller builds a per-request controller whose confirmation gate is
// answered by the request itself.
func (s *Server) controller(confirmed bool) *controller.Controller {
	return controller.New(s.engine, controller.AutoConfirm(confirmed))
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// manualField accepts a JSON string, number or null.
type manualField string

func (f *manualField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = manualField(s)
		return nil
	}
	// Numbers and anything else are kept verbatim and coerced later.
	*f = manualField(data)
	return nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for a local browser front end.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
