// Package server exposes the task store and the recurrence engine over a
// JSON HTTP API. Routes are scoped to the authenticated principal installed
// by the auth middleware; the engine itself stays pure and is invoked per
// request with immutable task snapshots.
package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/dailyflo/dailyflo/recurrence"
	"github.com/dailyflo/dailyflo/server/auth"
	"github.com/dailyflo/dailyflo/storage"
)

const mimeTypeJSON = "application/json; charset=utf-8"

// Handler is the HTTP handler for the task API.
type Handler struct {
	store  storage.Store
	window recurrence.WindowConfig
	logger *slog.Logger
	mux    *http.ServeMux
}

// Option represents a configuration option for the Handler
type Option func(*Handler)

// WithLogger sets the logger for the handler
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithWindowConfig overrides the default look-back window of the today view
func WithWindowConfig(cfg recurrence.WindowConfig) Option {
	return func(h *Handler) {
		h.window = cfg
	}
}

// New creates the API handler backed by store.
func New(store storage.Store, opts ...Option) *Handler {
	h := &Handler{
		store:  store,
		window: recurrence.DefaultWindowConfig,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("GET /tasks", h.handleListTasks)
	mux.HandleFunc("POST /tasks", h.handleCreateTask)
	mux.HandleFunc("GET /tasks/{id}", h.handleGetTask)
	mux.HandleFunc("PATCH /tasks/{id}", h.handleUpdateTask)
	mux.HandleFunc("DELETE /tasks/{id}", h.handleDeleteTask)
	mux.HandleFunc("POST /tasks/{id}/complete", h.handleCompleteTask)
	mux.HandleFunc("POST /tasks/{id}/detach", h.handleDetachOccurrence)

	mux.HandleFunc("GET /views/today", h.handleTodayView)
	mux.HandleFunc("GET /views/date/{date}", h.handleDateView)

	mux.HandleFunc("GET /lists", h.handleListLists)
	mux.HandleFunc("POST /lists", h.handleCreateList)
	mux.HandleFunc("GET /lists/inbox", h.handleInbox)
	mux.HandleFunc("GET /lists/{id}", h.handleGetList)
	mux.HandleFunc("PATCH /lists/{id}", h.handleUpdateList)
	mux.HandleFunc("DELETE /lists/{id}", h.handleDeleteList)
	mux.HandleFunc("GET /lists/{id}/tasks", h.handleListTasksOfList)

	mux.HandleFunc("GET /export/calendar.ics", h.handleExportCalendar)

	h.mux = mux
	return h
}

// ServeHTTP implements http.Handler interface
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// principal returns the authenticated user id. A missing principal means the
// handler was mounted without the auth middleware; the request is rejected
// rather than served another user's data.
func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := auth.GetPrincipalFromContext(r.Context())
	if p == nil {
		h.logger.Error("no principal in request context", "path", r.URL.Path)
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return "", false
	}
	return p.ID, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", mimeTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if e, ok := err.(*storage.Error); ok {
		status := http.StatusInternalServerError
		switch e.Type {
		case storage.ErrNotFound:
			status = http.StatusNotFound
		case storage.ErrAlreadyExists:
			status = http.StatusConflict
		case storage.ErrInvalidInput:
			status = http.StatusBadRequest
		}
		h.writeJSON(w, status, map[string]string{"error": e.Message})
		return
	}

	h.logger.Error("request failed", "error", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
