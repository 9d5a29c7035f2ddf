package server

import (
	"net/http"

	"github.com/dailyflo/dailyflo/recurrence"
	"github.com/dailyflo/dailyflo/storage"
	"github.com/dailyflo/dailyflo/task"
)

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	opts := listOptionsFromQuery(r)
	tasks, err := h.store.ListTasks(r.Context(), user, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	h.writeJSON(w, http.StatusOK, tasks)
}

func listOptionsFromQuery(r *http.Request) *storage.ListOptions {
	q := r.URL.Query()
	opts := &storage.ListOptions{
		ListID:  q.Get("list"),
		Routine: task.RoutineType(q.Get("routine_type")),
		Search:  q.Get("search"),
	}
	if v := q.Get("completed"); v != "" {
		completed := v == "true"
		opts.Completed = &completed
	}
	return opts
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	var t task.Task
	if !h.readJSON(w, r, &t) {
		return
	}
	t.ID = ""
	t.UserID = user

	if err := h.store.CreateTask(r.Context(), &t); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, &t)
}

// handleGetTask serves both real task ids and encoded occurrence ids. An
// occurrence id resolves to the synthesized instance for its date, so the
// UI can re-fetch any entry it got from a view by the entry's own id.
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	decoded := recurrence.DecodeOccurrenceID(r.PathValue("id"))
	t, err := h.store.GetTask(r.Context(), user, decoded.BaseID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	key, isOccurrence := decoded.DateKey.Get()
	if !isOccurrence {
		h.writeJSON(w, http.StatusOK, t)
		return
	}

	occurrences := recurrence.Expand([]task.Task{*t}, []task.DateKey{key}, recurrence.ExpandOptions{})
	if len(occurrences) == 0 {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no occurrence on that date"})
		return
	}
	h.writeJSON(w, http.StatusOK, occurrences[0])
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	existing, err := h.store.GetTask(r.Context(), user, r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Decoding over a copy of the current record gives PATCH semantics:
	// absent fields keep their stored values.
	updated := *existing
	if !h.readJSON(w, r, &updated) {
		return
	}
	updated.ID = existing.ID
	updated.UserID = user

	if err := h.store.UpdateTask(r.Context(), &updated); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &updated)
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteTask(r.Context(), user, r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type occurrenceRequest struct {
	Date task.DateKey `json:"date"`
}

// handleCompleteTask toggles completion. The date of a recurring occurrence
// comes from the request body, or from the occurrence id itself when the
// caller uses the encoded form.
func (h *Handler) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	decoded := recurrence.DecodeOccurrenceID(r.PathValue("id"))
	var req occurrenceRequest
	if r.ContentLength > 0 && !h.readJSON(w, r, &req) {
		return
	}
	if req.Date == "" {
		if key, isOccurrence := decoded.DateKey.Get(); isOccurrence {
			req.Date = key
		}
	}

	t, err := h.store.CompleteTask(r.Context(), user, decoded.BaseID, req.Date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

// handleDetachOccurrence pulls one date out of a recurring series and
// answers with the standalone task now representing it.
func (h *Handler) handleDetachOccurrence(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	decoded := recurrence.DecodeOccurrenceID(r.PathValue("id"))
	var req occurrenceRequest
	if r.ContentLength > 0 && !h.readJSON(w, r, &req) {
		return
	}
	if req.Date == "" {
		if key, isOccurrence := decoded.DateKey.Get(); isOccurrence {
			req.Date = key
		}
	}
	if req.Date == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is required"})
		return
	}

	standalone, err := h.store.DetachOccurrence(r.Context(), user, decoded.BaseID, req.Date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, standalone)
}
