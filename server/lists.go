package server

import (
	"net/http"

	"github.com/dailyflo/dailyflo/task"
)

func (h *Handler) handleListLists(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	lists, err := h.store.ListLists(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if lists == nil {
		lists = []*task.List{}
	}
	h.writeJSON(w, http.StatusOK, lists)
}

func (h *Handler) handleCreateList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	var l task.List
	if !h.readJSON(w, r, &l) {
		return
	}
	l.ID = ""
	l.UserID = user
	l.IsDefault = false

	if err := h.store.CreateList(r.Context(), &l); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, &l)
}

func (h *Handler) handleGetList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	l, err := h.store.GetList(r.Context(), user, r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, l)
}

func (h *Handler) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	existing, err := h.store.GetList(r.Context(), user, r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	updated := *existing
	if !h.readJSON(w, r, &updated) {
		return
	}
	updated.ID = existing.ID
	updated.UserID = user

	if err := h.store.UpdateList(r.Context(), &updated); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &updated)
}

func (h *Handler) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteList(r.Context(), user, r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleInbox(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	inbox, err := h.store.Inbox(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, inbox)
}

func (h *Handler) handleListTasksOfList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	listID := r.PathValue("id")
	if _, err := h.store.GetList(r.Context(), user, listID); err != nil {
		h.writeError(w, err)
		return
	}

	opts := listOptionsFromQuery(r)
	opts.ListID = listID
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
