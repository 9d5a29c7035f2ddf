package server

import (
	"net/http"
	"strconv"

	"github.com/dailyflo/dailyflo/recurrence"
	"github.com/dailyflo/dailyflo/task"
)

// viewResponse is the payload of the day-window views: the dates that were
// expanded and the flat occurrence list. Grouping into "Overdue" and
// "Today" sections is the client's job.
type viewResponse struct {
	Dates       []task.DateKey    `json:"dates"`
	Occurrences []task.Occurrence `json:"occurrences"`
}

// handleTodayView expands every task of the user over a bounded look-back
// window ending today. One-off tasks due before the window are included, so
// long-overdue items still surface.
func (h *Handler) handleTodayView(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	lookback := h.window.LookbackDays
	if v := r.URL.Query().Get("lookback"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lookback"})
			return
		}
		lookback = n
	}

	tasks, err := h.store.ListTasks(r.Context(), user, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}

	targets := recurrence.TodayWindow(lookback)
	occurrences := recurrence.Expand(deref(tasks), targets, recurrence.ExpandOptions{
		IncludeOneOffBeforeRange: true,
	})

	h.writeJSON(w, http.StatusOK, viewResponse{Dates: targets, Occurrences: occurrences})
}

// handleDateView expands a single calendar cell.
func (h *Handler) handleDateView(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	key, err := task.ParseDateKey(r.PathValue("date"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}

	tasks, listErr := h.store.ListTasks(r.Context(), user, nil)
	if listErr != nil {
		h.writeError(w, listErr)
		return
	}

	targets := []task.DateKey{key}
	occurrences := recurrence.Expand(deref(tasks), targets, recurrence.ExpandOptions{})

	h.writeJSON(w, http.StatusOK, viewResponse{Dates: targets, Occurrences: occurrences})
}

func deref(tasks []*task.Task) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out
}
