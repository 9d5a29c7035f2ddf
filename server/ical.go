package server

import (
	"net/http"
	"strings"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/dailyflo/dailyflo/storage"
	"github.com/dailyflo/dailyflo/task"
)

const mimeTypeCalendar = "text/calendar; charset=utf-8"

// handleExportCalendar renders every open task of the user as an iCalendar
// VTODO feed. Recurring tasks carry an RRULE and their detached dates as
// EXDATE; per-occurrence completion state has no iCalendar equivalent and is
// not exported.
func (h *Handler) handleExportCalendar(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}

	tasks, err := h.store.ListTasks(r.Context(), user, &storage.ListOptions{})
	if err != nil {
		h.writeError(w, err)
		return
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, "-//dailyflo//task server//EN")
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, t := range tasks {
		if todo := todoComponent(t); todo != nil {
			cal.Children = append(cal.Children, todo)
		}
	}

	w.Header().Set("Content-Type", mimeTypeCalendar)
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		h.logger.Error("failed to encode calendar", "error", err)
	}
}

// todoComponent builds the VTODO for one task; nil when the task cannot be
// represented (no due date, or a custom pattern that does not parse).
func todoComponent(t *task.Task) *ical.Component {
	anchor, ok := t.AnchorKey()
	if !ok {
		return nil
	}

	rule, ok := rruleString(t)
	if !ok {
		return nil
	}

	todo := &ical.Component{Name: ical.CompToDo, Props: make(ical.Props)}
	todo.Props.SetText(ical.PropUID, t.ID)
	todo.Props.SetText(ical.PropSummary, t.Title)
	if t.Description != "" {
		todo.Props.SetText(ical.PropDescription, t.Description)
	}
	todo.Props.SetDateTime(ical.PropDateTimeStamp, t.UpdatedAt)
	todo.Props.SetDateTime(ical.PropDue, t.DueTime(anchor))

	if rule != "" {
		todo.Props.SetText(ical.PropRecurrenceRule, rule)
	}

	if exceptions := storage.NormalizeKeys(t.Exceptions); len(exceptions) > 0 {
		dates := make([]string, 0, len(exceptions))
		for _, key := range exceptions {
			dates = append(dates, key.UTC().Format("20060102"))
		}
		exdate := ical.NewProp(ical.PropExceptionDates)
		exdate.Params.Set(ical.ParamValue, "DATE")
		exdate.Value = strings.Join(dates, ",")
		todo.Props.Add(exdate)
	}

	if !t.Recurring() && t.IsCompleted {
		todo.Props.SetText(ical.PropStatus, "COMPLETED")
		if t.CompletedAt != nil {
			todo.Props.SetDateTime(ical.PropCompleted, *t.CompletedAt)
		}
	} else {
		todo.Props.SetText(ical.PropStatus, "NEEDS-ACTION")
	}

	return todo
}

// rruleString maps a routine to its RRULE value. Empty string means the task
// does not repeat; ok is false when a custom pattern is malformed.
func rruleString(t *task.Task) (string, bool) {
	switch t.Routine {
	case task.RoutineDaily:
		return "FREQ=DAILY", true
	case task.RoutineWeekly:
		return "FREQ=WEEKLY", true
	case task.RoutineMonthly:
		return "FREQ=MONTHLY", true
	case task.RoutineYearly:
		return "FREQ=YEARLY", true
	case task.RoutineCustom:
		if _, err := rrule.StrToROption(t.RRule); err != nil {
			return "", false
		}
		return t.RRule, true
	default:
		return "", true
	}
}
