package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dailyflo/dailyflo/recurrence"
	"github.com/dailyflo/dailyflo/task"
)

// ApplyCompletion toggles completion state on a copy of t. With an empty key
// it flips the IsCompleted flag of a once task; with a date key it flips
// that date in a recurring task's completion set. Backends persist the
// returned copy.
func ApplyCompletion(t task.Task, key task.DateKey, now time.Time) (task.Task, error) {
	if key == "" {
		if t.Recurring() {
			return t, &Error{Type: ErrInvalidInput, Message: "completing a recurring task requires a date"}
		}
		t.IsCompleted = !t.IsCompleted
		t.CompletedAt = nil
		if t.IsCompleted {
			at := now
			t.CompletedAt = &at
		}
		t.UpdatedAt = now
		return t, nil
	}

	if !t.Recurring() {
		return t, &Error{Type: ErrInvalidInput, Message: "per-date completion applies to recurring tasks only"}
	}
	if !key.Valid() {
		return t, &Error{Type: ErrInvalidInput, Message: fmt.Sprintf("invalid date key %q", key)}
	}
	t.Completions = ToggleKey(t.Completions, key)
	t.UpdatedAt = now
	return t, nil
}

// BuildDetachment detaches the occurrence of t on key: the returned base
// task records key as an exception (dropping any completion entry for it)
// and the returned standalone once task represents that date from now on,
// carrying over the occurrence's completion state. Backends persist both.
func BuildDetachment(t task.Task, key task.DateKey, now time.Time) (base, standalone task.Task, err error) {
	if !t.Recurring() {
		return t, standalone, &Error{Type: ErrInvalidInput, Message: "only recurring tasks can detach an occurrence"}
	}
	if !key.Valid() {
		return t, standalone, &Error{Type: ErrInvalidInput, Message: fmt.Sprintf("invalid date key %q", key)}
	}
	if recurrence.IsExceptionOn(t, key) {
		return t, standalone, &Error{Type: ErrAlreadyExists, Message: fmt.Sprintf("occurrence on %s already detached", key)}
	}
	if !recurrence.OccursOn(t, key) {
		return t, standalone, &Error{Type: ErrInvalidInput, Message: fmt.Sprintf("series has no occurrence on %s", key)}
	}

	done := recurrence.IsCompletedOn(t, key)

	base = t
	base.Exceptions = NormalizeKeys(append(append([]task.DateKey{}, t.Exceptions...), key))
	if done {
		base.Completions = ToggleKey(t.Completions, key)
	}
	base.UpdatedAt = now

	due := t.DueTime(key)
	standalone = task.Task{
		ID:          uuid.NewString(),
		UserID:      t.UserID,
		ListID:      t.ListID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     &due,
		Time:        t.Time,
		Routine:     task.RoutineOnce,
		Priority:    t.Priority,
		Color:       t.Color,
		SortOrder:   t.SortOrder,
		IsCompleted: done,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if done {
		standalone.CompletedAt = &due
	}
	return base, standalone, nil
}
