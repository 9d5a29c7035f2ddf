// Package task defines the persisted task and list entities shared by the
// recurrence engine, the storage backends and the HTTP server.
package task

import (
	"fmt"
	"time"
)

// RoutineType describes how a task repeats.
type RoutineType string

const (
	RoutineOnce    RoutineType = "once"
	RoutineDaily   RoutineType = "daily"
	RoutineWeekly  RoutineType = "weekly"
	RoutineMonthly RoutineType = "monthly"
	RoutineYearly  RoutineType = "yearly"
	// RoutineCustom repeats according to the task's raw RRULE pattern.
	RoutineCustom RoutineType = "custom"
)

// Recurring reports whether r is a known repeating routine. Unknown values
// return true so that a corrupt routine field is routed through the
// predicate, which rejects it, rather than shown as a one-off task.
func (r RoutineType) Recurring() bool {
	return r != RoutineOnce && r != ""
}

// Task is the persisted base record of a task, recurring or not. For a
// recurring task DueDate is the anchor: the first occurrence and the
// reference point for weekday and day-of-month matching.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	ListID      string     `json:"list,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	// Time is an optional HH:MM local time of day applied to every occurrence.
	Time    string      `json:"time,omitempty"`
	Routine RoutineType `json:"routine_type,omitempty"`
	// RRule holds the raw recurrence rule for RoutineCustom tasks.
	RRule     string `json:"rrule,omitempty"`
	Priority  int    `json:"priority_level,omitempty"`
	Color     string `json:"color,omitempty"`
	SortOrder int    `json:"sort_order,omitempty"`

	// IsCompleted and CompletedAt track completion of once tasks only.
	// Recurring tasks complete per occurrence, via Completions.
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Completions holds the dates on which an occurrence of this recurring
	// task was marked done. Exceptions holds the dates detached from the
	// series: no occurrence is generated for them because a standalone task
	// represents that date instead. Both are validated at the persistence
	// boundary; the engine treats malformed entries as absent.
	Completions []DateKey `json:"recurrence_completions,omitempty"`
	Exceptions  []DateKey `json:"recurrence_exceptions,omitempty"`

	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
	SoftDeleted bool      `json:"-"`
}

// Recurring reports whether t repeats.
func (t Task) Recurring() bool {
	return t.Routine.Recurring()
}

// AnchorKey returns the calendar date of the task's due date. ok is false
// when the task has no due date; a task with no anchor never occurs.
func (t Task) AnchorKey() (DateKey, bool) {
	if t.DueDate == nil {
		return "", false
	}
	return DateKeyOf(*t.DueDate), true
}

// DueTime returns the concrete timestamp of the occurrence of t on key.
// Tasks without an explicit time of day default to midday, so that shifting
// the timestamp between nearby timezones cannot roll it onto another date.
func (t Task) DueTime(key DateKey) time.Time {
	hour, minute := 12, 0
	if h, m, err := ParseClock(t.Time); err == nil {
		hour, minute = h, m
	}
	return key.Time(hour, minute)
}

// ParseClock parses an HH:MM time-of-day string.
func ParseClock(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock %q", s)
	}
	return hour, minute, nil
}

// List is a named collection of tasks. Every user has exactly one default
// list, the inbox, which new tasks land in when no list is given.
type List struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	IsDefault   bool      `json:"is_default"`
	SortOrder   int       `json:"sort_order,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}
