// Package recurrence expands base tasks into dated occurrences. It decides
// whether a task's routine produces an instance on a given calendar date,
// synthesizes the flat occurrence list for a window of dates, and gives each
// virtual instance a stable identity distinct from its base task.
//
// The package is pure: it performs no I/O, holds no state between calls and
// treats every task it is handed as an immutable snapshot. Malformed data
// (bad anchor dates, unknown routine types, broken RRULEs, garbage
// completion sets) degrades to "no occurrence" or "empty set" so that one
// corrupt record cannot break expansion of the rest of the collection.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/dailyflo/dailyflo/task"
)

// OccursOn reports whether t's recurrence pattern produces an occurrence on
// key. The comparison is by local calendar date: the task's due date is
// reduced to a DateKey before matching, so time-of-day and timezone offsets
// never influence the answer. A task with no due date never occurs, and
// recurring tasks never occur before their anchor date.
//
// Monthly and yearly matching clamps to the end of shorter months: a task
// anchored on the 31st occurs on the 30th of a 30-day month, and a Feb-29
// anchor occurs on Feb-28 in non-leap years.
func OccursOn(t task.Task, key task.DateKey) bool {
	anchor, ok := t.AnchorKey()
	if !ok || !key.Valid() {
		return false
	}

	if !t.Recurring() {
		return key == anchor
	}
	if key.Before(anchor) {
		return false
	}

	switch t.Routine {
	case task.RoutineDaily:
		return true
	case task.RoutineWeekly:
		return key.Weekday() == anchor.Weekday()
	case task.RoutineMonthly:
		return key.Day() == clampDay(anchor.Day(), key.DaysInMonth())
	case task.RoutineYearly:
		return key.Month() == anchor.Month() &&
			key.Day() == clampDay(anchor.Day(), key.DaysInMonth())
	case task.RoutineCustom:
		return rruleOccursOn(t.RRule, anchor, key)
	default:
		// Unknown routine values generate nothing rather than failing.
		return false
	}
}

// clampDay pins an anchor's day-of-month to the last day of months too short
// to contain it.
func clampDay(day, daysInMonth int) int {
	if day > daysInMonth {
		return daysInMonth
	}
	return day
}

// rruleOccursOn reports whether the RRULE pattern, anchored at midnight UTC
// on the anchor date, yields an instance on key's calendar date. A pattern
// that fails to parse never occurs.
func rruleOccursOn(pattern string, anchor, key task.DateKey) bool {
	if pattern == "" {
		return false
	}

	dtstart := anchor.UTC().Format("20060102T150405Z")
	set, err := rrule.StrToRRuleSet(fmt.Sprintf("DTSTART:%s\nRRULE:%s", dtstart, pattern))
	if err != nil {
		return false
	}

	dayStart := key.UTC()
	dayEnd := dayStart.Add(24*time.Hour - time.Second)
	return len(set.Between(dayStart, dayEnd, true)) > 0
}
