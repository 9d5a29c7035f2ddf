package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dailyflo/dailyflo/task"
)

func anchored(routine task.RoutineType, due time.Time) task.Task {
	return task.Task{ID: "t1", Routine: routine, DueDate: &due}
}

func TestOccursOn(t *testing.T) {
	monday := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local) // a Monday

	tests := []struct {
		name     string
		task     task.Task
		key      task.DateKey
		expected bool
	}{
		{
			name:     "Once task on its due date",
			task:     anchored(task.RoutineOnce, time.Date(2024, 3, 10, 23, 0, 0, 0, time.Local)),
			key:      "2024-03-10",
			expected: true,
		},
		{
			name:     "Once task on another date",
			task:     anchored(task.RoutineOnce, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)),
			key:      "2024-03-11",
			expected: false,
		},
		{
			name:     "Task without a due date never occurs",
			task:     task.Task{ID: "t1", Routine: task.RoutineDaily},
			key:      "2024-03-10",
			expected: false,
		},
		{
			name:     "Daily occurs on the anchor",
			task:     anchored(task.RoutineDaily, monday),
			key:      "2024-01-01",
			expected: true,
		},
		{
			name:     "Daily occurs long after the anchor",
			task:     anchored(task.RoutineDaily, monday),
			key:      "2024-05-17",
			expected: true,
		},
		{
			name:     "Daily never occurs before the anchor",
			task:     anchored(task.RoutineDaily, time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local)),
			key:      "2024-05-09",
			expected: false,
		},
		{
			name:     "Weekly occurs on matching weekdays",
			task:     anchored(task.RoutineWeekly, monday),
			key:      "2024-01-08",
			expected: true,
		},
		{
			name:     "Weekly occurs weeks later",
			task:     anchored(task.RoutineWeekly, monday),
			key:      "2024-01-15",
			expected: true,
		},
		{
			name:     "Weekly skips other weekdays",
			task:     anchored(task.RoutineWeekly, monday),
			key:      "2024-01-09",
			expected: false,
		},
		{
			name:     "Monthly occurs on the anchor day",
			task:     anchored(task.RoutineMonthly, time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)),
			key:      "2024-03-15",
			expected: true,
		},
		{
			name:     "Monthly skips other days",
			task:     anchored(task.RoutineMonthly, time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)),
			key:      "2024-03-14",
			expected: false,
		},
		{
			name:     "Monthly anchored on the 31st clamps to a 30-day month",
			task:     anchored(task.RoutineMonthly, time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local)),
			key:      "2024-04-30",
			expected: true,
		},
		{
			name:     "Monthly anchored on the 31st clamps to February",
			task:     anchored(task.RoutineMonthly, time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local)),
			key:      "2024-02-29",
			expected: true,
		},
		{
			name:     "Monthly clamp does not double-fire before month end",
			task:     anchored(task.RoutineMonthly, time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local)),
			key:      "2024-04-29",
			expected: false,
		},
		{
			name:     "Yearly occurs on the anniversary",
			task:     anchored(task.RoutineYearly, time.Date(2022, 7, 4, 0, 0, 0, 0, time.Local)),
			key:      "2024-07-04",
			expected: true,
		},
		{
			name:     "Yearly skips other months with the same day",
			task:     anchored(task.RoutineYearly, time.Date(2022, 7, 4, 0, 0, 0, 0, time.Local)),
			key:      "2024-08-04",
			expected: false,
		},
		{
			name:     "Feb 29 anchor clamps to Feb 28 in non-leap years",
			task:     anchored(task.RoutineYearly, time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local)),
			key:      "2025-02-28",
			expected: true,
		},
		{
			name:     "Unknown routine type never occurs",
			task:     anchored(task.RoutineType("fortnightly"), monday),
			key:      "2024-01-15",
			expected: false,
		},
		{
			name:     "Malformed target key never occurs",
			task:     anchored(task.RoutineDaily, monday),
			key:      "not-a-date",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OccursOn(tt.task, tt.key))
		})
	}
}

func TestOccursOnCustomRRule(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	everyOtherDay := task.Task{
		ID:      "t1",
		Routine: task.RoutineCustom,
		RRule:   "FREQ=DAILY;INTERVAL=2",
		DueDate: &due,
	}

	assert.True(t, OccursOn(everyOtherDay, "2024-01-01"))
	assert.False(t, OccursOn(everyOtherDay, "2024-01-02"))
	assert.True(t, OccursOn(everyOtherDay, "2024-01-03"))
	assert.False(t, OccursOn(everyOtherDay, "2023-12-30"))

	broken := everyOtherDay
	broken.RRule = "FREQ=NEVER;;;"
	assert.False(t, OccursOn(broken, "2024-01-01"))

	empty := everyOtherDay
	empty.RRule = ""
	assert.False(t, OccursOn(empty, "2024-01-01"))
}

func TestOccursOnIsPure(t *testing.T) {
	tsk := anchored(task.RoutineWeekly, time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local))
	for i := 0; i < 3; i++ {
		assert.True(t, OccursOn(tsk, "2024-01-08"))
		assert.False(t, OccursOn(tsk, "2024-01-09"))
	}
}
