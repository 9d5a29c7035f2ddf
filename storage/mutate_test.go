package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyflo/dailyflo/task"
)

func TestApplyCompletionOnceToggle(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	once := task.Task{ID: "t1", Routine: task.RoutineOnce}

	done, err := ApplyCompletion(once, "", now)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, now, *done.CompletedAt)

	undone, err := ApplyCompletion(done, "", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, undone.IsCompleted)
	assert.Nil(t, undone.CompletedAt)
}

func TestApplyCompletionRecurringToggle(t *testing.T) {
	now := time.Now()
	anchor := time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)
	daily := task.Task{ID: "t1", Routine: task.RoutineDaily, DueDate: &anchor}

	updated, err := ApplyCompletion(daily, "2024-02-05", now)
	require.NoError(t, err)
	assert.Equal(t, []task.DateKey{"2024-02-05"}, updated.Completions)
	assert.False(t, updated.IsCompleted, "per-date completion never touches the once flag")

	cleared, err := ApplyCompletion(updated, "2024-02-05", now)
	require.NoError(t, err)
	assert.Empty(t, cleared.Completions)
}

func TestApplyCompletionRejectsMismatches(t *testing.T) {
	now := time.Now()
	anchor := time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)
	daily := task.Task{ID: "t1", Routine: task.RoutineDaily, DueDate: &anchor}
	once := task.Task{ID: "t2", Routine: task.RoutineOnce, DueDate: &anchor}

	_, err := ApplyCompletion(daily, "", now)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrInvalidInput, serr.Type)

	_, err = ApplyCompletion(once, "2024-02-05", now)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrInvalidInput, serr.Type)

	_, err = ApplyCompletion(daily, "not-a-date", now)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrInvalidInput, serr.Type)
}

func TestBuildDetachment(t *testing.T) {
	now := time.Date(2024, 2, 10, 9, 0, 0, 0, time.Local)
	anchor := time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)
	daily := task.Task{
		ID:          "base-1",
		UserID:      "alice",
		ListID:      "list-1",
		Title:       "Water the plants",
		Routine:     task.RoutineDaily,
		DueDate:     &anchor,
		Time:        "09:00",
		Completions: []task.DateKey{"2024-02-05"},
	}

	base, standalone, err := BuildDetachment(daily, "2024-02-05", now)
	require.NoError(t, err)

	assert.Equal(t, []task.DateKey{"2024-02-05"}, base.Exceptions)
	assert.Empty(t, base.Completions, "the completion entry moves to the standalone task")
	assert.Equal(t, "base-1", base.ID)

	assert.NotEmpty(t, standalone.ID)
	assert.NotEqual(t, "base-1", standalone.ID)
	assert.Equal(t, task.RoutineOnce, standalone.Routine)
	assert.Equal(t, "alice", standalone.UserID)
	assert.Equal(t, "list-1", standalone.ListID)
	assert.Equal(t, "Water the plants", standalone.Title)
	assert.True(t, standalone.IsCompleted)
	require.NotNil(t, standalone.DueDate)
	assert.Equal(t, task.DateKey("2024-02-05"), task.DateKeyOf(*standalone.DueDate))
	assert.Equal(t, 9, standalone.DueDate.Hour())
}

func TestBuildDetachmentUncompletedOccurrence(t *testing.T) {
	now := time.Now()
	anchor := time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)
	daily := task.Task{ID: "base-1", Routine: task.RoutineDaily, DueDate: &anchor}

	_, standalone, err := BuildDetachment(daily, "2024-02-05", now)
	require.NoError(t, err)
	assert.False(t, standalone.IsCompleted)
	assert.Nil(t, standalone.CompletedAt)
}

func TestBuildDetachmentErrors(t *testing.T) {
	now := time.Now()
	anchor := time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)

	once := task.Task{ID: "t1", Routine: task.RoutineOnce, DueDate: &anchor}
	_, _, err := BuildDetachment(once, "2024-02-05", now)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrInvalidInput, serr.Type)

	daily := task.Task{ID: "t1", Routine: task.RoutineDaily, DueDate: &anchor}

	_, _, err = BuildDetachment(daily, "garbage", now)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrInvalidInput, serr.Type)

	// Detaching the same date twice conflicts.
	detached := daily
	detached.Exceptions = []task.DateKey{"2024-02-05"}
	_, _, err = BuildDetachment(detached, "2024-02-05", now)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrAlreadyExists, serr.Type)

	// The series must actually occur on the requested date.
	weekly := task.Task{ID: "t1", Routine: task.RoutineWeekly, DueDate: &anchor} // a Thursday
	_, _, err = BuildDetachment(weekly, "2024-02-09", now)                       // a Friday
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrInvalidInput, serr.Type)
}
