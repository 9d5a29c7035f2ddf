package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dailyflo/dailyflo/task"
)

func TestCompletionsOf(t *testing.T) {
	tsk := task.Task{
		Completions: []task.DateKey{"2024-02-05", "2024-02-06", "2024-02-05", "garbage"},
	}

	set := CompletionsOf(tsk)
	assert.Len(t, set, 2, "duplicates and malformed entries collapse")
	assert.Contains(t, set, task.DateKey("2024-02-05"))
	assert.Contains(t, set, task.DateKey("2024-02-06"))

	assert.True(t, IsCompletedOn(tsk, "2024-02-05"))
	assert.False(t, IsCompletedOn(tsk, "2024-02-07"))
	assert.False(t, IsCompletedOn(tsk, "garbage"))
}

func TestExceptionsOf(t *testing.T) {
	tsk := task.Task{
		Exceptions: []task.DateKey{"2024-02-04"},
	}

	assert.True(t, IsExceptionOn(tsk, "2024-02-04"))
	assert.False(t, IsExceptionOn(tsk, "2024-02-05"))

	assert.Empty(t, ExceptionsOf(task.Task{}))
	assert.Empty(t, CompletionsOf(task.Task{}))
}
