package recurrence

import (
	"time"

	"github.com/dailyflo/dailyflo/task"
)

// WindowConfig bounds how far back the today view expands recurring tasks.
type WindowConfig struct {
	// LookbackDays is the number of days before today included in the
	// window. It caps the cost of expanding an old daily task to a fixed
	// number of dates instead of everything from its anchor to the present.
	LookbackDays int
}

// DefaultWindowConfig matches the stock today screen: two weeks of look-back
// plus today itself. The window is uniform across routine types; a monthly
// or yearly task whose only relevant occurrence fell before the window will
// not surface as overdue. Widen LookbackDays when that matters.
var DefaultWindowConfig = WindowConfig{LookbackDays: 14}

// TodayWindow returns lookbackDays+1 consecutive date keys ending today
// (inclusive), oldest first.
func TodayWindow(lookbackDays int) []task.DateKey {
	return WindowEnding(time.Now(), lookbackDays)
}

// WindowEnding returns lookbackDays+1 consecutive date keys ending on the
// calendar date of until, oldest first. A negative look-back is treated as
// zero.
func WindowEnding(until time.Time, lookbackDays int) []task.DateKey {
	if lookbackDays < 0 {
		lookbackDays = 0
	}
	keys := make([]task.DateKey, 0, lookbackDays+1)
	for i := lookbackDays; i >= 0; i-- {
		keys = append(keys, task.DateKeyOf(until.AddDate(0, 0, -i)))
	}
	return keys
}
