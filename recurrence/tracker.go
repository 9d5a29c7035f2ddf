package recurrence

import "github.com/dailyflo/dailyflo/task"

// CompletionsOf returns the set of dates on which an occurrence of t was
// marked done. Malformed entries are dropped and duplicates collapse, so
// garbage in the persisted set can only shrink the result, never fail.
func CompletionsOf(t task.Task) map[task.DateKey]struct{} {
	return keySet(t.Completions)
}

// IsCompletedOn reports whether t's occurrence on key was marked done.
func IsCompletedOn(t task.Task, key task.DateKey) bool {
	_, ok := CompletionsOf(t)[key]
	return ok
}

// ExceptionsOf returns the set of dates detached from t's series. The series
// generates no occurrence on these dates; a standalone task represents each
// of them instead.
func ExceptionsOf(t task.Task) map[task.DateKey]struct{} {
	return keySet(t.Exceptions)
}

// IsExceptionOn reports whether key has been detached from t's series.
func IsExceptionOn(t task.Task, key task.DateKey) bool {
	_, ok := ExceptionsOf(t)[key]
	return ok
}

func keySet(keys []task.DateKey) map[task.DateKey]struct{} {
	set := make(map[task.DateKey]struct{}, len(keys))
	for _, k := range keys {
		if k.Valid() {
			set[k] = struct{}{}
		}
	}
	return set
}
