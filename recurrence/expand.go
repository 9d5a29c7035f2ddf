package recurrence

import "github.com/dailyflo/dailyflo/task"

// ExpandOptions controls how Expand treats tasks outside the target window.
type ExpandOptions struct {
	// IncludeOneOffBeforeRange also returns one-off tasks due strictly before
	// the earliest target date, so that an ancient overdue task surfaces
	// without the caller enumerating the whole past.
	IncludeOneOffBeforeRange bool
}

// Expand synthesizes the flat occurrence list for the given base tasks over
// the given target dates.
//
// One-off tasks pass through unchanged (id included) when their due date
// falls on a target date. Recurring tasks yield one virtual occurrence per
// matching target date, skipping detached exception dates; each instance
// carries the encoded occurrence id, the concrete due time for its date and
// its own completion state read from the task's completion set.
//
// Target dates are processed in the caller-supplied order and occurrences of
// the same task appear in that order; across tasks the input order is kept.
// Expand does not sort. The result is freshly allocated on every call and
// identical inputs always produce an identical list.
//
// Malformed tasks (missing id, no parseable anchor when recurring) are
// skipped individually; they never abort expansion of the rest.
func Expand(tasks []task.Task, targets []task.DateKey, opts ExpandOptions) []task.Occurrence {
	targetSet := make(map[task.DateKey]struct{}, len(targets))
	var earliest task.DateKey
	for i, key := range targets {
		targetSet[key] = struct{}{}
		if i == 0 || key.Before(earliest) {
			earliest = key
		}
	}

	occurrences := []task.Occurrence{}
	for _, t := range tasks {
		if t.ID == "" {
			continue
		}

		if !t.Recurring() {
			key, ok := t.AnchorKey()
			if !ok {
				continue
			}
			_, inWindow := targetSet[key]
			before := opts.IncludeOneOffBeforeRange && len(targets) > 0 && key.Before(earliest)
			if inWindow || before {
				occurrences = append(occurrences, task.Occurrence{
					Task:    t,
					Kind:    task.OccurrenceStandalone,
					BaseID:  t.ID,
					DateKey: key,
				})
			}
			continue
		}

		exceptions := ExceptionsOf(t)
		completions := CompletionsOf(t)
		for _, key := range targets {
			if _, detached := exceptions[key]; detached {
				continue
			}
			if !OccursOn(t, key) {
				continue
			}

			instance := t
			instance.ID = EncodeOccurrenceID(t.ID, key)
			due := t.DueTime(key)
			instance.DueDate = &due
			_, done := completions[key]
			instance.IsCompleted = done
			instance.CompletedAt = nil
			if done {
				instance.CompletedAt = &due
			}

			occurrences = append(occurrences, task.Occurrence{
				Task:    instance,
				Kind:    task.OccurrenceRecurringInstance,
				BaseID:  t.ID,
				DateKey: key,
			})
		}
	}
	return occurrences
}
