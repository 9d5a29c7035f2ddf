// Package storage defines the persistence boundary for tasks and lists.
// The recurrence engine never writes: completion toggles and occurrence
// detachment go through a Store, which hands the engine immutable task
// snapshots to expand.
package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dailyflo/dailyflo/task"
)

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// IsNotFound reports whether err is a storage Error of type ErrNotFound.
func IsNotFound(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrNotFound
}

// ListOptions filters ListTasks. Zero values mean "no filter".
type ListOptions struct {
	// ListID restricts results to one list.
	ListID string
	// Completed filters on the once-task completion flag when set.
	Completed *bool
	// Routine restricts results to one routine type.
	Routine task.RoutineType
	// Search matches a substring of title or description.
	Search string
}

// Store is the interface that must be implemented by storage backends. All
// task reads exclude soft-deleted records.
type Store interface {
	// Task operations
	GetTask(ctx context.Context, userID, taskID string) (*task.Task, error)
	ListTasks(ctx context.Context, userID string, opts *ListOptions) ([]*task.Task, error)
	// CreateTask assigns the id and timestamps, defaults the list to the
	// user's inbox and normalizes the completion and exception sets.
	CreateTask(ctx context.Context, t *task.Task) error
	UpdateTask(ctx context.Context, t *task.Task) error
	// DeleteTask soft-deletes; the record stays behind for sync but stops
	// appearing in reads.
	DeleteTask(ctx context.Context, userID, taskID string) error

	// CompleteTask toggles completion. An empty key toggles the IsCompleted
	// flag of a once task; a date key toggles that date in a recurring
	// task's completion set. Returns the updated task.
	CompleteTask(ctx context.Context, userID, taskID string, key task.DateKey) (*task.Task, error)

	// DetachOccurrence removes one date from a recurring series: the date is
	// recorded as an exception on the base task and a standalone once task
	// is created for it, carrying the occurrence's completion state.
	// Returns the new standalone task.
	DetachOccurrence(ctx context.Context, userID, taskID string, key task.DateKey) (*task.Task, error)

	// List operations
	GetList(ctx context.Context, userID, listID string) (*task.List, error)
	ListLists(ctx context.Context, userID string) ([]*task.List, error)
	CreateList(ctx context.Context, l *task.List) error
	UpdateList(ctx context.Context, l *task.List) error
	DeleteList(ctx context.Context, userID, listID string) error
	// Inbox returns the user's default list, creating it on first use.
	Inbox(ctx context.Context, userID string) (*task.List, error)
}

// NormalizeKeys validates, sorts and deduplicates a persisted date-key set.
// Malformed keys are dropped. Backends call this on every write so the
// stored sets never carry duplicates.
func NormalizeKeys(keys []task.DateKey) []task.DateKey {
	out := make([]task.DateKey, 0, len(keys))
	for _, k := range keys {
		if k.Valid() {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ToggleKey adds key to the set if absent, removes it if present. The result
// is normalized.
func ToggleKey(keys []task.DateKey, key task.DateKey) []task.DateKey {
	normalized := NormalizeKeys(keys)
	if i, found := slices.BinarySearch(normalized, key); found {
		return slices.Delete(normalized, i, i+1)
	}
	return NormalizeKeys(append(normalized, key))
}

// MatchTask applies opts to a task, shared by backends without native query
// support.
func MatchTask(t *task.Task, opts *ListOptions) bool {
	if opts == nil {
		return true
	}
	if opts.ListID != "" && t.ListID != opts.ListID {
		return false
	}
	if opts.Completed != nil && t.IsCompleted != *opts.Completed {
		return false
	}
	if opts.Routine != "" && t.Routine != opts.Routine {
		return false
	}
	if opts.Search != "" && !containsFold(t.Title, opts.Search) && !containsFold(t.Description, opts.Search) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
