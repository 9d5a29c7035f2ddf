// memory based implementation for testing and single-process deployments
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dailyflo/dailyflo/storage"
	"github.com/dailyflo/dailyflo/task"
)

// Store implements storage.Store using in-memory maps
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*task.Task // key: userID/taskID
	lists map[string]*task.List // key: userID/listID
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		tasks: make(map[string]*task.Task),
		lists: make(map[string]*task.List),
	}
}

func (s *Store) taskKey(userID, taskID string) string {
	return fmt.Sprintf("%s/%s", userID, taskID)
}

func (s *Store) listKey(userID, listID string) string {
	return fmt.Sprintf("%s/%s", userID, listID)
}

func cloneTask(t *task.Task) *task.Task {
	clone := *t
	clone.Completions = slices.Clone(t.Completions)
	clone.Exceptions = slices.Clone(t.Exceptions)
	return &clone
}

// Task operations

func (s *Store) GetTask(_ context.Context, userID, taskID string) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTaskLocked(userID, taskID)
}

func (s *Store) getTaskLocked(userID, taskID string) (*task.Task, error) {
	t, ok := s.tasks[s.taskKey(userID, taskID)]
	if !ok || t.SoftDeleted {
		return nil, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "task not found",
		}
	}
	return cloneTask(t), nil
}

func (s *Store) ListTasks(_ context.Context, userID string, opts *storage.ListOptions) ([]*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []*task.Task
	for _, t := range s.tasks {
		if t.UserID != userID || t.SoftDeleted {
			continue
		}
		if !storage.MatchTask(t, opts) {
			continue
		}
		tasks = append(tasks, cloneTask(t))
	}

	// Newest first, id as tie-breaker for a stable order.
	slices.SortFunc(tasks, func(a, b *task.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmpString(a.ID, b.ID)
	})
	return tasks, nil
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	if t.Title == "" {
		return &storage.Error{
			Type:    storage.ErrInvalidInput,
			Message: "task title is required",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, exists := s.tasks[s.taskKey(t.UserID, t.ID)]; exists {
		return &storage.Error{
			Type:    storage.ErrAlreadyExists,
			Message: "task already exists",
		}
	}

	if t.ListID == "" {
		inbox, err := s.inboxLocked(t.UserID)
		if err != nil {
			return err
		}
		t.ListID = inbox.ID
	}

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Completions = storage.NormalizeKeys(t.Completions)
	t.Exceptions = storage.NormalizeKeys(t.Exceptions)

	s.tasks[s.taskKey(t.UserID, t.ID)] = cloneTask(t)
	return nil
}

func (s *Store) UpdateTask(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.taskKey(t.UserID, t.ID)
	existing, ok := s.tasks[key]
	if !ok || existing.SoftDeleted {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "task not found",
		}
	}

	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	t.Completions = storage.NormalizeKeys(t.Completions)
	t.Exceptions = storage.NormalizeKeys(t.Exceptions)

	s.tasks[key] = cloneTask(t)
	return nil
}

func (s *Store) DeleteTask(_ context.Context, userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[s.taskKey(userID, taskID)]
	if !ok || t.SoftDeleted {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "task not found",
		}
	}

	t.SoftDeleted = true
	t.UpdatedAt = time.Now()
	return nil
}

func (s *Store) CompleteTask(_ context.Context, userID, taskID string, key task.DateKey) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.getTaskLocked(userID, taskID)
	if err != nil {
		return nil, err
	}

	updated, err := storage.ApplyCompletion(*t, key, time.Now())
	if err != nil {
		return nil, err
	}

	s.tasks[s.taskKey(userID, taskID)] = cloneTask(&updated)
	return cloneTask(&updated), nil
}

func (s *Store) DetachOccurrence(_ context.Context, userID, taskID string, key task.DateKey) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.getTaskLocked(userID, taskID)
	if err != nil {
		return nil, err
	}

	base, standalone, err := storage.BuildDetachment(*t, key, time.Now())
	if err != nil {
		return nil, err
	}

	s.tasks[s.taskKey(userID, base.ID)] = cloneTask(&base)
	s.tasks[s.taskKey(userID, standalone.ID)] = cloneTask(&standalone)
	return cloneTask(&standalone), nil
}

// List operations

func (s *Store) GetList(_ context.Context, userID, listID string) (*task.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lists[s.listKey(userID, listID)]
	if !ok {
		return nil, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "list not found",
		}
	}

	clone := *l
	return &clone, nil
}

func (s *Store) ListLists(_ context.Context, userID string) ([]*task.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lists []*task.List
	for _, l := range s.lists {
		if l.UserID != userID {
			continue
		}
		clone := *l
		lists = append(lists, &clone)
	}

	slices.SortFunc(lists, func(a, b *task.List) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}
		return cmpString(a.Name, b.Name)
	})
	return lists, nil
}

func (s *Store) CreateList(_ context.Context, l *task.List) error {
	if l.Name == "" {
		return &storage.Error{
			Type:    storage.ErrInvalidInput,
			Message: "list name is required",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createListLocked(l)
}

func (s *Store) createListLocked(l *task.List) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if _, exists := s.lists[s.listKey(l.UserID, l.ID)]; exists {
		return &storage.Error{
			Type:    storage.ErrAlreadyExists,
			Message: "list already exists",
		}
	}

	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	clone := *l
	s.lists[s.listKey(l.UserID, l.ID)] = &clone
	return nil
}

func (s *Store) UpdateList(_ context.Context, l *task.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.listKey(l.UserID, l.ID)
	existing, ok := s.lists[key]
	if !ok {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "list not found",
		}
	}

	l.CreatedAt = existing.CreatedAt
	l.IsDefault = existing.IsDefault
	l.UpdatedAt = time.Now()

	clone := *l
	s.lists[key] = &clone
	return nil
}

func (s *Store) DeleteList(_ context.Context, userID, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.listKey(userID, listID)
	l, ok := s.lists[key]
	if !ok {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "list not found",
		}
	}
	if l.IsDefault {
		return &storage.Error{
			Type:    storage.ErrInvalidInput,
			Message: "the inbox list cannot be deleted",
		}
	}

	inbox, err := s.inboxLocked(userID)
	if err != nil {
		return err
	}

	// Orphaned tasks move to the inbox.
	for _, t := range s.tasks {
		if t.UserID == userID && t.ListID == listID {
			t.ListID = inbox.ID
		}
	}

	delete(s.lists, key)
	return nil
}

func (s *Store) Inbox(_ context.Context, userID string) (*task.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inboxLocked(userID)
}

func (s *Store) inboxLocked(userID string) (*task.List, error) {
	for _, l := range s.lists {
		if l.UserID == userID && l.IsDefault {
			clone := *l
			return &clone, nil
		}
	}

	inbox := &task.List{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      "Inbox",
		IsDefault: true,
	}
	if err := s.createListLocked(inbox); err != nil {
		return nil, err
	}
	return inbox, nil
}
