// Package sqlite persists tasks and lists in a single SQLite database using
// database/sql and the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dailyflo/dailyflo/storage"
	"github.com/dailyflo/dailyflo/task"
)

const schema = `
CREATE TABLE IF NOT EXISTS lists (
	id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	icon TEXT NOT NULL DEFAULT '',
	is_default INTEGER NOT NULL DEFAULT 0,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	list_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_date TIMESTAMP,
	due_time TEXT NOT NULL DEFAULT '',
	routine_type TEXT NOT NULL DEFAULT 'once',
	rrule TEXT NOT NULL DEFAULT '',
	priority INTEGER NOT NULL DEFAULT 0,
	color TEXT NOT NULL DEFAULT '',
	sort_order INTEGER NOT NULL DEFAULT 0,
	is_completed INTEGER NOT NULL DEFAULT 0,
	completed_at TIMESTAMP,
	completions TEXT NOT NULL DEFAULT '[]',
	exceptions TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	soft_deleted INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks (user_id, soft_deleted);
CREATE INDEX IF NOT EXISTS idx_lists_user ON lists (user_id);
`

const taskColumns = `id, list_id, title, description, due_date, due_time, routine_type, rrule,
	priority, color, sort_order, is_completed, completed_at, completions, exceptions,
	created_at, updated_at`

// Store implements storage.Store on a SQLite database
type Store struct {
	db *sql.DB
}

// New opens (and if needed initializes) the database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("cannot apply %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeKeys(keys []task.DateKey) string {
	b, err := json.Marshal(storage.NormalizeKeys(keys))
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeKeys(raw string) []task.DateKey {
	var keys []task.DateKey
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		// Garbage in the column reads as an empty set.
		return nil
	}
	return storage.NormalizeKeys(keys)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner, userID string) (*task.Task, error) {
	var t task.Task
	var dueDate, completedAt sql.NullTime
	var completions, exceptions string

	err := row.Scan(
		&t.ID, &t.ListID, &t.Title, &t.Description, &dueDate, &t.Time, &t.Routine, &t.RRule,
		&t.Priority, &t.Color, &t.SortOrder, &t.IsCompleted, &completedAt, &completions, &exceptions,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.UserID = userID
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if completedAt.Valid {
		c := completedAt.Time
		t.CompletedAt = &c
	}
	t.Completions = decodeKeys(completions)
	t.Exceptions = decodeKeys(exceptions)
	return &t, nil
}

func taskArgs(t *task.Task) []any {
	var dueDate, completedAt any
	if t.DueDate != nil {
		dueDate = *t.DueDate
	}
	if t.CompletedAt != nil {
		completedAt = *t.CompletedAt
	}
	return []any{
		t.ID, t.ListID, t.Title, t.Description, dueDate, t.Time, t.Routine, t.RRule,
		t.Priority, t.Color, t.SortOrder, t.IsCompleted, completedAt,
		encodeKeys(t.Completions), encodeKeys(t.Exceptions),
		t.CreatedAt, t.UpdatedAt,
	}
}

// Task operations

func (s *Store) GetTask(ctx context.Context, userID, taskID string) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ? AND soft_deleted = 0`,
		userID, taskID)

	t, err := scanTask(row, userID)
	if err == sql.ErrNoRows {
		return nil, &storage.Error{Type: storage.ErrNotFound, Message: "task not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read task: %w", err)
	}
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, userID string, opts *storage.ListOptions) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = ? AND soft_deleted = 0
		 ORDER BY created_at DESC, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("cannot list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows, userID)
		if err != nil {
			return nil, fmt.Errorf("cannot read task row: %w", err)
		}
		if storage.MatchTask(t, opts) {
			tasks = append(tasks, t)
		}
	}
	return tasks, rows.Err()
}

func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	if t.Title == "" {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "task title is required"}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if t.ListID == "" {
		inbox, err := inboxTx(ctx, tx, t.UserID)
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

	args := append([]any{t.UserID}, taskArgs(t)...)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (user_id, `+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...)
	if err != nil {
		return &storage.Error{Type: storage.ErrAlreadyExists, Message: "task already exists", Err: err}
	}
	return tx.Commit()
}

func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	t.UpdatedAt = time.Now()
	t.Completions = storage.NormalizeKeys(t.Completions)
	t.Exceptions = storage.NormalizeKeys(t.Exceptions)

	var dueDate, completedAt any
	if t.DueDate != nil {
		dueDate = *t.DueDate
	}
	if t.CompletedAt != nil {
		completedAt = *t.CompletedAt
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET list_id = ?, title = ?, description = ?, due_date = ?, due_time = ?,
			routine_type = ?, rrule = ?, priority = ?, color = ?, sort_order = ?,
			is_completed = ?, completed_at = ?, completions = ?, exceptions = ?, updated_at = ?
		 WHERE user_id = ? AND id = ? AND soft_deleted = 0`,
		t.ListID, t.Title, t.Description, dueDate, t.Time,
		t.Routine, t.RRule, t.Priority, t.Color, t.SortOrder,
		t.IsCompleted, completedAt, encodeKeys(t.Completions), encodeKeys(t.Exceptions), t.UpdatedAt,
		t.UserID, t.ID)
	if err != nil {
		return fmt.Errorf("cannot update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &storage.Error{Type: storage.ErrNotFound, Message: "task not found"}
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, taskID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET soft_deleted = 1, updated_at = ? WHERE user_id = ? AND id = ? AND soft_deleted = 0`,
		time.Now(), userID, taskID)
	if err != nil {
		return fmt.Errorf("cannot delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &storage.Error{Type: storage.ErrNotFound, Message: "task not found"}
	}
	return nil
}

func (s *Store) CompleteTask(ctx context.Context, userID, taskID string, key task.DateKey) (*task.Task, error) {
	t, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	updated, err := storage.ApplyCompletion(*t, key, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.UpdateTask(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DetachOccurrence(ctx context.Context, userID, taskID string, key task.DateKey) (*task.Task, error) {
	t, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	base, standalone, err := storage.BuildDetachment(*t, key, time.Now())
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET exceptions = ?, completions = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
		encodeKeys(base.Exceptions), encodeKeys(base.Completions), base.UpdatedAt, userID, base.ID)
	if err != nil {
		return nil, fmt.Errorf("cannot record exception: %w", err)
	}

	args := append([]any{userID}, taskArgs(&standalone)...)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (user_id, `+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("cannot create standalone task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &standalone, nil
}

// List operations

const listColumns = `id, name, description, color, icon, is_default, sort_order, created_at, updated_at`

func scanList(row rowScanner, userID string) (*task.List, error) {
	var l task.List
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Color, &l.Icon,
		&l.IsDefault, &l.SortOrder, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.UserID = userID
	return &l, nil
}

func (s *Store) GetList(ctx context.Context, userID, listID string) (*task.List, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE user_id = ? AND id = ?`, userID, listID)

	l, err := scanList(row, userID)
	if err == sql.ErrNoRows {
		return nil, &storage.Error{Type: storage.ErrNotFound, Message: "list not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read list: %w", err)
	}
	return l, nil
}

func (s *Store) ListLists(ctx context.Context, userID string) ([]*task.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE user_id = ? ORDER BY sort_order, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("cannot list lists: %w", err)
	}
	defer rows.Close()

	var lists []*task.List
	for rows.Next() {
		l, err := scanList(rows, userID)
		if err != nil {
			return nil, fmt.Errorf("cannot read list row: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (s *Store) CreateList(ctx context.Context, l *task.List) error {
	if l.Name == "" {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "list name is required"}
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lists (user_id, `+listColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.UserID, l.ID, l.Name, l.Description, l.Color, l.Icon, l.IsDefault, l.SortOrder,
		l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return &storage.Error{Type: storage.ErrAlreadyExists, Message: "list already exists", Err: err}
	}
	return nil
}

func (s *Store) UpdateList(ctx context.Context, l *task.List) error {
	l.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE lists SET name = ?, description = ?, color = ?, icon = ?, sort_order = ?, updated_at = ?
		 WHERE user_id = ? AND id = ?`,
		l.Name, l.Description, l.Color, l.Icon, l.SortOrder, l.UpdatedAt, l.UserID, l.ID)
	if err != nil {
		return fmt.Errorf("cannot update list: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &storage.Error{Type: storage.ErrNotFound, Message: "list not found"}
	}
	return nil
}

func (s *Store) DeleteList(ctx context.Context, userID, listID string) error {
	l, err := s.GetList(ctx, userID, listID)
	if err != nil {
		return err
	}
	if l.IsDefault {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "the inbox list cannot be deleted"}
	}

	inbox, err := s.Inbox(ctx, userID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Orphaned tasks move to the inbox.
	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET list_id = ? WHERE user_id = ? AND list_id = ?`,
		inbox.ID, userID, listID); err != nil {
		return fmt.Errorf("cannot reassign tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM lists WHERE user_id = ? AND id = ?`, userID, listID); err != nil {
		return fmt.Errorf("cannot delete list: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Inbox(ctx context.Context, userID string) (*task.List, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	inbox, err := inboxTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return inbox, nil
}

func inboxTx(ctx context.Context, tx *sql.Tx, userID string) (*task.List, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE user_id = ? AND is_default = 1`, userID)

	l, err := scanList(row, userID)
	if err == nil {
		return l, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("cannot read inbox: %w", err)
	}

	now := time.Now()
	inbox := &task.List{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      "Inbox",
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO lists (user_id, `+listColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, inbox.ID, inbox.Name, inbox.Description, inbox.Color, inbox.Icon,
		inbox.IsDefault, inbox.SortOrder, inbox.CreatedAt, inbox.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("cannot create inbox: %w", err)
	}
	return inbox, nil
}
