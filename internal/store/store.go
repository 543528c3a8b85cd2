// Package store persists tasks the user chose to materialize from
// breakdown suggestions. SQLite keeps the service self-contained; the
// pure-Go driver avoids a cgo toolchain.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mattheweller/vibesana/internal/domain"
	"github.com/mattheweller/vibesana/internal/errors"
)

// Task is a persisted task with identity and timestamps.
type Task struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	Status      domain.Status   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Update carries the mutable fields of a task. Nil fields are left
// unchanged.
type Update struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Priority    *domain.Priority `json:"priority,omitempty"`
	Status      *domain.Status   `json:"status,omitempty"`
}

// Store manages the tasks database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New creates or opens a task store at dbPath.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreOpen, "create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreOpen, "open database", err)
	}

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreOpen, "initialize schema", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Ping verifies the database connection, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Create persists a new task and returns it with identity and
// timestamps assigned.
func (s *Store) Create(ctx context.Context, task domain.Task) (*Task, error) {
	if err := task.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidationBadPayload, "invalid task", err)
	}

	now := time.Now().UTC()
	stored := &Task{
		ID:          uuid.NewString(),
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, priority, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Title, stored.Description, string(stored.Priority), string(stored.Status),
		stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "insert task", err)
	}

	return stored, nil
}

// Get returns the task with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, priority, status, created_at, updated_at
		 FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewStoreNotFoundError(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "query task", err)
	}
	return task, nil
}

// List returns all tasks, newest first.
func (s *Store) List(ctx context.Context) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, priority, status, created_at, updated_at
		 FROM tasks ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "list tasks", err)
	}
	defer rows.Close()

	tasks := make([]*Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQuery, "scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "iterate tasks", err)
	}

	return tasks, nil
}

// ApplyUpdate mutates a task in place and bumps updated_at.
func (s *Store) ApplyUpdate(ctx context.Context, id string, update Update) (*Task, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		existing.Title = *update.Title
	}
	if update.Description != nil {
		existing.Description = *update.Description
	}
	if update.Priority != nil {
		existing.Priority = *update.Priority
	}
	if update.Status != nil {
		existing.Status = *update.Status
	}

	updated := domain.Task{
		Title:       existing.Title,
		Description: existing.Description,
		Priority:    existing.Priority,
		Status:      existing.Status,
	}
	if err := updated.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidationBadPayload, "invalid task update", err)
	}

	existing.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, priority = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		existing.Title, existing.Description, string(existing.Priority), string(existing.Status),
		existing.UpdatedAt, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "update task", err)
	}

	return existing, nil
}

// Delete removes a task.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreQuery, "delete task", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreQuery, "delete task", err)
	}
	if affected == 0 {
		return errors.NewStoreNotFoundError(id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var task Task
	var priority, status string
	if err := row.Scan(&task.ID, &task.Title, &task.Description, &priority, &status,
		&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)
	return &task, nil
}
