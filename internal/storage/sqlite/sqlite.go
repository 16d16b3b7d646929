package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
	storageio "github.com/slok/dothis/internal/storage/io"
	"github.com/slok/dothis/internal/storage/sqlite/migrations"
)

const (
	collectionTasks = "tasks"
	collectionTrash = "trash"

	counterCompleted = "completed"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db       *sql.DB
	migrator *migrations.Migrator
	logger   log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if _, err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, migrator: migrator, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// SchemaVersion returns the database schema version and if it's dirty.
func (r *Repository) SchemaVersion(ctx context.Context) (uint, bool, error) {
	return r.migrator.Version(ctx)
}

// LoadTasks loads the task collection.
func (r *Repository) LoadTasks(ctx context.Context) ([]model.Task, error) {
	return r.loadCollection(ctx, collectionTasks)
}

// LoadDeletedTasks loads the trash.
func (r *Repository) LoadDeletedTasks(ctx context.Context) ([]model.Task, error) {
	return r.loadCollection(ctx, collectionTrash)
}

// SaveTasks replaces the task collection.
func (r *Repository) SaveTasks(ctx context.Context, tasks []model.Task) error {
	return r.saveCollection(ctx, collectionTasks, tasks)
}

// SaveDeletedTasks replaces the trash.
func (r *Repository) SaveDeletedTasks(ctx context.Context, tasks []model.Task) error {
	return r.saveCollection(ctx, collectionTrash, tasks)
}

// LoadActiveTask loads the active task.
func (r *Repository) LoadActiveTask(ctx context.Context) (*model.ActiveTask, error) {
	query := `SELECT task_id, task_text, start_time, duration_ms FROM active_task WHERE id = 1`

	var at model.ActiveTask
	var startTime, durationMS int64
	err := r.db.QueryRowContext(ctx, query).Scan(&at.TaskID, &at.TaskText, &startTime, &durationMS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not query active task: %w", err)
	}

	at.StartTime = storageio.MillisToTime(startTime)
	at.Duration = time.Duration(durationMS) * time.Millisecond
	return &at, nil
}

// SaveActiveTask replaces the active task, nil removes it.
func (r *Repository) SaveActiveTask(ctx context.Context, at *model.ActiveTask) error {
	if at == nil {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM active_task`); err != nil {
			return fmt.Errorf("could not delete active task: %w", err)
		}
		r.logger.Debugf("Removed active task")
		return nil
	}

	query := `
		INSERT INTO active_task (id, task_id, task_text, start_time, duration_ms)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			task_id = excluded.task_id,
			task_text = excluded.task_text,
			start_time = excluded.start_time,
			duration_ms = excluded.duration_ms
	`
	_, err := r.db.ExecContext(ctx, query, at.TaskID, at.TaskText, at.StartTime.UnixMilli(), at.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("could not save active task: %w", err)
	}

	r.logger.Debugf("Saved active task: %s", at.TaskID)
	return nil
}

// LoadCompletedCount loads the completed count.
func (r *Repository) LoadCompletedCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, counterCompleted).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("could not query completed count: %w", err)
	}

	return count, nil
}

// SaveCompletedCount replaces the completed count.
func (r *Repository) SaveCompletedCount(ctx context.Context, count int) error {
	query := `
		INSERT INTO counters (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value
	`
	if _, err := r.db.ExecContext(ctx, query, counterCompleted, count); err != nil {
		return fmt.Errorf("could not save completed count: %w", err)
	}

	return nil
}

func (r *Repository) loadCollection(ctx context.Context, collection string) ([]model.Task, error) {
	query := `
		SELECT id, text, type, cooldown, completed, created_at, deadline, deleted_at
		FROM tasks
		WHERE collection = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	index := map[string]int{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	execQuery := `
		SELECT task_id, timestamp, duration_ms, abandoned, reason
		FROM executions
		WHERE collection = ?
		ORDER BY task_id, sequence ASC
	`
	execRows, err := r.db.QueryContext(ctx, execQuery, collection)
	if err != nil {
		return nil, fmt.Errorf("could not query executions: %w", err)
	}
	defer execRows.Close()

	for execRows.Next() {
		var taskID string
		var timestamp, durationMS int64
		var e model.Execution
		if err := execRows.Scan(&taskID, &timestamp, &durationMS, &e.Abandoned, &e.Reason); err != nil {
			return nil, fmt.Errorf("could not scan execution: %w", err)
		}
		e.Timestamp = storageio.MillisToTime(timestamp)
		e.Duration = time.Duration(durationMS) * time.Millisecond

		i, ok := index[taskID]
		if !ok {
			r.logger.Warningf("execution of unknown task %s ignored", taskID)
			continue
		}
		tasks[i].Executions = append(tasks[i].Executions, e)
	}
	if err := execRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating execution rows: %w", err)
	}

	return tasks, nil
}

func (r *Repository) saveCollection(ctx context.Context, collection string, tasks []model.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	// Executions are removed in cascade.
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE collection = ?`, collection); err != nil {
		return fmt.Errorf("could not delete tasks: %w", err)
	}

	taskStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (collection, id, position, text, type, cooldown, completed, created_at, deadline, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer taskStmt.Close()

	execStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO executions (id, collection, task_id, sequence, timestamp, duration_ms, abandoned, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer execStmt.Close()

	for i, t := range tasks {
		_, err := taskStmt.ExecContext(ctx,
			collection,
			t.ID,
			i,
			t.Text,
			t.Type,
			t.Cooldown,
			t.Completed,
			t.CreatedAt.UnixMilli(),
			millisOrNil(t.Deadline),
			millisOrNil(t.DeletedAt),
		)
		if err != nil {
			return fmt.Errorf("could not insert task %s: %w", t.ID, err)
		}

		for seq, e := range t.Executions {
			_, err := execStmt.ExecContext(ctx,
				ulid.Make().String(),
				collection,
				t.ID,
				seq,
				e.Timestamp.UnixMilli(),
				e.Duration.Milliseconds(),
				e.Abandoned,
				e.Reason,
			)
			if err != nil {
				return fmt.Errorf("could not insert execution of task %s: %w", t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Saved %d tasks in %s", len(tasks), collection)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var t model.Task
	var createdAt int64
	var deadline, deletedAt sql.NullInt64

	err := s.Scan(
		&t.ID,
		&t.Text,
		&t.Type,
		&t.Cooldown,
		&t.Completed,
		&createdAt,
		&deadline,
		&deletedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	t.Executions = []model.Execution{}
	t.CreatedAt = storageio.MillisToTime(createdAt)
	if deadline.Valid {
		d := storageio.MillisToTime(deadline.Int64)
		t.Deadline = &d
	}
	if deletedAt.Valid {
		d := storageio.MillisToTime(deletedAt.Int64)
		t.DeletedAt = &d
	}

	return t, nil
}

func millisOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
