package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"github.com/slok/dothis/internal/legacy"
	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
	storageio "github.com/slok/dothis/internal/storage/io"
)

// File names of each aggregate.
const (
	TasksFile          = "dothis-tasks.json"
	DeletedTasksFile   = "dothis-deleted.json"
	ActiveTaskFile     = "dothis-active.json"
	CompletedCountFile = "dothis-completed.json"
)

// RepositoryConfig is the configuration for the file repository.
type RepositoryConfig struct {
	// Dir is the directory where the aggregate files are stored.
	Dir string
	// FS is the filesystem, the OS filesystem by default.
	FS afero.Fs
	// Now is used to fill the missing timestamps of legacy records.
	Now    func() time.Time
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	if c.FS == nil {
		c.FS = afero.NewOsFs()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.File"})
	return nil
}

// Repository is a JSON file implementation of storage.Repository, one file
// per aggregate.
//
// Loading is fail-soft: a corrupted file is logged, removed and loaded as
// empty, and legacy records are repaired and saved back.
type Repository struct {
	dir    string
	fs     afero.Fs
	now    func() time.Time
	logger log.Logger
}

// NewRepository creates a new file repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.FS.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create data directory: %w", err)
	}

	return &Repository{
		dir:    cfg.Dir,
		fs:     cfg.FS,
		now:    cfg.Now,
		logger: cfg.Logger,
	}, nil
}

// LoadTasks loads the task collection.
func (r *Repository) LoadTasks(ctx context.Context) ([]model.Task, error) {
	return r.loadTasks(ctx, TasksFile, legacy.CollectionTasks)
}

// LoadDeletedTasks loads the trash.
func (r *Repository) LoadDeletedTasks(ctx context.Context) ([]model.Task, error) {
	return r.loadTasks(ctx, DeletedTasksFile, legacy.CollectionDeletedTasks)
}

func (r *Repository) loadTasks(ctx context.Context, name string, c legacy.Collection) ([]model.Task, error) {
	data, ok, err := r.read(name)
	if err != nil || !ok {
		return []model.Task{}, err
	}

	tasks, report, err := legacy.DecodeTasks(data, c, r.now())
	if err != nil {
		r.logger.Errorf("could not load %s, resetting it: %s", name, err)
		r.remove(name)
		return []model.Task{}, nil
	}

	if report.Changed() {
		r.logger.Infof("%s repaired (%d repaired, %d dropped), saving it", name, report.Repaired, report.Dropped)
		if err := r.writeJSON(name, storageio.TasksFromModel(tasks)); err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

// LoadActiveTask loads the active task.
func (r *Repository) LoadActiveTask(ctx context.Context) (*model.ActiveTask, error) {
	data, ok, err := r.read(ActiveTaskFile)
	if err != nil || !ok {
		return nil, err
	}

	at, err := legacy.DecodeActiveTask(data)
	if err != nil {
		r.logger.Errorf("could not load active task, resetting it: %s", err)
		r.remove(ActiveTaskFile)
		return nil, nil
	}

	return at, nil
}

// LoadCompletedCount loads the completed count.
func (r *Repository) LoadCompletedCount(ctx context.Context) (int, error) {
	data, ok, err := r.read(CompletedCountFile)
	if err != nil || !ok {
		return 0, err
	}

	return legacy.DecodeCount(data), nil
}

// SaveTasks saves the task collection.
func (r *Repository) SaveTasks(ctx context.Context, tasks []model.Task) error {
	return r.writeJSON(TasksFile, storageio.TasksFromModel(tasks))
}

// SaveDeletedTasks saves the trash.
func (r *Repository) SaveDeletedTasks(ctx context.Context, tasks []model.Task) error {
	return r.writeJSON(DeletedTasksFile, storageio.TasksFromModel(tasks))
}

// SaveActiveTask saves the active task, nil is stored as null.
func (r *Repository) SaveActiveTask(ctx context.Context, at *model.ActiveTask) error {
	return r.writeJSON(ActiveTaskFile, storageio.ActiveTaskFromModel(at))
}

// SaveCompletedCount saves the completed count.
func (r *Repository) SaveCompletedCount(ctx context.Context, count int) error {
	return r.write(CompletedCountFile, []byte(strconv.Itoa(count)))
}

func (r *Repository) path(name string) string { return filepath.Join(r.dir, name) }

func (r *Repository) read(name string) (data []byte, ok bool, err error) {
	data, err = afero.ReadFile(r.fs, r.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("could not read %s: %w", name, err)
	}
	return data, true, nil
}

func (r *Repository) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", name, err)
	}
	return r.write(name, data)
}

// write replaces the file atomically using a temporary file and a rename.
func (r *Repository) write(name string, data []byte) error {
	tmp := r.path(name + ".tmp")
	if err := afero.WriteFile(r.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	if err := r.fs.Rename(tmp, r.path(name)); err != nil {
		return fmt.Errorf("could not replace %s: %w", name, err)
	}
	r.logger.Debugf("Saved %s", name)
	return nil
}

func (r *Repository) remove(name string) {
	if err := r.fs.Remove(r.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger.Warningf("could not remove %s: %s", name, err)
	}
}
