package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	// State is the optional initial state.
	State  *model.AppState
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.State == nil {
		c.State = &model.AppState{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	state  model.AppState
	saves  int
	mu     sync.RWMutex
	logger log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		state:  cfg.State.Clone(),
		logger: cfg.Logger,
	}, nil
}

// LoadTasks returns a copy of the stored tasks.
func (r *Repository) LoadTasks(ctx context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.CloneTasks(r.state.Tasks), nil
}

// LoadDeletedTasks returns a copy of the stored deleted tasks.
func (r *Repository) LoadDeletedTasks(ctx context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.CloneTasks(r.state.DeletedTasks), nil
}

// LoadActiveTask returns a copy of the stored active task.
func (r *Repository) LoadActiveTask(ctx context.Context) (*model.ActiveTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.state.ActiveTask == nil {
		return nil, nil
	}
	at := *r.state.ActiveTask
	return &at, nil
}

// LoadCompletedCount returns the stored completed count.
func (r *Repository) LoadCompletedCount(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.CompletedCount, nil
}

// SaveTasks replaces the stored tasks.
func (r *Repository) SaveTasks(ctx context.Context, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Tasks = model.CloneTasks(tasks)
	r.saves++
	r.logger.Debugf("Saved %d tasks", len(tasks))
	return nil
}

// SaveDeletedTasks replaces the stored deleted tasks.
func (r *Repository) SaveDeletedTasks(ctx context.Context, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.DeletedTasks = model.CloneTasks(tasks)
	r.saves++
	r.logger.Debugf("Saved %d deleted tasks", len(tasks))
	return nil
}

// SaveActiveTask replaces the stored active task.
func (r *Repository) SaveActiveTask(ctx context.Context, at *model.ActiveTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.ActiveTask = nil
	if at != nil {
		cp := *at
		r.state.ActiveTask = &cp
	}
	r.saves++
	return nil
}

// SaveCompletedCount replaces the stored completed count.
func (r *Repository) SaveCompletedCount(ctx context.Context, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.CompletedCount = count
	r.saves++
	return nil
}

// Saves returns how many times an aggregate has been saved.
func (r *Repository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
