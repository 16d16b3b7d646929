package storage

import (
	"context"
	"fmt"

	"github.com/slok/dothis/internal/model"
)

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository --structname MockRepository --filename mocks.go

// Repository is the persistence gateway of the application state. The
// state is stored as four independent aggregates.
//
// Loads are fail-soft: corrupted or missing data returns an empty aggregate
// instead of an error. Errors are only returned when the storage itself
// can't be used.
type Repository interface {
	LoadTasks(ctx context.Context) ([]model.Task, error)
	LoadDeletedTasks(ctx context.Context) ([]model.Task, error)
	LoadActiveTask(ctx context.Context) (*model.ActiveTask, error)
	LoadCompletedCount(ctx context.Context) (int, error)

	SaveTasks(ctx context.Context, tasks []model.Task) error
	SaveDeletedTasks(ctx context.Context, tasks []model.Task) error
	// SaveActiveTask stores the active task, nil removes it.
	SaveActiveTask(ctx context.Context, at *model.ActiveTask) error
	SaveCompletedCount(ctx context.Context, count int) error
}

// LoadState loads all the aggregates into an application state.
func LoadState(ctx context.Context, repo Repository) (*model.AppState, error) {
	tasks, err := repo.LoadTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load tasks: %w", err)
	}

	deleted, err := repo.LoadDeletedTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load deleted tasks: %w", err)
	}

	at, err := repo.LoadActiveTask(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load active task: %w", err)
	}

	count, err := repo.LoadCompletedCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load completed count: %w", err)
	}

	if tasks == nil {
		tasks = []model.Task{}
	}
	if deleted == nil {
		deleted = []model.Task{}
	}

	return &model.AppState{
		Tasks:          tasks,
		DeletedTasks:   deleted,
		ActiveTask:     at,
		CompletedCount: count,
	}, nil
}

// SaveState saves all the aggregates of an application state.
func SaveState(ctx context.Context, repo Repository, state model.AppState) error {
	if err := repo.SaveTasks(ctx, state.Tasks); err != nil {
		return fmt.Errorf("could not save tasks: %w", err)
	}

	if err := repo.SaveDeletedTasks(ctx, state.DeletedTasks); err != nil {
		return fmt.Errorf("could not save deleted tasks: %w", err)
	}

	if err := repo.SaveActiveTask(ctx, state.ActiveTask); err != nil {
		return fmt.Errorf("could not save active task: %w", err)
	}

	if err := repo.SaveCompletedCount(ctx, state.CompletedCount); err != nil {
		return fmt.Errorf("could not save completed count: %w", err)
	}

	return nil
}
