package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/storage"
	"github.com/slok/dothis/internal/storage/sqlite"
)

var now = time.UnixMilli(1715331600000).UTC()

func taskFixture(id, text string) model.Task {
	return model.Task{
		ID:         id,
		Text:       text,
		Type:       model.TaskTypeRepeatable,
		Cooldown:   model.CooldownDaily,
		Executions: []model.Execution{},
		CreatedAt:  now,
	}
}

func newRepo(t *testing.T, path string) *sqlite.Repository {
	t.Helper()
	if path == "" {
		path = filepath.Join(t.TempDir(), "test.db")
	}
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: path,
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryEmpty(t *testing.T) {
	got, err := storage.LoadState(context.Background(), newRepo(t, ""))
	require.NoError(t, err)
	assert.Equal(t, model.AppState{Tasks: []model.Task{}, DeletedTasks: []model.Task{}}, *got)
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	repo := newRepo(t, path)

	deadline := now.Add(36 * time.Hour)
	walk := taskFixture("4f1c1d4e-8a57-4c2e-9a4b-2b0f1c9d7e11", "Walk")
	walk.Deadline = &deadline
	walk.Executions = []model.Execution{
		{Timestamp: now.Add(-2 * time.Hour), Duration: 20 * time.Minute},
		{Timestamp: now.Add(-time.Hour), Duration: 3 * time.Minute, Abandoned: true, Reason: "rain"},
	}
	read := taskFixture("b9e6a1f0-2c3d-4e5f-8a9b-0c1d2e3f4a5b", "Read")
	read.Type = model.TaskTypeOneOff
	read.Completed = true
	old := taskFixture("c1d2e3f4-a5b6-4c7d-9e8f-0a1b2c3d4e5f", "Old")
	old.DeletedAt = &now
	old.Executions = []model.Execution{{Timestamp: now, Duration: time.Second}}

	state := model.AppState{
		Tasks:          []model.Task{walk, read},
		DeletedTasks:   []model.Task{old},
		ActiveTask:     &model.ActiveTask{TaskID: walk.ID, TaskText: walk.Text, StartTime: now, Duration: model.ActiveTaskDuration},
		CompletedCount: 4,
	}
	require.NoError(t, storage.SaveState(ctx, repo, state))

	// A new connection sees the same state.
	got, err := storage.LoadState(ctx, newRepo(t, path))
	require.NoError(t, err)
	assert.Equal(t, state, *got)
}

func TestRepositoryMoveBetweenCollections(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, "")

	task := taskFixture("a", "Walk")
	task.Executions = []model.Execution{{Timestamp: now, Duration: time.Minute}}
	require.NoError(t, repo.SaveTasks(ctx, []model.Task{task}))

	// Trash it.
	trashed := task.Clone()
	trashed.DeletedAt = &now
	require.NoError(t, repo.SaveTasks(ctx, []model.Task{}))
	require.NoError(t, repo.SaveDeletedTasks(ctx, []model.Task{trashed}))

	tasks, err := repo.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	deleted, err := repo.LoadDeletedTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Task{trashed}, deleted)

	// Restore it, the same ID can live in both collections while saving.
	require.NoError(t, repo.SaveTasks(ctx, []model.Task{task}))
	require.NoError(t, repo.SaveDeletedTasks(ctx, []model.Task{}))

	tasks, err = repo.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Task{task}, tasks)
	deleted, err = repo.LoadDeletedTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestRepositoryOrderIsKept(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, "")

	tasks := []model.Task{taskFixture("z", "Z"), taskFixture("a", "A"), taskFixture("m", "M")}
	require.NoError(t, repo.SaveTasks(ctx, tasks))

	got, err := repo.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, tasks, got)
}

func TestRepositoryActiveTaskAndCounter(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, "")

	at := &model.ActiveTask{TaskID: "a", TaskText: "Walk", StartTime: now, Duration: time.Hour}
	require.NoError(t, repo.SaveActiveTask(ctx, at))
	at2 := &model.ActiveTask{TaskID: "b", TaskText: "Read", StartTime: now.Add(time.Minute), Duration: 2 * time.Hour}
	require.NoError(t, repo.SaveActiveTask(ctx, at2))

	got, err := repo.LoadActiveTask(ctx)
	require.NoError(t, err)
	assert.Equal(t, at2, got)

	require.NoError(t, repo.SaveActiveTask(ctx, nil))
	got, err = repo.LoadActiveTask(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.SaveCompletedCount(ctx, 3))
	require.NoError(t, repo.SaveCompletedCount(ctx, 5))
	count, err := repo.LoadCompletedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestRepositorySchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Reopening an already migrated database should keep the version.
	for range 2 {
		repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{DBPath: path, Logger: log.Noop})
		require.NoError(t, err)

		version, dirty, err := repo.SchemaVersion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint(1), version)
		assert.False(t, dirty)
		require.NoError(t, repo.Close())
	}
}
