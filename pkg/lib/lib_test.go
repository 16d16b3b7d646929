package lib_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dothis/pkg/lib"
)

func newTestClient(t *testing.T) *lib.Client {
	t.Helper()

	client, err := lib.New(context.Background(), lib.Config{
		DataDir: t.TempDir(),
		Storage: lib.StorageMemory,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestNew(t *testing.T) {
	tests := map[string]struct {
		storage lib.StorageType
		expErr  bool
		expIs   error
	}{
		"Memory storage should work.": {
			storage: lib.StorageMemory,
		},

		"File storage should work.": {
			storage: lib.StorageFile,
		},

		"SQLite storage should work.": {
			storage: lib.StorageSQLite,
		},

		"Unknown storage should fail.": {
			storage: "s3",
			expErr:  true,
			expIs:   lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client, err := lib.New(context.Background(), lib.Config{
				DataDir: filepath.Join(t.TempDir(), "data"),
				Storage: test.storage,
			})

			if test.expErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, test.expIs)
				return
			}

			require.NoError(t, err)
			assert.NoError(t, client.Close())
		})
	}
}

func TestAddTask(t *testing.T) {
	tests := map[string]struct {
		opts   lib.AddTaskOpts
		expErr bool
		expIs  error
	}{
		"Adding a one-off task should work.": {
			opts: lib.AddTaskOpts{Text: "Read a book"},
		},

		"Adding a repeatable task should work.": {
			opts: lib.AddTaskOpts{Text: "Water the plants", Type: lib.TaskTypeRepeatable, Cooldown: lib.Cooldown12h},
		},

		"Adding a task without text should fail.": {
			opts:   lib.AddTaskOpts{Text: "  "},
			expErr: true,
			expIs:  lib.ErrNotValid,
		},

		"Adding a task with an invalid cooldown should fail.": {
			opts:   lib.AddTaskOpts{Text: "Run", Type: lib.TaskTypeRepeatable, Cooldown: "fortnight"},
			expErr: true,
			expIs:  lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t)

			task, err := client.AddTask(context.Background(), test.opts)

			if test.expErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, test.expIs)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, task.ID)
			assert.Equal(t, test.opts.Text, task.Text)
			assert.Equal(t, lib.TaskStatusAvailable, task.Status)
		})
	}
}

func TestAddTaskDuplicated(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.AddTask(ctx, lib.AddTaskOpts{Text: "Read a book"})
	require.NoError(t, err)

	_, err = client.AddTask(ctx, lib.AddTaskOpts{Text: "Read a book"})
	assert.ErrorIs(t, err, lib.ErrAlreadyExists)
}

func TestTaskLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	task, err := client.AddTask(ctx, lib.AddTaskOpts{Text: "Water the plants", Type: lib.TaskTypeRepeatable, Cooldown: lib.CooldownDaily})
	require.NoError(t, err)

	// Nothing to finish yet.
	_, err = client.CompleteActiveTask(ctx)
	assert.ErrorIs(t, err, lib.ErrNoActiveTask)

	at, err := client.RandomizeAndAccept(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.ID, at.TaskID)
	assert.False(t, at.Expired)
	require.NotNil(t, client.ActiveTask())
	assert.Equal(t, task.ID, client.ActiveTask().TaskID)

	// The active task is protected.
	err = client.RemoveTask(ctx, task.ID)
	assert.ErrorIs(t, err, lib.ErrTaskActive)
	_, err = client.RandomizeAndAccept(ctx)
	assert.ErrorIs(t, err, lib.ErrTaskActive)

	done, err := client.CompleteActiveTask(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, done.Successful)
	assert.Nil(t, client.ActiveTask())

	got, err := client.GetTask("Water the plants")
	require.NoError(t, err)
	assert.Equal(t, lib.TaskStatusCooldown, got.Status)
	require.NotNil(t, got.AvailableAt)
	require.NotNil(t, got.LastSuccess)

	// The only task is on cooldown.
	_, err = client.RandomizeAndAccept(ctx)
	assert.ErrorIs(t, err, lib.ErrNoTasksAvailable)
}

func TestAbandonActiveTask(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	task, err := client.AddTask(ctx, lib.AddTaskOpts{Text: "Clean the garage"})
	require.NoError(t, err)

	// Without an active task there is nothing to give a reason for.
	_, err = client.AbandonActiveTask(ctx, "")
	assert.ErrorIs(t, err, lib.ErrNoActiveTask)

	_, err = client.AcceptTask(ctx, task.ID)
	require.NoError(t, err)

	_, err = client.AbandonActiveTask(ctx, " ")
	assert.ErrorIs(t, err, lib.ErrReasonRequired)

	got, err := client.AbandonActiveTask(ctx, "too tired")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Abandoned)
	require.Len(t, got.Executions, 1)
	assert.Equal(t, "too tired", got.Executions[0].Reason)

	// One-off tasks are still available after being abandoned.
	tasks := client.ListTasks(&lib.ListTasksOpts{Status: ptr(lib.TaskStatusAvailable)})
	assert.Len(t, tasks, 1)
}

func TestTrash(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	task, err := client.AddTask(ctx, lib.AddTaskOpts{Text: "Call mom"})
	require.NoError(t, err)

	require.NoError(t, client.RemoveTask(ctx, task.ID))
	assert.Empty(t, client.ListTasks(nil))
	deleted := client.ListDeletedTasks()
	require.Len(t, deleted, 1)
	assert.NotNil(t, deleted[0].DeletedAt)

	restored, err := client.RestoreTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
	assert.Empty(t, client.ListDeletedTasks())

	require.NoError(t, client.RemoveTask(ctx, task.ID))
	n, err := client.EmptyTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = client.GetTask(task.ID)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestEditTask(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.AddTask(ctx, lib.AddTaskOpts{Text: "Run"})
	require.NoError(t, err)

	got, err := client.EditTask(ctx, "Run", lib.EditTaskOpts{
		Text:     ptr("Run 5k"),
		Type:     ptr(lib.TaskTypeRepeatable),
		Cooldown: ptr(lib.Cooldown6h),
	})
	require.NoError(t, err)
	assert.Equal(t, "Run 5k", got.Text)
	assert.Equal(t, lib.TaskTypeRepeatable, got.Type)
	assert.Equal(t, lib.Cooldown6h, got.Cooldown)

	_, err = client.EditTask(ctx, "Missing", lib.EditTaskOpts{Text: ptr("x")})
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()

	src := newTestClient(t)
	for _, text := range []string{"Read", "Write", "Draw"} {
		_, err := src.AddTask(ctx, lib.AddTaskOpts{Text: text})
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	dst := newTestClient(t)
	_, err := dst.AddTask(ctx, lib.AddTaskOpts{Text: "Read"})
	require.NoError(t, err)

	res, err := dst.Import(ctx, bytes.NewReader(buf.Bytes()), lib.ImportOpts{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, dst.ListTasks(nil), 3)

	_, err = dst.Import(ctx, bytes.NewReader([]byte("{")), lib.ImportOpts{})
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
