package legacy_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dothis/internal/legacy"
	"github.com/slok/dothis/internal/model"
)

var now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func ms(v int64) time.Time { return time.UnixMilli(v).UTC() }

func ptr[T any](v T) *T { return &v }

func TestDecodeTasks(t *testing.T) {
	tests := map[string]struct {
		data       string
		collection legacy.Collection
		expTasks   []model.Task
		expChanged bool
		expErr     bool
	}{
		"Canonical records should be decoded without changes.": {
			data: `[{"id":"4f1c1d4e-8a57-4c2e-9a4b-2b0f1c9d7e11","text":"Walk","type":"repeatable","cooldown":"weekly",
				"executions":[{"timestamp":1704070800000,"duration":60000},{"timestamp":1704074400000,"duration":1000,"abandoned":true,"reason":"rain"}],
				"completed":false,"createdAt":1704067200000,"deadline":null}]`,
			expTasks: []model.Task{{
				ID: "4f1c1d4e-8a57-4c2e-9a4b-2b0f1c9d7e11", Text: "Walk", Type: model.TaskTypeRepeatable, Cooldown: model.CooldownWeekly,
				Executions: []model.Execution{
					{Timestamp: ms(1704070800000), Duration: time.Minute},
					{Timestamp: ms(1704074400000), Duration: time.Second, Abandoned: true, Reason: "rain"},
				},
				CreatedAt: ms(1704067200000),
			}},
		},
		"Plain string records should become one-off tasks.": {
			data: `["Buy milk"]`,
			expTasks: []model.Task{{
				Text: "Buy milk", Type: model.TaskTypeOneOff, Cooldown: model.CooldownDaily,
				Executions: []model.Execution{}, CreatedAt: now,
			}},
			expChanged: true,
		},
		"Non object records should become placeholders.": {
			data: `[42, null]`,
			expTasks: []model.Task{
				{Text: legacy.CorruptedTaskText, Type: model.TaskTypeOneOff, Cooldown: model.CooldownDaily, Executions: []model.Execution{}, CreatedAt: now},
				{Text: legacy.CorruptedTaskText, Type: model.TaskTypeOneOff, Cooldown: model.CooldownDaily, Executions: []model.Execution{}, CreatedAt: now},
			},
			expChanged: true,
		},
		"Non object deleted records should become deleted placeholders.": {
			data:       `[true]`,
			collection: legacy.CollectionDeletedTasks,
			expTasks: []model.Task{
				{Text: legacy.CorruptedDeletedTaskText, Type: model.TaskTypeOneOff, Cooldown: model.CooldownDaily, Executions: []model.Execution{}, CreatedAt: now, DeletedAt: &now},
			},
			expChanged: true,
		},
		"Numeric IDs and missing fields should get defaults.": {
			data: `[{"id":17,"text":"Stretch","type":"weird","executions":"nope","completed":1}]`,
			expTasks: []model.Task{{
				ID: "17", Text: "Stretch", Type: model.TaskTypeOneOff, Cooldown: model.CooldownDaily,
				Executions: []model.Execution{}, Completed: true, CreatedAt: now,
			}},
			expChanged: true,
		},
		"Empty texts should be dropped.": {
			data:       `["", {"id":"a","text":""}]`,
			expTasks:   []model.Task{},
			expChanged: true,
		},
		"Abandoned executions without reason should get a placeholder reason.": {
			data: `[{"id":"a","text":"x","type":"oneoff","cooldown":"0","createdAt":1704067200000,
				"executions":[{"timestamp":1704070800000,"duration":5,"abandoned":true}]}]`,
			expTasks: []model.Task{{
				ID: "a", Text: "x", Type: model.TaskTypeOneOff, Cooldown: model.CooldownNone,
				Executions: []model.Execution{{Timestamp: ms(1704070800000), Duration: 5 * time.Millisecond, Abandoned: true, Reason: legacy.MissingReason}},
				CreatedAt:  ms(1704067200000),
			}},
			expChanged: true,
		},
		"Numeric cooldowns should be accepted.": {
			data: `[{"id":"a","text":"x","type":"repeatable","cooldown":3,"createdAt":1704067200000,"executions":[],"deadline":1704240000000}]`,
			expTasks: []model.Task{{
				ID: "a", Text: "x", Type: model.TaskTypeRepeatable, Cooldown: model.Cooldown3h,
				Executions: []model.Execution{}, CreatedAt: ms(1704067200000), Deadline: ptr(ms(1704240000000)),
			}},
		},
		"Not an array should fail.": {
			data:   `{"tasks":[]}`,
			expErr: true,
		},
		"Invalid JSON should fail.": {
			data:   `[{"id":`,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			tasks, report, err := legacy.DecodeTasks([]byte(test.data), test.collection, now)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(test.expTasks, tasks)
			assert.Equal(test.expChanged, report.Changed())
		})
	}
}

func TestDecodeTasksTruncatesLongText(t *testing.T) {
	data := fmt.Sprintf(`[{"id":"a","text":%q}]`, strings.Repeat("x", 300))
	tasks, _, err := legacy.DecodeTasks([]byte(data), legacy.CollectionTasks, now)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Len(t, tasks[0].Text, model.MaxTaskTextLength)
}

func TestDecodeActiveTask(t *testing.T) {
	tests := map[string]struct {
		data     string
		expTask  *model.ActiveTask
		expErr   bool
	}{
		"Null should be no active task.": {
			data: `null`,
		},
		"Empty should be no active task.": {
			data: ``,
		},
		"Legacy format with a full task and numeric ID.": {
			data: `{"task":{"id":3,"text":"Walk","type":"oneoff","executions":[]},"startTime":1704067200000,"duration":28800000}`,
			expTask: &model.ActiveTask{TaskID: "3", TaskText: "Walk", StartTime: ms(1704067200000), Duration: 8 * time.Hour},
		},
		"Missing duration should use the default.": {
			data:    `{"task":{"id":"a","text":"Walk"},"startTime":1704067200000}`,
			expTask: &model.ActiveTask{TaskID: "a", TaskText: "Walk", StartTime: ms(1704067200000), Duration: model.ActiveTaskDuration},
		},
		"Missing start time should fail.": {
			data:   `{"task":{"id":"a"}}`,
			expErr: true,
		},
		"Corrupted data should fail.": {
			data:   `{"task":`,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			at, err := legacy.DecodeActiveTask([]byte(test.data))
			if test.expErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(test.expTask, at)
		})
	}
}

func TestDecodeCount(t *testing.T) {
	tests := map[string]struct {
		data     string
		expCount int
	}{
		"Number.":              {data: "12", expCount: 12},
		"Quoted number.":       {data: `"7"`, expCount: 7},
		"Number with garbage.": {data: "5abc", expCount: 5},
		"Garbage.":             {data: "abc", expCount: 0},
		"Negative.":            {data: "-3", expCount: 0},
		"Empty.":               {data: "", expCount: 0},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expCount, legacy.DecodeCount([]byte(test.data)))
		})
	}
}

func TestIDHelpers(t *testing.T) {
	assert := assert.New(t)

	assert.True(legacy.IsNumericID("17"))
	assert.False(legacy.IsNumericID("17a"))
	assert.False(legacy.IsNumericID(""))

	assert.True(legacy.IsValidUUID("4f1c1d4e-8a57-4c2e-9a4b-2b0f1c9d7e11"))
	assert.True(legacy.IsValidUUID("4F1C1D4E-8A57-4C2E-9A4B-2B0F1C9D7E11"))
	assert.False(legacy.IsValidUUID("4f1c1d4e-8a57-1c2e-9a4b-2b0f1c9d7e11"))
	assert.False(legacy.IsValidUUID("17"))
}

func newIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func TestMigrate(t *testing.T) {
	assert := assert.New(t)

	state := &model.AppState{
		Tasks: []model.Task{
			{ID: "12", Text: "Walk", Type: model.TaskTypeRepeatable, Cooldown: model.CooldownDaily, CreatedAt: now},
			{ID: "", Text: "Read", Type: model.TaskTypeOneOff, Cooldown: model.CooldownDaily, CreatedAt: now},
			{ID: "keep", Text: "Stretch", Type: "bad", Cooldown: "bad", CreatedAt: now, DeletedAt: &now},
		},
		DeletedTasks: []model.Task{
			{ID: "keep", Text: "Old", Type: model.TaskTypeOneOff, Cooldown: model.CooldownDaily, CreatedAt: now},
		},
		ActiveTask:     &model.ActiveTask{TaskID: "12", TaskText: "Walk", StartTime: now},
		CompletedCount: -1,
	}

	report := legacy.Migrate(state, now, legacy.MigrateConfig{NewID: newIDs()})
	assert.True(report.Changed())
	assert.Equal(3, report.IDsMigrated)
	assert.Equal(legacy.Version, report.Version)

	assert.Equal("new-1", state.Tasks[0].ID)
	assert.Equal("new-2", state.Tasks[1].ID)
	assert.Equal("keep", state.Tasks[2].ID)
	assert.Equal("new-3", state.DeletedTasks[0].ID)

	assert.Equal(model.TaskTypeOneOff, state.Tasks[2].Type)
	assert.Equal(model.CooldownDaily, state.Tasks[2].Cooldown)
	assert.Nil(state.Tasks[2].DeletedAt)
	assert.Equal(&now, state.DeletedTasks[0].DeletedAt)

	assert.Equal("new-1", state.ActiveTask.TaskID)
	assert.Equal(model.ActiveTaskDuration, state.ActiveTask.Duration)
	assert.Zero(state.CompletedCount)

	// Running it again is a no-op.
	again := legacy.Migrate(state, now, legacy.MigrateConfig{NewID: newIDs()})
	assert.False(again.Changed())
}

func TestMigrateActiveTaskByText(t *testing.T) {
	state := &model.AppState{
		Tasks: []model.Task{
			{ID: "4f1c1d4e-8a57-4c2e-9a4b-2b0f1c9d7e11", Text: "Walk", Type: model.TaskTypeRepeatable, Cooldown: model.CooldownDaily, CreatedAt: now},
		},
		ActiveTask: &model.ActiveTask{TaskID: "99", TaskText: "Walk", StartTime: now, Duration: time.Hour},
	}

	legacy.Migrate(state, now, legacy.MigrateConfig{NewID: newIDs()})
	assert.Equal(t, "4f1c1d4e-8a57-4c2e-9a4b-2b0f1c9d7e11", state.ActiveTask.TaskID)
}
