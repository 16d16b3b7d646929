package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/model"
)

func TestParseDeadline(t *testing.T) {
	tests := map[string]struct {
		value  string
		exp    *time.Time
		expErr bool
	}{
		"Empty should return no deadline": {
			value: "",
		},
		"Date should parse in local time": {
			value: "2024-05-10",
			exp:   func() *time.Time { d := time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local); return &d }(),
		},
		"Invalid date should fail": {
			value:  "10/05/2024",
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := parseDeadline(tc.value)

			if tc.expErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.exp, d)
		})
	}
}

func TestFilterTasks(t *testing.T) {
	tasks := []randomizer.TaskView{
		{Task: model.Task{ID: "a"}, Status: model.TaskStatus{Kind: model.StatusAvailable}},
		{Task: model.Task{ID: "b"}, Status: model.TaskStatus{Kind: model.StatusCooldown}},
		{Task: model.Task{ID: "c"}, Status: model.TaskStatus{Kind: model.StatusAvailable}},
	}

	got := filterTasks(tasks, model.StatusAvailable)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Task.ID)
	assert.Equal(t, "c", got[1].Task.ID)

	assert.Empty(t, filterTasks(tasks, model.StatusCompleted))
}

func TestCooldownValues(t *testing.T) {
	for _, v := range cooldownValues {
		assert.True(t, model.Cooldown(v).Valid(), v)
	}
}
