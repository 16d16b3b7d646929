package active_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dothis/internal/active"
	"github.com/slok/dothis/internal/availability"
	"github.com/slok/dothis/internal/model"
)

var t0 = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type notification struct {
	title string
	body  string
}

type recorder struct {
	notifications []notification
}

func (r *recorder) OnProgressThreshold(title, body string) {
	r.notifications = append(r.notifications, notification{title: title, body: body})
}

func newState() *model.AppState {
	return &model.AppState{
		Tasks: []model.Task{
			{ID: "once", Text: "Organize your desk", Type: model.TaskTypeOneOff, Cooldown: model.CooldownDaily, CreatedAt: t0},
			{ID: "rep", Text: "Go for a walk", Type: model.TaskTypeRepeatable, Cooldown: model.CooldownDaily, CreatedAt: t0},
		},
	}
}

func newController(t *testing.T, state *model.AppState, n active.Notifier) *active.Controller {
	t.Helper()
	avail, err := availability.NewEngine(availability.EngineConfig{Location: time.UTC})
	require.NoError(t, err)
	c, err := active.NewController(active.ControllerConfig{
		State:        state,
		Availability: avail,
		Notifier:     n,
	})
	require.NoError(t, err)
	return c
}

func acceptTask(t *testing.T, c *active.Controller, id string, now time.Time) {
	t.Helper()
	require.NoError(t, c.Select(id))
	_, err := c.Accept(now)
	require.NoError(t, err)
}

func TestNewController(t *testing.T) {
	avail, _ := availability.NewEngine(availability.EngineConfig{})

	tests := map[string]struct {
		config active.ControllerConfig
		expErr bool
	}{
		"valid config": {
			config: active.ControllerConfig{State: &model.AppState{}, Availability: avail},
		},
		"missing state": {
			config: active.ControllerConfig{Availability: avail},
			expErr: true,
		},
		"missing availability": {
			config: active.ControllerConfig{State: &model.AppState{}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			c, err := active.NewController(test.config)
			if test.expErr {
				require.Error(err)
			} else {
				require.NoError(err)
				require.NotNil(c)
			}
		})
	}
}

func TestControllerAccept(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	state := newState()
	c := newController(t, state, nil)
	assert.Equal(active.StateIdle, c.State())

	_, err := c.Accept(t0)
	assert.ErrorIs(err, model.ErrNoSelection)

	require.NoError(c.Select("rep"))
	assert.Equal(active.StateSelected, c.State())
	sel, ok := c.Selected()
	require.True(ok)
	assert.Equal("rep", sel.ID)

	at, err := c.Accept(t0)
	require.NoError(err)
	assert.Equal(active.StateActive, c.State())
	assert.Equal("rep", at.TaskID)
	assert.Equal(model.ActiveTaskDuration, at.Duration)

	rem, ok := c.Remaining(t0)
	assert.True(ok)
	assert.Equal(model.ActiveTaskDuration, rem)
	rem, _ = c.Remaining(t0.Add(model.ActiveTaskDuration))
	assert.LessOrEqual(rem, time.Duration(0))

	// Only one active task.
	err = c.Select("once")
	assert.ErrorIs(err, model.ErrTaskActive)
	_, err = c.Accept(t0)
	assert.ErrorIs(err, model.ErrTaskActive)
}

func TestControllerRejectKeepsPrevious(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	c := newController(t, newState(), nil)
	require.NoError(c.Select("rep"))
	c.Reject()

	assert.Equal(active.StateIdle, c.State())
	assert.Equal("rep", c.SelectedID())
	_, err := c.Accept(t0)
	assert.ErrorIs(err, model.ErrNoSelection)
}

func TestControllerSelectMissingTask(t *testing.T) {
	c := newController(t, newState(), nil)
	assert.ErrorIs(t, c.Select("missing"), model.ErrNotFound)
}

func TestControllerComplete(t *testing.T) {
	tests := map[string]struct {
		taskID       string
		expCompleted bool
	}{
		"Completing a one-off task should mark it completed.": {
			taskID:       "once",
			expCompleted: true,
		},
		"Completing a repeatable task should not mark it completed.": {
			taskID:       "rep",
			expCompleted: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			state := newState()
			c := newController(t, state, nil)
			acceptTask(t, c, test.taskID, t0)

			res, err := c.Complete(t0.Add(90 * time.Minute))
			require.NoError(err)
			assert.True(res.Cleared)
			require.NotNil(res.Task)

			assert.Nil(state.ActiveTask)
			assert.Equal(active.StateIdle, c.State())
			assert.Equal(1, state.CompletedCount)
			assert.Equal(test.expCompleted, res.Task.Completed)
			require.Len(res.Task.Executions, 1)
			exec := res.Task.Executions[0]
			assert.False(exec.Abandoned)
			assert.Equal(90*time.Minute, exec.Duration)
			assert.Equal(t0.Add(90*time.Minute), exec.Timestamp)

			// Stored task is updated too.
			for _, tk := range state.Tasks {
				if tk.ID == test.taskID {
					assert.Len(tk.Executions, 1)
				}
			}

			// The completed task is kept as previous selection.
			assert.Equal(test.taskID, c.SelectedID())
		})
	}
}

func TestControllerWithoutActiveTaskIsNoop(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	state := newState()
	c := newController(t, state, nil)

	res, err := c.Complete(t0)
	require.NoError(err)
	assert.False(res.Cleared)

	for _, reason := range []string{"meh", "", "  "} {
		res, err = c.Abandon(t0, reason)
		require.NoError(err)
		assert.False(res.Cleared)
	}

	tr := c.Tick(t0)
	assert.True(tr.Stop)
	assert.Zero(state.CompletedCount)
	for _, tk := range state.Tasks {
		assert.Empty(tk.Executions)
	}
}

func TestControllerAbandon(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	state := newState()
	c := newController(t, state, nil)
	acceptTask(t, c, "rep", t0)

	for _, reason := range []string{"", "   ", "\n\t"} {
		_, err := c.Abandon(t0.Add(time.Hour), reason)
		assert.ErrorIs(err, model.ErrReasonRequired)
		assert.NotNil(state.ActiveTask)
	}

	res, err := c.Abandon(t0.Add(time.Hour), "  got tired  ")
	require.NoError(err)
	assert.True(res.Cleared)
	require.Len(res.Task.Executions, 1)
	assert.True(res.Task.Executions[0].Abandoned)
	assert.Equal("got tired", res.Task.Executions[0].Reason)
	assert.Equal(time.Hour, res.Task.Executions[0].Duration)

	assert.Nil(state.ActiveTask)
	assert.Zero(state.CompletedCount)
	assert.Empty(c.SelectedID())
	assert.Equal(active.StateIdle, c.State())
}

func TestControllerActiveTaskMissing(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	state := newState()
	c := newController(t, state, nil)
	acceptTask(t, c, "rep", t0)

	// Task vanishes from the collection while active.
	state.Tasks = state.Tasks[:1]

	res, err := c.Complete(t0.Add(time.Minute))
	require.NoError(err)
	assert.True(res.Cleared)
	assert.Nil(res.Task)
	assert.Nil(state.ActiveTask)
	assert.Equal(1, state.CompletedCount)
}

func TestControllerTickNotifications(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	rec := &recorder{}
	state := newState()
	c := newController(t, state, rec)
	acceptTask(t, c, "rep", t0)

	for m := time.Duration(0); m < 4*time.Hour; m += time.Minute {
		c.Tick(t0.Add(m))
	}
	assert.Empty(rec.notifications)

	// Many ticks after the half should only notify once.
	for m := 4 * time.Hour; m < 6*time.Hour; m += time.Minute {
		c.Tick(t0.Add(m))
	}
	require.Len(rec.notifications, 1)
	assert.Equal("Task Progress: 50% Complete", rec.notifications[0].title)
	assert.Equal(`You're halfway through your task: "Go for a walk". 4 hours remaining.`, rec.notifications[0].body)

	for m := 6 * time.Hour; m < 8*time.Hour; m += time.Minute {
		tr := c.Tick(t0.Add(m))
		assert.False(tr.Stop)
	}
	require.Len(rec.notifications, 2)
	assert.Equal("Task Progress: 75% Complete", rec.notifications[1].title)
	assert.Equal(`You're three-quarters done with: "Go for a walk". 2 hours remaining.`, rec.notifications[1].body)
}

func TestControllerTickSkippedThresholdsFireTogether(t *testing.T) {
	rec := &recorder{}
	c := newController(t, newState(), rec)
	acceptTask(t, c, "rep", t0)

	c.Tick(t0.Add(7 * time.Hour))
	assert.Len(t, rec.notifications, 2)
}

func TestControllerExpiration(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	state := newState()
	c := newController(t, state, nil)
	acceptTask(t, c, "rep", t0)
	assert.True(c.CanDismissAbandonPrompt())

	tr := c.Tick(t0.Add(model.ActiveTaskDuration))
	assert.True(tr.Expired)
	assert.True(tr.Stop)
	assert.Equal(active.StateExpired, c.State())
	assert.False(c.CanDismissAbandonPrompt())

	// Further ticks don't report the expiration again.
	tr = c.Tick(t0.Add(model.ActiveTaskDuration + time.Second))
	assert.False(tr.Expired)

	// Completing an expired task is not allowed.
	_, err := c.Complete(t0.Add(model.ActiveTaskDuration + time.Minute))
	assert.ErrorIs(err, model.ErrNotValid)
	assert.NotNil(state.ActiveTask)

	_, err = c.Abandon(t0.Add(model.ActiveTaskDuration+time.Minute), "")
	assert.ErrorIs(err, model.ErrReasonRequired)
	assert.False(c.CanDismissAbandonPrompt())

	_, err = c.Abandon(t0.Add(model.ActiveTaskDuration+time.Minute), "ran out of time")
	require.NoError(err)
	assert.Nil(state.ActiveTask)
	assert.True(c.CanDismissAbandonPrompt())
	assert.Equal(active.StateIdle, c.State())
}

func TestControllerResume(t *testing.T) {
	tests := map[string]struct {
		elapsed          time.Duration
		expState         active.State
		expHalfSent      bool
		expThreeQuarters bool
	}{
		"Recently started.": {
			elapsed:  time.Hour,
			expState: active.StateActive,
		},
		"Past the half.": {
			elapsed:     5 * time.Hour,
			expState:    active.StateActive,
			expHalfSent: true,
		},
		"Past three quarters.": {
			elapsed:          7 * time.Hour,
			expState:         active.StateActive,
			expHalfSent:      true,
			expThreeQuarters: true,
		},
		"Expired while closed.": {
			elapsed:          9 * time.Hour,
			expState:         active.StateExpired,
			expHalfSent:      true,
			expThreeQuarters: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			rec := &recorder{}
			state := newState()
			state.ActiveTask = &model.ActiveTask{TaskID: "rep", TaskText: "Go for a walk", StartTime: t0, Duration: model.ActiveTaskDuration}
			c := newController(t, state, rec)

			now := t0.Add(test.elapsed)
			assert.Equal(test.expState, c.Resume(now))
			half, tq := c.NotificationsSent()
			assert.Equal(test.expHalfSent, half)
			assert.Equal(test.expThreeQuarters, tq)

			c.Tick(now)
			assert.Empty(rec.notifications)
		})
	}
}

func TestControllerReset(t *testing.T) {
	assert := assert.New(t)

	state := newState()
	c := newController(t, state, nil)
	acceptTask(t, c, "rep", t0)
	c.Tick(t0.Add(model.ActiveTaskDuration))

	c.Reset()
	assert.Nil(state.ActiveTask)
	assert.Equal(active.StateIdle, c.State())
	assert.True(c.CanDismissAbandonPrompt())
	for _, tk := range state.Tasks {
		assert.Empty(tk.Executions)
	}
}

func TestControllerQuickLog(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	state := newState()
	c := newController(t, state, nil)

	got, err := c.QuickLog("once", t0)
	require.NoError(err)
	assert.True(got.Completed)
	require.Len(got.Executions, 1)
	assert.Equal(active.QuickLogDuration, got.Executions[0].Duration)
	assert.Equal(1, state.CompletedCount)

	// Completed one-off is not available anymore.
	_, err = c.QuickLog("once", t0.Add(time.Hour))
	assert.ErrorIs(err, model.ErrNotAvailable)

	got, err = c.QuickLog("rep", t0)
	require.NoError(err)
	assert.False(got.Completed)
	assert.Equal(2, state.CompletedCount)

	// Repeatable is now on cooldown until the next midnight.
	_, err = c.QuickLog("rep", t0.Add(time.Hour))
	assert.ErrorIs(err, model.ErrNotAvailable)

	_, err = c.QuickLog("missing", t0)
	assert.ErrorIs(err, model.ErrNotFound)
}

func TestControllerQuickLogActiveTask(t *testing.T) {
	c := newController(t, newState(), nil)
	acceptTask(t, c, "rep", t0)

	_, err := c.QuickLog("rep", t0.Add(time.Minute))
	assert.ErrorIs(t, err, model.ErrTaskActive)
}
