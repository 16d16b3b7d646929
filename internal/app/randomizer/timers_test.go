package randomizer

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dothis/internal/clock"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/storage/memory"
	"github.com/slok/dothis/internal/taskstore"
	"github.com/slok/dothis/internal/transfer"
)

type availableCounter struct {
	NoopNotifier

	mu    sync.Mutex
	calls []int
}

func (a *availableCounter) OnTasksAvailable(count int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, count)
}

func (a *availableCounter) Calls() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int{}, a.calls...)
}

type timersTest struct {
	svc      *Service
	clock    *clock.Fake
	notifier *availableCounter
}

func newTimersTest(t *testing.T, tick, poll time.Duration) timersTest {
	t.Helper()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	tt := timersTest{
		clock:    clock.NewFake(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)),
		notifier: &availableCounter{},
	}
	tt.svc, err = NewService(ServiceConfig{
		Repository:   repo,
		Clock:        tt.clock,
		Location:     time.UTC,
		Notifier:     tt.notifier,
		TickInterval: tick,
		PollInterval: poll,
	})
	require.NoError(t, err)
	require.NoError(t, tt.svc.Load(context.TODO()))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		tt.svc.StopTimers()
		cancel()
	})
	tt.svc.StartTimers(ctx)

	return tt
}

func (tt timersTest) add(t *testing.T, text string, tp model.TaskType, cd model.Cooldown) *model.Task {
	t.Helper()
	task, err := tt.svc.AddTask(context.TODO(), taskstore.NewTask{Text: text, Type: tp, Cooldown: cd})
	require.NoError(t, err)
	return task
}

func (tt timersTest) accept(t *testing.T, id string) {
	t.Helper()
	_, err := tt.svc.AcceptTask(context.TODO(), id)
	require.NoError(t, err)
}

// putOnCooldown completes a repeatable task so the pool is empty for an hour.
func (tt timersTest) putOnCooldown(t *testing.T) {
	t.Helper()
	task := tt.add(t, "Water", model.TaskTypeRepeatable, model.Cooldown1h)
	tt.accept(t, task.ID)
	_, err := tt.svc.CompleteActiveTask(context.TODO())
	require.NoError(t, err)
}

func TestServiceTimersWiring(t *testing.T) {
	const short = 5 * time.Millisecond

	tests := map[string]struct {
		poll    time.Duration
		run     func(t *testing.T, tt timersTest)
		expTick bool
		expPoll bool
	}{
		"Accepting a task should start the tick.": {
			run: func(t *testing.T, tt timersTest) {
				task := tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
				tt.accept(t, task.ID)
			},
			expTick: true,
		},

		"Completing the active task should stop the tick.": {
			run: func(t *testing.T, tt timersTest) {
				task := tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
				tt.accept(t, task.ID)
				_, err := tt.svc.CompleteActiveTask(context.TODO())
				require.NoError(t, err)
			},
		},

		"Abandoning the active task should stop the tick.": {
			run: func(t *testing.T, tt timersTest) {
				task := tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
				tt.accept(t, task.ID)
				_, err := tt.svc.AbandonActiveTask(context.TODO(), "raining")
				require.NoError(t, err)
			},
		},

		"Resetting should stop the timers.": {
			run: func(t *testing.T, tt timersTest) {
				task := tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
				tt.accept(t, task.ID)
				require.NoError(t, tt.svc.ResetAll(context.TODO()))
			},
		},

		"A replace import without the active task should stop the tick.": {
			run: func(t *testing.T, tt timersTest) {
				other := newTimersTest(t, time.Hour, time.Hour)
				other.add(t, "Read", model.TaskTypeOneOff, model.CooldownDaily)
				var doc bytes.Buffer
				require.NoError(t, other.svc.Export(&doc))

				task := tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
				tt.accept(t, task.ID)

				imp, err := tt.svc.DecodeImport(&doc)
				require.NoError(t, err)
				res, err := tt.svc.Import(context.TODO(), imp, ImportOptions{Mode: transfer.ModeReplace})
				require.NoError(t, err)
				require.True(t, res.ActiveCleared)
			},
		},

		"An empty pool because of cooldowns should start the poll.": {
			poll: time.Hour,
			run: func(t *testing.T, tt timersTest) {
				tt.putOnCooldown(t)
				_, err := tt.svc.Randomize(context.TODO())
				require.ErrorIs(t, err, model.ErrNoTasksAvailable)
			},
			expPoll: true,
		},

		"An empty pool of completed one-off tasks should not start the poll.": {
			poll: time.Hour,
			run: func(t *testing.T, tt timersTest) {
				task := tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
				tt.accept(t, task.ID)
				_, err := tt.svc.CompleteActiveTask(context.TODO())
				require.NoError(t, err)

				_, err = tt.svc.Randomize(context.TODO())
				require.ErrorIs(t, err, model.ErrNoTasksAvailable)
			},
		},

		"Accepting a task should stop the poll.": {
			poll: time.Hour,
			run: func(t *testing.T, tt timersTest) {
				tt.putOnCooldown(t)
				_, err := tt.svc.Randomize(context.TODO())
				require.ErrorIs(t, err, model.ErrNoTasksAvailable)
				require.True(t, tt.svc.poll.Running())

				task := tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
				tt.accept(t, task.ID)
			},
			expTick: true,
		},

		"Starting the timers again should not stack them.": {
			run: func(t *testing.T, tt timersTest) {
				task := tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
				tt.accept(t, task.ID)
				tt.svc.StartTimers(context.Background())
				tt.svc.StartTimers(context.Background())
			},
			expTick: true,
		},

		"Stopped timers should not start on commands.": {
			run: func(t *testing.T, tt timersTest) {
				tt.svc.StopTimers()
				task := tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
				tt.accept(t, task.ID)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			poll := test.poll
			if poll == 0 {
				poll = short
			}
			tt := newTimersTest(t, short, poll)

			test.run(t, tt)

			assert.Equal(t, test.expTick, tt.svc.tick.Running(), "tick")
			assert.Equal(t, test.expPoll, tt.svc.poll.Running(), "poll")
		})
	}
}

func TestServiceTimersPollStopsWhenTasksAreBack(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	tt := newTimersTest(t, time.Hour, 5*time.Millisecond)
	tt.putOnCooldown(t)

	_, err := tt.svc.Randomize(context.TODO())
	require.ErrorIs(err, model.ErrNoTasksAvailable)
	require.True(tt.svc.poll.Running())

	// Still on cooldown, the poll keeps going.
	time.Sleep(20 * time.Millisecond)
	assert.True(tt.svc.poll.Running())
	assert.Empty(tt.notifier.Calls())

	tt.clock.Advance(time.Hour)
	assert.Eventually(func() bool { return !tt.svc.poll.Running() }, time.Second, time.Millisecond)
	assert.Equal([]int{1}, tt.notifier.Calls())
}

func TestServiceTimersStartWithLoadedState(t *testing.T) {
	tests := map[string]struct {
		prepare func(t *testing.T, tt timersTest)
		expTick bool
		expPoll bool
	}{
		"An active task should start the tick.": {
			prepare: func(t *testing.T, tt timersTest) {
				task := tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
				tt.accept(t, task.ID)
			},
			expTick: true,
		},

		"Every task on cooldown should start the poll.": {
			prepare: func(t *testing.T, tt timersTest) { tt.putOnCooldown(t) },
			expPoll: true,
		},

		"Available tasks should not start any timer.": {
			prepare: func(t *testing.T, tt timersTest) {
				tt.add(t, "Walk", model.TaskTypeOneOff, model.CooldownDaily)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			tt := newTimersTest(t, time.Hour, time.Hour)
			tt.svc.StopTimers()
			test.prepare(t, tt)

			tt.svc.StartTimers(context.Background())

			assert.Equal(t, test.expTick, tt.svc.tick.Running(), "tick")
			assert.Equal(t, test.expPoll, tt.svc.poll.Running(), "poll")
		})
	}
}
