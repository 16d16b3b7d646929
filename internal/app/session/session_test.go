package session_test

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/app/session"
	"github.com/slok/dothis/internal/clock"
	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/storage/memory"
)

var t0 = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T, initial *model.AppState, lang string, notifier randomizer.Notifier) *randomizer.Service {
	t.Helper()

	repo, err := memory.NewRepository(memory.RepositoryConfig{State: initial})
	require.NoError(t, err)

	svc, err := randomizer.NewService(randomizer.ServiceConfig{
		Repository: repo,
		Clock:      clock.NewFake(t0),
		Rand:       rand.New(rand.NewPCG(1, 2)),
		Location:   time.UTC,
		Messages:   i18n.New(lang),
		Notifier:   notifier,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.TODO()))

	return svc
}

func runSession(t *testing.T, cfg session.SessionConfig, input string) string {
	t.Helper()

	var out bytes.Buffer
	cfg.In = strings.NewReader(input)
	cfg.Out = &out

	s, err := session.NewSession(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Run(context.TODO()))

	return out.String()
}

func TestNewSession(t *testing.T) {
	tests := map[string]struct {
		cfg    func(t *testing.T) session.SessionConfig
		expErr bool
	}{
		"Valid config.": {
			cfg: func(t *testing.T) session.SessionConfig {
				return session.SessionConfig{Service: newService(t, nil, "", nil), In: strings.NewReader("")}
			},
		},
		"Missing service should fail.": {
			cfg: func(t *testing.T) session.SessionConfig {
				return session.SessionConfig{In: strings.NewReader("")}
			},
			expErr: true,
		},
		"Missing input should fail.": {
			cfg: func(t *testing.T) session.SessionConfig {
				return session.SessionConfig{Service: newService(t, nil, "", nil)}
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := session.NewSession(test.cfg(t))
			if test.expErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSessionCommands(t *testing.T) {
	tests := map[string]struct {
		lang      string
		input     string
		expOut    []string
		expNotOut []string
	}{
		"Adding and listing tasks.": {
			input: "add Walk the dog\nadd -r daily Read\nlist\n",
			expOut: []string{
				"Task added successfully!",
				"Walk the dog",
				"Repeatable",
				"One-time",
			},
		},
		"Randomize, accept and complete a task.": {
			input: "add Walk\nrandom\naccept\nstatus\ndone\nstatus\n",
			expOut: []string{
				"Your task: Walk",
				"Task accepted: Walk.",
				"8h 0m remaining",
				"Task completed! Great job!",
				"No active task",
			},
		},
		"Randomize without tasks.": {
			input:  "r\n",
			expOut: []string{"Add some tasks first!"},
		},
		"Randomize with every task on cooldown.": {
			input:  "add -r daily Walk\nlog Walk\nrandom\n",
			expOut: []string{"Task logged as completed", "All tasks are on cooldown or completed. Check back later!"},
		},
		"Unknown commands.": {
			input:  "fly\n",
			expOut: []string{`Unknown command "fly"`},
		},
		"Errors are rendered as messages.": {
			input:  "add Walk\nadd Walk\nshow Run\n",
			expOut: []string{"This task already exists!", "Task not found"},
		},
		"Trash management.": {
			input: "add Walk\nrm Walk\ntrash\nrestore Walk\ndel Walk\nempty\nempty\n",
			expOut: []string{
				"Task moved to trash",
				"Task restored",
				"1 task deleted permanently",
				"Trash is already empty",
			},
		},
		"Abandoning requires a reason.": {
			input:  "add Walk\naccept Walk\nabandon\nabandon too tired\n",
			expOut: []string{"Please enter a reason for abandoning the task", "Task abandoned"},
		},
		"The active task can't be deleted.": {
			input:  "add Walk\naccept Walk\nrm Walk\n",
			expOut: []string{"Cannot change the active task"},
		},
		"Completing without an active task.": {
			input:  "done\n",
			expOut: []string{"There is no active task"},
		},
		"Editing a task.": {
			input:  "add Walk\nedit Walk -r 3h Walk the dog\nshow Walk the dog\n",
			expOut: []string{"Task updated successfully!", "Cooldown:   3h", "Type:       Repeatable"},
		},
		"Invalid options.": {
			input:  "add -r hourly Walk\nadd -d tomorrow Walk\n",
			expOut: []string{`unknown cooldown "hourly"`, `invalid deadline "tomorrow"`},
		},
		"Sample tasks.": {
			input:  "samples\nsamples\n",
			expOut: []string{"Added 8 sample tasks", "All tasks already exist (no new tasks imported)"},
		},
		"Reset requires confirmation.": {
			input:  "add Walk\nreset\nlist\nreset confirm\n",
			expOut: []string{"Type 'reset confirm' to continue.", "Walk", "Everything has been reset"},
		},
		"Quit ends the session.": {
			input:     "quit\nadd Walk\n",
			expOut:    []string{"Bye!"},
			expNotOut: []string{"Task added successfully!"},
		},
		"German messages.": {
			lang:   "de",
			input:  "add Spazieren\nquit\n",
			expOut: []string{"Aufgabe hinzugefügt!", "Tschüss!"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc := newService(t, nil, test.lang, nil)
			out := runSession(t, session.SessionConfig{Service: svc, FS: afero.NewMemMapFs()}, test.input)

			for _, exp := range test.expOut {
				assert.Contains(t, out, exp)
			}
			for _, exp := range test.expNotOut {
				assert.NotContains(t, out, exp)
			}
		})
	}
}

func TestSessionExportImport(t *testing.T) {
	fs := afero.NewMemMapFs()
	svc := newService(t, nil, "", nil)

	out := runSession(t, session.SessionConfig{Service: svc, FS: fs},
		"samples\nexport out.json\nreset confirm\nimport out.json selective 1 2\nimport out.json replace\nimport out.json\n")

	assert := assert.New(t)
	assert.Contains(out, "Tasks exported to out.json")
	assert.Contains(out, "Imported 2 new tasks")
	assert.Contains(out, "Replaced all tasks with 8 imported tasks")
	assert.Contains(out, "All tasks already exist (no new tasks imported)")
	assert.Len(svc.Tasks(), 8)

	exists, err := afero.Exists(fs, "out.json")
	require.NoError(t, err)
	assert.True(exists)
}

func TestSessionExpiredTaskForcesAbandon(t *testing.T) {
	initial := &model.AppState{
		Tasks: []model.Task{
			{ID: "4f1c1d4e-8a57-4c2e-9a4b-2b0f1c9d7e11", Text: "Walk", Type: model.TaskTypeOneOff, Cooldown: model.CooldownDaily, CreatedAt: t0.Add(-24 * time.Hour)},
		},
		ActiveTask: &model.ActiveTask{
			TaskID:    "4f1c1d4e-8a57-4c2e-9a4b-2b0f1c9d7e11",
			TaskText:  "Walk",
			StartTime: t0.Add(-9 * time.Hour),
			Duration:  model.ActiveTaskDuration,
		},
	}

	notifier := session.NewNotifier(0, nil)
	svc := newService(t, initial, "", notifier)

	out := runSession(t, session.SessionConfig{Service: svc, Events: notifier.Events()}, "\nno time left\nstatus\n")

	assert := assert.New(t)
	assert.Contains(out, "Time's up for: Walk")
	assert.Contains(out, "The time is over, the task must be abandoned with a reason.")
	assert.Contains(out, `Why didn't you finish "Walk"? Enter a reason:`)
	assert.Contains(out, "Please enter a reason for abandoning the task")
	assert.Contains(out, "Task abandoned")
	assert.Contains(out, "No active task")

	require.Len(t, svc.Tasks()[0].Executions, 1)
	assert.Equal("no time left", svc.Tasks()[0].Executions[0].Reason)
}

func TestSessionEvents(t *testing.T) {
	notifier := session.NewNotifier(0, nil)
	svc := newService(t, nil, "", notifier)

	notifier.OnProgressThreshold("Task Progress: 50% Complete", "halfway")
	notifier.OnTick(model.ActiveTask{}, time.Hour)
	notifier.OnTasksAvailable(2)

	out := runSession(t, session.SessionConfig{Service: svc, Events: notifier.Events()}, "")

	assert.Contains(t, out, "Task Progress: 50% Complete: halfway")
	assert.Contains(t, out, "Tasks are available again!")
}

func TestNotifierDropsWhenFull(t *testing.T) {
	notifier := session.NewNotifier(1, nil)
	notifier.OnTasksAvailable(1)
	notifier.OnTasksAvailable(2)

	require.Len(t, notifier.Events(), 1)
	ev := <-notifier.Events()
	assert.Equal(t, session.EventTasksAvailable, ev.Kind)
	assert.Equal(t, 1, ev.Count)
}
