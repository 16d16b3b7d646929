package legacy

import (
	"time"

	"github.com/google/uuid"

	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
)

// MigrateConfig is the configuration of the state migration.
type MigrateConfig struct {
	// NewID returns new task IDs, UUID v4 by default.
	NewID  func() string
	Logger log.Logger
}

func (c *MigrateConfig) defaults() {
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "legacy.Migrate", "version": Version})
}

// Migrate brings a loaded state to the current version in place:
//
//   - Missing, numeric and duplicated task IDs get a new UUID, the active task
//     reference follows its task.
//   - Tasks in the task collection lose their deletion time, and trashed
//     tasks without one get now.
//   - Invalid types, cooldowns and executions get their defaults.
//
// Migrate is idempotent, the report tells if the state must be saved back.
func Migrate(state *model.AppState, now time.Time, cfg MigrateConfig) Report {
	cfg.defaults()
	report := Report{Version: Version}

	seen := map[string]bool{}
	remap := map[string]string{}
	migrateIDs := func(tasks []model.Task, trackRemap bool) {
		for i := range tasks {
			old := tasks[i].ID
			if old != "" && !IsNumericID(old) && !seen[old] {
				seen[old] = true
				continue
			}

			id := cfg.NewID()
			for seen[id] {
				id = cfg.NewID()
			}
			seen[id] = true
			tasks[i].ID = id
			report.IDsMigrated++
			if trackRemap && IsNumericID(old) {
				if _, ok := remap[old]; !ok {
					remap[old] = id
				}
			}
			cfg.Logger.Infof("migrating task %q from ID %q to %q", tasks[i].Text, old, id)
		}
	}
	migrateIDs(state.Tasks, true)
	migrateIDs(state.DeletedTasks, false)

	for i := range state.Tasks {
		if repairTask(&state.Tasks[i], false, now) {
			report.Repaired++
		}
	}
	for i := range state.DeletedTasks {
		if repairTask(&state.DeletedTasks[i], true, now) {
			report.Repaired++
		}
	}

	if at := state.ActiveTask; at != nil {
		if id, ok := remap[at.TaskID]; ok {
			at.TaskID = id
			report.Repaired++
		} else if at.TaskID == "" || IsNumericID(at.TaskID) {
			// Without a known ID fall back to the task text.
			for _, t := range state.Tasks {
				if t.Text == at.TaskText {
					at.TaskID = t.ID
					report.Repaired++
					break
				}
			}
		}
		if at.Duration <= 0 {
			at.Duration = model.ActiveTaskDuration
			report.Repaired++
		}
	}

	if state.CompletedCount < 0 {
		state.CompletedCount = 0
		report.Repaired++
	}

	if report.Changed() {
		cfg.Logger.Infof("state migrated (%d IDs, %d repaired)", report.IDsMigrated, report.Repaired)
	}
	return report
}

func repairTask(t *model.Task, deleted bool, now time.Time) bool {
	repaired := false

	if !t.Type.Valid() {
		t.Type = model.TaskTypeOneOff
		repaired = true
	}
	if !t.Cooldown.Valid() {
		t.Cooldown = model.CooldownDaily
		repaired = true
	}
	if t.Executions == nil {
		t.Executions = []model.Execution{}
	}
	for i := range t.Executions {
		e := &t.Executions[i]
		if e.Abandoned && e.Reason == "" {
			e.Reason = MissingReason
			repaired = true
		}
		if !e.Abandoned && e.Reason != "" {
			e.Reason = ""
			repaired = true
		}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
		repaired = true
	}

	switch {
	case deleted && t.DeletedAt == nil:
		d := now
		t.DeletedAt = &d
		repaired = true
	case !deleted && t.DeletedAt != nil:
		t.DeletedAt = nil
		repaired = true
	}

	return repaired
}
