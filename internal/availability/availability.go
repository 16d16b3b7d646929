package availability

import (
	"fmt"
	"time"

	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
)

// EngineConfig is the configuration for the availability engine.
type EngineConfig struct {
	// Location is the time zone used for calendar aligned cooldowns.
	Location *time.Location
	Logger   log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Location == nil {
		c.Location = time.Local
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "availability.Engine"})

	return nil
}

// Engine knows if tasks can be selected at a point in time.
type Engine struct {
	loc    *time.Location
	logger log.Logger
}

// NewEngine returns a new availability engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		loc:    cfg.Location,
		logger: cfg.Logger,
	}, nil
}

// Status returns the availability status of a task at now.
func (e *Engine) Status(task model.Task, now time.Time) model.TaskStatus {
	if task.Type == model.TaskTypeOneOff && task.Completed {
		return model.TaskStatus{Kind: model.StatusCompleted}
	}

	if task.Type == model.TaskTypeRepeatable {
		last, ok := task.LastSuccess()
		if ok && task.Cooldown != model.CooldownNone {
			next := NextAvailable(last, task.Cooldown, e.loc)
			if now.Before(next) {
				return model.TaskStatus{Kind: model.StatusCooldown, AvailableAt: next}
			}
		}
	}

	return model.TaskStatus{Kind: model.StatusAvailable}
}

// IsAvailable returns true if the task can be selected at now.
func (e *Engine) IsAvailable(task model.Task, now time.Time) bool {
	return e.Status(task, now).Kind == model.StatusAvailable
}

// Available returns the tasks that can be selected at now, in the same order.
func (e *Engine) Available(tasks []model.Task, now time.Time) []model.Task {
	available := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if e.IsAvailable(t, now) {
			available = append(available, t)
		}
	}

	e.logger.Debugf("%d of %d tasks available", len(available), len(tasks))
	return available
}

// NextAvailable returns when a task that was successfully executed at last is
// available again.
//
// Named periods are aligned to local midnights of the calendar (next day,
// next Monday, 1st of next month) while numeric cooldowns are a fixed amount
// of hours since last.
func NextAvailable(last time.Time, cooldown model.Cooldown, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	l := last.In(loc)
	y, m, d := l.Date()

	switch cooldown {
	case model.CooldownDaily:
		return time.Date(y, m, d+1, 0, 0, 0, 0, loc)

	case model.CooldownWeekly:
		daysUntilMonday := (int(time.Monday) - int(l.Weekday()) + 7) % 7
		if daysUntilMonday == 0 {
			daysUntilMonday = 7
		}
		return time.Date(y, m, d+daysUntilMonday, 0, 0, 0, 0, loc)

	case model.CooldownMonthly:
		return time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
	}

	hours, ok := cooldown.Hours()
	if !ok {
		// Unknown policies never block a task.
		return last
	}
	return last.Add(time.Duration(hours) * time.Hour)
}
