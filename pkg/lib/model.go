package lib

import (
	"errors"
	"time"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/transfer"
)

// TaskType is the kind of task.
type TaskType string

const (
	// TaskTypeOneOff is finished forever once completed.
	TaskTypeOneOff TaskType = TaskType(model.TaskTypeOneOff)
	// TaskTypeRepeatable becomes available again after its cooldown.
	TaskTypeRepeatable TaskType = TaskType(model.TaskTypeRepeatable)
)

// Cooldown is the waiting time of a repeatable task after being completed.
//
// Numeric cooldowns are hours since the completion, the calendar ones wait
// until the next local midnight, Monday or first day of the month.
type Cooldown string

const (
	CooldownNone    Cooldown = Cooldown(model.CooldownNone)
	Cooldown1h      Cooldown = Cooldown(model.Cooldown1h)
	Cooldown3h      Cooldown = Cooldown(model.Cooldown3h)
	Cooldown6h      Cooldown = Cooldown(model.Cooldown6h)
	Cooldown12h     Cooldown = Cooldown(model.Cooldown12h)
	CooldownDaily   Cooldown = Cooldown(model.CooldownDaily)
	CooldownWeekly  Cooldown = Cooldown(model.CooldownWeekly)
	CooldownMonthly Cooldown = Cooldown(model.CooldownMonthly)
)

// TaskStatus is the availability of a task.
type TaskStatus string

const (
	// TaskStatusAvailable tasks can be selected.
	TaskStatusAvailable TaskStatus = TaskStatus(model.StatusAvailable)
	// TaskStatusCooldown tasks are waiting until AvailableAt.
	TaskStatusCooldown TaskStatus = TaskStatus(model.StatusCooldown)
	// TaskStatusCompleted are the one-off tasks already done.
	TaskStatusCompleted TaskStatus = TaskStatus(model.StatusCompleted)
	// TaskStatusActive is the task being worked on, it can't be selected.
	TaskStatusActive TaskStatus = TaskStatus(model.StatusActive)
)

// Execution is an attempt of a task.
type Execution struct {
	// Timestamp is when the attempt ended.
	Timestamp time.Time
	Duration  time.Duration
	Abandoned bool
	// Reason is only set on abandoned executions.
	Reason string
}

// Task is a read-only snapshot of a task at the time of the API call.
type Task struct {
	ID         string
	Text       string
	Type       TaskType
	Cooldown   Cooldown
	Executions []Execution
	Completed  bool
	CreatedAt  time.Time
	Deadline   *time.Time
	// DeletedAt is only set on tasks in the trash.
	DeletedAt *time.Time

	// Status is only set on tasks that are not in the trash.
	Status TaskStatus
	// AvailableAt is only set with the cooldown status.
	AvailableAt *time.Time
	// Active is set on the task of the active task.
	Active bool

	Successful  int
	Abandoned   int
	LastSuccess *time.Time
}

// ActiveTask is the task being worked on.
type ActiveTask struct {
	TaskID    string
	TaskText  string
	StartTime time.Time
	Duration  time.Duration
	Remaining time.Duration
	// Expired tasks can only be abandoned.
	Expired bool
}

// ImportMode is the way an export document is applied.
type ImportMode string

const (
	// ImportModeReplace replaces all the data.
	ImportModeReplace ImportMode = ImportMode(transfer.ModeReplace)
	// ImportModeMerge adds the tasks that don't exist yet.
	ImportModeMerge ImportMode = ImportMode(transfer.ModeMerge)
	// ImportModeSelective merges only the selected tasks.
	ImportModeSelective ImportMode = ImportMode(transfer.ModeSelective)
)

// ImportResult is the outcome of an import.
type ImportResult struct {
	Imported int
	Skipped  int
	// ActiveCleared is set when the active task was lost by the import.
	ActiveCleared bool
}

// Sentinel errors returned by the SDK, use errors.Is to check them.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotValid         = errors.New("not valid")
	ErrNotAvailable     = errors.New("not available")
	ErrTaskActive       = errors.New("task is active")
	ErrNoActiveTask     = errors.New("no active task")
	ErrNoTasksAvailable = errors.New("no tasks available")
	ErrReasonRequired   = errors.New("reason required")
)

var errorMapping = []struct {
	internal error
	public   error
}{
	{model.ErrNotFound, ErrNotFound},
	{model.ErrAlreadyExists, ErrAlreadyExists},
	{model.ErrNotValid, ErrNotValid},
	{model.ErrNotAvailable, ErrNotAvailable},
	{model.ErrTaskActive, ErrTaskActive},
	{model.ErrNoActiveTask, ErrNoActiveTask},
	{model.ErrNoTasksAvailable, ErrNoTasksAvailable},
	{model.ErrReasonRequired, ErrReasonRequired},
}

// mapError makes the internal errors matchable with the public sentinels
// keeping the original message.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	for _, m := range errorMapping {
		if errors.Is(err, m.internal) {
			return &mappedError{original: err, sentinel: m.public}
		}
	}
	return err
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool { return target == e.sentinel }

func (e *mappedError) Unwrap() error { return e.original }

func fromInternalTask(t model.Task) Task {
	res := Task{
		ID:        t.ID,
		Text:      t.Text,
		Type:      TaskType(t.Type),
		Cooldown:  Cooldown(t.Cooldown),
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		Deadline:  t.Deadline,
		DeletedAt: t.DeletedAt,
	}

	for _, e := range t.Executions {
		res.Executions = append(res.Executions, Execution(e))
	}

	stats := t.Stats()
	res.Successful = stats.Successful
	res.Abandoned = stats.Abandoned
	res.LastSuccess = stats.LastSuccess

	return res
}

func fromTaskView(v randomizer.TaskView) Task {
	res := fromInternalTask(v.Task)
	res.Status = TaskStatus(v.Status.Kind)
	res.Active = v.Active
	if v.Status.Kind == model.StatusCooldown {
		at := v.Status.AvailableAt
		res.AvailableAt = &at
	}
	return res
}

func fromInternalActiveTask(at model.ActiveTask, now time.Time) ActiveTask {
	return ActiveTask{
		TaskID:    at.TaskID,
		TaskText:  at.TaskText,
		StartTime: at.StartTime,
		Duration:  at.Duration,
		Remaining: max(at.Remaining(now), 0),
		Expired:   at.Expired(now),
	}
}
