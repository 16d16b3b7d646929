package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTaskTextLength is the maximum number of characters of a task text.
const MaxTaskTextLength = 200

// TaskType represents the kind of task.
type TaskType string

const (
	// TaskTypeOneOff is a task that is finished forever once executed.
	TaskTypeOneOff TaskType = "oneoff"
	// TaskTypeRepeatable is a task that cycles through cooldowns.
	TaskTypeRepeatable TaskType = "repeatable"
)

// Valid returns true if the type is a known task type.
func (t TaskType) Valid() bool {
	return t == TaskTypeOneOff || t == TaskTypeRepeatable
}

// Cooldown is the waiting policy of a repeatable task after a successful execution.
type Cooldown string

const (
	CooldownNone    Cooldown = "0"
	Cooldown1h      Cooldown = "1"
	Cooldown3h      Cooldown = "3"
	Cooldown6h      Cooldown = "6"
	Cooldown12h     Cooldown = "12"
	CooldownDaily   Cooldown = "daily"
	CooldownWeekly  Cooldown = "weekly"
	CooldownMonthly Cooldown = "monthly"
)

// Cooldowns are all the supported cooldown values in display order.
var Cooldowns = []Cooldown{
	CooldownNone,
	Cooldown1h,
	Cooldown3h,
	Cooldown6h,
	Cooldown12h,
	CooldownDaily,
	CooldownWeekly,
	CooldownMonthly,
}

// Valid returns true if the cooldown is one of the supported values.
func (c Cooldown) Valid() bool {
	for _, v := range Cooldowns {
		if c == v {
			return true
		}
	}
	return false
}

// Hours returns the fixed duration hours of a numeric cooldown. Calendar
// aligned cooldowns (daily, weekly, monthly) return false.
func (c Cooldown) Hours() (int, bool) {
	h, err := strconv.Atoi(string(c))
	if err != nil || h < 0 {
		return 0, false
	}
	return h, true
}

// Execution is an attempt of a task. Executions are immutable once appended.
type Execution struct {
	// Timestamp is when the attempt ended.
	Timestamp time.Time
	Duration  time.Duration
	Abandoned bool
	// Reason is only set on abandoned executions.
	Reason string
}

// Successful returns true if the execution was not abandoned.
func (e Execution) Successful() bool { return !e.Abandoned }

// Validate validates the execution.
func (e Execution) Validate() error {
	if e.Abandoned && strings.TrimSpace(e.Reason) == "" {
		return fmt.Errorf("abandoned execution requires a reason: %w", ErrNotValid)
	}
	if !e.Abandoned && e.Reason != "" {
		return fmt.Errorf("successful execution can't have a reason: %w", ErrNotValid)
	}
	return nil
}

// Task is a unit of work that can be randomly selected.
type Task struct {
	ID         string
	Text       string
	Type       TaskType
	Cooldown   Cooldown
	Executions []Execution
	// Completed is set once a one-off task has been executed.
	Completed bool
	CreatedAt time.Time
	Deadline  *time.Time
	// DeletedAt is only set while the task is in the trash.
	DeletedAt *time.Time
}

// NormalizeTaskText returns the canonical form of a task text.
func NormalizeTaskText(text string) string { return strings.TrimSpace(text) }

// ValidateTaskText validates a task text, it expects a normalized text.
func ValidateTaskText(text string) error {
	if text == "" {
		return fmt.Errorf("task text is required: %w", ErrNotValid)
	}
	if utf8.RuneCountInString(text) > MaxTaskTextLength {
		return fmt.Errorf("task text is longer than %d characters: %w", MaxTaskTextLength, ErrNotValid)
	}
	return nil
}

// Validate validates the task.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if err := ValidateTaskText(t.Text); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return fmt.Errorf("invalid task type %q: %w", t.Type, ErrNotValid)
	}
	if !t.Cooldown.Valid() {
		return fmt.Errorf("invalid cooldown %q: %w", t.Cooldown, ErrNotValid)
	}
	for i, e := range t.Executions {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("execution %d: %w", i, err)
		}
	}
	return nil
}

// LastSuccess returns the timestamp of the most recent successful execution.
func (t *Task) LastSuccess() (time.Time, bool) {
	var last time.Time
	found := false
	for _, e := range t.Executions {
		if !e.Successful() {
			continue
		}
		if !found || e.Timestamp.After(last) {
			last = e.Timestamp
			found = true
		}
	}
	return last, found
}

// Stats returns the execution statistics of the task.
func (t *Task) Stats() ExecutionStats {
	stats := ExecutionStats{}
	for _, e := range t.Executions {
		if e.Successful() {
			stats.Successful++
		} else {
			stats.Abandoned++
		}
	}
	if last, ok := t.LastSuccess(); ok {
		stats.LastSuccess = &last
	}
	return stats
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.Executions != nil {
		c.Executions = make([]Execution, len(t.Executions))
		copy(c.Executions, t.Executions)
	}
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	if t.DeletedAt != nil {
		d := *t.DeletedAt
		c.DeletedAt = &d
	}
	return c
}

// ExecutionStats are the aggregated execution statistics of a task.
type ExecutionStats struct {
	Successful  int
	Abandoned   int
	LastSuccess *time.Time
}

// TaskSeed are the user provided attributes to create a task.
type TaskSeed struct {
	Text     string
	Type     TaskType
	Cooldown Cooldown
	Deadline *time.Time
}
