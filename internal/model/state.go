package model

import "time"

// StatusKind is the availability kind of a task.
type StatusKind string

const (
	StatusAvailable StatusKind = "available"
	StatusCooldown  StatusKind = "cooldown"
	StatusCompleted StatusKind = "completed"
	// StatusActive is the task of the active task, it's out of the pool
	// until finished.
	StatusActive StatusKind = "active"
)

// TaskStatus is the availability of a task at a point in time.
type TaskStatus struct {
	Kind StatusKind
	// AvailableAt is only set on cooldown status.
	AvailableAt time.Time
}

// AppState is the whole persisted state of the application.
type AppState struct {
	Tasks          []Task
	DeletedTasks   []Task
	ActiveTask     *ActiveTask
	CompletedCount int
}

// Clone returns a deep copy of the state.
func (s AppState) Clone() AppState {
	c := AppState{CompletedCount: s.CompletedCount}
	c.Tasks = CloneTasks(s.Tasks)
	c.DeletedTasks = CloneTasks(s.DeletedTasks)
	if s.ActiveTask != nil {
		a := *s.ActiveTask
		c.ActiveTask = &a
	}
	return c
}

// CloneTasks returns a deep copy of the tasks.
func CloneTasks(ts []Task) []Task {
	if ts == nil {
		return nil
	}
	res := make([]Task, 0, len(ts))
	for _, t := range ts {
		res = append(res, t.Clone())
	}
	return res
}
