package io

import (
	"time"

	"github.com/slok/dothis/internal/model"
)

// Task is the JSON representation of a task. Timestamps are epoch
// milliseconds and durations milliseconds.
type Task struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	Type       string      `json:"type"`
	Cooldown   string      `json:"cooldown"`
	Executions []Execution `json:"executions"`
	Completed  bool        `json:"completed"`
	CreatedAt  int64       `json:"createdAt"`
	Deadline   *int64      `json:"deadline"`
	DeletedAt  *int64      `json:"deletedAt,omitempty"`
}

// Execution is the JSON representation of a task execution.
type Execution struct {
	Timestamp int64  `json:"timestamp"`
	Duration  int64  `json:"duration"`
	Abandoned bool   `json:"abandoned,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// ActiveTask is the JSON representation of the active task.
type ActiveTask struct {
	Task      ActiveTaskRef `json:"task"`
	StartTime int64         `json:"startTime"`
	Duration  int64         `json:"duration"`
}

// ActiveTaskRef identifies the task of the active task.
type ActiveTaskRef struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// TaskFromModel converts a task into its JSON representation.
func TaskFromModel(t model.Task) Task {
	res := Task{
		ID:         t.ID,
		Text:       t.Text,
		Type:       string(t.Type),
		Cooldown:   string(t.Cooldown),
		Executions: make([]Execution, 0, len(t.Executions)),
		Completed:  t.Completed,
		CreatedAt:  t.CreatedAt.UnixMilli(),
		Deadline:   millisPtr(t.Deadline),
		DeletedAt:  millisPtr(t.DeletedAt),
	}
	for _, e := range t.Executions {
		res.Executions = append(res.Executions, Execution{
			Timestamp: e.Timestamp.UnixMilli(),
			Duration:  e.Duration.Milliseconds(),
			Abandoned: e.Abandoned,
			Reason:    e.Reason,
		})
	}
	return res
}

// TasksFromModel converts tasks into their JSON representation.
func TasksFromModel(ts []model.Task) []Task {
	res := make([]Task, 0, len(ts))
	for _, t := range ts {
		res = append(res, TaskFromModel(t))
	}
	return res
}

// ToModel converts the JSON representation into a task.
func (t Task) ToModel() model.Task {
	res := model.Task{
		ID:         t.ID,
		Text:       t.Text,
		Type:       model.TaskType(t.Type),
		Cooldown:   model.Cooldown(t.Cooldown),
		Executions: make([]model.Execution, 0, len(t.Executions)),
		Completed:  t.Completed,
		CreatedAt:  MillisToTime(t.CreatedAt),
		Deadline:   timePtr(t.Deadline),
		DeletedAt:  timePtr(t.DeletedAt),
	}
	for _, e := range t.Executions {
		res.Executions = append(res.Executions, e.ToModel())
	}
	return res
}

// ToModel converts the JSON representation into an execution.
func (e Execution) ToModel() model.Execution {
	return model.Execution{
		Timestamp: MillisToTime(e.Timestamp),
		Duration:  time.Duration(e.Duration) * time.Millisecond,
		Abandoned: e.Abandoned,
		Reason:    e.Reason,
	}
}

// ActiveTaskFromModel converts the active task into its JSON representation.
func ActiveTaskFromModel(at *model.ActiveTask) *ActiveTask {
	if at == nil {
		return nil
	}
	return &ActiveTask{
		Task:      ActiveTaskRef{ID: at.TaskID, Text: at.TaskText},
		StartTime: at.StartTime.UnixMilli(),
		Duration:  at.Duration.Milliseconds(),
	}
}

// ToModel converts the JSON representation into an active task.
func (a ActiveTask) ToModel() model.ActiveTask {
	return model.ActiveTask{
		TaskID:    a.Task.ID,
		TaskText:  a.Task.Text,
		StartTime: MillisToTime(a.StartTime),
		Duration:  time.Duration(a.Duration) * time.Millisecond,
	}
}

// MillisToTime converts epoch milliseconds into UTC time.
func MillisToTime(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func timePtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := MillisToTime(*ms)
	return &t
}
