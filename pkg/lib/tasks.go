package lib

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/taskstore"
)

// AddTaskOpts configures a new task. Text is required.
type AddTaskOpts struct {
	Text string
	// Type defaults to [TaskTypeOneOff].
	Type TaskType
	// Cooldown defaults to [CooldownDaily], only used by repeatable tasks.
	Cooldown Cooldown
	Deadline *time.Time
}

// AddTask creates a new task. The text must be unique.
func (c *Client) AddTask(ctx context.Context, opts AddTaskOpts) (*Task, error) {
	t, err := c.svc.AddTask(ctx, taskstore.NewTask{
		Text:     opts.Text,
		Type:     model.TaskType(opts.Type),
		Cooldown: model.Cooldown(opts.Cooldown),
		Deadline: opts.Deadline,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return c.GetTask(t.ID)
}

// EditTaskOpts are the task changes, nil fields are not changed.
type EditTaskOpts struct {
	Text          *string
	Type          *TaskType
	Cooldown      *Cooldown
	Deadline      *time.Time
	ClearDeadline bool
}

// EditTask updates a task. The active task can't be edited.
func (c *Client) EditTask(ctx context.Context, ref string, opts EditTaskOpts) (*Task, error) {
	t, err := c.svc.FindTask(ref)
	if err != nil {
		return nil, mapError(err)
	}

	e := taskstore.TaskEdit{
		Text:          opts.Text,
		Deadline:      opts.Deadline,
		ClearDeadline: opts.ClearDeadline,
	}
	if opts.Type != nil {
		tt := model.TaskType(*opts.Type)
		e.Type = &tt
	}
	if opts.Cooldown != nil {
		cd := model.Cooldown(*opts.Cooldown)
		e.Cooldown = &cd
	}

	if _, err := c.svc.EditTask(ctx, t.ID, e); err != nil {
		return nil, mapError(err)
	}

	return c.GetTask(t.ID)
}

// RemoveTask moves a task to the trash. The active task can't be removed.
func (c *Client) RemoveTask(ctx context.Context, ref string) error {
	t, err := c.svc.FindTask(ref)
	if err != nil {
		return mapError(err)
	}

	_, err = c.svc.DeleteTask(ctx, t.ID)
	return mapError(err)
}

// RestoreTask moves a task from the trash back to the tasks.
func (c *Client) RestoreTask(ctx context.Context, ref string) (*Task, error) {
	t, err := c.svc.FindDeletedTask(ref)
	if err != nil {
		return nil, mapError(err)
	}

	if _, err := c.svc.RestoreTask(ctx, t.ID); err != nil {
		return nil, mapError(err)
	}

	return c.GetTask(t.ID)
}

// EmptyTrash permanently deletes the tasks in the trash, it returns how many.
func (c *Client) EmptyTrash(ctx context.Context) (int, error) {
	n, err := c.svc.ClearTrash(ctx)
	return n, mapError(err)
}

// GetTask returns a task by ID, unique ID prefix or exact text.
func (c *Client) GetTask(ref string) (*Task, error) {
	t, err := c.svc.FindTask(ref)
	if err != nil {
		return nil, mapError(err)
	}

	v, err := c.svc.Task(t.ID)
	if err != nil {
		return nil, mapError(fmt.Errorf("could not get task: %w", err))
	}

	res := fromTaskView(*v)
	return &res, nil
}

// ListTasksOpts filters the listed tasks. Pass nil to list all of them.
type ListTasksOpts struct {
	Status *TaskStatus
}

// ListTasks returns the tasks in creation order.
func (c *Client) ListTasks(opts *ListTasksOpts) []Task {
	snap := c.svc.Snapshot()

	res := make([]Task, 0, len(snap.Tasks))
	for _, v := range snap.Tasks {
		t := fromTaskView(v)
		if opts != nil && opts.Status != nil && t.Status != *opts.Status {
			continue
		}
		res = append(res, t)
	}
	return res
}

// ListDeletedTasks returns the tasks in the trash.
func (c *Client) ListDeletedTasks() []Task {
	deleted := c.svc.DeletedTasks()

	res := make([]Task, 0, len(deleted))
	for _, t := range deleted {
		res = append(res, fromInternalTask(t))
	}
	return res
}
