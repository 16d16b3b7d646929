package lib

import (
	"context"
	"fmt"

	"github.com/slok/dothis/internal/model"
)

// RandomizeAndAccept picks a random available task and makes it the active task.
func (c *Client) RandomizeAndAccept(ctx context.Context) (*ActiveTask, error) {
	if _, err := c.svc.Randomize(ctx); err != nil {
		return nil, mapError(err)
	}

	return c.accept(ctx, "")
}

// AcceptTask makes an available task the active task.
func (c *Client) AcceptTask(ctx context.Context, ref string) (*ActiveTask, error) {
	t, err := c.svc.FindTask(ref)
	if err != nil {
		return nil, mapError(err)
	}

	return c.accept(ctx, t.ID)
}

func (c *Client) accept(ctx context.Context, id string) (*ActiveTask, error) {
	at, err := c.svc.AcceptTask(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	res := fromInternalActiveTask(*at, c.svc.Now())
	return &res, nil
}

// ActiveTask returns the active task, nil if there is none.
func (c *Client) ActiveTask() *ActiveTask {
	at := c.svc.ActiveTask()
	if at == nil {
		return nil
	}

	res := fromInternalActiveTask(*at, c.svc.Now())
	return &res
}

// CompleteActiveTask finishes the active task successfully. Expired tasks
// can't be completed.
func (c *Client) CompleteActiveTask(ctx context.Context) (*Task, error) {
	res, err := c.svc.CompleteActiveTask(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return c.finished(res.Cleared, res.Task)
}

// AbandonActiveTask gives up the active task, the reason is required.
func (c *Client) AbandonActiveTask(ctx context.Context, reason string) (*Task, error) {
	res, err := c.svc.AbandonActiveTask(ctx, reason)
	if err != nil {
		return nil, mapError(err)
	}

	return c.finished(res.Cleared, res.Task)
}

func (c *Client) finished(cleared bool, t *model.Task) (*Task, error) {
	if !cleared {
		return nil, mapError(fmt.Errorf("could not finish task: %w", model.ErrNoActiveTask))
	}
	if t == nil {
		return nil, nil
	}

	res := fromInternalTask(*t)
	return &res, nil
}
