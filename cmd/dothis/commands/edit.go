package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/taskstore"
)

type EditCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	task       string
	text       string
	repeat     string
	oneOff     bool
	deadline   string
	noDeadline bool
}

// NewEditCommand returns the edit command.
func NewEditCommand(rootCmd *RootCommand, app *kingpin.Application) *EditCommand {
	c := &EditCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("edit", "Edit a task, the active task can't be edited.")
	c.Cmd.Arg("task", "Task ID, ID prefix or text.").Required().StringVar(&c.task)
	c.Cmd.Flag("text", "New task text.").StringVar(&c.text)
	c.Cmd.Flag("repeat", "Make the task repeatable with a cooldown.").EnumVar(&c.repeat, cooldownValues...)
	c.Cmd.Flag("one-off", "Make the task a one-time task.").BoolVar(&c.oneOff)
	c.Cmd.Flag("deadline", "New deadline (YYYY-MM-DD).").StringVar(&c.deadline)
	c.Cmd.Flag("no-deadline", "Remove the deadline.").BoolVar(&c.noDeadline)

	return c
}

func (c EditCommand) Name() string { return c.Cmd.FullCommand() }

func (c EditCommand) Run(ctx context.Context) error {
	if c.repeat != "" && c.oneOff {
		return fmt.Errorf("--repeat and --one-off can't be used together")
	}

	deadline, err := parseDeadline(c.deadline)
	if err != nil {
		return err
	}

	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	task, err := svc.FindTask(c.task)
	if err != nil {
		return userError(svc, err)
	}

	e := taskstore.TaskEdit{Deadline: deadline, ClearDeadline: c.noDeadline}
	if c.text != "" {
		e.Text = &c.text
	}
	switch {
	case c.repeat != "":
		typ, cooldown := model.TaskTypeRepeatable, model.Cooldown(c.repeat)
		e.Type, e.Cooldown = &typ, &cooldown
	case c.oneOff:
		typ := model.TaskTypeOneOff
		e.Type = &typ
	}

	if _, err := svc.EditTask(ctx, task.ID, e); err != nil {
		return userError(svc, err)
	}

	return c.rootCmd.printMessage(svc, i18n.TaskUpdated)
}
