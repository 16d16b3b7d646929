package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
)

type RemoveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	task string
}

// NewRemoveCommand returns the remove command.
func NewRemoveCommand(rootCmd *RootCommand, app *kingpin.Application) *RemoveCommand {
	c := &RemoveCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("rm", "Move a task to the trash.")
	c.Cmd.Arg("task", "Task ID, ID prefix or text.").Required().StringVar(&c.task)

	return c
}

func (c RemoveCommand) Name() string { return c.Cmd.FullCommand() }

func (c RemoveCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	task, err := svc.FindTask(c.task)
	if err != nil {
		return userError(svc, err)
	}

	if _, err := svc.DeleteTask(ctx, task.ID); err != nil {
		return userError(svc, err)
	}

	return c.rootCmd.printMessage(svc, i18n.TaskMovedToTrash)
}
