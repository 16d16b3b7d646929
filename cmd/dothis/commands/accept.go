package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
)

type AcceptCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	task string
}

// NewAcceptCommand returns the accept command.
func NewAcceptCommand(rootCmd *RootCommand, app *kingpin.Application) *AcceptCommand {
	c := &AcceptCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("accept", "Make an available task the active task.")
	c.Cmd.Arg("task", "Task ID, ID prefix or text.").Required().StringVar(&c.task)

	return c
}

func (c AcceptCommand) Name() string { return c.Cmd.FullCommand() }

func (c AcceptCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	task, err := svc.FindTask(c.task)
	if err != nil {
		return userError(svc, err)
	}

	at, err := svc.AcceptTask(ctx, task.ID)
	if err != nil {
		return userError(svc, err)
	}

	return c.rootCmd.printMessage(svc, i18n.ActiveTaskAccepted, at.TaskText)
}
