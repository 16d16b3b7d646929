package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/model"
)

type AbandonCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	reason string
}

// NewAbandonCommand returns the abandon command.
func NewAbandonCommand(rootCmd *RootCommand, app *kingpin.Application) *AbandonCommand {
	c := &AbandonCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("abandon", "Abandon the active task, expired tasks must be abandoned.")
	c.Cmd.Arg("reason", "Why the task was not finished.").Required().StringVar(&c.reason)

	return c
}

func (c AbandonCommand) Name() string { return c.Cmd.FullCommand() }

func (c AbandonCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	if svc.ActiveTask() == nil {
		return userError(svc, model.ErrNoActiveTask)
	}

	if _, err := svc.AbandonActiveTask(ctx, c.reason); err != nil {
		return userError(svc, err)
	}

	return c.rootCmd.printMessage(svc, i18n.ActiveTaskAbandoned)
}
