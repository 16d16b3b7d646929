package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/model"
)

type CompleteCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewCompleteCommand returns the complete command.
func NewCompleteCommand(rootCmd *RootCommand, app *kingpin.Application) *CompleteCommand {
	c := &CompleteCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("done", "Complete the active task.")
	return c
}

func (c CompleteCommand) Name() string { return c.Cmd.FullCommand() }

func (c CompleteCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	res, err := svc.CompleteActiveTask(ctx)
	if err != nil {
		return userError(svc, err)
	}
	if !res.Cleared {
		return userError(svc, model.ErrNoActiveTask)
	}

	return c.rootCmd.printMessage(svc, i18n.ActiveTaskCompleted)
}
