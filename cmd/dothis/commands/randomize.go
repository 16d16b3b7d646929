package commands

import (
	"context"
	"errors"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/model"
)

type RandomizeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	accept bool
}

// NewRandomizeCommand returns the randomize command.
func NewRandomizeCommand(rootCmd *RootCommand, app *kingpin.Application) *RandomizeCommand {
	c := &RandomizeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("random", "Select a random available task.")
	c.Cmd.Flag("accept", "Accept the selected task and start the timer.").Short('a').BoolVar(&c.accept)

	return c
}

func (c RandomizeCommand) Name() string { return c.Cmd.FullCommand() }

func (c RandomizeCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	task, err := svc.Randomize(ctx)
	switch {
	case errors.Is(err, model.ErrNoTasksAvailable) && len(svc.Tasks()) == 0:
		return c.rootCmd.printMessage(svc, i18n.RandomizerAddTasksFirst)
	case errors.Is(err, model.ErrNoTasksAvailable):
		return c.rootCmd.printMessage(svc, i18n.RandomizerAllOnCooldown)
	case err != nil:
		return userError(svc, err)
	}

	if err := c.rootCmd.printMessage(svc, i18n.RandomizerSelected, task.Text); err != nil {
		return err
	}

	if !c.accept {
		return nil
	}

	at, err := svc.AcceptTask(ctx, "")
	if err != nil {
		return userError(svc, err)
	}

	return c.rootCmd.printMessage(svc, i18n.ActiveTaskAccepted, at.TaskText)
}
