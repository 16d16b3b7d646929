package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
)

type ResetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	yes bool
}

// NewResetCommand returns the reset command.
func NewResetCommand(rootCmd *RootCommand, app *kingpin.Application) *ResetCommand {
	c := &ResetCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("reset", "Delete all the tasks, the trash and the statistics.")
	c.Cmd.Flag("yes", "Confirm the reset.").Short('y').BoolVar(&c.yes)

	return c
}

func (c ResetCommand) Name() string { return c.Cmd.FullCommand() }

func (c ResetCommand) Run(ctx context.Context) error {
	if !c.yes {
		return fmt.Errorf("reset deletes all the data, use --yes to confirm")
	}

	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	if err := svc.ResetAll(ctx); err != nil {
		return userError(svc, err)
	}

	return c.rootCmd.printMessage(svc, i18n.EverythingReset)
}
