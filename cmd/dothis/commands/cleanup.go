package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
)

type CleanupCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewCleanupCommand returns the cleanup command.
func NewCleanupCommand(rootCmd *RootCommand, app *kingpin.Application) *CleanupCommand {
	c := &CleanupCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("cleanup", "Move the one-time tasks completed more than a day ago to the trash.")
	return c
}

func (c CleanupCommand) Name() string { return c.Cmd.FullCommand() }

func (c CleanupCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	moved, err := svc.CleanupCompletedOneOffs(ctx)
	if err != nil {
		return userError(svc, err)
	}

	return c.rootCmd.printMessage(svc, i18n.CleanedUpTasks, len(moved))
}
