package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
)

type LogCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	task string
}

// NewLogCommand returns the quick log command.
func NewLogCommand(rootCmd *RootCommand, app *kingpin.Application) *LogCommand {
	c := &LogCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("log", "Log an available task as done without the active task timer.")
	c.Cmd.Arg("task", "Task ID, ID prefix or text.").Required().StringVar(&c.task)

	return c
}

func (c LogCommand) Name() string { return c.Cmd.FullCommand() }

func (c LogCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	task, err := svc.FindTask(c.task)
	if err != nil {
		return userError(svc, err)
	}

	if _, err := svc.QuickLogTask(ctx, task.ID); err != nil {
		return userError(svc, err)
	}

	return c.rootCmd.printMessage(svc, i18n.TaskQuickLogged)
}
