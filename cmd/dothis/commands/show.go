package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type ShowCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	task   string
	format string
}

// NewShowCommand returns the show command.
func NewShowCommand(rootCmd *RootCommand, app *kingpin.Application) *ShowCommand {
	c := &ShowCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("show", "Show a task with its executions.")
	c.Cmd.Arg("task", "Task ID, ID prefix or text.").Required().StringVar(&c.task)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ShowCommand) Name() string { return c.Cmd.FullCommand() }

func (c ShowCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	task, err := svc.FindTask(c.task)
	if err != nil {
		return userError(svc, err)
	}

	view, err := svc.Task(task.ID)
	if err != nil {
		return userError(svc, err)
	}

	p := c.rootCmd.newPrinter(c.format, svc)
	if err := p.PrintTask(*view, svc.Now()); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
