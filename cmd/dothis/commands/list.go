package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/model"
)

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statusFilter string
	format       string
}

// NewListCommand returns the list command.
func NewListCommand(rootCmd *RootCommand, app *kingpin.Application) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("list", "List all tasks.")
	c.Cmd.Flag("status", "Filter by status (available, cooldown, completed, active).").EnumVar(&c.statusFilter,
		string(model.StatusAvailable), string(model.StatusCooldown), string(model.StatusCompleted), string(model.StatusActive))
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	snap := svc.Snapshot()
	if c.statusFilter != "" {
		snap.Tasks = filterTasks(snap.Tasks, model.StatusKind(c.statusFilter))
	}

	p := c.rootCmd.newPrinter(c.format, svc)
	if err := p.PrintTaskList(snap); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}

func filterTasks(tasks []randomizer.TaskView, status model.StatusKind) []randomizer.TaskView {
	res := make([]randomizer.TaskView, 0, len(tasks))
	for _, t := range tasks {
		if t.Status.Kind == status {
			res = append(res, t)
		}
	}
	return res
}
