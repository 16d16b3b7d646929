package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
)

type TrashListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewTrashListCommand returns the trash list command.
func NewTrashListCommand(rootCmd *RootCommand, trashCmd *kingpin.CmdClause) *TrashListCommand {
	c := &TrashListCommand{rootCmd: rootCmd}

	c.Cmd = trashCmd.Command("list", "List the tasks in the trash.").Default()
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c TrashListCommand) Name() string { return c.Cmd.FullCommand() }

func (c TrashListCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	p := c.rootCmd.newPrinter(c.format, svc)
	if err := p.PrintTrash(svc.DeletedTasks(), svc.Now()); err != nil {
		return fmt.Errorf("could not print trash: %w", err)
	}

	return nil
}

type TrashRestoreCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	task string
}

// NewTrashRestoreCommand returns the trash restore command.
func NewTrashRestoreCommand(rootCmd *RootCommand, trashCmd *kingpin.CmdClause) *TrashRestoreCommand {
	c := &TrashRestoreCommand{rootCmd: rootCmd}

	c.Cmd = trashCmd.Command("restore", "Restore a task from the trash.")
	c.Cmd.Arg("task", "Task ID, ID prefix or text.").Required().StringVar(&c.task)

	return c
}

func (c TrashRestoreCommand) Name() string { return c.Cmd.FullCommand() }

func (c TrashRestoreCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	task, err := svc.FindDeletedTask(c.task)
	if err != nil {
		return userError(svc, err)
	}

	if _, err := svc.RestoreTask(ctx, task.ID); err != nil {
		return userError(svc, err)
	}

	return c.rootCmd.printMessage(svc, i18n.TaskRestored)
}

type TrashPurgeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	task string
}

// NewTrashPurgeCommand returns the trash purge command.
func NewTrashPurgeCommand(rootCmd *RootCommand, trashCmd *kingpin.CmdClause) *TrashPurgeCommand {
	c := &TrashPurgeCommand{rootCmd: rootCmd}

	c.Cmd = trashCmd.Command("purge", "Delete a task from the trash permanently.")
	c.Cmd.Arg("task", "Task ID, ID prefix or text.").Required().StringVar(&c.task)

	return c
}

func (c TrashPurgeCommand) Name() string { return c.Cmd.FullCommand() }

func (c TrashPurgeCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	task, err := svc.FindDeletedTask(c.task)
	if err != nil {
		return userError(svc, err)
	}

	if err := svc.PurgeTask(ctx, task.ID); err != nil {
		return userError(svc, err)
	}

	return c.rootCmd.printMessage(svc, i18n.TaskDeletedPermanently)
}

type TrashClearCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewTrashClearCommand returns the trash clear command.
func NewTrashClearCommand(rootCmd *RootCommand, trashCmd *kingpin.CmdClause) *TrashClearCommand {
	c := &TrashClearCommand{rootCmd: rootCmd}
	c.Cmd = trashCmd.Command("clear", "Delete all the tasks in the trash permanently.")
	return c
}

func (c TrashClearCommand) Name() string { return c.Cmd.FullCommand() }

func (c TrashClearCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	n, err := svc.ClearTrash(ctx)
	if err != nil {
		return userError(svc, err)
	}

	if n == 0 {
		return c.rootCmd.printMessage(svc, i18n.TrashAlreadyEmpty)
	}
	return c.rootCmd.printMessage(svc, i18n.AllTrashCleared, n)
}
