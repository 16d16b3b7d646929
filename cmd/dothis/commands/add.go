package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/taskstore"
)

type AddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	text     string
	repeat   string
	deadline string
}

// NewAddCommand returns the add command.
func NewAddCommand(rootCmd *RootCommand, app *kingpin.Application) *AddCommand {
	c := &AddCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("add", "Add a task.")
	c.Cmd.Arg("text", "Task text.").Required().StringVar(&c.text)
	c.Cmd.Flag("repeat", "Make the task repeatable with a cooldown (0, 1, 3, 6, 12 hours, daily, weekly, monthly).").EnumVar(&c.repeat, cooldownValues...)
	c.Cmd.Flag("deadline", "Task deadline (YYYY-MM-DD).").StringVar(&c.deadline)

	return c
}

func (c AddCommand) Name() string { return c.Cmd.FullCommand() }

func (c AddCommand) Run(ctx context.Context) error {
	deadline, err := parseDeadline(c.deadline)
	if err != nil {
		return err
	}

	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	nt := taskstore.NewTask{
		Text:     c.text,
		Type:     model.TaskTypeOneOff,
		Cooldown: model.CooldownDaily,
		Deadline: deadline,
	}
	if c.repeat != "" {
		nt.Type = model.TaskTypeRepeatable
		nt.Cooldown = model.Cooldown(c.repeat)
	}

	task, err := svc.AddTask(ctx, nt)
	if err != nil {
		return userError(svc, err)
	}
	c.rootCmd.Logger.Debugf("Task %s added", task.ID)

	return c.rootCmd.printMessage(svc, i18n.TaskAdded)
}
