package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/app/session"
)

type SessionCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	noTimers bool
}

// NewSessionCommand returns the interactive session command.
func NewSessionCommand(rootCmd *RootCommand, app *kingpin.Application) *SessionCommand {
	c := &SessionCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("session", "Start an interactive session with progress notifications.").Default()
	c.Cmd.Flag("no-timers", "Disable the active task timer and the cooldown polling.").BoolVar(&c.noTimers)

	return c
}

func (c SessionCommand) Name() string { return c.Cmd.FullCommand() }

func (c SessionCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	notifier := session.NewNotifier(session.DefaultEventBuffer, logger)
	svc, closeSvc, err := c.rootCmd.newService(ctx, notifier)
	if err != nil {
		return err
	}
	defer closeSvc()

	s, err := session.NewSession(session.SessionConfig{
		Service: svc,
		Events:  notifier.Events(),
		In:      c.rootCmd.Stdin,
		Out:     c.rootCmd.Stdout,
		Timers:  !c.noTimers,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create session: %w", err)
	}

	return s.Run(ctx)
}
