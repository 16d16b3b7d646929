package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oklog/run"
	"github.com/spf13/afero"

	"github.com/slok/dothis/internal/active"
	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/printer"
)

// Prompt is printed before reading every command.
const Prompt = "> "

// SessionConfig is the configuration of an interactive session.
type SessionConfig struct {
	Service *randomizer.Service
	// Events are the service events, usually from a Notifier.
	Events <-chan Event
	In     io.Reader
	Out    io.Writer
	// FS is used by export and import, the OS filesystem by default.
	FS       afero.Fs
	Printer  printer.Printer
	Messages *i18n.Messages
	// Timers enables the active task tick and the cooldown poll.
	Timers bool
	Logger log.Logger
}

func (c *SessionConfig) defaults() error {
	if c.Service == nil {
		return fmt.Errorf("service is required")
	}

	if c.In == nil {
		return fmt.Errorf("input is required")
	}

	if c.Out == nil {
		c.Out = io.Discard
	}

	if c.FS == nil {
		c.FS = afero.NewOsFs()
	}

	if c.Messages == nil {
		c.Messages = c.Service.Messages()
	}

	if c.Printer == nil {
		c.Printer = printer.NewTablePrinter(c.Out, c.Messages, c.Service.Location())
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Session"})

	return nil
}

// Session is an interactive command loop over the randomizer service.
//
// Commands and service events are handled by a single goroutine, it's the
// only one writing to the output.
type Session struct {
	svc      *randomizer.Service
	events   <-chan Event
	in       io.Reader
	out      io.Writer
	fs       afero.Fs
	printer  printer.Printer
	messages *i18n.Messages
	timers   bool
	logger   log.Logger

	commands map[string]command
	aliases  map[string]string
	// abandonRequired is set while an expired task waits for its abandon reason.
	abandonRequired bool
}

// NewSession returns a new interactive session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Session{
		svc:      cfg.Service,
		events:   cfg.Events,
		in:       cfg.In,
		out:      cfg.Out,
		fs:       cfg.FS,
		printer:  cfg.Printer,
		messages: cfg.Messages,
		timers:   cfg.Timers,
		logger:   cfg.Logger,
	}
	s.commands, s.aliases = s.commandTable()

	return s, nil
}

// Run runs the session until the input ends, a quit command or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	var g run.Group

	// Command loop.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				return s.loop(ctx)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// Background timers.
	if s.timers {
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				s.svc.StartTimers(ctx)
				<-ctx.Done()
				s.svc.StopTimers()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

func (s *Session) loop(ctx context.Context) error {
	lines := s.readLines(ctx)

	s.println(s.messages.Sprintf(i18n.SessionWelcome))
	s.checkExpired()
	s.prompt()

	for {
		s.drainEvents()

		select {
		case <-ctx.Done():
			return nil

		case ev := <-s.events:
			s.handleEvent(ev)

		case line, ok := <-lines:
			if !ok {
				s.drainEvents()
				return nil
			}

			if quit := s.handleLine(ctx, line); quit {
				s.println(s.messages.Sprintf(i18n.SessionBye))
				return nil
			}
			s.prompt()
		}
	}
}

// readLines reads the input on its own goroutine, a blocked read can't be
// cancelled so the goroutine is not waited.
func (s *Session) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			s.logger.Errorf("could not read input: %s", err)
		}
	}()
	return lines
}

// drainEvents handles the pending events without blocking.
func (s *Session) drainEvents() {
	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		default:
			return
		}
	}
}

func (s *Session) handleEvent(ev Event) {
	switch ev.Kind {
	case EventProgress:
		s.println(fmt.Sprintf("%s: %s", ev.Title, ev.Body))
	case EventExpired:
		s.println(s.messages.Sprintf(i18n.ActiveTaskExpired, ev.Task.TaskText))
		s.checkExpired()
	case EventTasksAvailable:
		s.println(s.messages.Sprintf(i18n.RandomizerTasksAvailable))
	}
}

// handleLine runs a command line, it returns true when the session must end.
func (s *Session) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	name, args, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	args = strings.TrimSpace(args)

	if name == "quit" || name == "exit" {
		return true
	}

	if s.abandonRequired {
		s.abandonExpired(ctx, line)
		return false
	}

	if name == "" {
		return false
	}

	if alias, ok := s.aliases[name]; ok {
		name = alias
	}
	cmd, ok := s.commands[name]
	if !ok {
		s.println(s.messages.Sprintf(i18n.SessionUnknownCommand, name))
		return false
	}

	if err := cmd.run(ctx, args); err != nil {
		s.logger.Debugf("command %q failed: %s", name, err)
		s.println(s.messages.Error(err))
	}
	s.checkExpired()

	return false
}

// checkExpired enters the abandon prompt when the active task expired.
func (s *Session) checkExpired() {
	if s.abandonRequired || s.svc.State() != active.StateExpired {
		return
	}

	s.abandonRequired = true
	at := s.svc.ActiveTask()
	if at == nil {
		return
	}
	s.println(s.messages.Sprintf(i18n.SessionAbandonNotOptional))
	s.println(s.messages.Sprintf(i18n.SessionAbandonPrompt, at.TaskText))
}

func (s *Session) abandonExpired(ctx context.Context, reason string) {
	res, err := s.svc.AbandonActiveTask(ctx, reason)
	if err != nil {
		s.println(s.messages.Error(err))
		if at := s.svc.ActiveTask(); at != nil {
			s.println(s.messages.Sprintf(i18n.SessionAbandonPrompt, at.TaskText))
		}
		return
	}

	s.abandonRequired = false
	if res.Cleared {
		s.println(s.messages.Sprintf(i18n.ActiveTaskAbandoned))
	}
}

func (s *Session) prompt() {
	fmt.Fprint(s.out, Prompt)
}

func (s *Session) println(msg string) {
	fmt.Fprintln(s.out, msg)
}
