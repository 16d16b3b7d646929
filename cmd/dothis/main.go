package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/slok/dothis/cmd/dothis/commands"
	"github.com/slok/dothis/internal/log"
	loglogrus "github.com/slok/dothis/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"

	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("dothis", "Random task picker with cooldowns and an 8 hour commitment timer.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	sessionCmd := commands.NewSessionCommand(rootCmd, app)
	addCmd := commands.NewAddCommand(rootCmd, app)
	editCmd := commands.NewEditCommand(rootCmd, app)
	rmCmd := commands.NewRemoveCommand(rootCmd, app)
	listCmd := commands.NewListCommand(rootCmd, app)
	showCmd := commands.NewShowCommand(rootCmd, app)
	logCmd := commands.NewLogCommand(rootCmd, app)
	randomCmd := commands.NewRandomizeCommand(rootCmd, app)
	acceptCmd := commands.NewAcceptCommand(rootCmd, app)
	completeCmd := commands.NewCompleteCommand(rootCmd, app)
	abandonCmd := commands.NewAbandonCommand(rootCmd, app)
	statusCmd := commands.NewStatusCommand(rootCmd, app)
	exportCmd := commands.NewExportCommand(rootCmd, app)
	importCmd := commands.NewImportCommand(rootCmd, app)
	samplesCmd := commands.NewSamplesCommand(rootCmd, app)
	cleanupCmd := commands.NewCleanupCommand(rootCmd, app)
	resetCmd := commands.NewResetCommand(rootCmd, app)
	doctorCmd := commands.NewDoctorCommand(rootCmd, app)

	// Trash subcommands share a parent command.
	trashCmd := app.Command("trash", "Manage the deleted tasks.")
	trashListCmd := commands.NewTrashListCommand(rootCmd, trashCmd)
	trashRestoreCmd := commands.NewTrashRestoreCommand(rootCmd, trashCmd)
	trashPurgeCmd := commands.NewTrashPurgeCommand(rootCmd, trashCmd)
	trashClearCmd := commands.NewTrashClearCommand(rootCmd, trashCmd)

	cmds := map[string]commands.Command{
		sessionCmd.Name():      sessionCmd,
		addCmd.Name():          addCmd,
		editCmd.Name():         editCmd,
		rmCmd.Name():           rmCmd,
		listCmd.Name():         listCmd,
		showCmd.Name():         showCmd,
		logCmd.Name():          logCmd,
		randomCmd.Name():       randomCmd,
		acceptCmd.Name():       acceptCmd,
		completeCmd.Name():     completeCmd,
		abandonCmd.Name():      abandonCmd,
		statusCmd.Name():       statusCmd,
		exportCmd.Name():       exportCmd,
		importCmd.Name():       importCmd,
		samplesCmd.Name():      samplesCmd,
		cleanupCmd.Name():      cleanupCmd,
		resetCmd.Name():        resetCmd,
		doctorCmd.Name():       doctorCmd,
		trashListCmd.Name():    trashListCmd,
		trashRestoreCmd.Name(): trashRestoreCmd,
		trashPurgeCmd.Name():   trashPurgeCmd,
		trashClearCmd.Name():   trashClearCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Auto-suppress logging for commands that produce structured output (table/JSON)
	// and for the interactive session, so log noise doesn't mix with the output.
	// Users can still enable logging with --debug or send it to a file.
	quietCommands := map[string]bool{
		"session":    true,
		"list":       true,
		"show":       true,
		"status":     true,
		"trash list": true,
		"export":     true,
		"doctor":     true,
	}
	if quietCommands[cmdName] && !rootCmd.Debug && rootCmd.LogFile == "" {
		rootCmd.NoLog = true
	}

	// Set logger.
	logger, logCloser := getLogger(ctx, *rootCmd)
	defer logCloser.Close()
	rootCmd.Logger = logger

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger and the closer of its output.
func getLogger(ctx context.Context, config commands.RootCommand) (log.Logger, io.Closer) {
	if config.NoLog {
		return log.Noop, io.NopCloser(nil)
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	var closer io.Closer = io.NopCloser(nil)
	if config.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
		}
		logrusLog.Out = lj
		closer = lj
		config.NoColor = true
	}
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger, closer
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
