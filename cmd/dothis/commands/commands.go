package commands

import (
	"context"
	"io"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/conventions"
	"github.com/slok/dothis/internal/log"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug       bool
	NoLog       bool
	NoColor     bool
	LoggerType  string
	LogFile     string
	DataDir     string
	Storage     string
	Lang        string
	SelectDelay time.Duration

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("log-file", "Write the logs to a rotated file instead of stderr.").StringVar(&c.LogFile)
	app.Flag("data-dir", "Directory where the data is stored.").Default(conventions.DataDir()).StringVar(&c.DataDir)
	app.Flag("storage", "Storage backend.").Default(conventions.StorageSQLite).EnumVar(&c.Storage, conventions.StorageSQLite, conventions.StorageFile, conventions.StorageMemory)
	app.Flag("lang", "Language of the messages (en-US, de-DE), the system language by default.").StringVar(&c.Lang)
	app.Flag("select-delay", "Pause before revealing a randomly selected task.").Default("200ms").DurationVar(&c.SelectDelay)

	return c
}
