package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/spf13/afero"

	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/transfer"
)

type ExportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	output string
}

// NewExportCommand returns the export command.
func NewExportCommand(rootCmd *RootCommand, app *kingpin.Application) *ExportCommand {
	c := &ExportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("export", "Export all the data to a JSON file.")
	c.Cmd.Flag("output", "Output file, '-' writes to stdout. By default dothis-tasks-<date>.json.").Short('o').StringVar(&c.output)

	return c
}

func (c ExportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ExportCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	if c.output == "-" {
		return svc.Export(c.rootCmd.Stdout)
	}

	path := c.output
	if path == "" {
		path = transfer.FileName(svc.Now())
	}

	f, err := afero.NewOsFs().Create(path)
	if err != nil {
		return fmt.Errorf("could not create export file: %w", err)
	}
	defer f.Close()

	if err := svc.Export(f); err != nil {
		return fmt.Errorf("could not export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not write export file: %w", err)
	}

	return c.rootCmd.printMessage(svc, i18n.TasksExported, path)
}
