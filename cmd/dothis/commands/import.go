package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kingpin/v2"
	"github.com/spf13/afero"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/transfer"
)

type ImportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	input     string
	mode      string
	selection []string
	format    string
}

// NewImportCommand returns the import command.
func NewImportCommand(rootCmd *RootCommand, app *kingpin.Application) *ImportCommand {
	c := &ImportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("import", "Import tasks from a JSON export.")
	c.Cmd.Arg("file", "Export file, '-' reads from stdin.").Required().StringVar(&c.input)
	c.Cmd.Flag("mode", "Import mode.").Default(string(transfer.ModeMerge)).EnumVar(&c.mode,
		string(transfer.ModeReplace), string(transfer.ModeMerge), string(transfer.ModeSelective))
	c.Cmd.Flag("select", "Imported task to use on selective mode, as 1-based position or ID (repeatable).").StringsVar(&c.selection)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ImportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ImportCommand) Run(ctx context.Context) error {
	var data []byte
	var err error
	if c.input == "-" {
		data, err = io.ReadAll(c.rootCmd.Stdin)
	} else {
		data, err = afero.ReadFile(afero.NewOsFs(), c.input)
	}
	if err != nil {
		return fmt.Errorf("could not read import file: %w", err)
	}

	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	imp, err := svc.DecodeImport(bytes.NewReader(data))
	if err != nil {
		return userError(svc, err)
	}

	res, err := svc.Import(ctx, imp, randomizer.ImportOptions{
		Mode:      transfer.Mode(c.mode),
		Selection: c.selection,
	})
	if err != nil {
		return userError(svc, err)
	}

	p := c.rootCmd.newPrinter(c.format, svc)
	if err := p.PrintImportResult(res); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	return nil
}
