package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/i18n"
	storageio "github.com/slok/dothis/internal/storage/io"
)

type SamplesCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file string
}

// NewSamplesCommand returns the samples command.
func NewSamplesCommand(rootCmd *RootCommand, app *kingpin.Application) *SamplesCommand {
	c := &SamplesCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("samples", "Add the sample tasks, or the tasks of a YAML seed file.")
	c.Cmd.Flag("file", "YAML seed file.").Short('f').StringVar(&c.file)

	return c
}

func (c SamplesCommand) Name() string { return c.Cmd.FullCommand() }

func (c SamplesCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	var added int
	if c.file == "" {
		tasks, err := svc.AddDefaultTasks(ctx)
		if err != nil {
			return userError(svc, err)
		}
		added = len(tasks)
	} else {
		seedRepo := storageio.NewSeedYAMLRepository(os.DirFS(filepath.Dir(c.file)))
		seeds, err := seedRepo.GetSeed(ctx, filepath.Base(c.file))
		if err != nil {
			return fmt.Errorf("could not load seed file: %w", err)
		}
		tasks, err := svc.AddTasks(ctx, seeds)
		if err != nil {
			return userError(svc, err)
		}
		added = len(tasks)
	}

	if added == 0 {
		return c.rootCmd.printMessage(svc, i18n.AllTasksAlreadyExist)
	}
	return c.rootCmd.printMessage(svc, i18n.SampleTasksAdded, added)
}
