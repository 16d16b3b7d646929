package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/dothis/internal/model"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("doctor", "Check the health of the stored data.")
	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	svc, closeSvc, err := c.rootCmd.newService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	out := c.rootCmd.Stdout
	results := svc.Doctor(ctx)

	fmt.Fprintf(out, "Checking %s storage...\n", c.rootCmd.Storage)
	for _, r := range results {
		fmt.Fprintf(out, "  %s %-16s %s\n", statusIcon(r.Status), r.ID, r.Message)
	}
	fmt.Fprintln(out)

	_, warnings, errs := model.CountByStatus(results)
	if errs == 0 && warnings == 0 {
		fmt.Fprintln(out, "All checks passed!")
		return nil
	}

	var summary []string
	if errs > 0 {
		summary = append(summary, fmt.Sprintf("%d error(s)", errs))
	}
	if warnings > 0 {
		summary = append(summary, fmt.Sprintf("%d warning(s)", warnings))
	}
	fmt.Fprintln(out, strings.Join(summary, ", "))

	if model.HasErrors(results) {
		return fmt.Errorf("data checks failed with %d error(s)", errs)
	}

	return nil
}

func statusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}
