package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/taskstore"
	"github.com/slok/dothis/internal/transfer"
)

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args string) error
}

func (s *Session) commandTable() (map[string]command, map[string]string) {
	cmds := map[string]command{
		"help":    {usage: "help", help: "Show the commands.", run: s.help},
		"list":    {usage: "list", help: "List the tasks.", run: s.list},
		"show":    {usage: "show <task>", help: "Show a task with its executions.", run: s.show},
		"add":     {usage: "add [-r <cooldown>] [-d <YYYY-MM-DD>] <text>", help: "Add a task, -r makes it repeatable.", run: s.add},
		"edit":    {usage: "edit <task> [-r <cooldown>|-o] [-d <YYYY-MM-DD>|-D] [text]", help: "Edit a task.", run: s.edit},
		"rm":      {usage: "rm <task>", help: "Move a task to the trash.", run: s.remove},
		"trash":   {usage: "trash", help: "List the tasks in the trash.", run: s.trash},
		"restore": {usage: "restore <task>", help: "Restore a task from the trash.", run: s.restore},
		"purge":   {usage: "purge <task>", help: "Delete a task from the trash permanently.", run: s.purge},
		"empty":   {usage: "empty", help: "Delete all the tasks in the trash permanently.", run: s.emptyTrash},
		"random":  {usage: "random", help: "Select a random available task.", run: s.random},
		"accept":  {usage: "accept [task]", help: "Accept the selected task or an available one.", run: s.accept},
		"reject":  {usage: "reject", help: "Reject the selected task.", run: s.reject},
		"status":  {usage: "status", help: "Show the active task.", run: s.status},
		"done":    {usage: "done", help: "Complete the active task.", run: s.done},
		"abandon": {usage: "abandon <reason>", help: "Abandon the active task.", run: s.abandon},
		"log":     {usage: "log <task>", help: "Log an available task as done.", run: s.quickLog},
		"samples": {usage: "samples", help: "Add the sample tasks.", run: s.samples},
		"cleanup": {usage: "cleanup", help: "Move old completed one-time tasks to the trash.", run: s.cleanup},
		"export":  {usage: "export [file]", help: "Export all the data to a JSON file.", run: s.export},
		"import":  {usage: "import <file> [replace|merge|selective <n|id>...]", help: "Import tasks from a JSON file.", run: s.importFile},
		"reset":   {usage: "reset confirm", help: "Delete all the data.", run: s.reset},
	}

	aliases := map[string]string{
		"?":    "help",
		"ls":   "list",
		"r":    "random",
		"a":    "accept",
		"next": "reject",
		"st":   "status",
		"del":  "rm",
	}

	return cmds, aliases
}

func (s *Session) help(ctx context.Context, args string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	slices.Sort(names)

	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", s.commands[name].usage, s.commands[name].help)
	}
	fmt.Fprintf(tw, "  %s\t%s\n", "quit", "End the session.")
	return tw.Flush()
}

func (s *Session) list(ctx context.Context, args string) error {
	return s.printer.PrintTaskList(s.svc.Snapshot())
}

func (s *Session) show(ctx context.Context, args string) error {
	t, err := s.svc.FindTask(args)
	if err != nil {
		return err
	}
	v, err := s.svc.Task(t.ID)
	if err != nil {
		return err
	}
	return s.printer.PrintTask(*v, s.svc.Now())
}

func (s *Session) add(ctx context.Context, args string) error {
	ta, err := parseTaskArgs(args, s.svc.Location())
	if err != nil {
		return err
	}
	if ta.oneOff || ta.clearDeadline {
		return fmt.Errorf("-o and -D are only valid on edit: %w", model.ErrNotValid)
	}

	nt := taskstore.NewTask{Text: ta.text, Type: model.TaskTypeOneOff, Cooldown: model.CooldownDaily, Deadline: ta.deadline}
	if ta.cooldown != nil {
		nt.Type = model.TaskTypeRepeatable
		nt.Cooldown = *ta.cooldown
	}

	if _, err := s.svc.AddTask(ctx, nt); err != nil {
		return err
	}
	s.println(s.messages.Sprintf(i18n.TaskAdded))
	return nil
}

func (s *Session) edit(ctx context.Context, args string) error {
	ref, rest, _ := strings.Cut(args, " ")
	t, err := s.svc.FindTask(ref)
	if err != nil {
		return err
	}

	ta, err := parseTaskArgs(rest, s.svc.Location())
	if err != nil {
		return err
	}

	e := taskstore.TaskEdit{Deadline: ta.deadline, ClearDeadline: ta.clearDeadline}
	if ta.text != "" {
		e.Text = &ta.text
	}
	switch {
	case ta.cooldown != nil:
		typ := model.TaskTypeRepeatable
		e.Type = &typ
		e.Cooldown = ta.cooldown
	case ta.oneOff:
		typ := model.TaskTypeOneOff
		e.Type = &typ
	}

	if _, err := s.svc.EditTask(ctx, t.ID, e); err != nil {
		return err
	}
	s.println(s.messages.Sprintf(i18n.TaskUpdated))
	return nil
}

func (s *Session) remove(ctx context.Context, args string) error {
	t, err := s.svc.FindTask(args)
	if err != nil {
		return err
	}
	if _, err := s.svc.DeleteTask(ctx, t.ID); err != nil {
		return err
	}
	s.println(s.messages.Sprintf(i18n.TaskMovedToTrash))
	return nil
}

func (s *Session) trash(ctx context.Context, args string) error {
	return s.printer.PrintTrash(s.svc.DeletedTasks(), s.svc.Now())
}

func (s *Session) restore(ctx context.Context, args string) error {
	t, err := s.svc.FindDeletedTask(args)
	if err != nil {
		return err
	}
	if _, err := s.svc.RestoreTask(ctx, t.ID); err != nil {
		return err
	}
	s.println(s.messages.Sprintf(i18n.TaskRestored))
	return nil
}

func (s *Session) purge(ctx context.Context, args string) error {
	t, err := s.svc.FindDeletedTask(args)
	if err != nil {
		return err
	}
	if err := s.svc.PurgeTask(ctx, t.ID); err != nil {
		return err
	}
	s.println(s.messages.Sprintf(i18n.TaskDeletedPermanently))
	return nil
}

func (s *Session) emptyTrash(ctx context.Context, args string) error {
	n, err := s.svc.ClearTrash(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		s.println(s.messages.Sprintf(i18n.TrashAlreadyEmpty))
		return nil
	}
	s.println(s.messages.Sprintf(i18n.AllTrashCleared, n))
	return nil
}

func (s *Session) random(ctx context.Context, args string) error {
	t, err := s.svc.Randomize(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrNoTasksAvailable) {
			return err
		}
		if len(s.svc.Tasks()) == 0 {
			s.println(s.messages.Sprintf(i18n.RandomizerAddTasksFirst))
		} else {
			s.println(s.messages.Sprintf(i18n.RandomizerAllOnCooldown))
		}
		return nil
	}

	s.println(s.messages.Sprintf(i18n.RandomizerSelected, t.Text))
	return nil
}

func (s *Session) accept(ctx context.Context, args string) error {
	id := ""
	if args != "" {
		t, err := s.svc.FindTask(args)
		if err != nil {
			return err
		}
		id = t.ID
	}

	at, err := s.svc.AcceptTask(ctx, id)
	if err != nil {
		return err
	}
	s.println(s.messages.Sprintf(i18n.ActiveTaskAccepted, at.TaskText))
	return nil
}

func (s *Session) reject(ctx context.Context, args string) error {
	s.svc.RejectSelection()
	return s.random(ctx, "")
}

func (s *Session) status(ctx context.Context, args string) error {
	return s.printer.PrintActive(s.svc.Snapshot())
}

func (s *Session) done(ctx context.Context, args string) error {
	res, err := s.svc.CompleteActiveTask(ctx)
	if err != nil {
		return err
	}
	if !res.Cleared {
		return model.ErrNoActiveTask
	}
	s.println(s.messages.Sprintf(i18n.ActiveTaskCompleted))
	return nil
}

func (s *Session) abandon(ctx context.Context, args string) error {
	if s.svc.ActiveTask() == nil {
		return model.ErrNoActiveTask
	}
	if _, err := s.svc.AbandonActiveTask(ctx, args); err != nil {
		return err
	}
	s.println(s.messages.Sprintf(i18n.ActiveTaskAbandoned))
	return nil
}

func (s *Session) quickLog(ctx context.Context, args string) error {
	t, err := s.svc.FindTask(args)
	if err != nil {
		return err
	}
	if _, err := s.svc.QuickLogTask(ctx, t.ID); err != nil {
		return err
	}
	s.println(s.messages.Sprintf(i18n.TaskQuickLogged))
	return nil
}

func (s *Session) samples(ctx context.Context, args string) error {
	added, err := s.svc.AddDefaultTasks(ctx)
	if err != nil {
		return err
	}
	if len(added) == 0 {
		s.println(s.messages.Sprintf(i18n.AllTasksAlreadyExist))
		return nil
	}
	s.println(s.messages.Sprintf(i18n.SampleTasksAdded, len(added)))
	return nil
}

func (s *Session) cleanup(ctx context.Context, args string) error {
	moved, err := s.svc.CleanupCompletedOneOffs(ctx)
	if err != nil {
		return err
	}
	s.println(s.messages.Sprintf(i18n.CleanedUpTasks, len(moved)))
	return nil
}

func (s *Session) export(ctx context.Context, args string) error {
	path := args
	if path == "" {
		path = transfer.FileName(s.svc.Now())
	}

	f, err := s.fs.Create(path)
	if err != nil {
		return fmt.Errorf("could not create export file: %w", err)
	}
	defer f.Close()

	if err := s.svc.Export(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not write export file: %w", err)
	}

	s.println(s.messages.Sprintf(i18n.TasksExported, path))
	return nil
}

func (s *Session) importFile(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return fmt.Errorf("file is required: %w", model.ErrNotValid)
	}

	opts := randomizer.ImportOptions{Mode: transfer.ModeMerge}
	if len(fields) > 1 {
		opts.Mode = transfer.Mode(strings.ToLower(fields[1]))
		opts.Selection = fields[2:]
	}
	if !opts.Mode.Valid() {
		return fmt.Errorf("unknown import mode %q: %w", opts.Mode, model.ErrNotValid)
	}

	data, err := afero.ReadFile(s.fs, fields[0])
	if err != nil {
		return fmt.Errorf("could not read import file: %w", err)
	}

	imp, err := s.svc.DecodeImport(bytes.NewReader(data))
	if err != nil {
		return err
	}

	res, err := s.svc.Import(ctx, imp, opts)
	if err != nil {
		return err
	}
	return s.printer.PrintImportResult(res)
}

func (s *Session) reset(ctx context.Context, args string) error {
	if args != "confirm" {
		s.println("This deletes all the tasks, the trash and the statistics. Type 'reset confirm' to continue.")
		return nil
	}

	if err := s.svc.ResetAll(ctx); err != nil {
		return err
	}
	s.println(s.messages.Sprintf(i18n.EverythingReset))
	return nil
}

// taskArgs are the task attributes of add and edit.
type taskArgs struct {
	text          string
	cooldown      *model.Cooldown
	oneOff        bool
	deadline      *time.Time
	clearDeadline bool
}

// parseTaskArgs parses leading options followed by the task text.
func parseTaskArgs(args string, loc *time.Location) (taskArgs, error) {
	var ta taskArgs
	fields := strings.Fields(args)

	i := 0
	for ; i < len(fields) && strings.HasPrefix(fields[i], "-"); i++ {
		switch fields[i] {
		case "-r":
			if i+1 >= len(fields) {
				return ta, fmt.Errorf("-r requires a cooldown: %w", model.ErrNotValid)
			}
			i++
			c := model.Cooldown(strings.ToLower(strings.TrimSuffix(fields[i], "h")))
			if !c.Valid() {
				return ta, fmt.Errorf("unknown cooldown %q: %w", fields[i], model.ErrNotValid)
			}
			ta.cooldown = &c
		case "-o":
			ta.oneOff = true
		case "-d":
			if i+1 >= len(fields) {
				return ta, fmt.Errorf("-d requires a date: %w", model.ErrNotValid)
			}
			i++
			d, err := time.ParseInLocation(time.DateOnly, fields[i], loc)
			if err != nil {
				return ta, fmt.Errorf("invalid deadline %q: %w", fields[i], model.ErrNotValid)
			}
			ta.deadline = &d
		case "-D":
			ta.clearDeadline = true
		default:
			return ta, fmt.Errorf("unknown option %q: %w", fields[i], model.ErrNotValid)
		}
	}

	ta.text = strings.Join(fields[i:], " ")
	return ta, nil
}
