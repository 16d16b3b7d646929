package printer

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/slok/dothis/internal/active"
	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/transfer"
)

const (
	maxTextWidth     = 50
	progressBarWidth = 20
)

// TablePrinter prints task information in a table format.
type TablePrinter struct {
	writer   io.Writer
	messages *i18n.Messages
	loc      *time.Location
}

// NewTablePrinter creates a new table printer. Nil messages use English
// and a nil location uses local time.
func NewTablePrinter(w io.Writer, messages *i18n.Messages, loc *time.Location) *TablePrinter {
	if messages == nil {
		messages = i18n.New("")
	}
	if loc == nil {
		loc = time.Local
	}
	return &TablePrinter{writer: w, messages: messages, loc: loc}
}

// PrintTaskList prints the tasks in a table format, the active task is marked.
func (t *TablePrinter) PrintTaskList(snap randomizer.Snapshot) error {
	if len(snap.Tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTASK\tTYPE\tCOOLDOWN\tSTATUS\tDONE\tLAST DONE\tDEADLINE")

	for _, v := range snap.Tasks {
		text := Truncate(v.Task.Text, maxTextWidth)
		if v.Active {
			text = "* " + text
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			ShortID(v.Task.ID),
			text,
			t.messages.TaskType(v.Task.Type),
			t.cooldown(v.Task),
			t.messages.Status(v.Status, t.loc),
			v.Stats.Successful,
			t.lastDone(v.Stats, snap.Now),
			t.deadline(v.Task, snap.Now),
		)
	}

	return nil
}

// PrintTask prints the details of a task.
func (t *TablePrinter) PrintTask(v randomizer.TaskView, now time.Time) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", v.Task.ID)
	fmt.Fprintf(t.writer, "Task:       %s\n", v.Task.Text)
	fmt.Fprintf(t.writer, "Type:       %s\n", t.messages.TaskType(v.Task.Type))
	fmt.Fprintf(t.writer, "Cooldown:   %s\n", t.cooldown(v.Task))
	fmt.Fprintf(t.writer, "Status:     %s\n", t.messages.Status(v.Status, t.loc))
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(v.Task.CreatedAt, t.loc))

	if v.Task.Deadline != nil {
		fmt.Fprintf(t.writer, "Deadline:   %s (%s)\n", FormatTimestamp(*v.Task.Deadline, t.loc), t.messages.Deadline(*v.Task.Deadline, now, t.loc))
	}

	fmt.Fprintf(t.writer, "Completed:  %d\n", v.Stats.Successful)
	fmt.Fprintf(t.writer, "Abandoned:  %d\n", v.Stats.Abandoned)
	if v.Stats.LastSuccess != nil {
		fmt.Fprintf(t.writer, "Last done:  %s\n", t.messages.TimeAgo(*v.Stats.LastSuccess, now))
	}

	if len(v.Task.Executions) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "WHEN\tDURATION\tRESULT")
	for i := len(v.Task.Executions) - 1; i >= 0; i-- {
		e := v.Task.Executions[i]
		result := "done"
		if e.Abandoned {
			result = "abandoned: " + e.Reason
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", FormatTimestamp(e.Timestamp, t.loc), FormatDuration(e.Duration), result)
	}

	return nil
}

// PrintTrash prints the deleted tasks in a table format.
func (t *TablePrinter) PrintTrash(tasks []model.Task, now time.Time) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTASK\tTYPE\tDELETED")
	for _, task := range tasks {
		deleted := "-"
		if task.DeletedAt != nil {
			deleted = t.messages.TimeAgo(*task.DeletedAt, now)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ShortID(task.ID), Truncate(task.Text, maxTextWidth), t.messages.TaskType(task.Type), deleted)
	}

	return nil
}

// PrintActive prints the active task or the pending selection.
func (t *TablePrinter) PrintActive(snap randomizer.Snapshot) error {
	switch snap.State {
	case active.StateActive, active.StateExpired:
		at := snap.ActiveTask
		fmt.Fprintf(t.writer, "Task:       %s\n", at.TaskText)
		fmt.Fprintf(t.writer, "Started:    %s\n", FormatTimestamp(at.StartTime, t.loc))
		fmt.Fprintf(t.writer, "Progress:   %s\n", ProgressBar(at.Progress(snap.Now), progressBarWidth))
		if snap.State == active.StateExpired {
			fmt.Fprintln(t.writer, t.messages.Sprintf(i18n.ActiveTaskExpired, at.TaskText))
			return nil
		}
		fmt.Fprintln(t.writer, t.messages.Sprintf(i18n.ActiveTaskRemaining, FormatDuration(snap.Remaining)))
	case active.StateSelected:
		fmt.Fprintln(t.writer, t.messages.Sprintf(i18n.RandomizerSelected, snap.Selected.Text))
	default:
		fmt.Fprintln(t.writer, t.messages.Sprintf(i18n.ActiveTaskNone))
	}

	return nil
}

// PrintImportResult prints the summary of an import.
func (t *TablePrinter) PrintImportResult(res transfer.Result) error {
	var msg string
	switch {
	case res.Mode == transfer.ModeReplace:
		msg = t.messages.Sprintf(i18n.TasksReplaced, res.Imported)
	case res.Imported == 0:
		msg = t.messages.Sprintf(i18n.AllTasksAlreadyExist)
	case res.Skipped > 0:
		msg = t.messages.Sprintf(i18n.TasksMergedWithSkips, res.Imported, res.Skipped)
	default:
		msg = t.messages.Sprintf(i18n.TasksMerged, res.Imported)
	}

	fmt.Fprintln(t.writer, msg)
	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func (t *TablePrinter) cooldown(task model.Task) string {
	if task.Type != model.TaskTypeRepeatable {
		return "-"
	}
	return t.messages.Cooldown(task.Cooldown)
}

func (t *TablePrinter) lastDone(stats model.ExecutionStats, now time.Time) string {
	if stats.LastSuccess == nil {
		return "-"
	}
	return t.messages.TimeAgo(*stats.LastSuccess, now)
}

func (t *TablePrinter) deadline(task model.Task, now time.Time) string {
	if task.Deadline == nil {
		return "-"
	}
	return t.messages.Deadline(*task.Deadline, now, t.loc)
}
