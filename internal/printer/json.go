package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/transfer"
)

// JSONPrinter prints task information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// taskOutput represents a task with its computed state.
type taskOutput struct {
	ID          string            `json:"id"`
	Text        string            `json:"text"`
	Type        string            `json:"type"`
	Cooldown    string            `json:"cooldown"`
	Status      string            `json:"status"`
	AvailableAt *time.Time        `json:"available_at,omitempty"`
	Active      bool              `json:"active"`
	Successful  int               `json:"successful"`
	Abandoned   int               `json:"abandoned"`
	LastSuccess *time.Time        `json:"last_success,omitempty"`
	Deadline    *time.Time        `json:"deadline,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Executions  []executionOutput `json:"executions,omitempty"`
}

type executionOutput struct {
	Timestamp time.Time `json:"timestamp"`
	Duration  string    `json:"duration"`
	Abandoned bool      `json:"abandoned"`
	Reason    string    `json:"reason,omitempty"`
}

// trashOutput represents a deleted task.
type trashOutput struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Type      string     `json:"type"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// activeOutput represents the active task flow.
type activeOutput struct {
	State     string     `json:"state"`
	TaskID    string     `json:"task_id,omitempty"`
	TaskText  string     `json:"task_text,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	Remaining string     `json:"remaining,omitempty"`
	Progress  float64    `json:"progress"`
}

type importOutput struct {
	Mode            string `json:"mode"`
	Imported        int    `json:"imported"`
	Skipped         int    `json:"skipped"`
	Rehomed         int    `json:"rehomed"`
	DeletedImported int    `json:"deleted_imported"`
	ActiveCleared   bool   `json:"active_cleared"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTaskList prints the tasks in JSON format without the executions.
func (j *JSONPrinter) PrintTaskList(snap randomizer.Snapshot) error {
	items := make([]taskOutput, 0, len(snap.Tasks))
	for _, v := range snap.Tasks {
		items = append(items, mapTask(v, false))
	}

	return j.encode(items)
}

// PrintTask prints a task with its executions in JSON format.
func (j *JSONPrinter) PrintTask(v randomizer.TaskView, now time.Time) error {
	return j.encode(mapTask(v, true))
}

// PrintTrash prints the deleted tasks in JSON format.
func (j *JSONPrinter) PrintTrash(tasks []model.Task, now time.Time) error {
	items := make([]trashOutput, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, trashOutput{
			ID:        t.ID,
			Text:      t.Text,
			Type:      string(t.Type),
			DeletedAt: utcPtr(t.DeletedAt),
		})
	}

	return j.encode(items)
}

// PrintActive prints the active task flow in JSON format.
func (j *JSONPrinter) PrintActive(snap randomizer.Snapshot) error {
	output := activeOutput{State: string(snap.State)}
	switch {
	case snap.ActiveTask != nil:
		at := snap.ActiveTask
		output.TaskID = at.TaskID
		output.TaskText = at.TaskText
		output.StartTime = utcPtr(&at.StartTime)
		output.Remaining = FormatDuration(snap.Remaining)
		output.Progress = min(at.Progress(snap.Now), 1)
	case snap.Selected != nil:
		output.TaskID = snap.Selected.ID
		output.TaskText = snap.Selected.Text
	}

	return j.encode(output)
}

// PrintImportResult prints the summary of an import in JSON format.
func (j *JSONPrinter) PrintImportResult(res transfer.Result) error {
	return j.encode(importOutput{
		Mode:            string(res.Mode),
		Imported:        res.Imported,
		Skipped:         res.Skipped,
		Rehomed:         res.Rehomed,
		DeletedImported: res.DeletedImported,
		ActiveCleared:   res.ActiveCleared,
	})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mapTask(v randomizer.TaskView, executions bool) taskOutput {
	output := taskOutput{
		ID:          v.Task.ID,
		Text:        v.Task.Text,
		Type:        string(v.Task.Type),
		Cooldown:    string(v.Task.Cooldown),
		Status:      string(v.Status.Kind),
		Active:      v.Active,
		Successful:  v.Stats.Successful,
		Abandoned:   v.Stats.Abandoned,
		LastSuccess: utcPtr(v.Stats.LastSuccess),
		Deadline:    utcPtr(v.Task.Deadline),
		CreatedAt:   v.Task.CreatedAt.UTC(),
	}

	if v.Status.Kind == model.StatusCooldown {
		output.AvailableAt = utcPtr(&v.Status.AvailableAt)
	}

	if executions {
		for _, e := range v.Task.Executions {
			output.Executions = append(output.Executions, executionOutput{
				Timestamp: e.Timestamp.UTC(),
				Duration:  e.Duration.String(),
				Abandoned: e.Abandoned,
				Reason:    e.Reason,
			})
		}
	}

	return output
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
