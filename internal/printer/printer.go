package printer

import (
	"time"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/transfer"
)

// Printer knows how to print task information in different formats.
type Printer interface {
	PrintTaskList(snap randomizer.Snapshot) error
	PrintTask(task randomizer.TaskView, now time.Time) error
	PrintTrash(tasks []model.Task, now time.Time) error
	PrintActive(snap randomizer.Snapshot) error
	PrintImportResult(res transfer.Result) error
	PrintMessage(msg string) error
}
