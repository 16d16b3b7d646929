package taskstore

import (
	"fmt"
	"time"

	"github.com/slok/dothis/internal/model"
)

// Diagnose checks the health of the collections and the active task. Unlike
// Check it reports every problem found instead of stopping on the first one.
func (s *Store) Diagnose(now time.Time) []model.CheckResult {
	return []model.CheckResult{
		s.diagnoseIDs(),
		s.diagnoseTexts(),
		s.diagnoseFields(),
		s.diagnoseTrash(),
		s.diagnoseActive(now),
		s.diagnoseCompletedCount(),
	}
}

func checkOK(id, msg string) model.CheckResult {
	return model.CheckResult{ID: id, Message: msg, Status: model.CheckStatusOK}
}

func (s *Store) diagnoseIDs() model.CheckResult {
	const id = "task_ids"

	seen := map[string]bool{}
	dups := 0
	for _, tasks := range [][]model.Task{s.state.Tasks, s.state.DeletedTasks} {
		for _, t := range tasks {
			if seen[t.ID] {
				dups++
			}
			seen[t.ID] = true
		}
	}

	if dups > 0 {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("%d duplicated task ids", dups)}
	}
	return checkOK(id, fmt.Sprintf("%d unique task ids", len(seen)))
}

func (s *Store) diagnoseTexts() model.CheckResult {
	const id = "task_texts"

	seen := map[string]bool{}
	dups := 0
	for _, t := range s.state.Tasks {
		if seen[t.Text] {
			dups++
		}
		seen[t.Text] = true
	}

	if dups > 0 {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("%d duplicated task texts", dups)}
	}
	return checkOK(id, "task texts are unique")
}

func (s *Store) diagnoseFields() model.CheckResult {
	const id = "task_fields"

	for _, tasks := range [][]model.Task{s.state.Tasks, s.state.DeletedTasks} {
		for _, t := range tasks {
			if err := t.Validate(); err != nil {
				return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("task %s: %s", t.ID, err)}
			}
		}
	}
	return checkOK(id, "all tasks are valid")
}

func (s *Store) diagnoseTrash() model.CheckResult {
	const id = "trash"

	wrong := 0
	for _, t := range s.state.Tasks {
		if t.DeletedAt != nil {
			wrong++
		}
	}
	for _, t := range s.state.DeletedTasks {
		if t.DeletedAt == nil {
			wrong++
		}
	}

	if wrong > 0 {
		return model.CheckResult{ID: id, Status: model.CheckStatusWarning, Message: fmt.Sprintf("%d tasks with a wrong deletion time", wrong)}
	}
	return checkOK(id, fmt.Sprintf("%d tasks in the trash", len(s.state.DeletedTasks)))
}

func (s *Store) diagnoseActive(now time.Time) model.CheckResult {
	const id = "active_task"

	at := s.state.ActiveTask
	switch {
	case at == nil:
		return checkOK(id, "no active task")
	case indexOf(s.state.Tasks, at.TaskID) < 0:
		return model.CheckResult{ID: id, Status: model.CheckStatusWarning, Message: fmt.Sprintf("active task %s no longer exists", at.TaskID)}
	case at.Expired(now):
		return model.CheckResult{ID: id, Status: model.CheckStatusWarning, Message: fmt.Sprintf("active task %q expired, it must be abandoned", at.TaskText)}
	}
	return checkOK(id, fmt.Sprintf("working on %q", at.TaskText))
}

func (s *Store) diagnoseCompletedCount() model.CheckResult {
	const id = "completed_count"

	if s.state.CompletedCount < 0 {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("negative completed count %d", s.state.CompletedCount)}
	}
	return checkOK(id, fmt.Sprintf("%d tasks completed", s.state.CompletedCount))
}
