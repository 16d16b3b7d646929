package randomizer

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/dothis/internal/active"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/storage"
)

// TaskView is a task with its computed state.
type TaskView struct {
	Task   model.Task
	Status model.TaskStatus
	Stats  model.ExecutionStats
	// Active is set on the task of the active task.
	Active bool
}

// Snapshot is a consistent view of the whole application state.
type Snapshot struct {
	Now            time.Time
	Tasks          []TaskView
	DeletedTasks   []model.Task
	ActiveTask     *model.ActiveTask
	Remaining      time.Duration
	State          active.State
	Selected       *model.Task
	CompletedCount int
	AvailableCount int
}

// Snapshot returns the current state of the application.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.unlock()

	now := s.clock.Now()
	snap := Snapshot{
		Now:            now,
		Tasks:          make([]TaskView, 0, len(s.state.Tasks)),
		DeletedTasks:   model.CloneTasks(s.state.DeletedTasks),
		State:          s.ctrl.State(),
		CompletedCount: s.state.CompletedCount,
		AvailableCount: len(s.available(now)),
	}

	for _, t := range s.state.Tasks {
		snap.Tasks = append(snap.Tasks, s.view(t, now))
	}

	if at := s.state.ActiveTask; at != nil {
		cp := *at
		snap.ActiveTask = &cp
		snap.Remaining = at.Remaining(now)
	}

	if t, ok := s.ctrl.Selected(); ok {
		snap.Selected = t
	}

	return snap
}

func (s *Service) view(t model.Task, now time.Time) TaskView {
	return TaskView{
		Task:   t.Clone(),
		Status: s.status(t, now),
		Stats:  t.Stats(),
		Active: s.state.ActiveTask != nil && s.state.ActiveTask.TaskID == t.ID,
	}
}

// Tasks returns the tasks.
func (s *Service) Tasks() []model.Task {
	s.mu.Lock()
	defer s.unlock()
	return s.store.Tasks()
}

// DeletedTasks returns the tasks in the trash.
func (s *Service) DeletedTasks() []model.Task {
	s.mu.Lock()
	defer s.unlock()
	return s.store.DeletedTasks()
}

// Task returns a task with its computed state.
func (s *Service) Task(id string) (*TaskView, error) {
	s.mu.Lock()
	defer s.unlock()

	t, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	v := s.view(*t, s.clock.Now())
	return &v, nil
}

// AvailableTasks returns the tasks that can be selected now. The active
// task is never available.
func (s *Service) AvailableTasks() []model.Task {
	s.mu.Lock()
	defer s.unlock()
	return model.CloneTasks(s.available(s.clock.Now()))
}

// TaskStatus returns the availability of a task. The active task has its
// own status, it's never available.
func (s *Service) TaskStatus(id string) (model.TaskStatus, error) {
	s.mu.Lock()
	defer s.unlock()

	t, err := s.store.Get(id)
	if err != nil {
		return model.TaskStatus{}, err
	}
	return s.status(*t, s.clock.Now()), nil
}

func (s *Service) status(t model.Task, now time.Time) model.TaskStatus {
	if s.state.ActiveTask != nil && s.state.ActiveTask.TaskID == t.ID {
		return model.TaskStatus{Kind: model.StatusActive}
	}
	return s.avail.Status(t, now)
}

// ExecutionStats returns the execution statistics of a task.
func (s *Service) ExecutionStats(id string) (model.ExecutionStats, error) {
	s.mu.Lock()
	defer s.unlock()

	t, err := s.store.Get(id)
	if err != nil {
		return model.ExecutionStats{}, err
	}
	return t.Stats(), nil
}

// ActiveTask returns the active task, nil if there is none.
func (s *Service) ActiveTask() *model.ActiveTask {
	s.mu.Lock()
	defer s.unlock()

	if s.state.ActiveTask == nil {
		return nil
	}
	at := *s.state.ActiveTask
	return &at
}

// Selected returns the selected task pending to be accepted.
func (s *Service) Selected() (*model.Task, bool) {
	s.mu.Lock()
	defer s.unlock()
	return s.ctrl.Selected()
}

// State returns the state of the active task flow.
func (s *Service) State() active.State {
	s.mu.Lock()
	defer s.unlock()
	return s.ctrl.State()
}

// CanDismissAbandonPrompt returns false when the active task expired and
// must be abandoned with a reason.
func (s *Service) CanDismissAbandonPrompt() bool {
	s.mu.Lock()
	defer s.unlock()
	return s.ctrl.CanDismissAbandonPrompt()
}

// CompletedCount returns the number of successful executions.
func (s *Service) CompletedCount() int {
	s.mu.Lock()
	defer s.unlock()
	return s.store.CompletedCount()
}

// FindTask resolves a task reference: a full ID, a unique ID prefix or the
// exact task text.
func (s *Service) FindTask(ref string) (*model.Task, error) {
	s.mu.Lock()
	defer s.unlock()
	return findRef(s.state.Tasks, ref)
}

// FindDeletedTask resolves a trashed task reference like FindTask.
func (s *Service) FindDeletedTask(ref string) (*model.Task, error) {
	s.mu.Lock()
	defer s.unlock()
	return findRef(s.state.DeletedTasks, ref)
}

func findRef(tasks []model.Task, ref string) (*model.Task, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty task reference: %w", model.ErrNotValid)
	}

	var match *model.Task
	matches := 0
	for i, t := range tasks {
		switch {
		case t.ID == ref || t.Text == ref:
			cp := tasks[i].Clone()
			return &cp, nil
		case len(ref) >= 4 && len(t.ID) > len(ref) && t.ID[:len(ref)] == ref:
			match = &tasks[i]
			matches++
		}
	}

	switch matches {
	case 0:
		return nil, fmt.Errorf("task %q: %w", ref, model.ErrNotFound)
	case 1:
		cp := match.Clone()
		return &cp, nil
	}
	return nil, fmt.Errorf("task reference %q is ambiguous: %w", ref, model.ErrNotValid)
}

// Doctor runs the data health checks: the stored data must be readable and
// the in memory state consistent.
func (s *Service) Doctor(ctx context.Context) []model.CheckResult {
	s.mu.Lock()
	defer s.unlock()

	storageCheck := model.CheckResult{ID: "storage", Status: model.CheckStatusOK}
	stored, err := storage.LoadState(ctx, s.repo)
	if err != nil {
		storageCheck.Status = model.CheckStatusError
		storageCheck.Message = err.Error()
	} else {
		storageCheck.Message = fmt.Sprintf("%d tasks stored", len(stored.Tasks))
	}

	checks := []model.CheckResult{storageCheck}
	if sv, ok := s.repo.(schemaVersioner); ok {
		checks = append(checks, schemaCheck(ctx, sv))
	}

	return append(checks, s.store.Diagnose(s.clock.Now())...)
}

// schemaVersioner is implemented by the repositories with a versioned schema.
type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (version uint, dirty bool, err error)
}

func schemaCheck(ctx context.Context, sv schemaVersioner) model.CheckResult {
	version, dirty, err := sv.SchemaVersion(ctx)
	switch {
	case err != nil:
		return model.CheckResult{ID: "schema", Status: model.CheckStatusError, Message: err.Error()}
	case dirty:
		return model.CheckResult{ID: "schema", Status: model.CheckStatusError, Message: fmt.Sprintf("schema version %d is dirty", version)}
	}
	return model.CheckResult{ID: "schema", Status: model.CheckStatusOK, Message: fmt.Sprintf("schema version %d", version)}
}
