package randomizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/slok/dothis/internal/active"
	"github.com/slok/dothis/internal/model"
	storageio "github.com/slok/dothis/internal/storage/io"
	"github.com/slok/dothis/internal/taskstore"
	"github.com/slok/dothis/internal/transfer"
)

// AddTask creates a new task.
func (s *Service) AddTask(ctx context.Context, nt taskstore.NewTask) (*model.Task, error) {
	var task *model.Task
	err := s.mutate(ctx, func(now time.Time) error {
		t, err := s.store.Add(nt, now)
		if err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not add task: %w", err)
	}

	s.logger.Infof("Added task: %s (%s)", task.Text, task.ID)
	return task, nil
}

// EditTask updates a task, the active task can't be edited.
func (s *Service) EditTask(ctx context.Context, id string, e taskstore.TaskEdit) (*model.Task, error) {
	var task *model.Task
	err := s.mutate(ctx, func(now time.Time) error {
		t, err := s.store.Edit(id, e)
		if err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not edit task: %w", err)
	}

	return task, nil
}

// DeleteTask moves a task to the trash, the active task can't be deleted.
func (s *Service) DeleteTask(ctx context.Context, id string) (*model.Task, error) {
	var task *model.Task
	err := s.mutate(ctx, func(now time.Time) error {
		t, err := s.store.Delete(id, now)
		if err != nil {
			return err
		}
		if s.ctrl.SelectedID() == id {
			s.ctrl.ClearSelection()
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not delete task: %w", err)
	}

	return task, nil
}

// RestoreTask moves a task from the trash back to the tasks.
func (s *Service) RestoreTask(ctx context.Context, id string) (*model.Task, error) {
	var task *model.Task
	err := s.mutate(ctx, func(now time.Time) error {
		t, err := s.store.Restore(id)
		if err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not restore task: %w", err)
	}

	return task, nil
}

// PurgeTask permanently deletes a task from the trash.
func (s *Service) PurgeTask(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(now time.Time) error {
		return s.store.Purge(id)
	})
	if err != nil {
		return fmt.Errorf("could not purge task: %w", err)
	}

	return nil
}

// ClearTrash permanently deletes all the tasks in the trash.
func (s *Service) ClearTrash(ctx context.Context) (int, error) {
	n := 0
	err := s.mutate(ctx, func(now time.Time) error {
		n = s.store.ClearTrash()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("could not clear trash: %w", err)
	}

	return n, nil
}

// QuickLogTask records an instant successful execution of an available task.
func (s *Service) QuickLogTask(ctx context.Context, id string) (*model.Task, error) {
	var task *model.Task
	err := s.mutate(ctx, func(now time.Time) error {
		t, err := s.ctrl.QuickLog(id, now)
		if err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not log task: %w", err)
	}

	return task, nil
}

// Randomize selects a random available task, it must be accepted or
// rejected afterwards. When the pool is empty and some task is on cooldown
// the cooldown poll is started.
func (s *Service) Randomize(ctx context.Context) (*model.Task, error) {
	if s.ActiveTask() != nil {
		return nil, fmt.Errorf("could not randomize: %w", model.ErrTaskActive)
	}

	if s.selectDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.selectDelay):
		}
	}

	s.mu.Lock()
	defer s.unlock()

	now := s.clock.Now()
	available := s.available(now)
	if len(available) == 0 {
		if s.onCooldown(now) {
			s.startPoll()
		}
		return nil, fmt.Errorf("could not randomize: %w", model.ErrNoTasksAvailable)
	}

	t, err := s.sel.Select(available, s.ctrl.SelectedID(), now)
	if err != nil {
		return nil, fmt.Errorf("could not randomize: %w", err)
	}
	if err := s.ctrl.Select(t.ID); err != nil {
		return nil, fmt.Errorf("could not randomize: %w", err)
	}

	s.logger.Debugf("Selected task %s", t.ID)
	return t, nil
}

// RejectSelection discards the selected task.
func (s *Service) RejectSelection() {
	s.mu.Lock()
	defer s.unlock()
	s.ctrl.Reject()
}

// AcceptTask makes a task the active task. With an empty ID the selected
// task is accepted, otherwise the task must be available.
func (s *Service) AcceptTask(ctx context.Context, id string) (*model.ActiveTask, error) {
	var at *model.ActiveTask
	err := s.mutate(ctx, func(now time.Time) error {
		if id != "" {
			t, err := s.store.Get(id)
			if err != nil {
				return err
			}
			if s.state.ActiveTask != nil {
				return model.ErrTaskActive
			}
			if st := s.avail.Status(*t, now); st.Kind != model.StatusAvailable {
				return fmt.Errorf("task %s is %s: %w", id, st.Kind, model.ErrNotAvailable)
			}
			if err := s.ctrl.Select(id); err != nil {
				return err
			}
		}

		var err error
		at, err = s.ctrl.Accept(now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not accept task: %w", err)
	}

	s.poll.Stop()
	s.startTick()
	s.logger.Infof("Accepted task: %s", at.TaskText)
	return at, nil
}

// CompleteActiveTask finishes the active task successfully.
func (s *Service) CompleteActiveTask(ctx context.Context) (active.Result, error) {
	var res active.Result
	err := s.mutate(ctx, func(now time.Time) error {
		var err error
		res, err = s.ctrl.Complete(now)
		return err
	})
	if err != nil {
		return active.Result{}, fmt.Errorf("could not complete task: %w", err)
	}

	s.tick.Stop()
	return res, nil
}

// AbandonActiveTask gives up the active task, a reason is required.
func (s *Service) AbandonActiveTask(ctx context.Context, reason string) (active.Result, error) {
	var res active.Result
	err := s.mutate(ctx, func(now time.Time) error {
		var err error
		res, err = s.ctrl.Abandon(now, reason)
		return err
	})
	if err != nil {
		return active.Result{}, fmt.Errorf("could not abandon task: %w", err)
	}

	s.tick.Stop()
	return res, nil
}

// ResetAll wipes all the data.
func (s *Service) ResetAll(ctx context.Context) error {
	err := s.mutate(ctx, func(now time.Time) error {
		s.ctrl.Reset()
		s.store.Reset()
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not reset: %w", err)
	}

	s.tick.Stop()
	s.poll.Stop()
	s.logger.Infof("Everything has been reset")
	return nil
}

// AddDefaultTasks adds the sample tasks that don't exist yet.
func (s *Service) AddDefaultTasks(ctx context.Context) ([]model.Task, error) {
	seeds, err := s.defaultSeeds.GetSeed(ctx, storageio.DefaultSeedPath)
	if err != nil {
		return nil, fmt.Errorf("could not load default tasks: %w", err)
	}

	return s.AddTasks(ctx, seeds)
}

// AddTasks adds many tasks skipping the ones whose text exists.
func (s *Service) AddTasks(ctx context.Context, seeds []model.TaskSeed) ([]model.Task, error) {
	var added []model.Task
	err := s.mutate(ctx, func(now time.Time) error {
		var err error
		added, err = s.store.AddMany(seeds, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not add tasks: %w", err)
	}

	s.logger.Infof("Added %d tasks", len(added))
	return added, nil
}

// CleanupCompletedOneOffs moves the old completed one-off tasks to the trash.
func (s *Service) CleanupCompletedOneOffs(ctx context.Context) ([]model.Task, error) {
	var moved []model.Task
	err := s.mutate(ctx, func(now time.Time) error {
		moved = s.store.CleanupCompletedOneOffs(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not clean up tasks: %w", err)
	}

	return moved, nil
}

// Export writes the whole state as a JSON document.
func (s *Service) Export(w io.Writer) error {
	s.mu.Lock()
	state := s.state.Clone()
	now := s.clock.Now()
	s.unlock()

	return s.transfer.Export(w, state, now)
}

// DecodeImport reads an import document without applying it.
func (s *Service) DecodeImport(r io.Reader) (*transfer.Import, error) {
	imp, err := s.transfer.Decode(r, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("could not decode import: %w", err)
	}
	return imp, nil
}

// ImportOptions are the options of an import.
type ImportOptions struct {
	Mode transfer.Mode
	// Selection are the imported tasks used on selective mode, as task IDs
	// or 1-based positions.
	Selection []string
}

// Import applies an import document.
func (s *Service) Import(ctx context.Context, imp *transfer.Import, opts ImportOptions) (transfer.Result, error) {
	var selected []int
	if opts.Mode == transfer.ModeSelective {
		var err error
		selected, err = resolveSelection(imp, opts.Selection)
		if err != nil {
			return transfer.Result{}, fmt.Errorf("could not import: %w", err)
		}
	}

	var res transfer.Result
	err := s.mutate(ctx, func(now time.Time) error {
		var err error
		res, err = s.transfer.Apply(s.state, imp, opts.Mode, selected)
		if err != nil {
			return err
		}
		if res.ActiveCleared {
			s.ctrl.Reset()
		}
		if _, err := s.store.Get(s.ctrl.SelectedID()); err != nil {
			s.ctrl.ClearSelection()
		}
		return nil
	})
	if err != nil {
		return transfer.Result{}, fmt.Errorf("could not import: %w", err)
	}

	if res.ActiveCleared {
		s.tick.Stop()
	}
	return res, nil
}

func resolveSelection(imp *transfer.Import, refs []string) ([]int, error) {
	res := make([]int, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(imp.Tasks) {
			res = append(res, n-1)
			continue
		}
		i := imp.IndexOf(ref)
		if i < 0 {
			return nil, fmt.Errorf("imported task %q: %w", ref, model.ErrNotFound)
		}
		res = append(res, i)
	}
	return res, nil
}

// Tick refreshes the active task, fires the progress notifications and
// detects the expiration.
func (s *Service) Tick(ctx context.Context) active.TickResult {
	s.mu.Lock()
	defer s.unlock()

	res := s.ctrl.Tick(s.clock.Now())
	at := s.state.ActiveTask
	if at == nil {
		return res
	}

	cp := *at
	switch {
	case res.Expired:
		s.pending = append(s.pending, func() { s.notifier.OnExpired(cp) })
	case !res.Stop:
		s.pending = append(s.pending, func() { s.notifier.OnTick(cp, res.Remaining) })
	}
	return res
}

// PollCooldowns checks if tasks are available again, it returns true once
// the pool is not empty.
func (s *Service) PollCooldowns(ctx context.Context) bool {
	s.mu.Lock()
	defer s.unlock()

	n := len(s.available(s.clock.Now()))
	if n == 0 {
		return false
	}

	s.pending = append(s.pending, func() { s.notifier.OnTasksAvailable(n) })
	return true
}

// IsNotAvailable returns true for the errors caused by an empty pool.
func IsNotAvailable(err error) bool {
	return errors.Is(err, model.ErrNoTasksAvailable) || errors.Is(err, model.ErrNotAvailable)
}
