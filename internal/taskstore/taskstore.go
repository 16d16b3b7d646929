package taskstore

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
)

// CompletedOneOffRetention is how long a completed one-off task stays in the
// task collection before the cleanup moves it to the trash.
const CompletedOneOffRetention = 24 * time.Hour

// StoreConfig is the configuration of the task store.
type StoreConfig struct {
	// State is the application state the store operates on. Required.
	State *model.AppState
	// NewID returns new task IDs, UUID v4 by default.
	NewID  func() string
	Logger log.Logger
}

func (c *StoreConfig) defaults() error {
	if c.State == nil {
		return fmt.Errorf("state is required")
	}

	if c.NewID == nil {
		c.NewID = uuid.NewString
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "taskstore.Store"})

	return nil
}

// Store owns the task and trash collections.
type Store struct {
	state  *model.AppState
	newID  func() string
	logger log.Logger
}

// NewStore returns a new task store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Store{
		state:  cfg.State,
		newID:  cfg.NewID,
		logger: cfg.Logger,
	}, nil
}

// NewTask are the attributes of a new task.
type NewTask = model.TaskSeed

func seedDefaults(n *NewTask) {
	n.Text = model.NormalizeTaskText(n.Text)
	if n.Type == "" {
		n.Type = model.TaskTypeOneOff
	}
	if n.Cooldown == "" {
		n.Cooldown = model.CooldownDaily
	}
}

func validateSeed(n NewTask) error {
	if err := model.ValidateTaskText(n.Text); err != nil {
		return err
	}
	if !n.Type.Valid() {
		return fmt.Errorf("invalid task type %q: %w", n.Type, model.ErrNotValid)
	}
	if !n.Cooldown.Valid() {
		return fmt.Errorf("invalid cooldown %q: %w", n.Cooldown, model.ErrNotValid)
	}
	return nil
}

// Tasks returns a copy of the task collection.
func (s *Store) Tasks() []model.Task { return model.CloneTasks(s.state.Tasks) }

// DeletedTasks returns a copy of the trash.
func (s *Store) DeletedTasks() []model.Task { return model.CloneTasks(s.state.DeletedTasks) }

// Get returns a copy of a task by ID.
func (s *Store) Get(id string) (*model.Task, error) {
	i := indexOf(s.state.Tasks, id)
	if i < 0 {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	t := s.state.Tasks[i].Clone()
	return &t, nil
}

// GetDeleted returns a copy of a trashed task by ID.
func (s *Store) GetDeleted(id string) (*model.Task, error) {
	i := indexOf(s.state.DeletedTasks, id)
	if i < 0 {
		return nil, fmt.Errorf("deleted task %s: %w", id, model.ErrNotFound)
	}
	t := s.state.DeletedTasks[i].Clone()
	return &t, nil
}

// Add creates a new task.
func (s *Store) Add(nt NewTask, now time.Time) (*model.Task, error) {
	seedDefaults(&nt)
	if err := validateSeed(nt); err != nil {
		return nil, err
	}
	if s.textTaken(nt.Text, "") {
		return nil, fmt.Errorf("task %q: %w", nt.Text, model.ErrAlreadyExists)
	}

	t := model.Task{
		ID:         s.newID(),
		Text:       nt.Text,
		Type:       nt.Type,
		Cooldown:   nt.Cooldown,
		Executions: []model.Execution{},
		CreatedAt:  now,
	}
	if nt.Deadline != nil {
		d := *nt.Deadline
		t.Deadline = &d
	}
	s.state.Tasks = append(s.state.Tasks, t)

	s.logger.Debugf("task %s added", t.ID)
	cp := t.Clone()
	return &cp, nil
}

// TaskEdit are the attributes of a task that can be edited. Missing
// attributes are kept.
type TaskEdit struct {
	Text     *string
	Type     *model.TaskType
	Cooldown *model.Cooldown
	Deadline *time.Time
	// ClearDeadline removes the deadline.
	ClearDeadline bool
}

// Edit updates a task. Changing the type resets the completed state.
func (s *Store) Edit(id string, e TaskEdit) (*model.Task, error) {
	if err := s.checkNotActive(id); err != nil {
		return nil, err
	}
	i := indexOf(s.state.Tasks, id)
	if i < 0 {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	current := s.state.Tasks[i]

	nt := NewTask{Text: current.Text, Type: current.Type, Cooldown: current.Cooldown, Deadline: current.Deadline}
	if e.Text != nil {
		nt.Text = *e.Text
	}
	if e.Type != nil {
		nt.Type = *e.Type
	}
	if e.Cooldown != nil {
		nt.Cooldown = *e.Cooldown
	}
	if e.Deadline != nil {
		d := *e.Deadline
		nt.Deadline = &d
	}
	if e.ClearDeadline {
		nt.Deadline = nil
	}
	seedDefaults(&nt)
	if err := validateSeed(nt); err != nil {
		return nil, err
	}
	if s.textTaken(nt.Text, id) {
		return nil, fmt.Errorf("task %q: %w", nt.Text, model.ErrAlreadyExists)
	}

	t := current.Clone()
	t.Text = nt.Text
	t.Cooldown = nt.Cooldown
	t.Deadline = nt.Deadline
	if t.Type != nt.Type {
		t.Type = nt.Type
		t.Completed = false
	}
	s.state.Tasks[i] = t

	s.logger.Debugf("task %s edited", id)
	cp := t.Clone()
	return &cp, nil
}

// Delete moves a task to the trash.
func (s *Store) Delete(id string, now time.Time) (*model.Task, error) {
	if err := s.checkNotActive(id); err != nil {
		return nil, err
	}
	i := indexOf(s.state.Tasks, id)
	if i < 0 {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	t := s.trash(i, now)
	s.logger.Debugf("task %s moved to trash", id)
	cp := t.Clone()
	return &cp, nil
}

// Restore moves a task from the trash back to the task collection.
func (s *Store) Restore(id string) (*model.Task, error) {
	i := indexOf(s.state.DeletedTasks, id)
	if i < 0 {
		return nil, fmt.Errorf("deleted task %s: %w", id, model.ErrNotFound)
	}
	t := s.state.DeletedTasks[i]
	if s.textTaken(t.Text, "") {
		return nil, fmt.Errorf("a task with text %q exists: %w", t.Text, model.ErrAlreadyExists)
	}

	s.state.DeletedTasks = slices.Delete(s.state.DeletedTasks, i, i+1)
	t.DeletedAt = nil
	s.state.Tasks = append(s.state.Tasks, t)

	s.logger.Debugf("task %s restored", id)
	cp := t.Clone()
	return &cp, nil
}

// Purge permanently deletes a task from the trash.
func (s *Store) Purge(id string) error {
	i := indexOf(s.state.DeletedTasks, id)
	if i < 0 {
		return fmt.Errorf("deleted task %s: %w", id, model.ErrNotFound)
	}
	s.state.DeletedTasks = slices.Delete(s.state.DeletedTasks, i, i+1)
	s.logger.Debugf("task %s purged", id)
	return nil
}

// ClearTrash permanently deletes all the trashed tasks.
func (s *Store) ClearTrash() int {
	n := len(s.state.DeletedTasks)
	s.state.DeletedTasks = []model.Task{}
	return n
}

// CompletedCount returns the number of successful executions ever recorded.
func (s *Store) CompletedCount() int { return s.state.CompletedCount }

// CleanupCompletedOneOffs moves to the trash the completed one-off tasks
// whose last successful execution is older than the retention.
func (s *Store) CleanupCompletedOneOffs(now time.Time) []model.Task {
	var moved []model.Task
	for i := 0; i < len(s.state.Tasks); {
		t := s.state.Tasks[i]
		if !s.expiredOneOff(t, now) {
			i++
			continue
		}
		moved = append(moved, s.trash(i, now).Clone())
	}

	if len(moved) > 0 {
		s.logger.Infof("%d completed one-off tasks moved to trash", len(moved))
	}
	return moved
}

func (s *Store) expiredOneOff(t model.Task, now time.Time) bool {
	if t.Type != model.TaskTypeOneOff || !t.Completed {
		return false
	}
	if s.state.ActiveTask != nil && s.state.ActiveTask.TaskID == t.ID {
		return false
	}
	last, ok := t.LastSuccess()
	if !ok {
		return false
	}
	return now.Sub(last) >= CompletedOneOffRetention
}

// AddMany adds tasks skipping the ones whose text already exists.
func (s *Store) AddMany(nts []NewTask, now time.Time) ([]model.Task, error) {
	var added []model.Task
	for _, nt := range nts {
		t, err := s.Add(nt, now)
		if err != nil {
			if errors.Is(err, model.ErrAlreadyExists) {
				continue
			}
			return added, err
		}
		added = append(added, *t)
	}
	return added, nil
}

// Reset wipes all the state.
func (s *Store) Reset() {
	s.state.Tasks = []model.Task{}
	s.state.DeletedTasks = []model.Task{}
	s.state.ActiveTask = nil
	s.state.CompletedCount = 0
}

// Check verifies the collection invariants.
func (s *Store) Check() error {
	ids := map[string]bool{}
	texts := map[string]bool{}
	for _, t := range s.state.Tasks {
		if ids[t.ID] {
			return fmt.Errorf("duplicated task id %s: %w", t.ID, model.ErrNotValid)
		}
		ids[t.ID] = true
		if texts[t.Text] {
			return fmt.Errorf("duplicated task text %q: %w", t.Text, model.ErrNotValid)
		}
		texts[t.Text] = true
		if t.DeletedAt != nil {
			return fmt.Errorf("task %s has deletion time: %w", t.ID, model.ErrNotValid)
		}
	}
	for _, t := range s.state.DeletedTasks {
		if ids[t.ID] {
			return fmt.Errorf("task %s is in both collections: %w", t.ID, model.ErrNotValid)
		}
		ids[t.ID] = true
		if t.DeletedAt == nil {
			return fmt.Errorf("deleted task %s missing deletion time: %w", t.ID, model.ErrNotValid)
		}
	}
	return nil
}

func (s *Store) trash(i int, now time.Time) model.Task {
	t := s.state.Tasks[i]
	s.state.Tasks = slices.Delete(s.state.Tasks, i, i+1)
	deletedAt := now
	t.DeletedAt = &deletedAt
	s.state.DeletedTasks = append(s.state.DeletedTasks, t)
	return t
}

func (s *Store) checkNotActive(id string) error {
	if s.state.ActiveTask != nil && s.state.ActiveTask.TaskID == id {
		return fmt.Errorf("task %s: %w", id, model.ErrTaskActive)
	}
	return nil
}

func (s *Store) textTaken(text, exceptID string) bool {
	for _, t := range s.state.Tasks {
		if t.ID != exceptID && t.Text == text {
			return true
		}
	}
	return false
}

func indexOf(tasks []model.Task, id string) int {
	return slices.IndexFunc(tasks, func(t model.Task) bool { return t.ID == id })
}
