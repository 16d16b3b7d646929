package randomizer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slok/dothis/internal/active"
	"github.com/slok/dothis/internal/availability"
	"github.com/slok/dothis/internal/clock"
	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/legacy"
	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/selection"
	"github.com/slok/dothis/internal/storage"
	storageio "github.com/slok/dothis/internal/storage/io"
	"github.com/slok/dothis/internal/taskstore"
	"github.com/slok/dothis/internal/timer"
	"github.com/slok/dothis/internal/transfer"
)

const (
	// DefaultSelectDelay is the pause before revealing a selected task.
	DefaultSelectDelay = 200 * time.Millisecond
	// DefaultTickInterval is the refresh period of the active task.
	DefaultTickInterval = time.Second
	// DefaultPollInterval is the period used to check if tasks on cooldown
	// are available again.
	DefaultPollInterval = 2 * time.Minute
)

// Notifier receives the events that happen outside of a command.
type Notifier interface {
	OnProgressThreshold(title, body string)
	OnTick(at model.ActiveTask, remaining time.Duration)
	OnExpired(at model.ActiveTask)
	OnTasksAvailable(count int)
}

// NoopNotifier ignores all the events.
type NoopNotifier struct{}

func (NoopNotifier) OnProgressThreshold(title, body string)              {}
func (NoopNotifier) OnTick(at model.ActiveTask, remaining time.Duration) {}
func (NoopNotifier) OnExpired(at model.ActiveTask)                       {}
func (NoopNotifier) OnTasksAvailable(count int)                          {}

// SeedRepository returns task seeds.
type SeedRepository interface {
	GetSeed(ctx context.Context, path string) ([]model.TaskSeed, error)
}

// ServiceConfig is the configuration for the randomizer service.
type ServiceConfig struct {
	Repository storage.Repository
	// DefaultSeeds are the sample tasks, the embedded ones by default.
	DefaultSeeds SeedRepository
	Clock        clock.Clock
	Rand         *rand.Rand
	// Location is the time zone of calendar cooldowns, local by default.
	Location     *time.Location
	Notifier     Notifier
	Messages     *i18n.Messages
	SelectDelay  time.Duration
	TickInterval time.Duration
	PollInterval time.Duration
	NewID        func() string
	Logger       log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.DefaultSeeds == nil {
		c.DefaultSeeds = storageio.NewDefaultSeedRepository()
	}

	if c.Clock == nil {
		c.Clock = clock.Real
	}

	if c.Location == nil {
		c.Location = time.Local
	}

	if c.Notifier == nil {
		c.Notifier = NoopNotifier{}
	}

	if c.Messages == nil {
		c.Messages = i18n.New("")
	}

	if c.SelectDelay < 0 {
		return fmt.Errorf("select delay can't be negative")
	}

	if c.TickInterval == 0 {
		c.TickInterval = DefaultTickInterval
	}

	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}

	if c.NewID == nil {
		c.NewID = uuid.NewString
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Randomizer"})

	return nil
}

// Service is the query and command surface of the task randomizer.
//
// All the commands and timer callbacks are serialized, every command that
// mutates the state saves the four aggregates before returning. A failed
// save rolls back the in memory state.
type Service struct {
	repo         storage.Repository
	defaultSeeds SeedRepository
	clock        clock.Clock
	loc          *time.Location
	notifier     Notifier
	messages     *i18n.Messages
	selectDelay  time.Duration
	newID        func() string
	logger       log.Logger

	mu       sync.Mutex
	state    *model.AppState
	store    *taskstore.Store
	avail    *availability.Engine
	sel      *selection.Engine
	ctrl     *active.Controller
	transfer *transfer.Manager
	// pending are the notifications dispatched once the lock is released.
	pending []func()

	tick      *timer.Interval
	poll      *timer.Interval
	timersMu  sync.Mutex
	timersCtx context.Context
}

// NewService returns a new randomizer service with an empty state, Load
// must be called before using it.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Service{
		repo:         cfg.Repository,
		defaultSeeds: cfg.DefaultSeeds,
		clock:        cfg.Clock,
		loc:          cfg.Location,
		notifier:     cfg.Notifier,
		messages:     cfg.Messages,
		selectDelay:  cfg.SelectDelay,
		newID:        cfg.NewID,
		logger:       cfg.Logger,
		state: &model.AppState{
			Tasks:        []model.Task{},
			DeletedTasks: []model.Task{},
		},
		tick: timer.NewInterval(cfg.TickInterval),
		poll: timer.NewInterval(cfg.PollInterval),
	}

	var err error
	s.store, err = taskstore.NewStore(taskstore.StoreConfig{State: s.state, NewID: cfg.NewID, Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create task store: %w", err)
	}

	s.avail, err = availability.NewEngine(availability.EngineConfig{Location: cfg.Location, Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create availability engine: %w", err)
	}

	s.sel, err = selection.NewEngine(selection.EngineConfig{Rand: cfg.Rand, Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create selection engine: %w", err)
	}

	s.ctrl, err = active.NewController(active.ControllerConfig{
		State:        s.state,
		Availability: s.avail,
		Notifier:     active.NotifierFunc(s.queueProgress),
		Message:      cfg.Messages.ProgressMessage,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create active task controller: %w", err)
	}

	s.transfer, err = transfer.NewManager(transfer.ManagerConfig{NewID: cfg.NewID, Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create transfer manager: %w", err)
	}

	return s, nil
}

// Load loads the persisted state. Legacy data is migrated, old completed
// one-off tasks are moved to the trash and the active task is resumed. The
// state is saved back when any of those changed it.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlock()

	state, err := storage.LoadState(ctx, s.repo)
	if err != nil {
		return fmt.Errorf("could not load state: %w", err)
	}

	now := s.clock.Now()
	report := legacy.Migrate(state, now, legacy.MigrateConfig{NewID: s.newID, Logger: s.logger})
	*s.state = *state

	cleaned := s.store.CleanupCompletedOneOffs(now)

	if err := s.store.Check(); err != nil {
		s.logger.Warningf("loaded state is inconsistent: %s", err)
	}

	s.ctrl.ClearSelection()
	if st := s.ctrl.Resume(now); st == active.StateExpired {
		at := *s.state.ActiveTask
		s.pending = append(s.pending, func() { s.notifier.OnExpired(at) })
	}

	if report.Changed() || len(cleaned) > 0 {
		if err := storage.SaveState(ctx, s.repo, *s.state); err != nil {
			return fmt.Errorf("could not save migrated state: %w", err)
		}
	}

	s.logger.Debugf("Loaded %d tasks, %d deleted tasks", len(s.state.Tasks), len(s.state.DeletedTasks))
	return nil
}

// Location returns the time zone used for calendar cooldowns.
func (s *Service) Location() *time.Location { return s.loc }

// Messages returns the user visible messages.
func (s *Service) Messages() *i18n.Messages { return s.messages }

// Now returns the current time of the service clock.
func (s *Service) Now() time.Time { return s.clock.Now() }

// unlock releases the lock and dispatches the pending notifications.
func (s *Service) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

func (s *Service) queueProgress(title, body string) {
	s.pending = append(s.pending, func() { s.notifier.OnProgressThreshold(title, body) })
}

// mutate runs fn with the lock held and saves the state. On any error the
// state is rolled back.
func (s *Service) mutate(ctx context.Context, fn func(now time.Time) error) error {
	s.mu.Lock()
	defer s.unlock()

	backup := s.state.Clone()
	if err := fn(s.clock.Now()); err != nil {
		*s.state = backup
		return err
	}

	if err := storage.SaveState(ctx, s.repo, *s.state); err != nil {
		*s.state = backup
		return fmt.Errorf("could not save state: %w", err)
	}

	return nil
}

// available returns the available tasks excluding the active one.
func (s *Service) available(now time.Time) []model.Task {
	tasks := s.state.Tasks
	if at := s.state.ActiveTask; at != nil {
		tasks = make([]model.Task, 0, len(s.state.Tasks))
		for _, t := range s.state.Tasks {
			if t.ID != at.TaskID {
				tasks = append(tasks, t)
			}
		}
	}
	return s.avail.Available(tasks, now)
}

// onCooldown returns true if any task will become available again by itself.
func (s *Service) onCooldown(now time.Time) bool {
	for _, t := range s.state.Tasks {
		if s.avail.Status(t, now).Kind == model.StatusCooldown {
			return true
		}
	}
	return false
}
