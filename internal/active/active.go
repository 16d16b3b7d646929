package active

import (
	"fmt"
	"strings"
	"time"

	"github.com/slok/dothis/internal/availability"
	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
)

// QuickLogDuration is the placeholder duration of a quick logged execution.
const QuickLogDuration = time.Second

// State is the state of the controller.
type State string

const (
	// StateIdle has no selection and no active task.
	StateIdle State = "idle"
	// StateSelected has a selected task pending to be accepted.
	StateSelected State = "selected"
	// StateActive has an active task running.
	StateActive State = "active"
	// StateExpired has an active task that ran out of time and must be
	// abandoned with a reason.
	StateExpired State = "expired"
)

// Threshold is a progress notification threshold.
type Threshold int

const (
	ThresholdHalf         Threshold = 50
	ThresholdThreeQuarter Threshold = 75
)

// Notifier is notified when the active task crosses a progress threshold.
type Notifier interface {
	OnProgressThreshold(title, body string)
}

// NotifierFunc is a helper to use functions as Notifier.
type NotifierFunc func(title, body string)

func (f NotifierFunc) OnProgressThreshold(title, body string) { f(title, body) }

var noopNotifier = NotifierFunc(func(string, string) {})

// MessageFunc returns the title and body of a progress notification.
type MessageFunc func(threshold Threshold, taskText string, hoursRemaining int) (title, body string)

// DefaultMessage returns the english progress notification messages.
func DefaultMessage(threshold Threshold, taskText string, hoursRemaining int) (title, body string) {
	switch threshold {
	case ThresholdHalf:
		return "Task Progress: 50% Complete",
			fmt.Sprintf("You're halfway through your task: %q. %d hours remaining.", taskText, hoursRemaining)
	default:
		return "Task Progress: 75% Complete",
			fmt.Sprintf("You're three-quarters done with: %q. %d hours remaining.", taskText, hoursRemaining)
	}
}

// ControllerConfig is the configuration of the active task controller.
type ControllerConfig struct {
	// State is the application state the controller operates on. Required.
	State        *model.AppState
	Availability *availability.Engine
	Notifier     Notifier
	Message      MessageFunc
	Logger       log.Logger
}

func (c *ControllerConfig) defaults() error {
	if c.State == nil {
		return fmt.Errorf("state is required")
	}

	if c.Availability == nil {
		return fmt.Errorf("availability engine is required")
	}

	if c.Notifier == nil {
		c.Notifier = noopNotifier
	}

	if c.Message == nil {
		c.Message = DefaultMessage
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "active.Controller"})

	return nil
}

// Controller is the state machine of the task the user commits to.
//
// The controller only keeps the ID of the active task, the task itself is
// resolved from the state on every operation.
type Controller struct {
	state    *model.AppState
	avail    *availability.Engine
	notifier Notifier
	message  MessageFunc
	logger   log.Logger

	// selectedID is the last task picked by the selection engine.
	selectedID string
	pending    bool

	halfTimeSent         bool
	threeQuarterTimeSent bool
	expired              bool
}

// NewController returns a new active task controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Controller{
		state:    cfg.State,
		avail:    cfg.Availability,
		notifier: cfg.Notifier,
		message:  cfg.Message,
		logger:   cfg.Logger,
	}, nil
}

// State returns the current state of the controller.
func (c *Controller) State() State {
	switch {
	case c.state.ActiveTask != nil && c.expired:
		return StateExpired
	case c.state.ActiveTask != nil:
		return StateActive
	case c.pending && c.selectedID != "":
		return StateSelected
	default:
		return StateIdle
	}
}

// SelectedID returns the ID of the last selected task, it's kept after
// accepting so the next selection can avoid it.
func (c *Controller) SelectedID() string { return c.selectedID }

// Selected returns the selected task pending to be accepted.
func (c *Controller) Selected() (*model.Task, bool) {
	if c.State() != StateSelected {
		return nil, false
	}
	t := findTask(c.state.Tasks, c.selectedID)
	if t == nil {
		return nil, false
	}
	cp := t.Clone()
	return &cp, true
}

// Select marks a task as selected, pending to be accepted.
func (c *Controller) Select(taskID string) error {
	if c.state.ActiveTask != nil {
		return fmt.Errorf("can't select while a task is active: %w", model.ErrTaskActive)
	}
	if findTask(c.state.Tasks, taskID) == nil {
		return fmt.Errorf("task %s: %w", taskID, model.ErrNotFound)
	}

	c.selectedID = taskID
	c.pending = true
	return nil
}

// Reject discards the pending selection, it's still remembered as the
// previous selection.
func (c *Controller) Reject() {
	c.pending = false
}

// ClearSelection forgets the selected task, used when it's deleted.
func (c *Controller) ClearSelection() {
	c.selectedID = ""
	c.pending = false
}

// Accept makes the selected task the active task.
func (c *Controller) Accept(now time.Time) (*model.ActiveTask, error) {
	if c.state.ActiveTask != nil {
		return nil, fmt.Errorf("there is already an active task: %w", model.ErrTaskActive)
	}
	if !c.pending || c.selectedID == "" {
		return nil, model.ErrNoSelection
	}

	t := findTask(c.state.Tasks, c.selectedID)
	if t == nil {
		c.ClearSelection()
		return nil, fmt.Errorf("selected task %s: %w", c.selectedID, model.ErrNotFound)
	}

	c.state.ActiveTask = &model.ActiveTask{
		TaskID:    t.ID,
		TaskText:  t.Text,
		StartTime: now,
		Duration:  model.ActiveTaskDuration,
	}
	c.pending = false
	c.resetFlags()

	c.logger.Infof("task %s is now active", t.ID)
	at := *c.state.ActiveTask
	return &at, nil
}

// Remaining returns the remaining time of the active task.
func (c *Controller) Remaining(now time.Time) (time.Duration, bool) {
	if c.state.ActiveTask == nil {
		return 0, false
	}
	return c.state.ActiveTask.Remaining(now), true
}

// Result is the outcome of finishing the active task.
type Result struct {
	// Cleared is false when there was no active task.
	Cleared bool
	// Task is the updated task, nil if it no longer exists.
	Task      *model.Task
	Execution model.Execution
}

// Complete finishes the active task successfully. Without an active task it's a no-op.
func (c *Controller) Complete(now time.Time) (Result, error) {
	at := c.state.ActiveTask
	if at == nil {
		return Result{}, nil
	}
	if c.expired || at.Expired(now) {
		c.expired = true
		return Result{}, fmt.Errorf("active task expired, it must be abandoned with a reason: %w", model.ErrNotValid)
	}

	exec := model.Execution{
		Timestamp: now,
		Duration:  now.Sub(at.StartTime),
	}

	res := Result{Cleared: true, Execution: exec}
	if t := findTask(c.state.Tasks, at.TaskID); t != nil {
		t.Executions = append(t.Executions, exec)
		if t.Type == model.TaskTypeOneOff {
			t.Completed = true
		}
		cp := t.Clone()
		res.Task = &cp
	} else {
		c.logger.Warningf("active task %s no longer exists, skipping execution", at.TaskID)
	}

	c.state.CompletedCount++
	c.clearActive()

	c.logger.Infof("task %s completed", at.TaskID)
	return res, nil
}

// Abandon gives up the active task with a reason. Without an active task
// it's a no-op, even without a reason.
func (c *Controller) Abandon(now time.Time, reason string) (Result, error) {
	at := c.state.ActiveTask
	if at == nil {
		return Result{}, nil
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Result{}, fmt.Errorf("abandoning a task: %w", model.ErrReasonRequired)
	}

	exec := model.Execution{
		Timestamp: now,
		Duration:  now.Sub(at.StartTime),
		Abandoned: true,
		Reason:    reason,
	}

	res := Result{Cleared: true, Execution: exec}
	if t := findTask(c.state.Tasks, at.TaskID); t != nil {
		t.Executions = append(t.Executions, exec)
		cp := t.Clone()
		res.Task = &cp
	} else {
		c.logger.Warningf("active task %s no longer exists, skipping execution", at.TaskID)
	}

	c.clearActive()
	c.ClearSelection()

	c.logger.Infof("task %s abandoned: %s", at.TaskID, reason)
	return res, nil
}

// TickResult is the outcome of a tick.
type TickResult struct {
	Remaining time.Duration
	// Expired is set on the tick that detects the expiration.
	Expired bool
	// Stop is set when the ticking must stop.
	Stop bool
}

// Tick updates the active task progress, fires the progress notifications
// and detects the expiration.
func (c *Controller) Tick(now time.Time) TickResult {
	at := c.state.ActiveTask
	if at == nil {
		return TickResult{Stop: true}
	}
	if c.expired {
		return TickResult{Stop: true}
	}

	remaining := at.Remaining(now)
	if remaining <= 0 {
		c.expired = true
		c.logger.Warningf("active task %s expired", at.TaskID)
		return TickResult{Expired: true, Stop: true}
	}

	progress := at.Progress(now)
	hours := int(remaining / time.Hour)
	if progress >= 0.5 && !c.halfTimeSent {
		c.halfTimeSent = true
		c.notifier.OnProgressThreshold(c.message(ThresholdHalf, at.TaskText, hours))
	}
	if progress >= 0.75 && !c.threeQuarterTimeSent {
		c.threeQuarterTimeSent = true
		c.notifier.OnProgressThreshold(c.message(ThresholdThreeQuarter, at.TaskText, hours))
	}

	return TickResult{Remaining: remaining}
}

// Resume restores the controller after loading a persisted active task.
// Thresholds already passed are marked as sent so they are not fired for
// the time the application was closed.
func (c *Controller) Resume(now time.Time) State {
	at := c.state.ActiveTask
	if at == nil {
		return c.State()
	}

	progress := at.Progress(now)
	c.halfTimeSent = progress >= 0.5
	c.threeQuarterTimeSent = progress >= 0.75
	if at.Expired(now) {
		c.expired = true
		c.logger.Warningf("active task %s expired while closed", at.TaskID)
	}

	return c.State()
}

// NotificationsSent returns the progress notifications already sent.
func (c *Controller) NotificationsSent() (halfTime, threeQuarterTime bool) {
	return c.halfTimeSent, c.threeQuarterTimeSent
}

// CanDismissAbandonPrompt returns false while an expired task is still
// active, in that case a reason is mandatory.
func (c *Controller) CanDismissAbandonPrompt() bool {
	return !(c.expired && c.state.ActiveTask != nil)
}

// Reset clears the active task and the selection without recording anything.
func (c *Controller) Reset() {
	c.clearActive()
	c.ClearSelection()
}

// QuickLog records an instant successful execution of an available task
// without using the active task flow.
func (c *Controller) QuickLog(taskID string, now time.Time) (*model.Task, error) {
	t := findTask(c.state.Tasks, taskID)
	if t == nil {
		return nil, fmt.Errorf("task %s: %w", taskID, model.ErrNotFound)
	}
	if c.state.ActiveTask != nil && c.state.ActiveTask.TaskID == taskID {
		return nil, fmt.Errorf("task %s: %w", taskID, model.ErrTaskActive)
	}
	if status := c.avail.Status(*t, now); status.Kind != model.StatusAvailable {
		return nil, fmt.Errorf("task %s is %s: %w", taskID, status.Kind, model.ErrNotAvailable)
	}

	t.Executions = append(t.Executions, model.Execution{
		Timestamp: now,
		Duration:  QuickLogDuration,
	})
	if t.Type == model.TaskTypeOneOff {
		t.Completed = true
	}
	c.state.CompletedCount++

	c.logger.Infof("task %s quick logged", taskID)
	cp := t.Clone()
	return &cp, nil
}

func (c *Controller) clearActive() {
	c.state.ActiveTask = nil
	c.expired = false
	c.resetFlags()
}

func (c *Controller) resetFlags() {
	c.halfTimeSent = false
	c.threeQuarterTimeSent = false
}

func findTask(tasks []model.Task, id string) *model.Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}
