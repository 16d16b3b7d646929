package session

import (
	"time"

	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
)

// DefaultEventBuffer is the default number of pending events.
const DefaultEventBuffer = 16

// EventKind is the kind of a session event.
type EventKind int

const (
	EventProgress EventKind = iota
	EventExpired
	EventTasksAvailable
)

// Event is something that happened outside of a session command.
type Event struct {
	Kind  EventKind
	Title string
	Body  string
	// Task is set on expired events.
	Task model.ActiveTask
	// Count is set on tasks available events.
	Count int
}

// Notifier is a randomizer notifier that forwards the events to a session.
// Events are dropped when the buffer is full.
type Notifier struct {
	events chan Event
	logger log.Logger
}

// NewNotifier returns a new notifier with a buffer of size events.
func NewNotifier(size int, logger log.Logger) *Notifier {
	if size <= 0 {
		size = DefaultEventBuffer
	}
	if logger == nil {
		logger = log.Noop
	}

	return &Notifier{
		events: make(chan Event, size),
		logger: logger.WithValues(log.Kv{"svc": "session.Notifier"}),
	}
}

// Events returns the event stream.
func (n *Notifier) Events() <-chan Event { return n.events }

func (n *Notifier) OnProgressThreshold(title, body string) {
	n.send(Event{Kind: EventProgress, Title: title, Body: body})
}

// OnTick is ignored, the remaining time is shown on demand.
func (n *Notifier) OnTick(at model.ActiveTask, remaining time.Duration) {}

func (n *Notifier) OnExpired(at model.ActiveTask) {
	n.send(Event{Kind: EventExpired, Task: at})
}

func (n *Notifier) OnTasksAvailable(count int) {
	n.send(Event{Kind: EventTasksAvailable, Count: count})
}

func (n *Notifier) send(ev Event) {
	select {
	case n.events <- ev:
	default:
		n.logger.Warningf("Event buffer full, dropping event %d", ev.Kind)
	}
}
