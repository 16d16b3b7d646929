package model

import "time"

// ActiveTaskDuration is the commitment window of an accepted task.
const ActiveTaskDuration = 8 * time.Hour

// ActiveTask is the single task the user has committed to work on.
//
// It only references the task by ID, the task itself is owned by the task
// collection and must be resolved again on every operation.
type ActiveTask struct {
	TaskID string
	// TaskText is a snapshot used for messages when the task is gone.
	TaskText  string
	StartTime time.Time
	Duration  time.Duration
}

// Elapsed returns the elapsed time since the task was accepted.
func (a ActiveTask) Elapsed(now time.Time) time.Duration { return now.Sub(a.StartTime) }

// Remaining returns the remaining time, it can be negative once expired.
func (a ActiveTask) Remaining(now time.Time) time.Duration { return a.Duration - a.Elapsed(now) }

// Progress returns the elapsed fraction of the commitment window.
func (a ActiveTask) Progress(now time.Time) float64 {
	if a.Duration <= 0 {
		return 1
	}
	return float64(a.Elapsed(now)) / float64(a.Duration)
}

// Expired returns true when the commitment window is over.
func (a ActiveTask) Expired(now time.Time) bool { return a.Remaining(now) <= 0 }
