package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrNotAvailable is returned when a task is on cooldown or completed.
	ErrNotAvailable = errors.New("not available")
	// ErrTaskActive is returned when an operation is blocked by the active task.
	ErrTaskActive = errors.New("task is active")
	// ErrNoActiveTask is returned when there is no active task to operate on.
	ErrNoActiveTask = errors.New("no active task")
	// ErrNoTasksAvailable is returned when the available pool is empty.
	ErrNoTasksAvailable = errors.New("no tasks available")
	// ErrNoSelection is returned when accepting without a selected task.
	ErrNoSelection = errors.New("no task selected")
	// ErrReasonRequired is returned when abandoning without a reason.
	ErrReasonRequired = errors.New("reason required")
)
