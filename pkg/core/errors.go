package core

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrMissingTitle       = errors.New("lawn: job title is required")
	ErrMissingStartTime   = errors.New("lawn: job start time is required")
	ErrInvalidJobType     = errors.New("lawn: job type must be mowing or hedge")
	ErrInvalidFrequency   = errors.New("lawn: unknown recurrence frequency")
	ErrTooFewOccurrences  = errors.New("lawn: a recurring series needs at least 2 occurrences")
	ErrTooManyOccurrences = errors.New("lawn: occurrence count exceeds the series cap")
	ErrInvalidPrice       = errors.New("lawn: price must not be negative")
	ErrTitleTooLong       = errors.New("lawn: job title too long")
	ErrNotesTooLong       = errors.New("lawn: job notes too long")
	ErrInvalidPhone       = errors.New("lawn: client phone number is malformed")
	ErrEmptyPatch         = errors.New("lawn: update contains no changes")
	ErrStatusImmutable    = errors.New("lawn: status cannot change through an edit")
)

// Store and lifecycle errors
var (
	ErrJobNotFound       = errors.New("lawn: job not found")
	ErrTerminalStatus    = errors.New("lawn: job is already done or cancelled")
	ErrScopeNotChosen    = errors.New("lawn: scope has not been chosen yet")
	ErrScopeAlreadySet   = errors.New("lawn: scope was already resolved")
	ErrRemoteUnavailable = errors.New("lawn: remote store unavailable")
)

// RemoteError wraps a non-2xx response from the remote job store.
type RemoteError struct {
	Op         string // operation that failed, e.g. "list", "create"
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("lawn: remote %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Transition wraps an illegal status change so callers can report both ends.
type TransitionError struct {
	JobID string
	From  JobStatus
	To    JobStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("lawn: job %s cannot move from %s to %s", e.JobID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrTerminalStatus
}
