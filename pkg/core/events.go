package core

import "time"

// Event is the interface for all service events.
type Event interface {
	eventMarker()
}

// JobsCreated is emitted after a batch of occurrences is persisted.
type JobsCreated struct {
	Jobs      []*Job
	Timestamp time.Time
}

func (*JobsCreated) eventMarker() {}

// JobsUpdated is emitted after a single or scoped bulk update.
type JobsUpdated struct {
	Affected  int64
	Timestamp time.Time
}

func (*JobsUpdated) eventMarker() {}

// JobsDeleted is emitted after a single or scoped bulk delete.
type JobsDeleted struct {
	Affected  int64
	Archived  bool
	Timestamp time.Time
}

func (*JobsDeleted) eventMarker() {}

// SyncCompleted is emitted when a calendar sync task succeeds.
type SyncCompleted struct {
	JobID     string
	EventID   string
	Timestamp time.Time
}

func (*SyncCompleted) eventMarker() {}

// SyncFailed is emitted when a calendar sync task fails. Sync failures are
// informational only; the primary mutation has already succeeded.
type SyncFailed struct {
	JobID     string
	Error     error
	Timestamp time.Time
}

func (*SyncFailed) eventMarker() {}
