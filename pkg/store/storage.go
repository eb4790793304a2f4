package store

import (
	"context"
	"time"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

// Predicate selects the target set of a bulk mutation. Exactly one of the
// three supported shapes is used: by id, by series, or by series from a
// start time (inclusive).
type Predicate struct {
	ID          string
	RecurringID string
	From        *time.Time

	// PendingOnly narrows the target set to pending rows. Status-changing
	// bulk mutations use it so done and cancelled occurrences stay
	// terminal.
	PendingOnly bool
}

// ByID selects a single job.
func ByID(id string) Predicate {
	return Predicate{ID: id}
}

// BySeries selects every job sharing a series id, regardless of date or
// status.
func BySeries(recurringID string) Predicate {
	return Predicate{RecurringID: recurringID}
}

// BySeriesFrom selects the jobs of a series whose start time is at or after
// from.
func BySeriesFrom(recurringID string, from time.Time) Predicate {
	return Predicate{RecurringID: recurringID, From: &from}
}

// Pending returns a copy of the predicate narrowed to pending rows.
func (p Predicate) Pending() Predicate {
	p.PendingOnly = true
	return p
}

// Matches reports whether a job is in the predicate's target set.
func (p Predicate) Matches(j *core.Job) bool {
	if p.PendingOnly && j.Status != core.StatusPending {
		return false
	}
	if p.ID != "" {
		return j.ID == p.ID
	}
	if p.RecurringID == "" {
		return false
	}
	if j.RecurringID == nil || *j.RecurringID != p.RecurringID {
		return false
	}
	if p.From != nil && j.StartTime.Before(*p.From) {
		return false
	}
	return true
}

// Storage defines the persistence contract for job records. Both the local
// mirror and the remote store implement it, as does the degrading Client.
type Storage interface {
	// List returns every job record.
	List(ctx context.Context) ([]*core.Job, error)

	// Get returns one job, or core.ErrJobNotFound.
	Get(ctx context.Context, id string) (*core.Job, error)

	// FindWhere returns the jobs the predicate matches, ordered by start
	// time.
	FindWhere(ctx context.Context, pred Predicate) ([]*core.Job, error)

	// CreateBatch inserts the jobs, assigning ids where missing, and
	// returns the stored records.
	CreateBatch(ctx context.Context, jobs []*core.Job) ([]*core.Job, error)

	// Update applies a partial update to one job.
	Update(ctx context.Context, id string, patch core.Patch) error

	// UpdateWhere applies a partial update to every job the predicate
	// matches and returns the affected row count. An empty target set is
	// a no-op reporting zero.
	UpdateWhere(ctx context.Context, pred Predicate, patch core.Patch) (int64, error)

	// Delete removes one job. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteWhere removes every job the predicate matches and returns the
	// affected row count.
	DeleteWhere(ctx context.Context, pred Predicate) (int64, error)
}
