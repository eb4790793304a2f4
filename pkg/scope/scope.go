// Package scope resolves how broadly a cancel, edit or delete applies when
// the user acts on one displayed occurrence.
//
// A Resolution is an explicit request/response value: it begins on one
// occurrence, optionally waits for the caller to choose a breadth, and ends
// once the mutation has been handed its target predicate. No session state
// is shared between resolutions.
package scope

import (
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/store"
)

// Scope is the breadth of an action against a series.
type Scope string

const (
	// ScopeSingle applies only to the selected occurrence.
	ScopeSingle Scope = "single"
	// ScopeFuture applies to every occurrence of the series at or after
	// the selected occurrence's start time, including it.
	ScopeFuture Scope = "future"
	// ScopeSeries applies to the entire series regardless of date or
	// status.
	ScopeSeries Scope = "series"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeSingle || s == ScopeFuture || s == ScopeSeries
}

// State tracks a resolution through its lifecycle.
type State string

const (
	StateIdle          State = "idle"
	StateChoicePending State = "choice_pending"
	StateResolved      State = "resolved"
	StateApplied       State = "applied"
)

// Resolution is the state machine for one user action against one
// occurrence.
type Resolution struct {
	job   *core.Job
	state State
	scope Scope
}

// Begin starts a resolution for the given occurrence. A non-recurring job
// is forced straight to ScopeSingle; a series member parks in
// StateChoicePending until Choose is called.
func Begin(job *core.Job) *Resolution {
	r := &Resolution{job: job, state: StateChoicePending}
	if !job.InSeries() {
		r.scope = ScopeSingle
		r.state = StateResolved
	}
	return r
}

// NeedsChoice reports whether the caller must pick a scope before a target
// can be produced.
func (r *Resolution) NeedsChoice() bool {
	return r.state == StateChoicePending
}

// Choices returns the scopes the caller may pick from, or nil when no
// choice is pending.
func (r *Resolution) Choices() []Scope {
	if r.state != StateChoicePending {
		return nil
	}
	return []Scope{ScopeSingle, ScopeFuture, ScopeSeries}
}

// Choose fixes the scope for a pending resolution.
func (r *Resolution) Choose(s Scope) error {
	if r.state == StateResolved || r.state == StateApplied {
		return core.ErrScopeAlreadySet
	}
	if r.state != StateChoicePending || !s.Valid() {
		return core.ErrScopeNotChosen
	}
	r.scope = s
	r.state = StateResolved
	return nil
}

// State returns the current lifecycle state.
func (r *Resolution) State() State {
	return r.state
}

// Scope returns the resolved scope; only meaningful once NeedsChoice is
// false.
func (r *Resolution) Scope() Scope {
	return r.scope
}

// Job returns the occurrence the resolution was begun on.
func (r *Resolution) Job() *core.Job {
	return r.job
}

// Target maps the resolved scope onto a store predicate. An empty target
// set downstream is a no-op reporting zero affected rows, never an error.
func (r *Resolution) Target() (store.Predicate, error) {
	if r.state != StateResolved {
		return store.Predicate{}, core.ErrScopeNotChosen
	}
	switch r.scope {
	case ScopeFuture:
		return store.BySeriesFrom(*r.job.RecurringID, r.job.StartTime), nil
	case ScopeSeries:
		return store.BySeries(*r.job.RecurringID), nil
	default:
		return store.ByID(r.job.ID), nil
	}
}

// MarkApplied moves the resolution to its terminal state. The resolution
// holds no further state afterwards; there is no undo.
func (r *Resolution) MarkApplied() {
	r.state = StateApplied
}
