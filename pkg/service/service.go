// Package service orchestrates job submissions, scoped mutations and the
// calendar sync side effect.
//
// The presentation layer calls into this package only; it never touches
// the store or the sync queue directly.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/archive"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/calsync"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/recur"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/scope"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/store"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/validate"
)

// Service is the application core behind the calendar UI.
type Service struct {
	store    store.Storage
	tasks    *calsync.TaskStore
	archiver *archive.Archiver
	logger   *slog.Logger

	mu        sync.RWMutex
	eventSubs []chan core.Event
}

// Option configures a Service.
type Option func(*Service)

// WithSyncTasks enables calendar sync by giving the service a task queue
// to enqueue create-event and delete-event work on.
func WithSyncTasks(tasks *calsync.TaskStore) Option {
	return func(s *Service) { s.tasks = tasks }
}

// WithArchiver enables pre-delete snapshots.
func WithArchiver(a *archive.Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithLogger overrides the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service over the given store.
func New(st store.Storage, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every job for rendering.
func (s *Service) List(ctx context.Context) ([]*core.Job, error) {
	return s.store.List(ctx)
}

// Get returns one job.
func (s *Service) Get(ctx context.Context, id string) (*core.Job, error) {
	return s.store.Get(ctx, id)
}

// CreateJob validates a submission, expands it into occurrences, persists
// the batch and queues a calendar create for each stored record.
// Validation failures abort before anything is persisted.
func (s *Service) CreateJob(ctx context.Context, req recur.Request) ([]*core.Job, error) {
	req.Template.Notes = validate.SanitizeNotes(req.Template.Notes)
	if err := validate.Job(&req.Template); err != nil {
		return nil, err
	}

	jobs, err := recur.Expand(req)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateBatch(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("lawn: failed to save jobs: %w", err)
	}

	for _, job := range created {
		s.enqueueSync(ctx, &calsync.SyncTask{Kind: calsync.KindCreateEvent, JobID: job.ID})
	}

	s.Emit(&core.JobsCreated{Jobs: created, Timestamp: time.Now()})
	return created, nil
}

// MarkDone completes a single occurrence. Done is terminal; a second call
// or a call against a cancelled occurrence is rejected.
func (s *Service) MarkDone(ctx context.Context, id string) error {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !job.Status.CanTransitionTo(core.StatusDone) {
		return &core.TransitionError{JobID: id, From: job.Status, To: core.StatusDone}
	}

	done := core.StatusDone
	if err := s.store.Update(ctx, id, core.Patch{Status: &done}); err != nil {
		return fmt.Errorf("lawn: failed to save job update: %w", err)
	}
	s.Emit(&core.JobsUpdated{Affected: 1, Timestamp: time.Now()})
	return nil
}

// CancelJob cancels the selected occurrence at the given breadth. Bulk
// scopes only touch pending occurrences, so already-done or cancelled
// members keep their terminal status; a single-target cancel of a terminal
// occurrence is rejected outright. An empty target set is a no-op
// reporting zero affected rows.
func (s *Service) CancelJob(ctx context.Context, id string, sc scope.Scope) (int64, error) {
	job, res, err := s.resolve(ctx, id, sc)
	if err != nil {
		return 0, err
	}

	if res.Scope() == scope.ScopeSingle && !job.Status.CanTransitionTo(core.StatusCancelled) {
		return 0, &core.TransitionError{JobID: id, From: job.Status, To: core.StatusCancelled}
	}

	pred, err := res.Target()
	if err != nil {
		return 0, err
	}

	cancelled := core.StatusCancelled
	affected, err := s.store.UpdateWhere(ctx, pred.Pending(), core.Patch{Status: &cancelled})
	if err != nil {
		return 0, fmt.Errorf("lawn: failed to save job update: %w", err)
	}
	res.MarkApplied()

	s.Emit(&core.JobsUpdated{Affected: affected, Timestamp: time.Now()})
	return affected, nil
}

// EditJob applies a field update at the given breadth. Bulk scopes drop
// date and other per-occurrence fields; status never changes through an
// edit. Edits against a terminal occurrence are rejected.
func (s *Service) EditJob(ctx context.Context, id string, sc scope.Scope, patch core.Patch) (int64, error) {
	if patch.Status != nil {
		return 0, core.ErrStatusImmutable
	}

	job, res, err := s.resolve(ctx, id, sc)
	if err != nil {
		return 0, err
	}
	if job.Status.Terminal() {
		return 0, &core.TransitionError{JobID: id, From: job.Status, To: job.Status}
	}

	if res.Scope() != scope.ScopeSingle {
		patch = patch.WithoutOccurrenceFields()
	}
	if patch.IsZero() {
		return 0, core.ErrEmptyPatch
	}

	pred, err := res.Target()
	if err != nil {
		return 0, err
	}

	affected, err := s.store.UpdateWhere(ctx, pred, patch)
	if err != nil {
		return 0, fmt.Errorf("lawn: failed to save job update: %w", err)
	}
	res.MarkApplied()

	s.Emit(&core.JobsUpdated{Affected: affected, Timestamp: time.Now()})
	return affected, nil
}

// DeleteJob hard-deletes the selected occurrence at the given breadth.
// When archiving is enabled a snapshot is written first; calendar entries
// of the removed jobs are queued for deletion. Deleting an already-deleted
// id or series reports zero affected rows rather than failing.
func (s *Service) DeleteJob(ctx context.Context, id string, sc scope.Scope) (int64, error) {
	_, res, err := s.resolve(ctx, id, sc)
	if err != nil {
		if errors.Is(err, core.ErrJobNotFound) {
			return 0, nil
		}
		return 0, err
	}

	pred, err := res.Target()
	if err != nil {
		return 0, err
	}

	// Fetch the target set before it is gone: the archive snapshot and
	// the calendar deletes both need the rows.
	targets, err := s.store.FindWhere(ctx, pred)
	if err != nil {
		return 0, err
	}

	archived := false
	if s.archiver != nil && len(targets) > 0 {
		if err := s.archiver.Snapshot(ctx, targets); err != nil {
			return 0, fmt.Errorf("lawn: failed to archive before delete: %w", err)
		}
		archived = true
	}

	affected, err := s.store.DeleteWhere(ctx, pred)
	if err != nil {
		return 0, fmt.Errorf("lawn: failed to delete jobs: %w", err)
	}
	res.MarkApplied()

	for _, job := range targets {
		if job.CalendarEventID != "" {
			s.enqueueSync(ctx, &calsync.SyncTask{
				Kind:    calsync.KindDeleteEvent,
				JobID:   job.ID,
				EventID: job.CalendarEventID,
			})
		}
	}

	s.Emit(&core.JobsDeleted{Affected: affected, Archived: archived, Timestamp: time.Now()})
	return affected, nil
}

// BeginAction starts a scope resolution for the UI: the caller inspects
// NeedsChoice/Choices, collects the user's selection and passes it to the
// mutation operations above.
func (s *Service) BeginAction(ctx context.Context, id string) (*scope.Resolution, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return scope.Begin(job), nil
}

// resolve runs the scope state machine for a one-shot mutation call. For a
// non-recurring job the passed scope is ignored and single is forced.
func (s *Service) resolve(ctx context.Context, id string, sc scope.Scope) (*core.Job, *scope.Resolution, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	res := scope.Begin(job)
	if res.NeedsChoice() {
		if err := res.Choose(sc); err != nil {
			return nil, nil, err
		}
	}
	return job, res, nil
}

// enqueueSync queues a calendar task. Sync is optional and best-effort;
// enqueue failures are logged and swallowed so they never block the
// primary mutation.
func (s *Service) enqueueSync(ctx context.Context, task *calsync.SyncTask) {
	if s.tasks == nil {
		return
	}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		s.logger.Warn("failed to enqueue calendar sync task",
			"kind", task.Kind, "job", task.JobID, "error", err)
	}
}

// Events returns a channel for receiving service events.
// The caller must call Unsubscribe when done to prevent resource leaks.
func (s *Service) Events() <-chan core.Event {
	ch := make(chan core.Event, 100)
	s.mu.Lock()
	s.eventSubs = append(s.eventSubs, ch)
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel created by Events().
func (s *Service) Unsubscribe(ch <-chan core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.eventSubs {
		if sub == ch {
			s.eventSubs = append(s.eventSubs[:i], s.eventSubs[i+1:]...)
			return
		}
	}
}

// Emit broadcasts an event to all subscribers without blocking on slow
// consumers.
func (s *Service) Emit(e core.Event) {
	s.mu.RLock()
	subs := make([]chan core.Event, len(s.eventSubs))
	copy(subs, s.eventSubs)
	s.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			// Drop if full
		}
	}
}
