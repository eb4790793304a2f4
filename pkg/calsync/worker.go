package calsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/store"
)

// Worker drains the sync task queue in the background.
type Worker struct {
	tasks    *TaskStore
	jobs     store.Storage
	calendar Calendar
	config   WorkerConfig
	logger   *slog.Logger
	emit     func(core.Event)
	wg       sync.WaitGroup
}

// NewWorker creates a sync worker.
func NewWorker(tasks *TaskStore, jobs store.Storage, calendar Calendar, opts ...WorkerOption) *Worker {
	config := WorkerConfig{
		PollInterval: 500 * time.Millisecond,
		Concurrency:  2,
		WorkerID:     uuid.New().String(),
	}
	for _, opt := range opts {
		opt.ApplyWorker(&config)
	}

	return &Worker{
		tasks:    tasks,
		jobs:     jobs,
		calendar: calendar,
		config:   config,
		logger:   slog.Default(),
		emit:     func(core.Event) {},
	}
}

// SetEmitter installs an event sink for sync outcomes.
func (w *Worker) SetEmitter(fn func(core.Event)) {
	if fn != nil {
		w.emit = fn
	}
}

// Start begins draining tasks. Blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	taskChan := make(chan *SyncTask, w.config.Concurrency)

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.processLoop(ctx, taskChan)
	}

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(taskChan)
			w.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			task, err := w.tasks.Dequeue(ctx, w.config.WorkerID)
			if err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					w.logger.Error("failed to dequeue sync task", "error", err)
				}
				continue
			}
			if task != nil {
				select {
				case taskChan <- task:
				case <-ctx.Done():
				}
			}
		}
	}
}

func (w *Worker) processLoop(ctx context.Context, taskChan <-chan *SyncTask) {
	defer w.wg.Done()
	for task := range taskChan {
		w.process(ctx, task)
	}
}

// process runs one task to completion. Failures are terminal and
// invisible to the primary flow: logged, recorded on the task, emitted as
// an event, and never retried.
func (w *Worker) process(ctx context.Context, task *SyncTask) {
	var err error
	switch task.Kind {
	case KindCreateEvent:
		err = w.createEvent(ctx, task)
	case KindDeleteEvent:
		err = w.calendar.DeleteEvent(ctx, task.EventID)
	default:
		err = errors.New("lawn: unknown sync task kind " + string(task.Kind))
	}

	if err != nil {
		w.logger.Warn("calendar sync failed",
			"task", task.ID, "kind", task.Kind, "job", task.JobID, "error", err)
		if failErr := w.tasks.Fail(ctx, task.ID, err.Error()); failErr != nil {
			w.logger.Error("failed to record sync failure", "task", task.ID, "error", failErr)
		}
		w.emit(&core.SyncFailed{JobID: task.JobID, Error: err, Timestamp: time.Now()})
		return
	}

	if err := w.tasks.Complete(ctx, task.ID); err != nil {
		w.logger.Error("failed to complete sync task", "task", task.ID, "error", err)
	}
}

func (w *Worker) createEvent(ctx context.Context, task *SyncTask) error {
	job, err := w.jobs.Get(ctx, task.JobID)
	if err != nil {
		if errors.Is(err, core.ErrJobNotFound) {
			// Deleted before the mirror caught up; nothing to sync.
			return nil
		}
		return err
	}

	eventID, err := w.calendar.CreateEvent(ctx, job)
	if err != nil {
		return err
	}

	// Persist the external id back onto the job so a later delete can
	// find the entry. Best-effort like the rest of sync.
	patch := core.Patch{CalendarEventID: &eventID}
	if err := w.jobs.Update(ctx, task.JobID, patch); err != nil && !errors.Is(err, core.ErrJobNotFound) {
		w.logger.Warn("failed to persist calendar event id", "job", task.JobID, "error", err)
	}

	w.emit(&core.SyncCompleted{JobID: task.JobID, EventID: eventID, Timestamp: time.Now()})
	return nil
}

// Drain processes every currently pending task once, synchronously. Used
// by tests and by shutdown to flush the queue without the poll loop.
func (w *Worker) Drain(ctx context.Context) error {
	for {
		task, err := w.tasks.Dequeue(ctx, w.config.WorkerID)
		if err != nil {
			return err
		}
		if task == nil {
			return nil
		}
		w.process(ctx, task)
	}
}
