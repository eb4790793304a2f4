package archive

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper prunes old snapshots on a cron schedule.
type Sweeper struct {
	archiver  *Archiver
	retention time.Duration
	spec      string
	logger    *slog.Logger
	cron      *cron.Cron
}

// NewSweeper creates a sweeper. spec is a standard 5-field cron expression
// (e.g. "0 3 * * *" for 3am daily); retention is how long snapshots are
// kept.
func NewSweeper(archiver *Archiver, spec string, retention time.Duration) *Sweeper {
	return &Sweeper{
		archiver:  archiver,
		retention: retention,
		spec:      spec,
		logger:    slog.Default(),
	}
}

// Start schedules the sweep and runs until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, func() { s.sweep(ctx) }); err != nil {
		return err
	}
	s.cron.Start()

	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

// Sweep prunes immediately, outside the schedule.
func (s *Sweeper) Sweep(ctx context.Context) {
	s.sweep(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)
	removed, err := s.archiver.Prune(ctx, cutoff)
	if err != nil {
		s.logger.Error("archive sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("archive sweep removed snapshots", "count", removed)
	}
}
