// Package archive keeps pre-delete snapshots of job records.
//
// Hard deletes are irreversible in the primary flow; when archiving is
// enabled, a snapshot row is written for every job just before it is
// removed. A cron-scheduled sweeper prunes snapshots past the retention
// window.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

// ArchivedJob is a point-in-time snapshot of a job taken before deletion.
type ArchivedJob struct {
	ID          string          `gorm:"primaryKey;size:36"`
	JobID       string          `gorm:"index;size:36;not null"`
	RecurringID *string         `gorm:"index;size:36"`
	Title       string          `gorm:"size:255"`
	StartTime   time.Time       `gorm:"index"`
	Status      core.JobStatus  `gorm:"size:20"`
	Snapshot    json.RawMessage `gorm:"type:text"`
	ArchivedAt  time.Time       `gorm:"index;autoCreateTime"`
}

// Archiver writes and prunes job snapshots.
type Archiver struct {
	db *gorm.DB
}

// NewArchiver creates a gorm-backed archiver.
func NewArchiver(db *gorm.DB) *Archiver {
	return &Archiver{db: db}
}

// Migrate creates the archive table.
func (a *Archiver) Migrate(ctx context.Context) error {
	return a.db.WithContext(ctx).AutoMigrate(&ArchivedJob{})
}

// Snapshot archives the given jobs. Called immediately before a hard
// delete; an empty batch is a no-op.
func (a *Archiver) Snapshot(ctx context.Context, jobs []*core.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	rows := make([]*ArchivedJob, 0, len(jobs))
	for _, job := range jobs {
		raw, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("lawn: snapshot job %s: %w", job.ID, err)
		}
		rows = append(rows, &ArchivedJob{
			ID:          uuid.New().String(),
			JobID:       job.ID,
			RecurringID: job.RecurringID,
			Title:       job.Title,
			StartTime:   job.StartTime,
			Status:      job.Status,
			Snapshot:    raw,
		})
	}
	return a.db.WithContext(ctx).Create(rows).Error
}

// Prune removes snapshots archived before the cutoff and returns the
// number removed.
func (a *Archiver) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result := a.db.WithContext(ctx).
		Where("archived_at < ?", cutoff).
		Delete(&ArchivedJob{})
	return result.RowsAffected, result.Error
}

// List returns snapshots, newest first.
func (a *Archiver) List(ctx context.Context, limit int) ([]*ArchivedJob, error) {
	var rows []*ArchivedJob
	err := a.db.WithContext(ctx).
		Order("archived_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
