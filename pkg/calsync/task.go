package calsync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskKind distinguishes the two sync operations.
type TaskKind string

const (
	KindCreateEvent TaskKind = "create-event"
	KindDeleteEvent TaskKind = "delete-event"
)

// TaskStatus is the lifecycle of a sync task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// SyncTask is one queued calendar mirror operation.
type SyncTask struct {
	ID     string     `gorm:"primaryKey;size:36"`
	Kind   TaskKind   `gorm:"index;size:20;not null"`
	JobID  string     `gorm:"index;size:36"`
	Status TaskStatus `gorm:"index;size:20;default:'pending'"`

	// EventID is the external calendar entry to delete; only set for
	// delete-event tasks.
	EventID string `gorm:"size:255"`

	LastError   string `gorm:"type:text"`
	LockedBy    string `gorm:"size:255"`
	LockedUntil *time.Time

	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	CompletedAt *time.Time
}

// TaskStore persists sync tasks next to the local mirror.
type TaskStore struct {
	db *gorm.DB
}

// NewTaskStore creates a gorm-backed task queue.
func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

// Migrate creates the sync task table.
func (s *TaskStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&SyncTask{})
}

// Enqueue adds a task to the queue.
func (s *TaskStore) Enqueue(ctx context.Context, task *SyncTask) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = TaskPending
	}
	return s.db.WithContext(ctx).Create(task).Error
}

// Dequeue fetches and locks the oldest ready task, or returns nil when the
// queue is empty. A running task whose lock has expired is treated as
// abandoned (its worker died mid-task) and handed out again.
func (s *TaskStore) Dequeue(ctx context.Context, workerID string) (*SyncTask, error) {
	var task SyncTask
	now := time.Now()
	lockUntil := now.Add(2 * time.Minute)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("status = ? OR (status = ? AND locked_until < ?)", TaskPending, TaskRunning, now).
			Order("created_at ASC").
			First(&task)

		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil
			}
			return result.Error
		}

		task.Status = TaskRunning
		task.LockedBy = workerID
		task.LockedUntil = &lockUntil

		return tx.Save(&task).Error
	})

	if err != nil {
		return nil, err
	}
	if task.ID == "" {
		return nil, nil
	}
	return &task, nil
}

// Complete marks a task as successfully executed.
func (s *TaskStore) Complete(ctx context.Context, taskID string) error {
	now := time.Now()
	return s.db.WithContext(ctx).
		Model(&SyncTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":       TaskCompleted,
			"completed_at": now,
			"locked_by":    "",
			"locked_until": nil,
		}).Error
}

// Fail marks a task as failed. Sync is best-effort, so failed is terminal;
// no retry is scheduled.
func (s *TaskStore) Fail(ctx context.Context, taskID string, errMsg string) error {
	now := time.Now()
	return s.db.WithContext(ctx).
		Model(&SyncTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":       TaskFailed,
			"last_error":   errMsg,
			"completed_at": now,
			"locked_by":    "",
			"locked_until": nil,
		}).Error
}

// GetByStatus returns tasks in the given status, oldest first.
func (s *TaskStore) GetByStatus(ctx context.Context, status TaskStatus, limit int) ([]*SyncTask, error) {
	var tasks []*SyncTask
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}
