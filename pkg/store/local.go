package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

// LocalStore is the on-device job mirror, backed by gorm.
type LocalStore struct {
	db *gorm.DB
}

// NewLocalStore creates a gorm-backed local mirror.
func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db}
}

// Migrate creates the jobs table.
func (s *LocalStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&core.Job{})
}

// DB exposes the underlying handle so sibling packages (sync tasks,
// archive) can share one database file.
func (s *LocalStore) DB() *gorm.DB {
	return s.db
}

func (s *LocalStore) List(ctx context.Context) ([]*core.Job, error) {
	var jobs []*core.Job
	err := s.db.WithContext(ctx).
		Order("start_time ASC, occurrence_number ASC").
		Find(&jobs).Error
	return jobs, err
}

func (s *LocalStore) Get(ctx context.Context, id string) (*core.Job, error) {
	var job core.Job
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *LocalStore) CreateBatch(ctx context.Context, jobs []*core.Job) ([]*core.Job, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	for _, job := range jobs {
		if job.ID == "" {
			job.ID = uuid.New().String()
		}
		if job.Status == "" {
			job.Status = core.StatusPending
		}
	}
	if err := s.db.WithContext(ctx).Create(jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *LocalStore) FindWhere(ctx context.Context, pred Predicate) ([]*core.Job, error) {
	var jobs []*core.Job
	err := s.scoped(ctx, pred).
		Order("start_time ASC, occurrence_number ASC").
		Find(&jobs).Error
	return jobs, err
}

// ReplaceAll swaps the whole mirror for the given records in one
// transaction.
func (s *LocalStore) ReplaceAll(ctx context.Context, jobs []*core.Job) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&core.Job{}).Error; err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}
		return tx.Create(jobs).Error
	})
}

func (s *LocalStore) Update(ctx context.Context, id string, patch core.Patch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return core.ErrEmptyPatch
	}
	result := s.db.WithContext(ctx).
		Model(&core.Job{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrJobNotFound
	}
	return nil
}

func (s *LocalStore) UpdateWhere(ctx context.Context, pred Predicate, patch core.Patch) (int64, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return 0, core.ErrEmptyPatch
	}
	result := s.scoped(ctx, pred).Updates(fields)
	return result.RowsAffected, result.Error
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&core.Job{}, "id = ?", id).Error
}

func (s *LocalStore) DeleteWhere(ctx context.Context, pred Predicate) (int64, error) {
	result := s.scoped(ctx, pred).Delete(&core.Job{})
	return result.RowsAffected, result.Error
}

// scoped translates a predicate into a gorm query over the jobs table.
func (s *LocalStore) scoped(ctx context.Context, pred Predicate) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&core.Job{})
	if pred.PendingOnly {
		tx = tx.Where("status = ?", core.StatusPending)
	}
	if pred.ID != "" {
		return tx.Where("id = ?", pred.ID)
	}
	tx = tx.Where("recurring_id = ?", pred.RecurringID)
	if pred.From != nil {
		tx = tx.Where("start_time >= ?", *pred.From)
	}
	return tx
}
