package core

import (
	"time"
)

// JobStatus represents the lifecycle state of a single occurrence.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusDone      JobStatus = "done"      // Completed, terminal
	StatusCancelled JobStatus = "cancelled" // Cancelled, terminal
)

// CanTransitionTo reports whether a status change is allowed. Transitions
// only move forward: pending may become done or cancelled, and both of
// those are terminal for the occurrence.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s == next {
		return false
	}
	if s != StatusPending {
		return false
	}
	return next == StatusDone || next == StatusCancelled
}

// Terminal reports whether no further status changes are allowed.
func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// JobType is the kind of work performed at a visit.
type JobType string

const (
	TypeMowing JobType = "mowing"
	TypeHedge  JobType = "hedge"
)

// Frequency is how often a recurring series repeats.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	// FrequencyMonthly is a fixed 30-day step, not calendar-month aware.
	// A monthly series drifts against calendar months over time.
	FrequencyMonthly Frequency = "monthly"
)

// IntervalDays returns the number of days between occurrences, or 0 for an
// unknown frequency.
func (f Frequency) IntervalDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return 30
	}
	return 0
}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	return f.IntervalDays() > 0
}

// Job is the canonical job record. Every boundary (remote rows, local mirror
// rows, API payloads) maps onto this one shape.
type Job struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	StartTime time.Time `gorm:"index;not null" json:"start_time"`
	JobType   JobType   `gorm:"size:20;not null" json:"job_type"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	Price     *float64  `json:"price,omitempty"`
	Address   string    `gorm:"size:512" json:"address,omitempty"`

	ClientPhone string    `gorm:"size:32" json:"client_phone,omitempty"`
	Status      JobStatus `gorm:"index;size:20;default:'pending'" json:"status"`

	// Series membership. RecurringID is shared by every occurrence of one
	// series and nil for one-off jobs.
	RecurringID      *string   `gorm:"index;size:36" json:"recurring_id,omitempty"`
	IsRecurring      bool      `gorm:"default:false" json:"is_recurring"`
	Frequency        Frequency `gorm:"size:20" json:"frequency,omitempty"`
	IntervalDays     int       `gorm:"default:0" json:"interval_days,omitempty"`
	OccurrenceNumber int       `gorm:"default:1" json:"occurrence_number"`

	// CalendarEventID is the opaque id of the mirrored external calendar
	// entry, persisted back after a successful sync.
	CalendarEventID string `gorm:"size:255" json:"calendar_event_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InSeries reports whether the job belongs to a recurring series.
func (j *Job) InSeries() bool {
	return j.IsRecurring && j.RecurringID != nil && *j.RecurringID != ""
}

// Patch is a partial update applied to one or more jobs. Nil fields are left
// untouched. StartTime is per-occurrence: bulk edits strip it via
// WithoutOccurrenceFields before touching a series.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	JobType     *JobType   `json:"job_type,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Address     *string    `json:"address,omitempty"`
	ClientPhone *string    `json:"client_phone,omitempty"`
	Status      *JobStatus `json:"status,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`

	CalendarEventID *string `json:"calendar_event_id,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Title == nil && p.JobType == nil && p.Notes == nil &&
		p.Price == nil && p.Address == nil && p.ClientPhone == nil &&
		p.Status == nil && p.StartTime == nil && p.CalendarEventID == nil
}

// Fields returns the patch as a column→value map suitable for a bulk update.
func (p Patch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.JobType != nil {
		fields["job_type"] = *p.JobType
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.Address != nil {
		fields["address"] = *p.Address
	}
	if p.ClientPhone != nil {
		fields["client_phone"] = *p.ClientPhone
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.StartTime != nil {
		fields["start_time"] = *p.StartTime
	}
	if p.CalendarEventID != nil {
		fields["calendar_event_id"] = *p.CalendarEventID
	}
	return fields
}

// WithoutOccurrenceFields strips the per-occurrence fields so the patch is
// safe to apply across a whole series.
func (p Patch) WithoutOccurrenceFields() Patch {
	p.StartTime = nil
	return p
}
