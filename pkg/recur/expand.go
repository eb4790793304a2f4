package recur

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

// MaxOccurrences is a safety cap so a malformed request cannot materialize
// an unbounded series.
const MaxOccurrences = 366

// Request describes one job submission, possibly recurring.
type Request struct {
	Template  core.Job       // field values copied onto every occurrence
	Recurring bool           // whether a series was explicitly requested
	Frequency core.Frequency // required when Recurring
	Count     int            // number of occurrences; >= 2 when Recurring
}

// Expand turns a request into 1..N dated occurrences.
//
// For a one-off request exactly one record is produced with a nil series id.
// For a recurring request, Count occurrences are produced at
// Template.StartTime + i*IntervalDays(Frequency), sharing a freshly
// generated series id, with OccurrenceNumber running 1..Count. The interval
// mapping is fixed-day (weekly=7, biweekly=14, monthly=30); "monthly" is
// deliberately not calendar-month aware.
func Expand(req Request) ([]*core.Job, error) {
	if !req.Recurring {
		job := req.Template
		job.IsRecurring = false
		job.RecurringID = nil
		job.Frequency = ""
		job.IntervalDays = 0
		job.OccurrenceNumber = 1
		if job.Status == "" {
			job.Status = core.StatusPending
		}
		return []*core.Job{&job}, nil
	}

	if !req.Frequency.Valid() {
		return nil, core.ErrInvalidFrequency
	}
	if req.Count < 2 {
		return nil, core.ErrTooFewOccurrences
	}
	if req.Count > MaxOccurrences {
		return nil, core.ErrTooManyOccurrences
	}

	interval := req.Frequency.IntervalDays()
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: interval,
		Count:    req.Count,
		Dtstart:  req.Template.StartTime,
	})
	if err != nil {
		return nil, fmt.Errorf("lawn: build recurrence rule: %w", err)
	}

	starts := rule.All()
	if len(starts) != req.Count {
		return nil, fmt.Errorf("lawn: recurrence produced %d of %d occurrences", len(starts), req.Count)
	}

	seriesID := uuid.New().String()
	out := make([]*core.Job, 0, req.Count)
	for i, start := range starts {
		job := req.Template
		job.StartTime = start
		job.IsRecurring = true
		job.RecurringID = &seriesID
		job.Frequency = req.Frequency
		job.IntervalDays = interval
		job.OccurrenceNumber = i + 1
		if job.Status == "" {
			job.Status = core.StatusPending
		}
		out = append(out, &job)
	}
	return out, nil
}
