package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusDone))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))

	// Terminal states never move again
	assert.False(t, StatusDone.CanTransitionTo(StatusPending))
	assert.False(t, StatusDone.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusPending))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusDone))

	// Self-transitions are not transitions
	assert.False(t, StatusPending.CanTransitionTo(StatusPending))
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestFrequency_IntervalDays(t *testing.T) {
	assert.Equal(t, 7, FrequencyWeekly.IntervalDays())
	assert.Equal(t, 14, FrequencyBiweekly.IntervalDays())
	assert.Equal(t, 30, FrequencyMonthly.IntervalDays())
	assert.Equal(t, 0, Frequency("quarterly").IntervalDays())
	assert.False(t, Frequency("").Valid())
}

func TestJob_InSeries(t *testing.T) {
	j := &Job{IsRecurring: false}
	assert.False(t, j.InSeries())

	id := "series-1"
	j = &Job{IsRecurring: true, RecurringID: &id}
	assert.True(t, j.InSeries())

	// Flag without an id is not a series
	j = &Job{IsRecurring: true}
	assert.False(t, j.InSeries())
}

func TestPatch_Fields(t *testing.T) {
	title := "Front lawn"
	price := 45.0
	when := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)

	p := Patch{Title: &title, Price: &price, StartTime: &when}
	fields := p.Fields()
	assert.Equal(t, "Front lawn", fields["title"])
	assert.Equal(t, 45.0, fields["price"])
	assert.Contains(t, fields, "start_time")
	assert.NotContains(t, fields, "notes")

	stripped := p.WithoutOccurrenceFields()
	assert.NotContains(t, stripped.Fields(), "start_time")
	assert.Contains(t, stripped.Fields(), "title")

	assert.True(t, Patch{}.IsZero())
	assert.False(t, p.IsZero())
}
