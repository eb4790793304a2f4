package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

func template(start time.Time) core.Job {
	return core.Job{
		Title:     "Front lawn",
		StartTime: start,
		JobType:   core.TypeMowing,
		Address:   "12 Elm St",
	}
}

func TestExpand_OneOff(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)
	jobs, err := Expand(Request{Template: template(start)})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Nil(t, jobs[0].RecurringID)
	assert.False(t, jobs[0].IsRecurring)
	assert.Equal(t, 1, jobs[0].OccurrenceNumber)
	assert.Equal(t, core.StatusPending, jobs[0].Status)
	assert.True(t, start.Equal(jobs[0].StartTime))
}

func TestExpand_WeeklySeries(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)
	jobs, err := Expand(Request{
		Template:  template(start),
		Recurring: true,
		Frequency: core.FrequencyWeekly,
		Count:     3,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	wantDates := []time.Time{
		time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local),
		time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local),
		time.Date(2024, 6, 17, 9, 0, 0, 0, time.Local),
	}

	require.NotNil(t, jobs[0].RecurringID)
	seriesID := *jobs[0].RecurringID
	assert.NotEmpty(t, seriesID)

	for i, job := range jobs {
		assert.True(t, wantDates[i].Equal(job.StartTime), "occurrence %d start", i+1)
		assert.Equal(t, i+1, job.OccurrenceNumber)
		assert.True(t, job.IsRecurring)
		require.NotNil(t, job.RecurringID)
		assert.Equal(t, seriesID, *job.RecurringID)
		assert.Equal(t, 7, job.IntervalDays)
		assert.Equal(t, core.FrequencyWeekly, job.Frequency)
	}
}

func TestExpand_IntervalSpacing(t *testing.T) {
	cases := []struct {
		freq core.Frequency
		days int
	}{
		{core.FrequencyWeekly, 7},
		{core.FrequencyBiweekly, 14},
		{core.FrequencyMonthly, 30},
	}

	// Local dates on purpose: a monthly run from mid-January crosses DST
	// switches in most zones that observe it, and occurrences must keep
	// their calendar spacing and wall-clock time regardless.
	start := time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local)
	for _, tc := range cases {
		jobs, err := Expand(Request{
			Template:  template(start),
			Recurring: true,
			Frequency: tc.freq,
			Count:     4,
		})
		require.NoError(t, err, tc.freq)
		require.Len(t, jobs, 4, tc.freq)

		for i, job := range jobs {
			want := start.AddDate(0, 0, i*tc.days)
			assert.True(t, want.Equal(job.StartTime), "%s occurrence %d: want %v got %v",
				tc.freq, i+1, want, job.StartTime)
			assert.Equal(t, 14, job.StartTime.Hour(), "%s occurrence %d keeps its time of day", tc.freq, i+1)
			assert.Equal(t, 30, job.StartTime.Minute())
		}
	}
}

func TestExpand_MonthlyIsFixedThirtyDays(t *testing.T) {
	// "Monthly" is a 30-day step, so a Jan 31 start lands on Mar 1, not Feb 29.
	start := time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local)
	jobs, err := Expand(Request{
		Template:  template(start),
		Recurring: true,
		Frequency: core.FrequencyMonthly,
		Count:     2,
	})
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local).Equal(jobs[1].StartTime))
}

func TestExpand_RejectsTooFewOccurrences(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)
	for _, count := range []int{0, 1, -5} {
		_, err := Expand(Request{
			Template:  template(start),
			Recurring: true,
			Frequency: core.FrequencyWeekly,
			Count:     count,
		})
		assert.ErrorIs(t, err, core.ErrTooFewOccurrences, "count=%d", count)
	}
}

func TestExpand_RejectsUnknownFrequency(t *testing.T) {
	_, err := Expand(Request{
		Template:  template(time.Now()),
		Recurring: true,
		Frequency: "fortnightly-ish",
		Count:     3,
	})
	assert.ErrorIs(t, err, core.ErrInvalidFrequency)
}

func TestExpand_RejectsOversizedSeries(t *testing.T) {
	_, err := Expand(Request{
		Template:  template(time.Now()),
		Recurring: true,
		Frequency: core.FrequencyWeekly,
		Count:     MaxOccurrences + 1,
	})
	assert.ErrorIs(t, err, core.ErrTooManyOccurrences)
}

func TestExpand_DistinctSeriesIDs(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)
	req := Request{Template: template(start), Recurring: true, Frequency: core.FrequencyWeekly, Count: 2}

	a, err := Expand(req)
	require.NoError(t, err)
	b, err := Expand(req)
	require.NoError(t, err)

	assert.NotEqual(t, *a[0].RecurringID, *b[0].RecurringID)
}
