package lawn_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	lawn "github.com/koolBEANS829/jls-lawn-tracker"
)

// Exercises the root package end to end: open a mirror, build a client
// with no remote configured, schedule a series and act on it.
func TestFacade(t *testing.T) {
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "lawn.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	local := lawn.NewLocalStore(db)
	require.NoError(t, local.Migrate(ctx))

	client := lawn.NewClient(ctx, nil, local, lawn.DefaultProbeConfig())
	assert.Equal(t, lawn.ModeLocal, client.Mode())

	svc := lawn.NewService(client)

	created, err := svc.CreateJob(ctx, lawn.Request{
		Template: lawn.Job{
			Title:     "Front lawn",
			StartTime: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
			JobType:   lawn.TypeMowing,
		},
		Recurring: true,
		Frequency: lawn.FrequencyWeekly,
		Count:     3,
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	res, err := svc.BeginAction(ctx, created[1].ID)
	require.NoError(t, err)
	require.True(t, res.NeedsChoice())

	affected, err := svc.CancelJob(ctx, created[1].ID, lawn.ScopeFuture)
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	require.NoError(t, svc.MarkDone(ctx, created[0].ID))
	err = svc.MarkDone(ctx, created[0].ID)
	require.ErrorIs(t, err, lawn.ErrTerminalStatus)
}

func TestFacadeExpand(t *testing.T) {
	jobs, err := lawn.Expand(lawn.Request{
		Template: lawn.Job{
			Title:     "Hedges",
			StartTime: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
			JobType:   lawn.TypeHedge,
		},
		Recurring: true,
		Frequency: lawn.FrequencyBiweekly,
		Count:     2,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, 14*24*time.Hour, jobs[1].StartTime.Sub(jobs[0].StartTime))
}
