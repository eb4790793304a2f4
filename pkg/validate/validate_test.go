package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

func validJob() *core.Job {
	return &core.Job{
		Title:     "Back garden hedge",
		StartTime: time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local),
		JobType:   core.TypeHedge,
	}
}

func TestJob_Valid(t *testing.T) {
	assert.NoError(t, Job(validJob()))
}

func TestJob_MissingTitle(t *testing.T) {
	j := validJob()
	j.Title = "   "
	assert.ErrorIs(t, Job(j), core.ErrMissingTitle)
}

func TestJob_TitleTooLong(t *testing.T) {
	j := validJob()
	j.Title = strings.Repeat("x", MaxTitleLength+1)
	assert.ErrorIs(t, Job(j), core.ErrTitleTooLong)
}

func TestJob_MissingStartTime(t *testing.T) {
	j := validJob()
	j.StartTime = time.Time{}
	assert.ErrorIs(t, Job(j), core.ErrMissingStartTime)
}

func TestJob_UnknownType(t *testing.T) {
	j := validJob()
	j.JobType = "topiary"
	assert.ErrorIs(t, Job(j), core.ErrInvalidJobType)
}

func TestJob_NegativePrice(t *testing.T) {
	j := validJob()
	price := -1.0
	j.Price = &price
	assert.ErrorIs(t, Job(j), core.ErrInvalidPrice)
}

func TestJob_BadPhone(t *testing.T) {
	j := validJob()
	j.ClientPhone = "call me maybe"
	assert.ErrorIs(t, Job(j), core.ErrInvalidPhone)
}

func TestPhone(t *testing.T) {
	assert.True(t, Phone(""))
	assert.True(t, Phone("+1 (555) 123-4567"))
	assert.True(t, Phone("555.123.4567"))
	assert.False(t, Phone("not-a-number!"))
	assert.False(t, Phone(strings.Repeat("1", MaxPhoneLength+1)))
}

func TestSanitizeNotes(t *testing.T) {
	assert.Equal(t, "gate code 4417\nwatch the dog", SanitizeNotes("gate code 4417\nwatch the dog"))
	assert.Equal(t, "abc", SanitizeNotes("a\x00b\x01c"))

	long := strings.Repeat("n", MaxNotesLength+100)
	assert.Len(t, SanitizeNotes(long), MaxNotesLength)
}
