// Package validate checks job submissions at the boundary closest to user
// input, before anything reaches the store layer.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

// Field limits
const (
	// MaxTitleLength is the maximum length for job titles
	MaxTitleLength = 255

	// MaxNotesLength is the maximum length for job notes
	MaxNotesLength = 4096

	// MaxAddressLength is the maximum length for addresses
	MaxAddressLength = 512

	// MaxPhoneLength is the maximum length for client phone numbers
	MaxPhoneLength = 32
)

// validPhone accepts digits, spaces, dashes, parens and a leading plus.
var validPhone = regexp.MustCompile(`^\+?[0-9()\-\s.]*$`)

// Job validates a job template before expansion. Validation failures abort
// the operation before any persistence.
func Job(j *core.Job) error {
	if strings.TrimSpace(j.Title) == "" {
		return core.ErrMissingTitle
	}
	if utf8.RuneCountInString(j.Title) > MaxTitleLength {
		return core.ErrTitleTooLong
	}
	if j.StartTime.IsZero() {
		return core.ErrMissingStartTime
	}
	if j.JobType != core.TypeMowing && j.JobType != core.TypeHedge {
		return core.ErrInvalidJobType
	}
	if j.Price != nil && *j.Price < 0 {
		return core.ErrInvalidPrice
	}
	if utf8.RuneCountInString(j.Notes) > MaxNotesLength {
		return core.ErrNotesTooLong
	}
	if !Phone(j.ClientPhone) {
		return core.ErrInvalidPhone
	}
	return nil
}

// Phone validates a client phone number. Empty is allowed.
func Phone(p string) bool {
	if p == "" {
		return true
	}
	if len(p) > MaxPhoneLength {
		return false
	}
	return validPhone.MatchString(p)
}

// SanitizeNotes trims control characters (except newlines and tabs) and
// truncates to the storage limit.
func SanitizeNotes(notes string) string {
	if notes == "" {
		return ""
	}

	var sanitized strings.Builder
	sanitized.Grow(len(notes))
	for _, r := range notes {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	out := sanitized.String()
	if utf8.RuneCountInString(out) > MaxNotesLength {
		runes := []rune(out)
		out = string(runes[:MaxNotesLength])
	}
	return out
}
