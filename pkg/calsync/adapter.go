package calsync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

// Calendar is the external calendar boundary: two operations keyed by an
// opaque event id.
type Calendar interface {
	// CreateEvent mirrors the job into the calendar and returns the
	// external event id.
	CreateEvent(ctx context.Context, job *core.Job) (string, error)

	// DeleteEvent removes the external entry.
	DeleteEvent(ctx context.Context, eventID string) error
}

// Event colors by job type, following RFC 7986 COLOR (CSS color names).
var eventColors = map[core.JobType]string{
	core.TypeMowing: "green",
	core.TypeHedge:  "darkolivegreen",
}

// Visit durations used for the mirrored event's time window.
var eventDurations = map[core.JobType]time.Duration{
	core.TypeMowing: time.Hour,
	core.TypeHedge:  2 * time.Hour,
}

// HTTPCalendar pushes iCalendar payloads to a calendar service that stores
// events under /events/{id}.ics.
type HTTPCalendar struct {
	baseURL string
	token   string
	client  *http.Client
}

// CalendarOption configures an HTTPCalendar.
type CalendarOption func(*HTTPCalendar)

// WithCalendarHTTPClient overrides the HTTP client, mainly for tests.
func WithCalendarHTTPClient(c *http.Client) CalendarOption {
	return func(h *HTTPCalendar) { h.client = c }
}

// NewHTTPCalendar creates a calendar client rooted at baseURL.
func NewHTTPCalendar(baseURL, token string, opts ...CalendarOption) *HTTPCalendar {
	h := &HTTPCalendar{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPCalendar) CreateEvent(ctx context.Context, job *core.Job) (string, error) {
	eventID := uuid.New().String()
	payload := BuildEvent(eventID, job)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.eventURL(eventID), strings.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/calendar; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("lawn: calendar create returned %d: %s", resp.StatusCode, string(body))
	}
	return eventID, nil
}

func (h *HTTPCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.eventURL(eventID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// A 404 means the entry is already gone, which is the desired result.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("lawn: calendar delete returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (h *HTTPCalendar) eventURL(eventID string) string {
	return h.baseURL + "/events/" + eventID + ".ics"
}

// BuildEvent renders a job as a single-VEVENT iCalendar payload. Summary,
// description, time window and color are derived from the job fields.
func BuildEvent(eventID string, job *core.Job) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//jls-lawn-tracker//EN")

	event := cal.AddEvent(eventID)
	now := time.Now()
	event.SetCreatedTime(now)
	event.SetDtStampTime(now)
	event.SetStartAt(job.StartTime)
	event.SetEndAt(job.StartTime.Add(eventDurations[job.JobType]))
	event.SetSummary(summaryFor(job))
	event.SetLocation(job.Address)
	event.SetDescription(descriptionFor(job))
	event.SetProperty(ics.ComponentProperty("CATEGORIES"), string(job.JobType))
	if color, ok := eventColors[job.JobType]; ok {
		event.SetProperty(ics.ComponentProperty("COLOR"), color)
	}

	return cal.Serialize()
}

func summaryFor(job *core.Job) string {
	switch job.JobType {
	case core.TypeHedge:
		return "Hedge: " + job.Title
	default:
		return "Mowing: " + job.Title
	}
}

func descriptionFor(job *core.Job) string {
	var b strings.Builder
	if job.Notes != "" {
		b.WriteString(job.Notes)
	}
	if job.ClientPhone != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Phone: " + job.ClientPhone)
	}
	if job.Price != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Price: $%.2f", *job.Price)
	}
	return b.String()
}
