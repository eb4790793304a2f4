// Package lawn provides the scheduling core of the lawn tracker: recurring
// job expansion, scoped cancel/edit/delete, a degrading job store and a
// best-effort calendar mirror.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	// Open the local mirror and build the store client
//	db, _ := gorm.Open(sqlite.Open("lawn.db"), &gorm.Config{})
//	local := lawn.NewLocalStore(db)
//	local.Migrate(context.Background())
//	client := lawn.NewClient(ctx, nil, local, lawn.DefaultProbeConfig())
//
//	// Create a weekly series of three visits
//	svc := lawn.NewService(client)
//	jobs, _ := svc.CreateJob(ctx, lawn.Request{
//	    Template:  lawn.Job{Title: "Front lawn", StartTime: start, JobType: lawn.TypeMowing},
//	    Recurring: true,
//	    Frequency: lawn.FrequencyWeekly,
//	    Count:     3,
//	})
//
//	// Cancel this and all future occurrences of the second visit
//	svc.CancelJob(ctx, jobs[1].ID, lawn.ScopeFuture)
package lawn

import (
	"context"

	"gorm.io/gorm"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/archive"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/calsync"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/recur"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/scope"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/service"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/store"
)

// Type aliases for the public surface
type (
	// Job is the canonical job record.
	Job = core.Job

	// JobStatus is the lifecycle state of an occurrence.
	JobStatus = core.JobStatus

	// JobType is the kind of work performed at a visit.
	JobType = core.JobType

	// Frequency is how often a recurring series repeats.
	Frequency = core.Frequency

	// Patch is a partial update applied to one or more jobs.
	Patch = core.Patch

	// Event is the interface for all service events.
	Event = core.Event

	// Request describes one job submission, possibly recurring.
	Request = recur.Request

	// Scope is the breadth of an action against a series.
	Scope = scope.Scope

	// Resolution is the scope state machine for one user action.
	Resolution = scope.Resolution

	// Storage is the persistence contract for job records.
	Storage = store.Storage

	// Predicate selects the target set of a bulk mutation.
	Predicate = store.Predicate

	// LocalStore is the on-device job mirror.
	LocalStore = store.LocalStore

	// RemoteStore speaks CRUD-over-HTTP to the hosted jobs table.
	RemoteStore = store.RemoteStore

	// Client fronts the remote store with a local-mirror fallback.
	Client = store.Client

	// ProbeConfig configures the startup reachability probe.
	ProbeConfig = store.ProbeConfig

	// Mode is the store mode the client settled on at startup.
	Mode = store.Mode

	// Service is the application core behind the calendar UI.
	Service = service.Service

	// Calendar is the external calendar boundary.
	Calendar = calsync.Calendar

	// SyncTask is one queued calendar mirror operation.
	SyncTask = calsync.SyncTask

	// Archiver writes and prunes pre-delete snapshots.
	Archiver = archive.Archiver
)

// Status constants
const (
	StatusPending   = core.StatusPending
	StatusDone      = core.StatusDone
	StatusCancelled = core.StatusCancelled
)

// Job type constants
const (
	TypeMowing = core.TypeMowing
	TypeHedge  = core.TypeHedge
)

// Frequency constants
const (
	FrequencyWeekly   = core.FrequencyWeekly
	FrequencyBiweekly = core.FrequencyBiweekly
	FrequencyMonthly  = core.FrequencyMonthly
)

// Scope constants
const (
	ScopeSingle = scope.ScopeSingle
	ScopeFuture = scope.ScopeFuture
	ScopeSeries = scope.ScopeSeries
)

// Store mode constants
const (
	ModeRemote = store.ModeRemote
	ModeLocal  = store.ModeLocal
)

// Error variables
var (
	ErrMissingTitle      = core.ErrMissingTitle
	ErrTooFewOccurrences = core.ErrTooFewOccurrences
	ErrInvalidFrequency  = core.ErrInvalidFrequency
	ErrJobNotFound       = core.ErrJobNotFound
	ErrTerminalStatus    = core.ErrTerminalStatus
	ErrScopeNotChosen    = core.ErrScopeNotChosen
	ErrRemoteUnavailable = core.ErrRemoteUnavailable
)

// Expand turns a submission into 1..N dated occurrences without persisting
// anything.
func Expand(req Request) ([]*Job, error) {
	return recur.Expand(req)
}

// BeginScope starts a scope resolution for one displayed occurrence.
func BeginScope(job *Job) *Resolution {
	return scope.Begin(job)
}

// NewLocalStore creates the gorm-backed local mirror.
func NewLocalStore(db *gorm.DB) *LocalStore {
	return store.NewLocalStore(db)
}

// NewRemoteStore creates a client for the hosted jobs resource.
func NewRemoteStore(baseURL, apiKey string, opts ...store.RemoteOption) *RemoteStore {
	return store.NewRemoteStore(baseURL, apiKey, opts...)
}

// NewClient probes the remote store once and fixes the session mode.
func NewClient(ctx context.Context, remote *RemoteStore, local *LocalStore, probe ProbeConfig, opts ...store.ClientOption) *Client {
	return store.NewClient(ctx, remote, local, probe, opts...)
}

// DefaultProbeConfig returns the default reachability probe configuration.
func DefaultProbeConfig() ProbeConfig {
	return store.DefaultProbeConfig()
}

// NewService creates the application core over the given store.
func NewService(st Storage, opts ...service.Option) *Service {
	return service.New(st, opts...)
}

// WithSyncTasks enables the calendar mirror side effect.
func WithSyncTasks(tasks *calsync.TaskStore) service.Option {
	return service.WithSyncTasks(tasks)
}

// WithArchiver enables pre-delete snapshots.
func WithArchiver(a *Archiver) service.Option {
	return service.WithArchiver(a)
}
