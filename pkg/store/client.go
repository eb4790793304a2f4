package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

// Mode is the persistence mode decided at session start.
type Mode string

const (
	// ModeRemote sends every operation to the hosted store; reads that
	// fail mid-session still fall back to the mirror silently.
	ModeRemote Mode = "remote"
	// ModeLocal sends every operation to the on-device mirror.
	ModeLocal Mode = "local"
)

// Client fronts the remote store with a local-mirror fallback.
//
// Remote availability is decided once, by a reachability probe when the
// client is built, and is not re-checked per call. In remote mode, read
// failures degrade to the mirror without surfacing; write failures are
// returned to the caller with the underlying message. In local mode every
// operation goes straight to the mirror and divergence from the remote is
// accepted, not reconciled.
type Client struct {
	remote *RemoteStore
	local  *LocalStore
	mode   Mode
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger overrides the client's logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient probes the remote store and fixes the session mode. A nil
// remote (missing credentials) selects local mode without probing.
func NewClient(ctx context.Context, remote *RemoteStore, local *LocalStore, probe ProbeConfig, opts ...ClientOption) *Client {
	c := &Client{
		remote: remote,
		local:  local,
		mode:   ModeLocal,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if remote == nil {
		c.logger.Info("no remote store configured, using local mirror")
		return c
	}

	if err := probe.probe(ctx, func() error { return remote.Ping(ctx) }); err != nil {
		c.logger.Warn("remote store unreachable, using local mirror", "error", err)
		return c
	}

	c.mode = ModeRemote
	return c
}

// Mode reports the mode fixed at construction.
func (c *Client) Mode() Mode {
	return c.mode
}

// Local returns the underlying mirror.
func (c *Client) Local() *LocalStore {
	return c.local
}

func (c *Client) List(ctx context.Context) ([]*core.Job, error) {
	if c.mode == ModeLocal {
		return c.local.List(ctx)
	}
	jobs, err := c.remote.List(ctx)
	if err != nil {
		c.logger.Warn("remote list failed, serving local mirror", "error", err)
		return c.local.List(ctx)
	}
	// Refresh the mirror so a later offline session sees current data.
	c.mirror(ctx, jobs)
	return jobs, nil
}

func (c *Client) Get(ctx context.Context, id string) (*core.Job, error) {
	if c.mode == ModeLocal {
		return c.local.Get(ctx, id)
	}
	job, err := c.remote.Get(ctx, id)
	if err != nil && !errors.Is(err, core.ErrJobNotFound) {
		c.logger.Warn("remote get failed, serving local mirror", "id", id, "error", err)
		return c.local.Get(ctx, id)
	}
	return job, err
}

func (c *Client) FindWhere(ctx context.Context, pred Predicate) ([]*core.Job, error) {
	if c.mode == ModeLocal {
		return c.local.FindWhere(ctx, pred)
	}
	jobs, err := c.remote.FindWhere(ctx, pred)
	if err != nil {
		c.logger.Warn("remote find failed, serving local mirror", "error", err)
		return c.local.FindWhere(ctx, pred)
	}
	return jobs, nil
}

func (c *Client) CreateBatch(ctx context.Context, jobs []*core.Job) ([]*core.Job, error) {
	if c.mode == ModeLocal {
		return c.local.CreateBatch(ctx, jobs)
	}
	created, err := c.remote.CreateBatch(ctx, jobs)
	if err != nil {
		return nil, err
	}
	if _, mirrorErr := c.local.CreateBatch(ctx, created); mirrorErr != nil {
		c.logger.Warn("mirror create failed", "error", mirrorErr)
	}
	return created, nil
}

func (c *Client) Update(ctx context.Context, id string, patch core.Patch) error {
	if c.mode == ModeLocal {
		return c.local.Update(ctx, id, patch)
	}
	if err := c.remote.Update(ctx, id, patch); err != nil {
		return err
	}
	if err := c.local.Update(ctx, id, patch); err != nil && !errors.Is(err, core.ErrJobNotFound) {
		c.logger.Warn("mirror update failed", "id", id, "error", err)
	}
	return nil
}

func (c *Client) UpdateWhere(ctx context.Context, pred Predicate, patch core.Patch) (int64, error) {
	if c.mode == ModeLocal {
		return c.local.UpdateWhere(ctx, pred, patch)
	}
	affected, err := c.remote.UpdateWhere(ctx, pred, patch)
	if err != nil {
		return 0, err
	}
	if _, mirrorErr := c.local.UpdateWhere(ctx, pred, patch); mirrorErr != nil {
		c.logger.Warn("mirror bulk update failed", "error", mirrorErr)
	}
	return affected, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if c.mode == ModeLocal {
		return c.local.Delete(ctx, id)
	}
	if err := c.remote.Delete(ctx, id); err != nil {
		return err
	}
	if err := c.local.Delete(ctx, id); err != nil {
		c.logger.Warn("mirror delete failed", "id", id, "error", err)
	}
	return nil
}

func (c *Client) DeleteWhere(ctx context.Context, pred Predicate) (int64, error) {
	if c.mode == ModeLocal {
		return c.local.DeleteWhere(ctx, pred)
	}
	affected, err := c.remote.DeleteWhere(ctx, pred)
	if err != nil {
		return 0, err
	}
	if _, mirrorErr := c.local.DeleteWhere(ctx, pred); mirrorErr != nil {
		c.logger.Warn("mirror bulk delete failed", "error", mirrorErr)
	}
	return affected, nil
}

// mirror rewrites the local mirror wholesale. The mirror is a single
// collection handled read-modify-write-all, never patched in place.
func (c *Client) mirror(ctx context.Context, jobs []*core.Job) {
	if err := c.local.ReplaceAll(ctx, jobs); err != nil {
		c.logger.Warn("mirror refresh failed", "error", err)
	}
}
