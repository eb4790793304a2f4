package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

const (
	defaultListTimeout = 10 * time.Second

	// preferRepresentation asks the store to return the mutated rows so
	// affected counts can be reported; preferMinimal returns nothing.
	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"
)

// RemoteStore speaks CRUD-over-HTTP to the hosted jobs table. Filters are
// expressed as query predicates (eq on id/recurring_id, gte on start_time).
type RemoteStore struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	listTimeout time.Duration
}

// RemoteOption configures a RemoteStore.
type RemoteOption func(*RemoteStore)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(s *RemoteStore) { s.client = c }
}

// WithListTimeout bounds the list operation. Other operations use the
// caller's context only.
func WithListTimeout(d time.Duration) RemoteOption {
	return func(s *RemoteStore) { s.listTimeout = d }
}

// NewRemoteStore creates a client for the hosted jobs resource rooted at
// baseURL (the resource lives at baseURL + "/jobs").
func NewRemoteStore(baseURL, apiKey string, opts ...RemoteOption) *RemoteStore {
	s := &RemoteStore{
		baseURL:     baseURL,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: 30 * time.Second},
		listTimeout: defaultListTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks reachability of the jobs resource. Used once at session start
// to decide remote vs local mode.
func (s *RemoteStore) Ping(ctx context.Context) error {
	if s.apiKey == "" {
		return core.ErrRemoteUnavailable
	}
	resp, err := s.do(ctx, http.MethodGet, "/jobs?limit=1", nil, preferMinimal)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.remoteError("ping", resp)
	}
	return nil
}

func (s *RemoteStore) List(ctx context.Context) ([]*core.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, s.listTimeout)
	defer cancel()

	resp, err := s.do(ctx, http.MethodGet, "/jobs?order=start_time.asc", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, s.remoteError("list", resp)
	}

	var jobs []*core.Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return nil, fmt.Errorf("lawn: decode job list: %w", err)
	}
	return jobs, nil
}

func (s *RemoteStore) Get(ctx context.Context, id string) (*core.Job, error) {
	resp, err := s.do(ctx, http.MethodGet, "/jobs?id=eq."+url.QueryEscape(id), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, s.remoteError("get", resp)
	}

	var jobs []*core.Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return nil, fmt.Errorf("lawn: decode job: %w", err)
	}
	if len(jobs) == 0 {
		return nil, core.ErrJobNotFound
	}
	return jobs[0], nil
}

func (s *RemoteStore) FindWhere(ctx context.Context, pred Predicate) ([]*core.Job, error) {
	resp, err := s.do(ctx, http.MethodGet, "/jobs?"+pred.query()+"&order=start_time.asc", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, s.remoteError("find", resp)
	}

	var jobs []*core.Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return nil, fmt.Errorf("lawn: decode matching jobs: %w", err)
	}
	return jobs, nil
}

func (s *RemoteStore) CreateBatch(ctx context.Context, jobs []*core.Job) ([]*core.Job, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(jobs)
	if err != nil {
		return nil, fmt.Errorf("lawn: encode job batch: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPost, "/jobs", bytes.NewReader(body), preferRepresentation)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, s.remoteError("create", resp)
	}

	var created []*core.Job
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("lawn: decode created jobs: %w", err)
	}
	return created, nil
}

func (s *RemoteStore) Update(ctx context.Context, id string, patch core.Patch) error {
	affected, err := s.UpdateWhere(ctx, ByID(id), patch)
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrJobNotFound
	}
	return nil
}

func (s *RemoteStore) UpdateWhere(ctx context.Context, pred Predicate, patch core.Patch) (int64, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return 0, core.ErrEmptyPatch
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("lawn: encode patch: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPatch, "/jobs?"+pred.query(), bytes.NewReader(body), preferRepresentation)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return 0, s.remoteError("update", resp)
	}
	return countRows(resp)
}

func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	_, err := s.DeleteWhere(ctx, ByID(id))
	return err
}

func (s *RemoteStore) DeleteWhere(ctx context.Context, pred Predicate) (int64, error) {
	resp, err := s.do(ctx, http.MethodDelete, "/jobs?"+pred.query(), nil, preferRepresentation)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return 0, s.remoteError("delete", resp)
	}
	return countRows(resp)
}

// query renders the predicate as remote filter parameters.
func (p Predicate) query() string {
	v := url.Values{}
	if p.PendingOnly {
		v.Set("status", "eq."+string(core.StatusPending))
	}
	if p.ID != "" {
		v.Set("id", "eq."+p.ID)
		return v.Encode()
	}
	v.Set("recurring_id", "eq."+p.RecurringID)
	if p.From != nil {
		v.Set("start_time", "gte."+p.From.Format(time.RFC3339))
	}
	return v.Encode()
}

func (s *RemoteStore) do(ctx context.Context, method, path string, body io.Reader, prefer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	return s.client.Do(req)
}

func (s *RemoteStore) remoteError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &core.RemoteError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
}

// countRows counts mutated rows from a return=representation response. A
// 204 means the store was asked for (or chose) a minimal reply; report zero
// affected in that case rather than guessing.
func countRows(resp *http.Response) (int64, error) {
	if resp.StatusCode == http.StatusNoContent {
		return 0, nil
	}
	var rows []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return 0, fmt.Errorf("lawn: decode mutated rows: %w", err)
	}
	return int64(len(rows)), nil
}
