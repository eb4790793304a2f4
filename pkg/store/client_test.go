package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
)

// fastProbe keeps probe failures from slowing the suite down.
func fastProbe() ProbeConfig {
	return ProbeConfig{
		Attempts:    2,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	}
}

func TestClient_NoRemoteMeansLocalMode(t *testing.T) {
	local := openTestStore(t)
	c := NewClient(context.Background(), nil, local, fastProbe())
	assert.Equal(t, ModeLocal, c.Mode())
}

func TestClient_UnreachableRemoteFallsBackToLocal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	local := openTestStore(t)
	remote := NewRemoteStore(server.URL, "test-key")
	c := NewClient(context.Background(), remote, local, fastProbe())
	assert.Equal(t, ModeLocal, c.Mode())

	// Writes land in the mirror, not the remote
	created, err := c.CreateBatch(context.Background(), []*core.Job{
		{Title: "Offline job", StartTime: time.Now(), JobType: core.TypeMowing},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	jobs, err := local.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestClient_RemoteListFailureServesMirror(t *testing.T) {
	var failing atomic.Bool
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]*core.Job{
			{ID: "job-1", Title: "Front lawn", StartTime: start, JobType: core.TypeMowing, Status: core.StatusPending},
		})
	}))
	defer server.Close()

	local := openTestStore(t)
	remote := NewRemoteStore(server.URL, "test-key")
	c := NewClient(context.Background(), remote, local, fastProbe())
	require.Equal(t, ModeRemote, c.Mode())

	// A healthy list refreshes the mirror
	jobs, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	// A mid-session 500 degrades to the mirror without surfacing an error
	failing.Store(true)
	jobs, err = c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
}

func TestClient_RemoteWriteFailureSurfaces(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			json.NewEncoder(w).Encode([]*core.Job{})
			return
		}
		http.Error(w, "write refused", http.StatusInternalServerError)
	}))
	defer server.Close()

	local := openTestStore(t)
	remote := NewRemoteStore(server.URL, "test-key")
	c := NewClient(context.Background(), remote, local, fastProbe())
	require.Equal(t, ModeRemote, c.Mode())

	healthy.Store(false)
	_, err := c.CreateBatch(context.Background(), []*core.Job{
		{Title: "Doomed", StartTime: time.Now(), JobType: core.TypeHedge},
	})
	require.Error(t, err)

	var remoteErr *core.RemoteError
	assert.ErrorAs(t, err, &remoteErr)
}

func TestClient_RemoteModeMirrorsWrites(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var jobs []*core.Job
			json.NewDecoder(r.Body).Decode(&jobs)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(jobs)
		default:
			json.NewEncoder(w).Encode([]*core.Job{})
		}
	}))
	defer server.Close()

	local := openTestStore(t)
	remote := NewRemoteStore(server.URL, "test-key")
	c := NewClient(context.Background(), remote, local, fastProbe())
	require.Equal(t, ModeRemote, c.Mode())

	created, err := c.CreateBatch(context.Background(), []*core.Job{
		{ID: "job-9", Title: "Mirrored", StartTime: time.Now(), JobType: core.TypeMowing, Status: core.StatusPending},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	mirrored, err := local.Get(context.Background(), "job-9")
	require.NoError(t, err)
	assert.Equal(t, "Mirrored", mirrored.Title)
}
