package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/service"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/store"
)

func setupAPI(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	local := store.NewLocalStore(db)
	require.NoError(t, local.Migrate(context.Background()))

	srv := httptest.NewServer(Handler(service.New(local), nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func doRequest(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createSeries(t *testing.T, srv *httptest.Server, count int) []*core.Job {
	t.Helper()
	resp := postJSON(t, srv.URL+"/jobs", CreateRequest{
		Title:     "Front lawn",
		StartTime: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		JobType:   "mowing",
		Recurring: true,
		Frequency: "weekly",
		Count:     count,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[[]*core.Job](t, resp)
}

func TestCreateAndList(t *testing.T) {
	srv := setupAPI(t)

	created := createSeries(t, srv, 3)
	require.Len(t, created, 3)

	resp, err := http.Get(srv.URL + "/jobs")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	listed := decode[[]*core.Job](t, resp)
	assert.Len(t, listed, 3)
}

func TestCreate_ValidationError(t *testing.T) {
	srv := setupAPI(t)

	resp := postJSON(t, srv.URL+"/jobs", CreateRequest{
		StartTime: time.Now(),
		JobType:   "mowing",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreate_MalformedBody(t *testing.T) {
	srv := setupAPI(t)

	resp, err := http.Post(srv.URL+"/jobs", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScopes(t *testing.T) {
	srv := setupAPI(t)
	created := createSeries(t, srv, 2)

	resp, err := http.Get(fmt.Sprintf("%s/jobs/%s/scopes", srv.URL, created[0].ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	scopes := decode[ScopesResponse](t, resp)
	assert.True(t, scopes.NeedsChoice)
	assert.Len(t, scopes.Scopes, 3)
}

func TestMarkDone_ThenConflict(t *testing.T) {
	srv := setupAPI(t)
	created := createSeries(t, srv, 2)
	url := fmt.Sprintf("%s/jobs/%s/done", srv.URL, created[0].ID)

	resp := postJSON(t, srv.URL+"/jobs/"+created[0].ID+"/done", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, url, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCancel_FutureScope(t *testing.T) {
	srv := setupAPI(t)
	created := createSeries(t, srv, 3)

	resp := postJSON(t, fmt.Sprintf("%s/jobs/%s/cancel?scope=future", srv.URL, created[1].ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	affected := decode[AffectedResponse](t, resp)
	assert.EqualValues(t, 2, affected.Affected)
}

func TestCancel_MissingScopeIsRejected(t *testing.T) {
	srv := setupAPI(t)
	created := createSeries(t, srv, 2)

	resp := postJSON(t, fmt.Sprintf("%s/jobs/%s/cancel", srv.URL, created[0].ID), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEdit_SeriesScope(t *testing.T) {
	srv := setupAPI(t)
	created := createSeries(t, srv, 3)

	resp := doRequest(t, http.MethodPatch,
		fmt.Sprintf("%s/jobs/%s?scope=series", srv.URL, created[0].ID),
		map[string]any{"title": "Back lawn"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	affected := decode[AffectedResponse](t, resp)
	assert.EqualValues(t, 3, affected.Affected)
}

func TestEdit_IgnoresSyncOwnedFields(t *testing.T) {
	srv := setupAPI(t)
	created := createSeries(t, srv, 2)

	// calendar_event_id belongs to the sync worker and is not part of the
	// edit payload; a client smuggling it in must not overwrite it.
	resp := doRequest(t, http.MethodPatch,
		fmt.Sprintf("%s/jobs/%s?scope=single", srv.URL, created[0].ID),
		map[string]any{"title": "Back lawn", "calendar_event_id": "hijacked"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/jobs")
	require.NoError(t, err)
	listed := decode[[]*core.Job](t, listResp)
	for _, job := range listed {
		assert.Empty(t, job.CalendarEventID)
	}
}

func TestEdit_RejectsStatusChange(t *testing.T) {
	srv := setupAPI(t)
	created := createSeries(t, srv, 2)

	// Status moves through the done/cancel endpoints only.
	resp := doRequest(t, http.MethodPatch,
		fmt.Sprintf("%s/jobs/%s?scope=single", srv.URL, created[0].ID),
		map[string]any{"status": "done"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDelete_UnknownIDIsOK(t *testing.T) {
	srv := setupAPI(t)

	resp := doRequest(t, http.MethodDelete, srv.URL+"/jobs/no-such-job?scope=single", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	affected := decode[AffectedResponse](t, resp)
	assert.Zero(t, affected.Affected)
}

func TestDelete_Single(t *testing.T) {
	srv := setupAPI(t)
	created := createSeries(t, srv, 3)

	resp := doRequest(t, http.MethodDelete,
		fmt.Sprintf("%s/jobs/%s?scope=single", srv.URL, created[0].ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	affected := decode[AffectedResponse](t, resp)
	assert.EqualValues(t, 1, affected.Affected)

	listResp, err := http.Get(srv.URL + "/jobs")
	require.NoError(t, err)
	listed := decode[[]*core.Job](t, listResp)
	assert.Len(t, listed, 2)
}

func TestNotFound(t *testing.T) {
	srv := setupAPI(t)

	resp := postJSON(t, srv.URL+"/jobs/no-such-job/done", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := setupAPI(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
