package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adpulse/adpulse/internal/analytics"
	"github.com/adpulse/adpulse/internal/cache"
	"github.com/adpulse/adpulse/internal/models"
	"github.com/adpulse/adpulse/internal/obs"
	"github.com/adpulse/adpulse/internal/reports"
	"github.com/adpulse/adpulse/internal/store/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := memory.New()
	svc := reports.New(st, cache.NewMemory(), time.Minute, analytics.Deriver{},
		analytics.DefaultAnomalyConfig(), analytics.DefaultHealthWeights(), log)
	srv := httptest.NewServer(NewRouter(log, st, svc, obs.New(), []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

const performanceCSV = `Date,Campaign Order Name,Agency,Impressions,Clicks,Revenue,Spend,Transactions
2025-01-01,Spring Promo,OMG,1000,10,50,20,2
2025-01-02,Spring Promo,OMG,1300,13,65,26,3
`

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestImportPerformanceRawBody(t *testing.T) {
	srv, st := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/imports/performance", "text/csv", strings.NewReader(performanceCSV))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report models.ImportReport
	decodeBody(t, resp, &report)
	assert.Equal(t, 2, report.RowsImported)
	assert.Empty(t, report.Warnings)

	version, err := st.DatasetVersion(t.Context())
	require.NoError(t, err)
	assert.NotEqual(t, "mem-0-0", version)
}

func TestImportPerformanceMultipart(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "export.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(performanceCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/imports/performance", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	var report models.ImportReport
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &report)
	assert.Equal(t, 2, report.RowsImported)
}

func TestImportPerformanceBadHeader(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/api/imports/performance", "text/csv", strings.NewReader("Nothing,Useful\n1,2\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportsSeriesAndTotals(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/api/imports/performance", "text/csv", strings.NewReader(performanceCSV))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/reports/series")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var series []models.TimeSeriesPoint
	decodeBody(t, resp, &series)
	require.Len(t, series, 2)
	assert.Equal(t, 1000, series[0].Impressions)

	resp, err = http.Get(srv.URL + "/api/reports/totals?group=agency")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var totals []models.GroupTotals
	decodeBody(t, resp, &totals)
	require.Len(t, totals, 1)
	assert.Equal(t, "OMG", totals[0].Key)
	assert.Equal(t, 2300, totals[0].Impressions)

	resp, err = http.Get(srv.URL + "/api/reports/totals?group=bogus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnomalyIgnoreRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	csv := `Date,Campaign,Impressions,Clicks,Revenue
2025-01-01,A,1000,1,1
2025-01-02,A,1300,1,1
2025-01-03,A,1,1,1
`
	resp, err := http.Post(srv.URL+"/api/imports/performance", "text/csv", strings.NewReader(csv))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/reports/anomalies")
	require.NoError(t, err)
	var anoms []models.Anomaly
	decodeBody(t, resp, &anoms)
	require.Len(t, anoms, 1)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/anomalies/"+anoms[0].Fingerprint+"/ignore",
		map[string]string{"campaign_name": "A"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/reports/anomalies")
	require.NoError(t, err)
	decodeBody(t, resp, &anoms)
	assert.Empty(t, anoms)

	resp, err = http.Get(srv.URL + "/api/reports/anomalies?include_ignored=1")
	require.NoError(t, err)
	decodeBody(t, resp, &anoms)
	require.Len(t, anoms, 1)
	assert.True(t, anoms[0].Ignored)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/anomalies/"+anoms[0].Fingerprint+"/ignore", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/reports/anomalies")
	require.NoError(t, err)
	decodeBody(t, resp, &anoms)
	assert.Len(t, anoms, 1)
}

func TestAnomalyDurationSurvivesIgnoreToggle(t *testing.T) {
	srv, st := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/anomalies/fp9/duration",
		map[string]any{"campaign_name": "A", "days": 30})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/anomalies/fp9/ignore",
		map[string]string{"campaign_name": "A"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var flag models.AnomalyFlag
	decodeBody(t, resp, &flag)
	assert.True(t, flag.Ignored)
	assert.Equal(t, 30, flag.CustomDurationDays)

	flags, err := st.AnomalyFlags(t.Context())
	require.NoError(t, err)
	assert.True(t, flags["fp9"].Ignored)
	assert.Equal(t, 30, flags["fp9"].CustomDurationDays)
	assert.Equal(t, "A", flags["fp9"].CampaignName)
}

func TestAnomalyDurationValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/anomalies/fp1/duration",
		map[string]any{"campaign_name": "A", "days": -1})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/anomalies/fp1/duration",
		map[string]any{"campaign_name": "A", "days": 30})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTaskCRUD(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks",
		map[string]string{"title": "reconcile spend", "priority": "high", "due_date": "2025-02-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var task models.Task
	decodeBody(t, resp, &task)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "todo", task.Status)
	assert.Equal(t, "high", task.Priority)
	require.NotNil(t, task.DueDate)

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/"+task.ID,
		map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &task)
	assert.Equal(t, "done", task.Status)

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/"+task.ID,
		map[string]string{"status": "procrastinating"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/api/tasks")
	require.NoError(t, err)
	var tasks []models.Task
	decodeBody(t, resp, &tasks)
	require.Len(t, tasks, 1)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+task.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+task.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskTitleRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", map[string]string{"description": "no title"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnnouncementsAndResources(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/announcements",
		map[string]string{"title": "maintenance window", "body": "friday"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var ann models.Announcement
	decodeBody(t, resp, &ann)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/resources",
		map[string]string{"title": "runbook", "url": "https://example.com/runbook"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res models.TeamResource
	decodeBody(t, resp, &res)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/resources", map[string]string{"title": "no url"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/announcements/"+ann.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/resources/"+res.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestActivityRecordsActions(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/imports/performance", strings.NewReader(performanceCSV))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("X-User", "dana")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/activity")
	require.NoError(t, err)
	var entries []models.ActivityEntry
	decodeBody(t, resp, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "dana", entries[0].Actor)
	assert.Equal(t, "import", entries[0].Action)
}
