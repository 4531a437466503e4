package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/sptracker/internal/clock"
	"github.com/example/sptracker/internal/database"
	"github.com/example/sptracker/internal/errs"
	"github.com/example/sptracker/internal/ledger"
	"github.com/example/sptracker/internal/logging"
	"github.com/example/sptracker/internal/progress"
	"github.com/example/sptracker/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2023, 10, 1, 17, 28, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := database.Open(context.Background(), database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := clock.Fixed(now)
	logger := logging.Discard()
	h := New(
		database.NewLookupRepository(db),
		ledger.New(db, clk, logger),
		progress.New(database.NewProgressRepository(db), clk, time.Sunday),
		Options{DefaultTab: "IP", Location: time.UTC, Logger: logger},
	)
	return NewRouter(h, logger)
}

func do(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func insertBody(link string) InsertRequest {
	return InsertRequest{
		Link:     link,
		Category: "Leetcode",
		Type:     "Editorial",
		Level:    "Very Easy",
		Tab:      "IP",
	}
}

// =============================================================================
// Health and routing
// =============================================================================

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestID_ReusesCallerHeader(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// =============================================================================
// Lookup endpoints
// =============================================================================

func TestMetadata_DefaultTabOnEmptyBody(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, "/api/metadata", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[MetadataResponse](t, w)
	require.Len(t, resp.Categories, 3)
	for _, c := range resp.Categories {
		assert.Equal(t, "IP", c.Tab)
	}
	assert.Len(t, resp.Levels, 5)
	assert.Len(t, resp.Types, 3)
	assert.Len(t, resp.OverallPending, 3)
	assert.Len(t, resp.OverallProgress, 3)
}

func TestCategories_ByTab(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, "/api/categories", TabRequest{Tab: "DSA"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string][]models.Category](t, w)
	names := []string{}
	for _, c := range resp["sp_categories"] {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Arrays", "Graphs", "DP"}, names)
}

func TestLevelsAndTypes(t *testing.T) {
	r := newTestRouter(t)

	levels := decode[map[string][]models.Level](t, do(t, r, "/api/levels", nil))
	assert.Len(t, levels["sp_levels"], 5)

	types := decode[map[string][]models.Type](t, do(t, r, "/api/types", nil))
	assert.Len(t, types["sp_types"], 3)
}

// =============================================================================
// Insert and update
// =============================================================================

func TestInsert_ReturnsDoneAndPending(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, "/api/submissions/insert", insertBody("https://leetcode.com/problems/two-sum/"))
	require.Equal(t, http.StatusOK, w.Code)

	records := decode[[]models.Submission](t, w)
	require.Len(t, records, 2)
	assert.True(t, records[0].Done)
	assert.False(t, records[1].Done)
	assert.True(t, records[1].ScheduledAt.Equal(time.Date(2023, 10, 4, 17, 28, 0, 0, time.UTC)))
}

func TestInsert_MissingFieldsIsBadRequest(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, "/api/submissions/insert", map[string]string{"link": "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, StatusResponse{Status: 0}, decode[StatusResponse](t, w))
}

func TestInsert_UnknownCategoryIsBadRequest(t *testing.T) {
	r := newTestRouter(t)

	body := insertBody("x")
	body.Category = "Topcoder"
	w := do(t, r, "/api/submissions/insert", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, StatusResponse{Status: 0}, decode[StatusResponse](t, w))
}

func TestInsert_UnknownPairIsServerError(t *testing.T) {
	r := newTestRouter(t)

	body := insertBody("x")
	body.Level = "Impossible"
	w := do(t, r, "/api/submissions/insert", body)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpdate_CompletesAndReschedules(t *testing.T) {
	r := newTestRouter(t)

	records := decode[[]models.Submission](t, do(t, r, "/api/submissions/insert", insertBody("a")))
	pending := records[1]

	w := do(t, r, "/api/submissions/update", UpdateRequest{ID: pending.ID})
	require.Equal(t, http.StatusOK, w.Code)

	events := decode[[]models.CalendarEvent](t, w)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].Rts)
	assert.Equal(t, "red", events[0].Color)
	assert.Equal(t, 0, events[0].Done)
	assert.Equal(t, "a", events[0].Link)
}

func TestUpdate_StatusCodes(t *testing.T) {
	r := newTestRouter(t)

	records := decode[[]models.Submission](t, do(t, r, "/api/submissions/insert", insertBody("a")))

	tests := []struct {
		name string
		body any
		code int
	}{
		{"missing id", map[string]any{"type": "Self"}, http.StatusBadRequest},
		{"unknown id", UpdateRequest{ID: 999}, http.StatusNotFound},
		{"already done", UpdateRequest{ID: records[0].ID}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, "/api/submissions/update", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

// =============================================================================
// Calendar and summary
// =============================================================================

func TestListSubmissions_RendersEvents(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, "/api/submissions/insert", insertBody("a"))

	w := do(t, r, "/api/submissions/all", SubmissionsRequest{From: "2023-10-01", To: "2023-10-31"})
	require.Equal(t, http.StatusOK, w.Code)

	events := decode[[]models.CalendarEvent](t, w)
	require.Len(t, events, 2)
	assert.Equal(t, "green", events[0].Color)
	assert.Equal(t, 1, events[0].Done)
	assert.Equal(t, "2023-10-01 17:28", events[0].Start)
	assert.Equal(t, "2023-10-01 17:33", events[0].End)
	assert.Equal(t, "red", events[1].Color)
	assert.Equal(t, "Leetcode", events[1].Name)
}

func TestListSubmissions_CategoryFilter(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, "/api/submissions/insert", insertBody("a"))

	w := do(t, r, "/api/submissions/all", SubmissionsRequest{
		From:       "2023-10-01",
		To:         "2023-10-31",
		Categories: []string{"Codeforces"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.CalendarEvent](t, w))
}

func TestListSubmissions_BadDateIsBadRequest(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, "/api/submissions/all", SubmissionsRequest{From: "yesterday", To: "2023-10-31"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestSummary(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, "/api/submissions/insert", insertBody("a"))

	w := do(t, r, "/api/submissions/summary", SubmissionsRequest{From: "2023-10-01", To: "2023-10-04"})
	require.Equal(t, http.StatusOK, w.Code)

	rows := decode[[]models.SummaryRow](t, w)
	require.Len(t, rows, 2)
	assert.Equal(t, models.SummaryRow{Date: "2023-10-01", Category: "Leetcode", Done: 1}, rows[0])
	assert.Equal(t, models.SummaryRow{Date: "2023-10-04", Category: "Leetcode", Pending: 1}, rows[1])
}

// =============================================================================
// Progress
// =============================================================================

func TestProgressEndpoints(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, "/api/submissions/insert", insertBody("a"))

	weekly := decode[[]models.WeeklyProgress](t, do(t, r, "/api/weekly_progress", TabRequest{Tab: "IP"}))
	require.Len(t, weekly, 3)
	assert.Equal(t, models.WeeklyProgress{Category: "Leetcode", Progress: 100}, weekly[0])

	overall := decode[[]models.CategoryCount](t, do(t, r, "/api/overall_progress", nil))
	require.Len(t, overall, 3)
	assert.Equal(t, models.CategoryCount{Category: "Leetcode", Count: 1}, overall[0])

	// the pending record is dated three days ahead
	pending := decode[[]models.CategoryCount](t, do(t, r, "/api/overall_pending", nil))
	for _, p := range pending {
		assert.Zero(t, p.Count)
	}
}

type failingProgress struct{}

func (failingProgress) OverallProgress(context.Context, string) ([]models.CategoryCount, error) {
	return nil, errors.New("disk full")
}

func (failingProgress) OverallPending(context.Context, string) ([]models.CategoryCount, error) {
	return nil, errors.New("disk full")
}

func (failingProgress) WeeklyProgress(context.Context, string) ([]models.WeeklyProgress, error) {
	return nil, errs.E(errs.Storage, "progress.WeeklyProgress", errors.New("disk full"))
}

func TestProgress_StorageFailureReturnsEmptyShape(t *testing.T) {
	h := New(nil, nil, failingProgress{}, Options{Logger: logging.Discard()})
	r := NewRouter(h, logging.Discard())

	for _, path := range []string{"/api/weekly_progress", "/api/overall_progress", "/api/overall_pending"} {
		t.Run(path, func(t *testing.T) {
			w := do(t, r, path, nil)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "[]", w.Body.String())
		})
	}
}

func TestParseRange(t *testing.T) {
	from, to, err := parseRange("2023-10-01", "2023-10-31", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), to)

	_, to, err = parseRange("2023-10-01", "2023-10-31 12:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 10, 31, 12, 0, 0, 0, time.UTC), to)
}
