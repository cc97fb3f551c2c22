package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidinsights/adapters/excel"
	"vidinsights/app"
	"vidinsights/domain/video"
	"vidinsights/internal/analytics"
	"vidinsights/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, rows ...[]string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if len(rows) == 0 {
		rows = [][]string{
			{"v1", "1000", "100", "10", "20", "5", "10", "verified"},
			{"v2", "2100", "200", "15", "35", "8", "20", "not verified"},
			{"v3", "2900", "300", "30", "70", "12", "30", "verified"},
			{"v4", "4200", "400", "35", "80", "20", "40", "not verified"},
			{"v5", "5000", "500", "50", "110", "25", "50", "verified"},
			{"v6", "6300", "600", "55", "120", "30", "60", "not verified"},
		}
	}
	headers := append(video.RequiredColumns(), "verified_status")
	table := &video.RawTable{Headers: headers}
	for _, r := range rows {
		raw := video.RawRow{}
		for i, h := range headers {
			raw[h] = r[i]
		}
		table.Rows = append(table.Rows, raw)
	}

	service := app.NewDashboardService(config.AnalyticsConfig{TopN: 3, HistogramBins: 5, LikeIncrease: 1.1})
	require.NoError(t, service.LoadTable(table))
	return NewServer(service, excel.NewExporter(), 2)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestServer_HealthAndDataset(t *testing.T) {
	s := testServer(t)

	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/dataset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 6.0, body["kept_rows"])
}

func TestServer_DescribeAndTop(t *testing.T) {
	s := testServer(t)

	w := do(t, s, http.MethodGet, "/api/describe", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["summary"], len(video.AllAttributes()))
	assert.Len(t, body["views_histogram"], 5)

	w = do(t, s, http.MethodGet, "/api/top?n=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	videos := decode(t, w)["videos"].([]interface{})
	require.Len(t, videos, 2)
	assert.Equal(t, "v6", videos[0].(map[string]interface{})["video_id"])
}

func TestServer_CorrelationAndHistogram(t *testing.T) {
	s := testServer(t)

	w := do(t, s, http.MethodGet, "/api/correlation?attrs=video_view_count,video_like_count&abs=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []interface{}{"video_view_count", "video_like_count"}, body["attributes"])

	w = do(t, s, http.MethodGet, "/api/correlation?attrs=popularity", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/histogram?attr=video_duration_sec&bins=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["bins"], 3)

	w = do(t, s, http.MethodGet, "/api/histogram", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_RejectsOversizedBins(t *testing.T) {
	s := testServer(t)

	for _, path := range []string{
		"/api/histogram?attr=video_view_count&bins=2000000000",
		"/api/describe?bins=1001",
		"/api/insights?bins=1001",
	} {
		w := do(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "INVALID_INPUT", decode(t, w)["code"], path)
	}

	w := do(t, s, http.MethodPost, "/api/ttest/groups", app.GroupTestRequest{GroupColumn: "verified_status", Metric: "video_view_count", Bins: 1001})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/histogram?attr=video_view_count&bins=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["bins"], 1000)
}

func TestServer_RegressionRecordsHistory(t *testing.T) {
	s := testServer(t)

	w := do(t, s, http.MethodPost, "/api/regression", map[string]interface{}{
		"independent_vars": []string{"video_like_count"},
		"inputs":           map[string]float64{"video_like_count": 250},
		"group":            "Group 2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	model := body["model"].(map[string]interface{})
	assert.Len(t, model["coefficients"], 2)
	assert.NotNil(t, model["prediction"])
	assert.Equal(t, "Group 2", body["entry"].(map[string]interface{})["group"])

	w = do(t, s, http.MethodGet, "/api/history?groups=Group%202", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w)
	assert.Len(t, history["entries"], 1)
	assert.Equal(t, []interface{}{app.DefaultHistoryGroup, "Group 2"}, history["groups"])

	w = do(t, s, http.MethodDelete, "/api/history/Group%202", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodGet, "/api/history?groups=Group%202", nil)
	assert.Empty(t, decode(t, w)["entries"])

	w = do(t, s, http.MethodDelete, "/api/history/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RegressionErrorStatuses(t *testing.T) {
	s := testServer(t)

	w := do(t, s, http.MethodPost, "/api/regression", map[string]interface{}{
		"independent_vars": []string{"popularity"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_MODEL_SPEC", decode(t, w)["code"])

	w = do(t, s, http.MethodPost, "/api/regression", map[string]interface{}{
		"independent_vars": []string{"video_like_count"},
		"inputs":           map[string]float64{"video_like_count": 1, "video_share_count": 2},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DIMENSION_MISMATCH", decode(t, w)["code"])

	req := httptest.NewRequest(http.MethodPost, "/api/regression", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_TTests(t *testing.T) {
	s := testServer(t)

	w := do(t, s, http.MethodPost, "/api/ttest/one-sample", app.OneSampleRequest{Metric: "video_view_count", ExpectedMean: 3500})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "one_sample_t", body["test_type"])
	assert.Contains(t, body, "verdict")

	w = do(t, s, http.MethodPost, "/api/ttest/groups", app.GroupTestRequest{GroupColumn: "verified_status", Metric: "video_view_count", Bins: 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, "welch_t", body["test_type"])
	dists := body["distributions"].([]interface{})
	require.Len(t, dists, 2)
	assert.Equal(t, "verified", dists[0].(map[string]interface{})["group"])
	assert.Len(t, dists[0].(map[string]interface{})["bins"], 3)

	w = do(t, s, http.MethodPost, "/api/ttest/groups", app.GroupTestRequest{GroupColumn: "video_id", Metric: "video_view_count"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_InsufficientSampleIsWarning(t *testing.T) {
	s := testServer(t, []string{"v1", "1000", "100", "10", "20", "5", "10", "verified"})

	w := do(t, s, http.MethodPost, "/api/ttest/one-sample", app.OneSampleRequest{Metric: "video_view_count", ExpectedMean: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["warning"])
	assert.Equal(t, "INSUFFICIENT_SAMPLE", body["code"])

	w = do(t, s, http.MethodGet, "/api/insights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["warnings"])
}

func TestServer_FilterAndExport(t *testing.T) {
	s := testServer(t)

	w := do(t, s, http.MethodPost, "/api/filter", map[string]interface{}{
		"thresholds": map[string]float64{"video_view_count": 4000},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 3.0, body["count"])
	assert.Len(t, body["views_histogram"], 5)

	w = do(t, s, http.MethodGet, "/api/export?video_view_count=4000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())

	w = do(t, s, http.MethodGet, "/api/export?video_view_count=lots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResponses_NonFiniteBecomesNull(t *testing.T) {
	assert.Nil(t, finite(math.NaN()))
	assert.Nil(t, finite(math.Inf(-1)))
	require.NotNil(t, finite(2))
	assert.Equal(t, 2.0, *finite(2))

	corr := newCorrelationResponse(&analytics.CorrelationMatrix{
		Attributes: []string{"a", "b"},
		Values:     [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
	})
	data, err := json.Marshal(corr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "null")
	assert.Nil(t, newCorrelationResponse(nil))
}

func TestServer_BusyRequestGivesUp(t *testing.T) {
	s := testServer(t)
	require.NoError(t, s.analysisSem.Acquire(context.Background(), 2))
	defer s.analysisSem.Release(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/top", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health bypasses the limiter")
}
