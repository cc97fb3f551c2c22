package ui

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vidinsights/app"
	"vidinsights/internal/analytics"
	"vidinsights/internal/errors"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type correlationQuery struct {
	Attrs    string `form:"attrs"`
	Absolute bool   `form:"abs"`
}

type histogramQuery struct {
	Attr string `form:"attr"`
	Bins int    `form:"bins"`
}

type topQuery struct {
	N int `form:"n"`
}

type insightsQuery struct {
	LikeIncrease float64 `form:"like_increase"`
	Bins         int     `form:"bins"`
}

type filterBody struct {
	Thresholds map[string]float64 `json:"thresholds"`
}

// HistoryEntryResponse is the API view of one stored prediction
type HistoryEntryResponse struct {
	ID         string             `json:"id"`
	Group      string             `json:"group"`
	Inputs     map[string]float64 `json:"inputs"`
	Prediction *float64           `json:"prediction"`
	CreatedAt  time.Time          `json:"created_at"`
}

func newHistoryEntryResponse(e analytics.PredictionEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:         e.ID.String(),
		Group:      e.Group,
		Inputs:     e.Inputs,
		Prediction: finite(e.Prediction),
		CreatedAt:  e.CreatedAt,
	}
}

func (s *Server) bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return false
	}
	return true
}

func (s *Server) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return false
	}
	return true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDataset(c *gin.Context) {
	report := s.service.Report()
	c.JSON(http.StatusOK, gin.H{
		"total_rows":   report.TotalRows,
		"kept_rows":    report.KeptRows,
		"dropped_rows": report.DroppedRows(),
		"dropped":      report.Dropped,
		"fingerprint":  report.Fingerprint,
	})
}

func (s *Server) handleDescribe(c *gin.Context) {
	var q histogramQuery
	if !s.bindQuery(c, &q) {
		return
	}
	result, err := s.service.Explore(q.Bins)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":         result.Summary,
		"correlation":     newCorrelationResponse(result.Correlation),
		"views_histogram": result.Views,
		"warnings":        result.Warnings,
	})
}

func (s *Server) handleCorrelation(c *gin.Context) {
	var q correlationQuery
	if !s.bindQuery(c, &q) {
		return
	}
	matrix, err := s.service.Correlation(splitList(q.Attrs), q.Absolute)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCorrelationResponse(matrix))
}

func (s *Server) handleHistogram(c *gin.Context) {
	var q histogramQuery
	if !s.bindQuery(c, &q) {
		return
	}
	if q.Attr == "" {
		s.respondError(c, errors.InvalidInput("attr is required"))
		return
	}
	bins, err := s.service.Histogram(q.Attr, q.Bins)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attribute": q.Attr, "bins": bins})
}

func (s *Server) handleTop(c *gin.Context) {
	var q topQuery
	if !s.bindQuery(c, &q) {
		return
	}
	top, err := s.service.TopVideos(q.N)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": top})
}

func (s *Server) handleRegression(c *gin.Context) {
	var req app.RegressionRequest
	if !s.bindJSON(c, &req) {
		return
	}

	// The write lock spans fit and append so a failed fit leaves history untouched.
	s.historyMutex.Lock()
	req.History = s.history
	result, err := s.service.Regression(req)
	s.historyMutex.Unlock()
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := newRegressionResponse(result.Model, result.Summary)
	if result.Prediction != nil {
		resp.Prediction = finite(*result.Prediction)
	}
	if result.Entry != nil {
		entry := newHistoryEntryResponse(*result.Entry)
		c.JSON(http.StatusOK, gin.H{"model": resp, "entry": entry})
		return
	}
	c.JSON(http.StatusOK, gin.H{"model": resp})
}

func (s *Server) handleOneSampleTest(c *gin.Context) {
	var req app.OneSampleRequest
	if !s.bindJSON(c, &req) {
		return
	}
	result, err := s.service.OneSampleTest(req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTestResultResponse(result))
}

func (s *Server) handleGroupTest(c *gin.Context) {
	var req app.GroupTestRequest
	if !s.bindJSON(c, &req) {
		return
	}
	result, err := s.service.GroupTest(req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, GroupTestResponse{
		TestResultResponse: newTestResultResponse(result.Test),
		Distributions:      result.Distributions,
	})
}

func (s *Server) handleFilter(c *gin.Context) {
	var body filterBody
	if !s.bindJSON(c, &body) {
		return
	}
	result, err := s.service.Filter(body.Thresholds)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleInsights(c *gin.Context) {
	var q insightsQuery
	if !s.bindQuery(c, &q) {
		return
	}
	result, err := s.service.Insights(q.LikeIncrease, q.Bins)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"share_uplift":   newUpliftResponse(result.ShareUplift),
		"duration_views": result.DurationViews,
		"warnings":       result.Warnings,
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	s.historyMutex.RLock()
	defer s.historyMutex.RUnlock()

	groups := splitList(c.Query("groups"))
	if len(groups) == 0 {
		groups = s.history.Groups()
	}
	entries := s.history.Compare(groups...)
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = newHistoryEntryResponse(e)
	}
	c.JSON(http.StatusOK, gin.H{"groups": s.history.Groups(), "entries": out})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	group := c.Param("group")

	s.historyMutex.Lock()
	cleared := s.history.Clear(group)
	s.historyMutex.Unlock()

	if !cleared {
		s.respondError(c, errors.NotFound(fmt.Sprintf("history group %q", group)))
		return
	}
	c.Status(http.StatusNoContent)
}

// handleExport downloads the records passing the thresholds given as
// query parameters, e.g. ?video_view_count=1000&video_like_count=50.
func (s *Server) handleExport(c *gin.Context) {
	thresholds := make(map[string]float64)
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			s.respondError(c, errors.InvalidInput(fmt.Sprintf("threshold %s is not a number", key)))
			return
		}
		thresholds[key] = v
	}

	result, err := s.service.Filter(thresholds)
	if err != nil {
		s.respondError(c, err)
		return
	}
	data, err := s.exporter.ExportRecords(c.Request.Context(), result.Records)
	if err != nil {
		s.respondError(c, errors.Wrapf(err, "failed to export %d records", result.Count))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="videos.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
