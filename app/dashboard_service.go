package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainStats "vidinsights/domain/stats"
	"vidinsights/domain/video"
	"vidinsights/internal"
	"vidinsights/internal/analytics"
	"vidinsights/internal/config"
	"vidinsights/internal/dataset"
	apperrors "vidinsights/internal/errors"
	"vidinsights/ports"
)

// ErrDatasetNotLoaded is returned when a command runs before Load
var ErrDatasetNotLoaded = errors.New("dataset not loaded")

// DefaultHistoryGroup names the history group used when a request leaves it blank
const DefaultHistoryGroup = "Group 1"

// DashboardService answers dashboard commands over the prepared dataset.
// Records are loaded once and never mutated; every command is independent.
type DashboardService struct {
	records  []video.VideoRecord
	report   dataset.CleanReport
	loaded   bool
	defaults config.AnalyticsConfig
	logger   *internal.Logger
}

// NewDashboardService creates a service with request defaults
func NewDashboardService(defaults config.AnalyticsConfig) *DashboardService {
	return &DashboardService{
		defaults: defaults,
		logger:   internal.DefaultLogger.With("dashboard"),
	}
}

// Load reads and prepares the dataset once
func (s *DashboardService) Load(ctx context.Context, reader ports.DatasetReader) error {
	start := time.Now()
	table, err := reader.ReadData(ctx)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	if err := s.LoadTable(table); err != nil {
		return err
	}
	s.logger.Info("dataset ready in %.2fms (%d of %d rows kept)",
		float64(time.Since(start).Nanoseconds())/1e6, s.report.KeptRows, s.report.TotalRows)
	return nil
}

// LoadTable prepares an already-parsed table
func (s *DashboardService) LoadTable(table *video.RawTable) error {
	records, report, err := dataset.LoadAndCleanWithReport(table)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		s.logger.Warn("no rows survived preparation")
	}
	s.records = records
	s.report = report
	s.loaded = true
	return nil
}

// Report returns the preparation summary
func (s *DashboardService) Report() dataset.CleanReport {
	return s.report
}

// Records returns a copy of the prepared records
func (s *DashboardService) Records() []video.VideoRecord {
	out := make([]video.VideoRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *DashboardService) ensureLoaded() error {
	if !s.loaded {
		return ErrDatasetNotLoaded
	}
	return nil
}

// resolveBins applies the default bin count and rejects counts above the limit
func (s *DashboardService) resolveBins(bins int) (int, error) {
	if bins <= 0 {
		bins = s.defaults.HistogramBins
	}
	limit := s.defaults.MaxHistogramBins
	if limit <= 0 {
		limit = analytics.MaxHistogramBins
	}
	if bins > limit {
		return 0, apperrors.InvalidInput(fmt.Sprintf("bins must be at most %d, got %d", limit, bins))
	}
	return bins, nil
}

// ExploreResult backs the exploratory analysis page
type ExploreResult struct {
	Summary     []analytics.AttributeSummary `json:"summary"`
	Correlation *analytics.CorrelationMatrix `json:"correlation,omitempty"`
	Views       []analytics.HistogramBin     `json:"views_histogram"`
	Warnings    []string                     `json:"warnings,omitempty"`
}

// Explore summarizes, correlates and buckets the dataset. Too few records for
// a correlation is reported as a warning rather than an error.
func (s *DashboardService) Explore(bins int) (*ExploreResult, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	bins, err := s.resolveBins(bins)
	if err != nil {
		return nil, err
	}

	result := &ExploreResult{Summary: analytics.Describe(s.records)}
	corr, err := analytics.Correlate(s.records, nil, true)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else {
		result.Correlation = corr
	}
	views, err := analytics.Histogram(s.records, string(video.AttrViewCount), bins)
	if err != nil {
		return nil, err
	}
	result.Views = views
	return result, nil
}

// Correlation computes a correlation matrix over chosen attributes
func (s *DashboardService) Correlation(attributes []string, absolute bool) (*analytics.CorrelationMatrix, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return analytics.Correlate(s.records, attributes, absolute)
}

// Histogram buckets one attribute
func (s *DashboardService) Histogram(attribute string, bins int) ([]analytics.HistogramBin, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	bins, err := s.resolveBins(bins)
	if err != nil {
		return nil, err
	}
	return analytics.Histogram(s.records, attribute, bins)
}

// TopVideos ranks records by view count
func (s *DashboardService) TopVideos(n int) ([]video.RankedRecord, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.defaults.TopN
	}
	return analytics.TopNByViewCount(s.records, n), nil
}

// RegressionRequest fits views on chosen attributes and optionally predicts.
// History is owned by the caller; when set, a prediction is appended to it.
type RegressionRequest struct {
	IndependentVars []string                     `json:"independent_vars"`
	Inputs          map[string]float64           `json:"inputs,omitempty"`
	Group           string                       `json:"group,omitempty"`
	History         *analytics.PredictionHistory `json:"-"`
}

// RegressionResult carries the fit and the optional prediction
type RegressionResult struct {
	Model      *analytics.RegressionModel `json:"model"`
	Summary    string                     `json:"summary"`
	Prediction *float64                   `json:"prediction,omitempty"`
	Entry      *analytics.PredictionEntry `json:"entry,omitempty"`
}

// Regression fits video_view_count against the requested attributes
func (s *DashboardService) Regression(req RegressionRequest) (*RegressionResult, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	model, err := analytics.FitRegression(s.records, req.IndependentVars, string(video.AttrViewCount))
	if err != nil {
		return nil, err
	}

	result := &RegressionResult{Model: model, Summary: model.Summary()}
	if req.Inputs == nil {
		return result, nil
	}

	prediction, err := model.PredictNamed(req.Inputs)
	if err != nil {
		return nil, err
	}
	result.Prediction = &prediction

	if req.History != nil {
		group := req.Group
		if group == "" {
			group = DefaultHistoryGroup
		}
		entry := req.History.Append(group, req.Inputs, prediction)
		result.Entry = &entry
	}
	return result, nil
}

// OneSampleRequest tests one attribute's mean against an expected value
type OneSampleRequest struct {
	Metric       string  `json:"metric"`
	ExpectedMean float64 `json:"expected_mean"`
}

// OneSampleTest runs a one-sample t-test on a metric column
func (s *DashboardService) OneSampleTest(req OneSampleRequest) (*domainStats.HypothesisTestResult, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	metric, err := video.ParseAttribute(req.Metric)
	if err != nil {
		return nil, err
	}
	result, err := analytics.OneSampleTTest(video.Column(s.records, metric), req.ExpectedMean)
	if err != nil {
		return nil, err
	}
	result.Metric = string(metric)
	return result, nil
}

// GroupTestRequest compares a metric between the two groups of a column.
// Bins sizes the per-group histograms.
type GroupTestRequest struct {
	GroupColumn string `json:"group_column"`
	Metric      string `json:"metric"`
	Bins        int    `json:"bins,omitempty"`
}

// GroupTestResult pairs the t-test with each group's metric distribution
type GroupTestResult struct {
	Test          *domainStats.HypothesisTestResult `json:"test"`
	Distributions []analytics.GroupDistribution     `json:"distributions"`
}

// GroupTest runs Welch's t-test between two groups
func (s *DashboardService) GroupTest(req GroupTestRequest) (*GroupTestResult, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	bins, err := s.resolveBins(req.Bins)
	if err != nil {
		return nil, err
	}
	test, err := analytics.CompareGroups(s.records, req.GroupColumn, req.Metric)
	if err != nil {
		return nil, err
	}
	dists, err := analytics.GroupHistograms(s.records, req.GroupColumn, req.Metric, bins)
	if err != nil {
		return nil, err
	}
	return &GroupTestResult{Test: test, Distributions: dists}, nil
}

// FilterResult is the outcome of a threshold filter. Records is a copy the
// caller may modify.
type FilterResult struct {
	Count   int                      `json:"count"`
	Records []video.VideoRecord      `json:"records"`
	Views   []analytics.HistogramBin `json:"views_histogram"`
}

// Filter keeps records meeting every minimum threshold and buckets their views
func (s *DashboardService) Filter(thresholds map[string]float64) (*FilterResult, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	bins, err := s.resolveBins(0)
	if err != nil {
		return nil, err
	}
	records, err := analytics.FilterRecords(s.records, thresholds)
	if err != nil {
		return nil, err
	}
	views, err := analytics.Histogram(records, string(video.AttrViewCount), bins)
	if err != nil {
		return nil, err
	}
	return &FilterResult{Count: len(records), Records: records, Views: views}, nil
}

// InsightsResult backs the practical solutions page
type InsightsResult struct {
	ShareUplift   *analytics.ShareUpliftProjection `json:"share_uplift,omitempty"`
	DurationViews []analytics.HistogramBin         `json:"duration_views"`
	Warnings      []string                         `json:"warnings,omitempty"`
}

// Insights projects share uplift and buckets views by duration
func (s *DashboardService) Insights(likeIncrease float64, bins int) (*InsightsResult, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	if likeIncrease <= 0 {
		likeIncrease = s.defaults.LikeIncrease
	}
	bins, err := s.resolveBins(bins)
	if err != nil {
		return nil, err
	}

	result := &InsightsResult{DurationViews: analytics.DurationViews(s.records, bins)}
	uplift, err := analytics.ProjectShareUplift(s.records, likeIncrease)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else {
		result.ShareUplift = uplift
	}
	return result, nil
}
