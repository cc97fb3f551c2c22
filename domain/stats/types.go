package stats

import (
	"fmt"
)

// SignificanceLevel is the fixed alpha used for reject/fail-to-reject decisions
const SignificanceLevel = 0.05

// NormalCritical95 is the two-sided 95% z critical value used for confidence intervals
const NormalCritical95 = 1.96

// TestType identifies the hypothesis test that produced a result
type TestType string

const (
	TestTypeOneSample TestType = "one_sample_t"
	TestTypeWelch     TestType = "welch_t"
)

// ConfidenceInterval is a two-sided interval around a sample mean
type ConfidenceInterval struct {
	Label string  `json:"label,omitempty"`
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// Contains reports whether v lies within the closed interval
func (ci ConfidenceInterval) Contains(v float64) bool {
	return v >= ci.Lower && v <= ci.Upper
}

// SampleSummary describes one side of a test
type SampleSummary struct {
	Label  string  `json:"label,omitempty"`
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// HypothesisTestResult is the outcome of a one-sample or two-sample t-test
type HypothesisTestResult struct {
	TestType         TestType             `json:"test_type"`
	Statistic        float64              `json:"statistic"`
	PValue           float64              `json:"p_value"`
	DegreesOfFreedom float64              `json:"degrees_of_freedom"`
	ExpectedMean     float64              `json:"expected_mean,omitempty"` // one-sample only
	Samples          []SampleSummary      `json:"samples"`
	Intervals        []ConfidenceInterval `json:"confidence_intervals,omitempty"` // two-sample only
	Metric           string               `json:"metric,omitempty"`
	GroupColumn      string               `json:"group_column,omitempty"`
}

// Reject applies the fixed significance level to the p-value
func (r HypothesisTestResult) Reject() bool {
	return r.PValue < SignificanceLevel
}

// Verdict returns a short human-readable decision
func (r HypothesisTestResult) Verdict() string {
	if r.Reject() {
		return fmt.Sprintf("reject null hypothesis (p=%.4f < %.2f)", r.PValue, SignificanceLevel)
	}
	return fmt.Sprintf("fail to reject null hypothesis (p=%.4f >= %.2f)", r.PValue, SignificanceLevel)
}
