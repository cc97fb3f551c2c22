package ui

import (
	"math"

	domainStats "vidinsights/domain/stats"
	"vidinsights/internal/analytics"
)

// JSON cannot carry NaN or Inf, so undefined statistics are sent as null.

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func finiteSlice(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		out[i] = finite(v)
	}
	return out
}

// CoefficientResponse is one row of the coefficient table
type CoefficientResponse struct {
	Name     string   `json:"name"`
	Estimate *float64 `json:"estimate"`
	StdError *float64 `json:"std_error"`
	TValue   *float64 `json:"t_value"`
	PValue   *float64 `json:"p_value"`
}

// RegressionResponse is the API view of a fitted model
type RegressionResponse struct {
	DependentVar    string                     `json:"dependent_var"`
	IndependentVars []string                   `json:"independent_vars"`
	Coefficients    []CoefficientResponse      `json:"coefficients"`
	RSquared        *float64                   `json:"r_squared"`
	AdjRSquared     *float64                   `json:"adj_r_squared"`
	AIC             *float64                   `json:"aic"`
	BIC             *float64                   `json:"bic"`
	Observations    int                        `json:"observations"`
	ResidualDF      int                        `json:"residual_df"`
	RankDeficient   bool                       `json:"rank_deficient"`
	Summary         string                     `json:"summary"`
	Prediction      *float64                   `json:"prediction,omitempty"`
	Entry           *analytics.PredictionEntry `json:"entry,omitempty"`
}

func newRegressionResponse(m *analytics.RegressionModel, summary string) RegressionResponse {
	names := append([]string{analytics.InterceptName}, m.IndependentVars...)
	coefs := make([]CoefficientResponse, len(names))
	for i, name := range names {
		coefs[i] = CoefficientResponse{
			Name:     name,
			Estimate: finite(m.Coefficients[i]),
			StdError: finite(m.StdErrors[i]),
			TValue:   finite(m.TValues[i]),
			PValue:   finite(m.PValues[i]),
		}
	}
	return RegressionResponse{
		DependentVar:    m.DependentVar,
		IndependentVars: m.IndependentVars,
		Coefficients:    coefs,
		RSquared:        finite(m.RSquared),
		AdjRSquared:     finite(m.AdjRSquared),
		AIC:             finite(m.AIC),
		BIC:             finite(m.BIC),
		Observations:    m.Observations,
		ResidualDF:      m.ResidualDF,
		RankDeficient:   m.RankDeficient,
		Summary:         summary,
	}
}

// TestResultResponse is the API view of a t-test
type TestResultResponse struct {
	TestType         domainStats.TestType             `json:"test_type"`
	Metric           string                           `json:"metric,omitempty"`
	GroupColumn      string                           `json:"group_column,omitempty"`
	Statistic        *float64                         `json:"statistic"`
	PValue           *float64                         `json:"p_value"`
	DegreesOfFreedom *float64                         `json:"degrees_of_freedom"`
	ExpectedMean     *float64                         `json:"expected_mean,omitempty"`
	Samples          []domainStats.SampleSummary      `json:"samples"`
	Intervals        []domainStats.ConfidenceInterval `json:"confidence_intervals,omitempty"`
	Reject           bool                             `json:"reject"`
	Verdict          string                           `json:"verdict"`
}

func newTestResultResponse(r *domainStats.HypothesisTestResult) TestResultResponse {
	resp := TestResultResponse{
		TestType:         r.TestType,
		Metric:           r.Metric,
		GroupColumn:      r.GroupColumn,
		Statistic:        finite(r.Statistic),
		PValue:           finite(r.PValue),
		DegreesOfFreedom: finite(r.DegreesOfFreedom),
		Samples:          r.Samples,
		Intervals:        r.Intervals,
		Reject:           r.Reject(),
		Verdict:          r.Verdict(),
	}
	if r.TestType == domainStats.TestTypeOneSample {
		resp.ExpectedMean = finite(r.ExpectedMean)
	}
	return resp
}

// GroupTestResponse adds per-group histograms to a two-sample test
type GroupTestResponse struct {
	TestResultResponse
	Distributions []analytics.GroupDistribution `json:"distributions"`
}

// CorrelationResponse is the API view of a correlation matrix
type CorrelationResponse struct {
	Attributes []string     `json:"attributes"`
	Values     [][]*float64 `json:"values"`
	Absolute   bool         `json:"absolute"`
}

func newCorrelationResponse(m *analytics.CorrelationMatrix) *CorrelationResponse {
	if m == nil {
		return nil
	}
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = finiteSlice(row)
	}
	return &CorrelationResponse{Attributes: m.Attributes, Values: values, Absolute: m.Absolute}
}

// UpliftResponse is the API view of a share uplift projection
type UpliftResponse struct {
	LikeIncrease float64                 `json:"like_increase"`
	Correlation  *float64                `json:"correlation"`
	Points       []analytics.UpliftPoint `json:"points,omitempty"`
}

func newUpliftResponse(p *analytics.ShareUpliftProjection) *UpliftResponse {
	if p == nil {
		return nil
	}
	resp := &UpliftResponse{LikeIncrease: p.LikeIncrease, Correlation: finite(p.Correlation)}
	if resp.Correlation != nil {
		resp.Points = p.Points
	}
	return resp
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Warning bool   `json:"warning,omitempty"`
}
