package analytics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"vidinsights/domain/core"
	"vidinsights/domain/video"
	"vidinsights/internal"

	"gonum.org/v1/gonum/mat"
)

// InterceptName labels the constant term in coefficient listings
const InterceptName = "const"

// RegressionModel is an ordinary-least-squares fit of one dependent attribute
// against one or more independent attributes plus an intercept.
// Coefficients, StdErrors, TValues and PValues are ordered intercept first,
// then in IndependentVars order.
type RegressionModel struct {
	DependentVar    string    `json:"dependent_var"`
	IndependentVars []string  `json:"independent_vars"`
	Coefficients    []float64 `json:"coefficients"`
	StdErrors       []float64 `json:"std_errors"`
	TValues         []float64 `json:"t_values"`
	PValues         []float64 `json:"p_values"`
	RSquared        float64   `json:"r_squared"`
	AdjRSquared     float64   `json:"adj_r_squared"`
	AIC             float64   `json:"aic"`
	BIC             float64   `json:"bic"`
	RSS             float64   `json:"rss"`
	Observations    int       `json:"observations"`
	ResidualDF      int       `json:"residual_df"`
	RankDeficient   bool      `json:"rank_deficient"`
}

// FitRegression fits dependentVar on independentVars with a leading constant
// column. Rank-deficient designs are not corrected: whatever the QR solve
// yields is returned with RankDeficient set.
func FitRegression(records []video.VideoRecord, independentVars []string, dependentVar string) (*RegressionModel, error) {
	if len(independentVars) == 0 {
		return nil, core.ErrNoIndependentVars
	}

	dep, err := video.ParseAttribute(dependentVar)
	if err != nil {
		return nil, err
	}
	indep, err := video.ParseAttributes(independentVars)
	if err != nil {
		return nil, err
	}
	seen := make(map[video.Attribute]bool, len(indep))
	for _, a := range indep {
		if seen[a] {
			return nil, fmt.Errorf("%w: duplicate independent variable %q", core.ErrInvalidModelSpec, a)
		}
		if a == dep {
			return nil, fmt.Errorf("%w: %q is both dependent and independent", core.ErrInvalidModelSpec, a)
		}
		seen[a] = true
	}

	n := len(records)
	p := len(indep)
	k := p + 1
	if n < k {
		return nil, core.NewUnderdeterminedError(n, k)
	}

	x := mat.NewDense(n, k, nil)
	y := mat.NewVecDense(n, nil)
	for i, rec := range records {
		x.Set(i, 0, 1)
		for j, a := range indep {
			x.Set(i, j+1, rec.Value(a))
		}
		y.SetVec(i, rec.Value(dep))
	}

	logger := internal.DefaultLogger.With("regression")
	model := &RegressionModel{
		DependentVar:    string(dep),
		IndependentVars: append([]string(nil), independentVars...),
		Observations:    n,
		ResidualDF:      n - k,
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("least squares solve failed: %w", err)
		}
		logger.Warn("design matrix is ill-conditioned (condition %.3g), coefficients may be unreliable", float64(cond))
		model.RankDeficient = true
	}
	if beta.Len() != k {
		// The solver bailed out before producing a solution vector.
		beta = *mat.NewVecDense(k, nanSlice(k))
	}
	model.Coefficients = make([]float64, k)
	for j := 0; j < k; j++ {
		model.Coefficients[j] = beta.AtVec(j)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	yMean := mat.Sum(y) / float64(n)
	var rss, tss float64
	for i := 0; i < n; i++ {
		r := y.AtVec(i) - fitted.AtVec(i)
		rss += r * r
		d := y.AtVec(i) - yMean
		tss += d * d
	}
	model.RSS = rss

	if tss == 0 {
		model.RSquared = math.NaN()
	} else {
		model.RSquared = 1 - rss/tss
	}
	if model.ResidualDF == 0 {
		model.AdjRSquared = math.NaN()
	} else {
		model.AdjRSquared = 1 - (1-model.RSquared)*float64(n-1)/float64(model.ResidualDF)
	}

	nf := float64(n)
	llf := -nf / 2 * (math.Log(2*math.Pi) + math.Log(rss/nf) + 1)
	model.AIC = -2*llf + 2*float64(k)
	model.BIC = -2*llf + float64(k)*math.Log(nf)

	model.StdErrors, model.TValues, model.PValues = coefficientInference(x, model.Coefficients, rss, model.ResidualDF)

	logger.Debug("fit %s ~ %s (n=%d, adj R2=%.4f)", dep, strings.Join(independentVars, " + "), n, model.AdjRSquared)
	return model, nil
}

// coefficientInference derives standard errors, t values and two-sided p
// values from sigma^2 (X'X)^-1. Undefined entries are NaN.
func coefficientInference(x *mat.Dense, coef []float64, rss float64, df int) (se, tv, pv []float64) {
	k := len(coef)
	se = nanSlice(k)
	tv = nanSlice(k)
	pv = nanSlice(k)
	if df <= 0 {
		return se, tv, pv
	}

	var xtx, inv mat.Dense
	xtx.Mul(x.T(), x)
	if err := inv.Inverse(&xtx); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return se, tv, pv
		}
	}

	sigma2 := rss / float64(df)
	for j := 0; j < k; j++ {
		v := sigma2 * inv.At(j, j)
		if v < 0 {
			continue
		}
		se[j] = math.Sqrt(v)
		tv[j], pv[j] = tRatio(coef[j], se[j], float64(df))
	}
	return se, tv, pv
}

// Intercept returns the constant term
func (m *RegressionModel) Intercept() float64 {
	return m.Coefficients[0]
}

// Coefficient returns the slope fitted for an independent variable
func (m *RegressionModel) Coefficient(name string) (float64, bool) {
	for i, v := range m.IndependentVars {
		if v == name {
			return m.Coefficients[i+1], true
		}
	}
	return 0, false
}

// Predict evaluates intercept + sum(coef_i * input_i). Inputs follow IndependentVars order.
func (m *RegressionModel) Predict(inputs []float64) (float64, error) {
	if len(inputs) != len(m.Coefficients)-1 {
		return 0, core.NewDimensionMismatchError(len(m.Coefficients)-1, len(inputs))
	}
	y := m.Coefficients[0]
	for i, v := range inputs {
		y += m.Coefficients[i+1] * v
	}
	return y, nil
}

// PredictNamed resolves inputs by independent variable name
func (m *RegressionModel) PredictNamed(values map[string]float64) (float64, error) {
	if len(values) != len(m.IndependentVars) {
		return 0, core.NewDimensionMismatchError(len(m.IndependentVars), len(values))
	}
	inputs := make([]float64, len(m.IndependentVars))
	for i, name := range m.IndependentVars {
		v, ok := values[name]
		if !ok {
			return 0, fmt.Errorf("%w: missing input for %q", core.ErrDimensionMismatch, name)
		}
		inputs[i] = v
	}
	return m.Predict(inputs)
}

// Summary renders the fit as a plain-text table
func (m *RegressionModel) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "OLS Regression Results\n")
	fmt.Fprintf(&b, "Dep. Variable: %s\n", m.DependentVar)
	fmt.Fprintf(&b, "No. Observations: %d    Df Residuals: %d    Df Model: %d\n",
		m.Observations, m.ResidualDF, len(m.IndependentVars))
	fmt.Fprintf(&b, "R-squared: %.4f    Adj. R-squared: %.4f\n", m.RSquared, m.AdjRSquared)
	fmt.Fprintf(&b, "AIC: %.4f    BIC: %.4f\n", m.AIC, m.BIC)
	if m.RankDeficient {
		fmt.Fprintf(&b, "Warning: design matrix is ill-conditioned\n")
	}
	fmt.Fprintf(&b, "%-24s %14s %14s %10s %10s\n", "", "coef", "std err", "t", "P>|t|")

	names := append([]string{InterceptName}, m.IndependentVars...)
	for i, name := range names {
		fmt.Fprintf(&b, "%-24s %14.4f %14.4f %10.3f %10.3f\n",
			name, m.Coefficients[i], m.StdErrors[i], m.TValues[i], m.PValues[i])
	}
	return b.String()
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
