package analytics

import (
	"math"
	"sort"

	"vidinsights/domain/core"
	"vidinsights/domain/video"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"
)

// AttributeSummary mirrors the columns of a describe() table
type AttributeSummary struct {
	Attribute string  `json:"attribute"`
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	Min       float64 `json:"min"`
	Q25       float64 `json:"q25"`
	Median    float64 `json:"median"`
	Q75       float64 `json:"q75"`
	Max       float64 `json:"max"`
}

// Describe summarizes every schema attribute. Empty input yields zero-count
// rows; the standard deviation of a single value is reported as 0.
func Describe(records []video.VideoRecord) []AttributeSummary {
	attrs := video.AllAttributes()
	out := make([]AttributeSummary, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, describeColumn(string(a), video.Column(records, a)))
	}
	return out
}

func describeColumn(name string, data []float64) AttributeSummary {
	s := AttributeSummary{Attribute: name, Count: len(data)}
	if len(data) == 0 {
		return s
	}

	s.Mean, _ = stats.Mean(data)
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	s.Median, _ = stats.Median(data)
	if len(data) > 1 {
		s.Std, _ = stats.StandardDeviationSample(data)
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	s.Q25 = linearQuantile(sorted, 0.25)
	s.Q75 = linearQuantile(sorted, 0.75)
	return s
}

// linearQuantile interpolates between closest ranks: h = (n-1)q.
func linearQuantile(sorted []float64, q float64) float64 {
	h := float64(len(sorted)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// CorrelationMatrix holds pairwise Pearson coefficients in Attributes order
type CorrelationMatrix struct {
	Attributes []string    `json:"attributes"`
	Values     [][]float64 `json:"values"`
	Absolute   bool        `json:"absolute"`
}

// At returns the coefficient for a named pair
func (c *CorrelationMatrix) At(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, name := range c.Attributes {
		if name == a {
			ia = i
		}
		if name == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return c.Values[ia][ib], true
}

// Correlate computes Pearson correlations between attributes. An empty
// attribute list selects the full correlation column set. Constant columns
// produce NaN coefficients.
func Correlate(records []video.VideoRecord, attributes []string, absolute bool) (*CorrelationMatrix, error) {
	var attrs []video.Attribute
	if len(attributes) == 0 {
		attrs = video.CorrelationAttributes
	} else {
		parsed, err := video.ParseAttributes(attributes)
		if err != nil {
			return nil, err
		}
		attrs = parsed
	}
	if len(records) < minSampleSize {
		return nil, core.NewInsufficientSampleError("records", minSampleSize, len(records))
	}

	columns := make([][]float64, len(attrs))
	for i, a := range attrs {
		columns[i] = video.Column(records, a)
	}

	m := &CorrelationMatrix{
		Attributes: make([]string, len(attrs)),
		Values:     make([][]float64, len(attrs)),
		Absolute:   absolute,
	}
	for i, a := range attrs {
		m.Attributes[i] = string(a)
		m.Values[i] = make([]float64, len(attrs))
	}
	for i := range attrs {
		for j := i; j < len(attrs); j++ {
			r := gstat.Correlation(columns[i], columns[j], nil)
			if absolute {
				r = math.Abs(r)
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

// MaxHistogramBins caps bin counts when no configured limit is given
const MaxHistogramBins = 1000

// HistogramBin is one equal-width bucket; Upper is exclusive except on the last bin
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count float64 `json:"count"`
}

// Histogram buckets an attribute into equal-width bins
func Histogram(records []video.VideoRecord, attribute string, bins int) ([]HistogramBin, error) {
	a, err := video.ParseAttribute(attribute)
	if err != nil {
		return nil, err
	}
	return weightedHistogram(video.Column(records, a), nil, bins), nil
}

// weightedHistogram sums weights (or counts) per equal-width bin over data
func weightedHistogram(data, weights []float64, bins int) []HistogramBin {
	if len(data) == 0 {
		return []HistogramBin{}
	}
	if bins <= 0 {
		bins = 1
	}

	idx := make([]int, len(data))
	sorted := make([]float64, len(data))
	copy(sorted, data)
	floats.Argsort(sorted, idx)
	var sortedWeights []float64
	if weights != nil {
		sortedWeights = make([]float64, len(weights))
		for i, j := range idx {
			sortedWeights[i] = weights[j]
		}
	}

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		bins = 1
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// Stretch the last edge so the maximum lands inside the final bin.
	dividers[bins] = math.Nextafter(dividers[bins], math.Inf(1))

	counts := gstat.Histogram(nil, dividers, sorted, sortedWeights)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{Lower: dividers[i], Upper: dividers[i+1], Count: counts[i]}
	}
	out[bins-1].Upper = hi
	return out
}
