package analytics

import (
	"math"
	"strconv"

	"vidinsights/domain/core"
	domainStats "vidinsights/domain/stats"
	"vidinsights/domain/video"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

const minSampleSize = 2

// OneSampleTTest tests whether the sample mean differs from expectedMean.
// A zero-variance sample yields t=0, p=1 when its mean equals expectedMean.
func OneSampleTTest(sample []float64, expectedMean float64) (*domainStats.HypothesisTestResult, error) {
	summary, err := summarize(sample, "sample")
	if err != nil {
		return nil, err
	}

	n := float64(summary.N)
	se := summary.StdDev / math.Sqrt(n)
	df := n - 1
	t, p := tRatio(summary.Mean-expectedMean, se, df)

	return &domainStats.HypothesisTestResult{
		TestType:         domainStats.TestTypeOneSample,
		Statistic:        t,
		PValue:           p,
		DegreesOfFreedom: df,
		ExpectedMean:     expectedMean,
		Samples:          []domainStats.SampleSummary{summary},
	}, nil
}

// TwoSampleTTest runs Welch's unequal-variance t-test and reports a 95%
// normal-approximation confidence interval for each sample mean.
func TwoSampleTTest(sampleA, sampleB []float64) (*domainStats.HypothesisTestResult, error) {
	return welchTTest(sampleA, sampleB, "sample_a", "sample_b")
}

func welchTTest(sampleA, sampleB []float64, labelA, labelB string) (*domainStats.HypothesisTestResult, error) {
	a, err := summarize(sampleA, labelA)
	if err != nil {
		return nil, err
	}
	b, err := summarize(sampleB, labelB)
	if err != nil {
		return nil, err
	}

	na, nb := float64(a.N), float64(b.N)
	va := a.StdDev * a.StdDev / na
	vb := b.StdDev * b.StdDev / nb
	se := math.Sqrt(va + vb)

	var df float64
	if se == 0 {
		df = na + nb - 2
	} else {
		// Welch-Satterthwaite
		df = (va + vb) * (va + vb) / (va*va/(na-1) + vb*vb/(nb-1))
	}
	t, p := tRatio(a.Mean-b.Mean, se, df)

	return &domainStats.HypothesisTestResult{
		TestType:         domainStats.TestTypeWelch,
		Statistic:        t,
		PValue:           p,
		DegreesOfFreedom: df,
		Samples:          []domainStats.SampleSummary{a, b},
		Intervals:        []domainStats.ConfidenceInterval{normalCI(a), normalCI(b)},
	}, nil
}

// CompareGroups splits metric by a grouping column holding exactly two
// distinct values and runs Welch's t-test between them. The grouping column
// may be a schema attribute or a non-schema label column. Groups are ordered
// by first appearance; records with an empty label are skipped.
func CompareGroups(records []video.VideoRecord, groupColumn, metric string) (*domainStats.HypothesisTestResult, error) {
	m, err := video.ParseAttribute(metric)
	if err != nil {
		return nil, err
	}

	order, groups, err := splitGroups(records, groupColumn, m)
	if err != nil {
		return nil, err
	}
	if len(order) != 2 {
		return nil, core.NewGroupCountError(groupColumn, len(order))
	}

	result, err := welchTTest(groups[order[0]], groups[order[1]], order[0], order[1])
	if err != nil {
		return nil, err
	}
	result.Metric = string(m)
	result.GroupColumn = groupColumn
	return result, nil
}

// GroupDistribution is the histogram of one group's metric values
type GroupDistribution struct {
	Group string         `json:"group"`
	Count int            `json:"count"`
	Bins  []HistogramBin `json:"bins"`
}

// GroupHistograms buckets metric separately for each group of groupColumn,
// in first-appearance order.
func GroupHistograms(records []video.VideoRecord, groupColumn, metric string, bins int) ([]GroupDistribution, error) {
	m, err := video.ParseAttribute(metric)
	if err != nil {
		return nil, err
	}
	order, groups, err := splitGroups(records, groupColumn, m)
	if err != nil {
		return nil, err
	}

	out := make([]GroupDistribution, len(order))
	for i, key := range order {
		out[i] = GroupDistribution{
			Group: key,
			Count: len(groups[key]),
			Bins:  weightedHistogram(groups[key], nil, bins),
		}
	}
	return out, nil
}

// splitGroups collects metric values per group key, skipping unlabeled records
func splitGroups(records []video.VideoRecord, groupColumn string, m video.Attribute) ([]string, map[string][]float64, error) {
	keyOf, err := groupKeyFunc(records, groupColumn)
	if err != nil {
		return nil, nil, err
	}

	var order []string
	groups := make(map[string][]float64)
	for _, rec := range records {
		key, ok := keyOf(rec)
		if !ok {
			continue
		}
		if _, exists := groups[key]; !exists {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec.Value(m))
	}
	return order, groups, nil
}

func groupKeyFunc(records []video.VideoRecord, column string) (func(video.VideoRecord) (string, bool), error) {
	if attr, err := video.ParseAttribute(column); err == nil {
		return func(r video.VideoRecord) (string, bool) {
			return strconv.FormatFloat(r.Value(attr), 'g', -1, 64), true
		}, nil
	}

	known := false
	for _, r := range records {
		if _, ok := r.Labels[column]; ok {
			known = true
			break
		}
	}
	if !known && column != video.ColumnVideoID {
		return nil, core.NewUnknownAttributeError(column)
	}

	return func(r video.VideoRecord) (string, bool) {
		if column == video.ColumnVideoID {
			return r.VideoID, true
		}
		v := r.Labels[column]
		return v, v != ""
	}, nil
}

func summarize(sample []float64, label string) (domainStats.SampleSummary, error) {
	if len(sample) < minSampleSize {
		return domainStats.SampleSummary{}, core.NewInsufficientSampleError(label, minSampleSize, len(sample))
	}
	mean, err := stats.Mean(sample)
	if err != nil {
		return domainStats.SampleSummary{}, err
	}
	sd, err := stats.StandardDeviationSample(sample)
	if err != nil {
		return domainStats.SampleSummary{}, err
	}
	return domainStats.SampleSummary{Label: label, N: len(sample), Mean: mean, StdDev: sd}, nil
}

func normalCI(s domainStats.SampleSummary) domainStats.ConfidenceInterval {
	margin := domainStats.NormalCritical95 * s.StdDev / math.Sqrt(float64(s.N))
	return domainStats.ConfidenceInterval{
		Label: s.Label,
		Mean:  s.Mean,
		Lower: s.Mean - margin,
		Upper: s.Mean + margin,
		Level: 0.95,
	}
}

// tRatio returns diff/se and its two-sided Student's t p-value. A zero
// standard error gives t=0, p=1 for a zero difference and an infinite t with
// p=0 otherwise.
func tRatio(diff, se, df float64) (float64, float64) {
	if math.IsNaN(se) || math.IsNaN(diff) {
		return math.NaN(), math.NaN()
	}
	if se == 0 {
		switch {
		case diff == 0:
			return 0, 1
		case diff > 0:
			return math.Inf(1), 0
		default:
			return math.Inf(-1), 0
		}
	}
	t := diff / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return t, math.Min(p, 1)
}
