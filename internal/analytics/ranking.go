package analytics

import (
	"sort"

	"vidinsights/domain/video"
)

// DefaultTopN is the ranking size used when the caller passes n <= 0
const DefaultTopN = 10

// TopNByViewCount returns the n most viewed records in descending order.
// Ties keep input order. The input slice is not reordered.
func TopNByViewCount(records []video.VideoRecord, n int) []video.RankedRecord {
	if n <= 0 {
		n = DefaultTopN
	}

	sorted := make([]video.VideoRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ViewCount > sorted[j].ViewCount
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	ranked := make([]video.RankedRecord, n)
	for i := 0; i < n; i++ {
		ranked[i] = video.RankedRecord{Rank: i + 1, VideoRecord: sorted[i]}
	}
	return ranked
}

// FilterRecords keeps records whose every named attribute is >= its threshold.
// An empty threshold map returns a copy of every record. Unknown attribute
// names are rejected before any filtering happens.
func FilterRecords(records []video.VideoRecord, thresholds map[string]float64) ([]video.VideoRecord, error) {
	if len(thresholds) == 0 {
		out := make([]video.VideoRecord, len(records))
		copy(out, records)
		return out, nil
	}

	names := make([]string, 0, len(thresholds))
	for name := range thresholds {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs, err := video.ParseAttributes(names)
	if err != nil {
		return nil, err
	}

	out := make([]video.VideoRecord, 0, len(records))
	for _, rec := range records {
		keep := true
		for i, a := range attrs {
			if rec.Value(a) < thresholds[names[i]] {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out, nil
}
