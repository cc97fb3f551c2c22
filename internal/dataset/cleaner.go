// Package dataset prepares raw tabular video metadata for analysis.
//
// Preparation drops incomplete or malformed rows, excludes zero-view rows so
// the derived per-view ratios never divide by zero, and computes those ratios
// exactly once. The resulting records are never mutated afterwards.
package dataset

import (
	"math"
	"strconv"
	"strings"

	"vidinsights/domain/core"
	"vidinsights/domain/video"
	"vidinsights/internal"
)

// DropReason classifies why a raw row was excluded
type DropReason string

const (
	DropMissingField DropReason = "missing_field"
	DropMalformed    DropReason = "malformed_value"
	DropNegative     DropReason = "negative_value"
	DropZeroViews    DropReason = "zero_views"
)

// CleanReport summarizes a preparation pass
type CleanReport struct {
	TotalRows   int                `json:"total_rows"`
	KeptRows    int                `json:"kept_rows"`
	Dropped     map[DropReason]int `json:"dropped"`
	Fingerprint core.Hash          `json:"fingerprint"`
}

// DroppedRows returns the number of excluded rows
func (r CleanReport) DroppedRows() int {
	return r.TotalRows - r.KeptRows
}

// LoadAndClean produces the prepared record collection from a raw table
func LoadAndClean(table *video.RawTable) ([]video.VideoRecord, error) {
	records, _, err := LoadAndCleanWithReport(table)
	return records, err
}

// LoadAndCleanWithReport is LoadAndClean plus per-reason drop tallies.
// It fails only when required columns are absent from the header row; an
// input whose every row is dropped yields an empty, non-nil collection.
func LoadAndCleanWithReport(table *video.RawTable) ([]video.VideoRecord, CleanReport, error) {
	report := CleanReport{Dropped: make(map[DropReason]int)}
	if table == nil {
		return nil, report, core.NewMissingColumnsError(video.RequiredColumns())
	}

	var missing []string
	for _, col := range video.RequiredColumns() {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, report, core.NewMissingColumnsError(missing)
	}

	required := make(map[string]bool)
	for _, col := range video.RequiredColumns() {
		required[col] = true
	}

	logger := internal.DefaultLogger.With("dataset")
	records := make([]video.VideoRecord, 0, len(table.Rows))
	report.TotalRows = len(table.Rows)

	for i, row := range table.Rows {
		rec, reason, ok := parseRow(row)
		if !ok {
			report.Dropped[reason]++
			logger.Trace("row %d dropped: %s", i+1, reason)
			continue
		}

		// Non-schema columns are kept as read-only labels for grouping.
		for _, h := range table.Headers {
			if required[h] {
				continue
			}
			if rec.Labels == nil {
				rec.Labels = make(map[string]string)
			}
			rec.Labels[h] = row[h]
		}

		rec.LikesPerView = float64(rec.LikeCount) / float64(rec.ViewCount)
		rec.CommentsPerView = float64(rec.CommentCount) / float64(rec.ViewCount)
		records = append(records, rec)
	}

	report.KeptRows = len(records)
	report.Fingerprint = fingerprint(table)
	logger.Debug("prepared %d of %d rows (%d dropped)", report.KeptRows, report.TotalRows, report.DroppedRows())
	return records, report, nil
}

func parseRow(row video.RawRow) (video.VideoRecord, DropReason, bool) {
	var rec video.VideoRecord

	id, ok := row[video.ColumnVideoID]
	if !ok || isMissing(id) {
		return rec, DropMissingField, false
	}
	rec.VideoID = id

	counts := []struct {
		attr video.Attribute
		dst  *int64
	}{
		{video.AttrViewCount, &rec.ViewCount},
		{video.AttrLikeCount, &rec.LikeCount},
		{video.AttrCommentCount, &rec.CommentCount},
		{video.AttrShareCount, &rec.ShareCount},
		{video.AttrDownloadCount, &rec.DownloadCount},
	}
	for _, c := range counts {
		v, reason, ok := parseNumber(row, c.attr)
		if !ok {
			return rec, reason, false
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if v != math.Trunc(v) || v >= math.MaxInt64 {
			return rec, DropMalformed, false
		}
		*c.dst = int64(v)
	}

	duration, reason, ok := parseNumber(row, video.AttrDurationSec)
	if !ok {
		return rec, reason, false
	}
	rec.DurationSec = duration

	if rec.ViewCount == 0 {
		return rec, DropZeroViews, false
	}
	return rec, "", true
}

func parseNumber(row video.RawRow, attr video.Attribute) (float64, DropReason, bool) {
	raw, ok := row[string(attr)]
	if !ok || isMissing(raw) {
		return 0, DropMissingField, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, DropMalformed, false
	}
	if v < 0 {
		return 0, DropNegative, false
	}
	return v, "", true
}

// isMissing treats empty cells and the usual NA spellings as absent values
func isMissing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "nan", "n/a", "null", "none":
		return true
	}
	return false
}

func fingerprint(table *video.RawTable) core.Hash {
	rows := make([]map[string]string, len(table.Rows))
	for i, row := range table.Rows {
		rows[i] = row
	}
	return core.ComputeTableHash(table.Headers, rows)
}
