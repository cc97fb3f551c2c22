package video

import (
	"vidinsights/domain/core"
)

// Attribute names a numeric column of the video schema
type Attribute string

// ColumnVideoID is the identifier column of the input
const ColumnVideoID = "video_id"

const (
	AttrViewCount       Attribute = "video_view_count"
	AttrLikeCount       Attribute = "video_like_count"
	AttrCommentCount    Attribute = "video_comment_count"
	AttrShareCount      Attribute = "video_share_count"
	AttrDownloadCount   Attribute = "video_download_count"
	AttrDurationSec     Attribute = "video_duration_sec"
	AttrLikesPerView    Attribute = "likes_per_view"
	AttrCommentsPerView Attribute = "comments_per_view"
)

// RawAttributes are the numeric columns read from the input file
var RawAttributes = []Attribute{
	AttrViewCount,
	AttrLikeCount,
	AttrCommentCount,
	AttrShareCount,
	AttrDownloadCount,
	AttrDurationSec,
}

// DerivedAttributes are computed once during preparation
var DerivedAttributes = []Attribute{
	AttrLikesPerView,
	AttrCommentsPerView,
}

// RegressorAttributes are the attributes offered as independent variables
var RegressorAttributes = []Attribute{
	AttrLikeCount,
	AttrCommentCount,
	AttrDurationSec,
	AttrDownloadCount,
	AttrShareCount,
}

// CorrelationAttributes is the union of correlation columns across dashboard revisions
var CorrelationAttributes = []Attribute{
	AttrViewCount,
	AttrLikeCount,
	AttrCommentCount,
	AttrDurationSec,
	AttrDownloadCount,
	AttrShareCount,
	AttrLikesPerView,
	AttrCommentsPerView,
}

// RequiredColumns lists every column the input must carry
func RequiredColumns() []string {
	cols := []string{ColumnVideoID}
	for _, a := range RawAttributes {
		cols = append(cols, string(a))
	}
	return cols
}

// AllAttributes returns raw followed by derived attributes
func AllAttributes() []Attribute {
	all := make([]Attribute, 0, len(RawAttributes)+len(DerivedAttributes))
	all = append(all, RawAttributes...)
	return append(all, DerivedAttributes...)
}

// ParseAttribute validates a caller-supplied attribute name against the schema
func ParseAttribute(name string) (Attribute, error) {
	for _, a := range AllAttributes() {
		if string(a) == name {
			return a, nil
		}
	}
	return "", core.NewUnknownAttributeError(name)
}

// ParseAttributes validates a list of names, preserving order
func ParseAttributes(names []string) ([]Attribute, error) {
	attrs := make([]Attribute, 0, len(names))
	for _, name := range names {
		a, err := ParseAttribute(name)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// VideoRecord is one prepared row of the dataset. Treat as immutable.
type VideoRecord struct {
	VideoID         string            `json:"video_id"`
	ViewCount       int64             `json:"video_view_count"`
	LikeCount       int64             `json:"video_like_count"`
	CommentCount    int64             `json:"video_comment_count"`
	ShareCount      int64             `json:"video_share_count"`
	DownloadCount   int64             `json:"video_download_count"`
	DurationSec     float64           `json:"video_duration_sec"`
	LikesPerView    float64           `json:"likes_per_view"`
	CommentsPerView float64           `json:"comments_per_view"`
	Labels          map[string]string `json:"labels,omitempty"` // non-schema columns, read-only
}

// Value returns the numeric value of an attribute
func (r VideoRecord) Value(a Attribute) float64 {
	switch a {
	case AttrViewCount:
		return float64(r.ViewCount)
	case AttrLikeCount:
		return float64(r.LikeCount)
	case AttrCommentCount:
		return float64(r.CommentCount)
	case AttrShareCount:
		return float64(r.ShareCount)
	case AttrDownloadCount:
		return float64(r.DownloadCount)
	case AttrDurationSec:
		return r.DurationSec
	case AttrLikesPerView:
		return r.LikesPerView
	case AttrCommentsPerView:
		return r.CommentsPerView
	}
	return 0
}

// Column extracts one attribute across records
func Column(records []VideoRecord, a Attribute) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Value(a)
	}
	return out
}

// RankedRecord pairs a record with its 1-based rank
type RankedRecord struct {
	Rank int `json:"rank"`
	VideoRecord
}

// RawRow represents a row of raw tabular data as column-name to cell pairs
type RawRow map[string]string

// RawTable is an already-parsed tabular input
type RawTable struct {
	Headers []string `json:"headers"`
	Rows    []RawRow `json:"rows"`
}

// HasColumn reports whether the header row carries the named column
func (t *RawTable) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}
