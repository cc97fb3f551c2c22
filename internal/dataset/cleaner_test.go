package dataset

import (
	"math"
	"testing"

	"vidinsights/domain/core"
	"vidinsights/domain/video"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id, views, likes, comments, shares, downloads, duration string) video.RawRow {
	return video.RawRow{
		"video_id":             id,
		"video_view_count":     views,
		"video_like_count":     likes,
		"video_comment_count":  comments,
		"video_share_count":    shares,
		"video_download_count": downloads,
		"video_duration_sec":   duration,
	}
}

func table(rows ...video.RawRow) *video.RawTable {
	return &video.RawTable{Headers: video.RequiredColumns(), Rows: rows}
}

func TestLoadAndClean_DropsIncompleteAndZeroViewRows(t *testing.T) {
	input := table(
		row("a", "1000", "100", "10", "5", "2", "30"),
		row("b", "0", "0", "0", "0", "0", "12"),
		row("c", "", "5", "1", "1", "1", "10"),
		row("d", "500", "50", "NaN", "1", "1", "10"),
		row("e", "abc", "5", "1", "1", "1", "10"),
		row("f", "300", "-1", "1", "1", "1", "10"),
		row("g", "800.0", "80", "8", "4", "2", "45.5"),
		row("", "800", "80", "8", "4", "2", "45"),
		row("h", "10.5", "1", "1", "1", "1", "5"),
	)

	records, report, err := LoadAndCleanWithReport(input)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].VideoID)
	assert.Equal(t, "g", records[1].VideoID)
	assert.Equal(t, int64(800), records[1].ViewCount)
	assert.Equal(t, 45.5, records[1].DurationSec)

	assert.Equal(t, 9, report.TotalRows)
	assert.Equal(t, 2, report.KeptRows)
	assert.Equal(t, 7, report.DroppedRows())
	assert.Equal(t, 1, report.Dropped[DropZeroViews])
	assert.Equal(t, 3, report.Dropped[DropMissingField])
	assert.Equal(t, 2, report.Dropped[DropMalformed])
	assert.Equal(t, 1, report.Dropped[DropNegative])

	for _, r := range records {
		assert.NotZero(t, r.ViewCount)
		assert.NotEmpty(t, r.VideoID)
	}
}

func TestLoadAndClean_DerivedRatios(t *testing.T) {
	input := table(
		row("a", "3", "1", "2", "0", "0", "7"),
		row("b", "1000", "333", "17", "0", "0", "7"),
	)

	records, err := LoadAndClean(input)
	require.NoError(t, err)
	for _, r := range records {
		assert.InDelta(t, float64(r.LikeCount)/float64(r.ViewCount), r.LikesPerView, 1e-9)
		assert.InDelta(t, float64(r.CommentCount)/float64(r.ViewCount), r.CommentsPerView, 1e-9)
		assert.False(t, math.IsNaN(r.LikesPerView))
	}
	assert.InDelta(t, 1.0/3.0, records[0].LikesPerView, 1e-12)
}

func TestLoadAndClean_MissingColumns(t *testing.T) {
	input := &video.RawTable{
		Headers: []string{"video_id", "video_view_count", "video_like_count"},
		Rows:    []video.RawRow{{"video_id": "a", "video_view_count": "1", "video_like_count": "1"}},
	}

	_, err := LoadAndClean(input)
	require.Error(t, err)
	assert.True(t, core.IsDataIntegrityError(err))
	assert.Contains(t, err.Error(), "video_duration_sec")
	assert.NotContains(t, err.Error(), "video_like_count")

	_, err = LoadAndClean(nil)
	assert.True(t, core.IsDataIntegrityError(err))
}

func TestLoadAndClean_EmptyResultIsNotAnError(t *testing.T) {
	records, err := LoadAndClean(table(row("a", "0", "1", "1", "1", "1", "1")))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	records, err = LoadAndClean(table())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadAndClean_KeepsLabelsAndDoesNotMutateInput(t *testing.T) {
	r := row("a", "100", "10", "1", "1", "1", "9")
	r["verified_status"] = "verified"
	input := &video.RawTable{
		Headers: append(video.RequiredColumns(), "verified_status"),
		Rows:    []video.RawRow{r},
	}

	records, err := LoadAndClean(input)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, map[string]string{"verified_status": "verified"}, records[0].Labels)

	assert.Len(t, input.Rows[0], 8)
	_, derived := input.Rows[0]["likes_per_view"]
	assert.False(t, derived)
}

func TestLoadAndCleanWithReport_Fingerprint(t *testing.T) {
	a := table(row("a", "100", "10", "1", "1", "1", "9"), row("b", "200", "20", "2", "2", "2", "9"))
	b := table(row("a", "100", "10", "1", "1", "1", "9"), row("b", "200", "20", "2", "2", "2", "9"))
	c := table(row("a", "100", "10", "1", "1", "1", "9"))

	_, reportA, err := LoadAndCleanWithReport(a)
	require.NoError(t, err)
	_, reportB, err := LoadAndCleanWithReport(b)
	require.NoError(t, err)
	_, reportC, err := LoadAndCleanWithReport(c)
	require.NoError(t, err)

	assert.False(t, reportA.Fingerprint.IsEmpty())
	assert.Equal(t, reportA.Fingerprint, reportB.Fingerprint)
	assert.NotEqual(t, reportA.Fingerprint, reportC.Fingerprint)
}

func TestLoadAndClean_DropsCountsBeyondInt64(t *testing.T) {
	input := table(
		row("a", "9223372036854775807", "1", "1", "1", "1", "5"),
		row("b", "1e19", "1", "1", "1", "1", "5"),
		row("c", "100", "9223372036854775808", "1", "1", "1", "5"),
		row("d", "9223372036854774784", "1", "1", "1", "1", "5"),
	)

	records, report, err := LoadAndCleanWithReport(input)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Dropped[DropMalformed])
	require.Len(t, records, 1)
	assert.Equal(t, "d", records[0].VideoID, "largest float64 below 2^63 still fits")
	assert.Equal(t, int64(9223372036854774784), records[0].ViewCount)
	assert.Greater(t, records[0].LikesPerView, 0.0)
}
