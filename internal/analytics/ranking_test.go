package analytics

import (
	"fmt"
	"testing"

	"vidinsights/domain/core"
	"vidinsights/domain/video"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopNByViewCount(t *testing.T) {
	records := []video.VideoRecord{
		newRecord("a", 100, 1, 1, 1, 1, 1),
		newRecord("b", 500, 1, 1, 1, 1, 1),
		newRecord("c", 300, 1, 1, 1, 1, 1),
		newRecord("d", 500, 1, 1, 1, 1, 1),
		newRecord("e", 50, 1, 1, 1, 1, 1),
	}

	top := TopNByViewCount(records, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].VideoID, "ties keep input order")
	assert.Equal(t, "d", top[1].VideoID)
	assert.Equal(t, "c", top[2].VideoID)
	assert.Equal(t, []int{1, 2, 3}, []int{top[0].Rank, top[1].Rank, top[2].Rank})

	assert.Equal(t, "a", records[0].VideoID, "input order untouched")
	assert.Equal(t, "e", records[4].VideoID)
}

func TestTopNByViewCount_FewerThanN(t *testing.T) {
	records := []video.VideoRecord{
		newRecord("a", 10, 1, 1, 1, 1, 1),
		newRecord("b", 30, 1, 1, 1, 1, 1),
		newRecord("c", 20, 1, 1, 1, 1, 1),
	}

	top := TopNByViewCount(records, 10)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{top[0].VideoID, top[1].VideoID, top[2].VideoID})

	assert.Empty(t, TopNByViewCount(nil, 10))
}

func TestTopNByViewCount_DefaultN(t *testing.T) {
	records := make([]video.VideoRecord, 25)
	for i := range records {
		records[i] = newRecord(fmt.Sprintf("v%d", i), int64(i+1), 1, 1, 1, 1, 1)
	}
	top := TopNByViewCount(records, 0)
	require.Len(t, top, DefaultTopN)
	assert.Equal(t, int64(25), top[0].ViewCount)
	assert.Equal(t, int64(16), top[9].ViewCount)
}

func TestFilterRecords(t *testing.T) {
	records := []video.VideoRecord{
		newRecord("a", 1000, 500, 1, 10, 10, 10),
		newRecord("b", 999, 800, 1, 10, 10, 30),
		newRecord("c", 5000, 499, 1, 10, 10, 30),
		newRecord("d", 2000, 600, 1, 9, 10, 9),
		newRecord("e", 3000, 700, 1, 50, 20, 60),
	}

	filtered, err := FilterRecords(records, map[string]float64{
		"video_view_count":     1000,
		"video_like_count":     500,
		"video_duration_sec":   10,
		"video_download_count": 10,
		"video_share_count":    10,
	})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].VideoID, "bounds are inclusive")
	assert.Equal(t, "e", filtered[1].VideoID)

	filtered, err = FilterRecords(records, map[string]float64{"likes_per_view": 0.6})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].VideoID)
}

func TestFilterRecords_EmptyThresholds(t *testing.T) {
	records := []video.VideoRecord{
		newRecord("z", 1, 1, 1, 1, 1, 1),
		newRecord("y", 2, 1, 1, 1, 1, 1),
	}
	filtered, err := FilterRecords(records, nil)
	require.NoError(t, err)
	assert.Equal(t, records, filtered)

	filtered, err = FilterRecords(records, map[string]float64{})
	require.NoError(t, err)
	assert.Equal(t, records, filtered)

	filtered[0].ViewCount = 999999
	assert.Equal(t, int64(1), records[0].ViewCount, "result does not alias the input")
}

func TestFilterRecords_UnknownAttribute(t *testing.T) {
	_, err := FilterRecords(nil, map[string]float64{"video_view_count": 1, "popularity": 3})
	require.Error(t, err)
	assert.True(t, core.IsInvalidModelSpecError(err))
	assert.Contains(t, err.Error(), "popularity")
}
