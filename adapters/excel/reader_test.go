package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vidinsights/domain/video"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "video_id,video_view_count,video_like_count,video_comment_count,video_share_count,video_download_count,video_duration_sec,claim_status\n" +
	"v1,1000,100,10,5,2,30,claim\n" +
	"v2, 2000 ,300,,7,3,15,opinion\n" +
	"v3,500,50,5\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "videos.csv", []byte(sampleCSV))

	table, err := NewDataReader(path).ReadData(context.Background())
	require.NoError(t, err)

	assert.Len(t, table.Headers, 8)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "1000", table.Rows[0]["video_view_count"])
	assert.Equal(t, "2000", table.Rows[1]["video_view_count"], "cells are trimmed")
	assert.Equal(t, "", table.Rows[1]["video_comment_count"])
	_, present := table.Rows[2]["video_duration_sec"]
	assert.False(t, present, "short rows leave trailing columns absent")
	assert.Equal(t, "claim", table.Rows[0]["claim_status"])
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "absent.csv")).ReadData(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadEmptyCSV(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)
	_, err := NewDataReader(path).ReadData(context.Background())
	assert.Error(t, err)
}

func TestReadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDataReader("whatever.csv").ReadData(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportThenReadWorkbook(t *testing.T) {
	records := []video.VideoRecord{
		{VideoID: "a", ViewCount: 100, LikeCount: 10, CommentCount: 1, ShareCount: 2, DownloadCount: 3, DurationSec: 12.5, LikesPerView: 0.1, CommentsPerView: 0.01},
		{VideoID: "b", ViewCount: 400, LikeCount: 40, CommentCount: 8, ShareCount: 4, DownloadCount: 1, DurationSec: 30, LikesPerView: 0.1, CommentsPerView: 0.02},
	}

	data, err := NewExporter().ExportRecords(context.Background(), records)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	path := writeFile(t, "export.xlsx", data)
	table, err := NewDataReader(path).ReadData(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "video_id", table.Headers[0])
	assert.Equal(t, "comments_per_view", table.Headers[len(table.Headers)-1])
	for _, col := range video.RequiredColumns() {
		assert.True(t, table.HasColumn(col), col)
	}
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "b", table.Rows[1]["video_id"])
	assert.Equal(t, "400", table.Rows[1]["video_view_count"])
	assert.Equal(t, "12.5", table.Rows[0]["video_duration_sec"])
}
