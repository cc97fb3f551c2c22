package analytics

import (
	"fmt"

	"vidinsights/domain/video"
)

// newRecord builds a prepared record with derived ratios filled in
func newRecord(id string, views, likes, comments, shares, downloads int64, duration float64) video.VideoRecord {
	return video.VideoRecord{
		VideoID:         id,
		ViewCount:       views,
		LikeCount:       likes,
		CommentCount:    comments,
		ShareCount:      shares,
		DownloadCount:   downloads,
		DurationSec:     duration,
		LikesPerView:    float64(likes) / float64(views),
		CommentsPerView: float64(comments) / float64(views),
	}
}

// linearRecords yields views = 3*likes + 7 for likes 1..n
func linearRecords(n int) []video.VideoRecord {
	records := make([]video.VideoRecord, n)
	for i := 0; i < n; i++ {
		likes := int64(i + 1)
		records[i] = newRecord(fmt.Sprintf("v%d", i), 3*likes+7, likes, int64(i%3), int64((i*7)%5), int64(i%4), float64(10+i))
	}
	return records
}

func withLabel(r video.VideoRecord, key, value string) video.VideoRecord {
	r.Labels = map[string]string{key: value}
	return r
}
