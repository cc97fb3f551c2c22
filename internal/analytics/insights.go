package analytics

import (
	"vidinsights/domain/core"
	"vidinsights/domain/video"

	gstat "gonum.org/v1/gonum/stat"
)

// DefaultLikeIncrease is the engagement uplift projected when none is given
const DefaultLikeIncrease = 1.10

// UpliftPoint is one record's observed and projected engagement
type UpliftPoint struct {
	VideoID         string  `json:"video_id"`
	Likes           float64 `json:"likes"`
	Shares          float64 `json:"shares"`
	ProjectedLikes  float64 `json:"projected_likes"`
	ProjectedShares float64 `json:"projected_shares"`
}

// ShareUpliftProjection estimates how shares respond to more likes
type ShareUpliftProjection struct {
	LikeIncrease float64       `json:"like_increase"`
	Correlation  float64       `json:"correlation"`
	Points       []UpliftPoint `json:"points"`
}

// ProjectShareUplift scales each record's likes by likeIncrease and projects
// shares as projected likes times the likes/shares Pearson coefficient.
func ProjectShareUplift(records []video.VideoRecord, likeIncrease float64) (*ShareUpliftProjection, error) {
	if likeIncrease <= 0 {
		likeIncrease = DefaultLikeIncrease
	}
	if len(records) < minSampleSize {
		return nil, core.NewInsufficientSampleError("records", minSampleSize, len(records))
	}

	likes := video.Column(records, video.AttrLikeCount)
	shares := video.Column(records, video.AttrShareCount)
	r := gstat.Correlation(likes, shares, nil)

	points := make([]UpliftPoint, len(records))
	for i, rec := range records {
		projected := likes[i] * likeIncrease
		points[i] = UpliftPoint{
			VideoID:         rec.VideoID,
			Likes:           likes[i],
			Shares:          shares[i],
			ProjectedLikes:  projected,
			ProjectedShares: projected * r,
		}
	}
	return &ShareUpliftProjection{LikeIncrease: likeIncrease, Correlation: r, Points: points}, nil
}

// DurationViews buckets video duration and sums views per bucket
func DurationViews(records []video.VideoRecord, bins int) []HistogramBin {
	return weightedHistogram(
		video.Column(records, video.AttrDurationSec),
		video.Column(records, video.AttrViewCount),
		bins,
	)
}
