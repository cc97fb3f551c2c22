package ports

import (
	"context"

	"vidinsights/domain/video"
)

// DatasetReader provides the raw tabular input the preparation stage consumes.
// Implementations own file decoding; callers only see headers and string cells.
type DatasetReader interface {
	ReadData(ctx context.Context) (*video.RawTable, error)
}

// DatasetExporter writes a prepared record collection to an external sink
type DatasetExporter interface {
	ExportRecords(ctx context.Context, records []video.VideoRecord) ([]byte, error)
}
