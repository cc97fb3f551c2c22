package excel

import (
	"context"
	"fmt"

	"vidinsights/domain/video"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// Exporter writes record collections as an xlsx workbook
type Exporter struct{}

// NewExporter creates a new xlsx exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// ExportRecords renders records into a single-sheet workbook with the
// schema columns followed by the derived ratios.
func (e *Exporter) ExportRecords(ctx context.Context, records []video.VideoRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{video.ColumnVideoID}
	for _, a := range video.AllAttributes() {
		header = append(header, string(a))
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range records {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := []interface{}{
			rec.VideoID,
			rec.ViewCount,
			rec.LikeCount,
			rec.CommentCount,
			rec.ShareCount,
			rec.DownloadCount,
			rec.DurationSec,
			rec.LikesPerView,
			rec.CommentsPerView,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
