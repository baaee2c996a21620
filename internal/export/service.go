package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Prishashn/Hrextractor/constants"
	"github.com/Prishashn/Hrextractor/internal/archive"
)

// RecordLister is the slice of the archive the exporter needs.
type RecordLister interface {
	ListRecords(ctx context.Context, limit int) ([]archive.Record, error)
}

// Service is a tiny façade over the archive that produces XLSX bytes.
type Service struct {
	records RecordLister
	logger  *slog.Logger
}

func NewService(records RecordLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// ExportRecordsXLSX returns an XLSX workbook (as bytes) of archived
// extraction results, newest first. limit <= 0 exports everything.
func (s *Service) ExportRecordsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	recs, err := s.records.ListRecords(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Profiles"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Extracted At",
		"Name",
		"Profession",
		"Company",
		"Location",
		"Email",
		"Phone",
		"Group Key",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		write(2, orSentinel(r.Fields.Name))
		write(3, orSentinel(r.Fields.Profession))
		write(4, orSentinel(r.Fields.CurrentCompany))
		write(5, orSentinel(r.Fields.CurrentLocation))
		write(6, orSentinel(r.Fields.Email))
		write(7, orSentinel(r.Fields.Phone))
		write(8, r.GroupKey)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 20) // timestamp
	_ = f.SetColWidth(sheet, "B", "B", 24) // name
	_ = f.SetColWidth(sheet, "C", "E", 28) // profession/company/location
	_ = f.SetColWidth(sheet, "F", "F", 32) // email
	_ = f.SetColWidth(sheet, "G", "G", 20) // phone
	_ = f.SetColWidth(sheet, "H", "H", 36) // group key

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func orSentinel(v string) string {
	if v == "" {
		return constants.Sentinel
	}
	return v
}
