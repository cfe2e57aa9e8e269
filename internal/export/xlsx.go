// Package export writes document listings as spreadsheets.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mfenderov/pdfvault/internal/query"
	"github.com/mfenderov/pdfvault/internal/store"
	"github.com/mfenderov/pdfvault/pkg/models"
)

// SheetName is the worksheet holding the exported rows.
const SheetName = "Documents"

var headers = []string{
	"ID",
	"Filename",
	"Title",
	"Author",
	"Pages",
	"Words",
	"File Size",
	"PII Found",
	"Emails",
	"Phone Numbers",
	"Ingested At",
}

// Service produces XLSX workbooks from the query engine.
type Service struct {
	queries *query.Service
	logger  *slog.Logger
}

func NewService(queries *query.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{queries: queries, logger: logger}
}

// ExportXLSX returns a workbook (as bytes) with one row per document matching f,
// in listing order.
func (s *Service) ExportXLSX(ctx context.Context, f store.Filter) ([]byte, error) {
	start := time.Now()

	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = wb.SetCellValue(SheetName, cell, h)
	}

	row := 2
	page := query.Page{Limit: query.MaxLimit}
	for {
		res, err := s.queries.List(ctx, f, page)
		if err != nil {
			return nil, fmt.Errorf("query documents: %w", err)
		}
		for _, it := range res.Items {
			if err := writeRow(wb, row, it); err != nil {
				return nil, err
			}
			row++
		}
		page.Offset += len(res.Items)
		if len(res.Items) == 0 || page.Offset >= res.Total {
			break
		}
	}

	_ = wb.SetColWidth(SheetName, "A", "A", 38) // id
	_ = wb.SetColWidth(SheetName, "B", "D", 28) // filename, title, author
	_ = wb.SetColWidth(SheetName, "K", "K", 22) // ingested at

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, it models.ListItem) error {
	values := []any{
		it.ID,
		it.Filename,
		deref(it.Title),
		deref(it.Author),
		it.PageCount,
		it.WordCount,
		it.FileSize,
		it.PIIFound,
		it.EmailsCount,
		it.PhonesCount,
		it.CreatedAt.UTC().Format(time.RFC3339),
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return fmt.Errorf("xlsx cell %s: %w", cell, err)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
