package pipeline

import (
	"fmt"

	"github.com/mfenderov/pdfvault/internal/entities"
	"github.com/mfenderov/pdfvault/internal/pdfx"
	"github.com/mfenderov/pdfvault/internal/textstats"
	"github.com/mfenderov/pdfvault/pkg/models"
)

// Assemble merges the outputs of extraction, entity scanning and statistics into
// one record. ID and CreatedAt are left zero for the store to assign.
func Assemble(filename string, size int64, extracted *pdfx.Result, found entities.Result, stats textstats.Stats) (models.Document, error) {
	if extracted == nil {
		return models.Document{}, fmt.Errorf("assemble %s: missing extraction result", filename)
	}

	doc := models.Document{
		Filename:      filename,
		Title:         extracted.Title,
		Author:        extracted.Author,
		PDFCreatedAt:  extracted.PDFCreatedAt,
		PageCount:     extracted.PageCount,
		WordCount:     stats.WordCount,
		CharCount:     stats.CharCount,
		FileSize:      size,
		ExtractedText: extracted.Text,
		Emails:        found.Emails,
		PhoneNumbers:  found.PhoneNumbers,
		URLs:          found.URLs,
		Dates:         found.Dates,
		PIIFound:      models.HasPII(found.Emails, found.PhoneNumbers),
	}
	doc.Normalize()

	if err := doc.Validate(); err != nil {
		return models.Document{}, fmt.Errorf("assemble %s: %w", filename, err)
	}
	return doc, nil
}
