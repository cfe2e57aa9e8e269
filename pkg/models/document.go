package models

import (
	"fmt"
	"time"
)

// Document is one processed PDF: extracted text, metadata and detected entities.
// It is also the full projection returned for single-document retrieval.
type Document struct {
	ID            string     `json:"id"`
	Filename      string     `json:"filename"`
	Title         *string    `json:"title"`
	Author        *string    `json:"author"`
	PDFCreatedAt  *time.Time `json:"pdf_created_at"`
	PageCount     int        `json:"page_count"`
	WordCount     int        `json:"word_count"`
	CharCount     int        `json:"char_count"`
	FileSize      int64      `json:"file_size"`
	ExtractedText string     `json:"extracted_text"`
	Emails        []string   `json:"emails_found"`
	PhoneNumbers  []string   `json:"phone_numbers_found"`
	URLs          []string   `json:"urls_found"`
	Dates         []string   `json:"dates_found"`
	PIIFound      bool       `json:"pii_found"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HasPII reports whether the entity collections contain personal data.
// PIIFound must always equal this value.
func HasPII(emails, phoneNumbers []string) bool {
	return len(emails) > 0 || len(phoneNumbers) > 0
}

// Normalize replaces nil entity collections with empty ones so they encode as [].
func (d *Document) Normalize() {
	if d.Emails == nil {
		d.Emails = []string{}
	}
	if d.PhoneNumbers == nil {
		d.PhoneNumbers = []string{}
	}
	if d.URLs == nil {
		d.URLs = []string{}
	}
	if d.Dates == nil {
		d.Dates = []string{}
	}
}

// Validate checks the invariants a record must satisfy before it is persisted.
func (d *Document) Validate() error {
	if d.Filename == "" {
		return fmt.Errorf("filename is required")
	}
	if d.PageCount < 0 || d.WordCount < 0 || d.CharCount < 0 || d.FileSize < 0 {
		return fmt.Errorf("counts must be non-negative")
	}
	if d.PIIFound != HasPII(d.Emails, d.PhoneNumbers) {
		return fmt.Errorf("pii_found=%t inconsistent with %d emails and %d phone numbers",
			d.PIIFound, len(d.Emails), len(d.PhoneNumbers))
	}
	for name, values := range map[string][]string{
		"emails_found":        d.Emails,
		"phone_numbers_found": d.PhoneNumbers,
		"urls_found":          d.URLs,
		"dates_found":         d.Dates,
	} {
		if dup, ok := firstDuplicate(values); ok {
			return fmt.Errorf("%s contains duplicate value %q", name, dup)
		}
	}
	return nil
}

func firstDuplicate(values []string) (string, bool) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v, true
		}
		seen[v] = struct{}{}
	}
	return "", false
}

// ListItem is the narrow view of a Document used in paginated listings.
type ListItem struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Title       *string   `json:"title"`
	Author      *string   `json:"author"`
	PageCount   int       `json:"page_count"`
	WordCount   int       `json:"word_count"`
	FileSize    int64     `json:"file_size"`
	PIIFound    bool      `json:"pii_found"`
	EmailsCount int       `json:"emails_count"`
	PhonesCount int       `json:"phones_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToListItem projects the document onto its list view.
func (d *Document) ToListItem() ListItem {
	return ListItem{
		ID:          d.ID,
		Filename:    d.Filename,
		Title:       d.Title,
		Author:      d.Author,
		PageCount:   d.PageCount,
		WordCount:   d.WordCount,
		FileSize:    d.FileSize,
		PIIFound:    d.PIIFound,
		EmailsCount: len(d.Emails),
		PhonesCount: len(d.PhoneNumbers),
		CreatedAt:   d.CreatedAt,
	}
}

// ResultPage is the pagination envelope shared by listing and search.
// Total counts every match, not just the returned items.
type ResultPage struct {
	Items []ListItem `json:"items"`
	Total int        `json:"total"`
	Query string     `json:"query,omitempty"`
}

// Stats holds corpus-wide aggregates.
type Stats struct {
	TotalDocuments         int `json:"total_documents"`
	DocumentsWithPII       int `json:"documents_with_pii"`
	TotalEmailsFound       int `json:"total_emails_found"`
	TotalPhoneNumbersFound int `json:"total_phone_numbers_found"`
	TotalPagesProcessed    int `json:"total_pages_processed"`
}
