// Package query answers read and delete requests over persisted records.
package query

import (
	"context"
	"strings"

	"github.com/mfenderov/pdfvault/internal/apperr"
	"github.com/mfenderov/pdfvault/internal/store"
	"github.com/mfenderov/pdfvault/pkg/models"
)

// Pagination bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Page selects a window of an ordered result. A zero Limit means DefaultLimit.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) normalize() (Page, error) {
	if p.Offset < 0 {
		return p, apperr.Invalid("offset", "must be >= 0, got %d", p.Offset)
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return p, apperr.Invalid("limit", "must be between 1 and %d, got %d", MaxLimit, p.Limit)
	}
	return p, nil
}

// Service is the query engine and aggregator.
type Service struct {
	store store.Store
}

// New creates a Service reading from s.
func New(s store.Store) *Service {
	return &Service{store: s}
}

// List returns records matching every set criterion, newest first.
func (s *Service) List(ctx context.Context, f store.Filter, page Page) (models.ResultPage, error) {
	page, err := page.normalize()
	if err != nil {
		return models.ResultPage{}, err
	}
	return s.query(ctx, store.Query{Filter: f, Offset: page.Offset, Limit: page.Limit})
}

// Search returns records whose text, filename, title or author contains q,
// ignoring case. q is matched as given, surrounding whitespace included,
// and echoed on the result.
func (s *Service) Search(ctx context.Context, q string, page Page) (models.ResultPage, error) {
	if q == "" {
		return models.ResultPage{}, apperr.Invalid("q", "must not be empty")
	}
	page, err := page.normalize()
	if err != nil {
		return models.ResultPage{}, err
	}

	res, err := s.query(ctx, store.Query{Text: q, Offset: page.Offset, Limit: page.Limit})
	if err != nil {
		return models.ResultPage{}, err
	}
	res.Query = q
	return res, nil
}

func (s *Service) query(ctx context.Context, q store.Query) (models.ResultPage, error) {
	docs, total, err := s.store.Query(ctx, q)
	if err != nil {
		return models.ResultPage{}, err
	}

	items := make([]models.ListItem, len(docs))
	for i := range docs {
		items[i] = docs[i].ToListItem()
	}
	return models.ResultPage{Items: items, Total: total}, nil
}

// Get returns the full record for id.
func (s *Service) Get(ctx context.Context, id string) (models.Document, error) {
	if strings.TrimSpace(id) == "" {
		return models.Document{}, apperr.NotFound(id)
	}
	return s.store.Get(ctx, id)
}

// Delete removes the record for id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.NotFound(id)
	}
	return s.store.Delete(ctx, id)
}

// Stats aggregates over the whole corpus. Every call reads every record.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	docs, err := s.store.ListAll(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	return Aggregate(docs), nil
}

// Aggregate folds records into corpus statistics.
func Aggregate(docs []models.Document) models.Stats {
	var st models.Stats
	for _, d := range docs {
		st.TotalDocuments++
		if d.PIIFound {
			st.DocumentsWithPII++
		}
		st.TotalEmailsFound += len(d.Emails)
		st.TotalPhoneNumbersFound += len(d.PhoneNumbers)
		st.TotalPagesProcessed += d.PageCount
	}
	return st
}
