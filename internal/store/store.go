// Package store defines the persistence contract for document records.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mfenderov/pdfvault/pkg/models"
)

// Store persists documents. Implementations assign ID and CreatedAt on Create,
// return apperr.ErrNotFound for unknown identifiers, and order query results by
// CreatedAt descending, then ID descending.
type Store interface {
	Create(ctx context.Context, doc models.Document) (models.Document, error)
	Get(ctx context.Context, id string) (models.Document, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q Query) ([]models.Document, int, error)
	ListAll(ctx context.Context) ([]models.Document, error)
	Ping(ctx context.Context) error
	Close() error
}

// Filter holds the structured listing predicates. Zero values mean "no constraint".
type Filter struct {
	PIIFound    *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Author      string
}

// Query selects one page of documents. When Text is set the document must also
// contain it in its text, filename, title or author.
type Query struct {
	Filter Filter
	Text   string
	Offset int
	Limit  int
}

// NewID returns a time-ordered identifier for a new record.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
