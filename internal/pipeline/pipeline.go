package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mfenderov/pdfvault/internal/apperr"
	"github.com/mfenderov/pdfvault/internal/entities"
	"github.com/mfenderov/pdfvault/internal/pdfx"
	"github.com/mfenderov/pdfvault/internal/textstats"
	"github.com/mfenderov/pdfvault/pkg/models"
)

// Recorder persists assembled records.
type Recorder interface {
	Create(ctx context.Context, doc models.Document) (models.Document, error)
}

// Archiver stores the raw bytes of an accepted upload.
type Archiver interface {
	PutPDF(ctx context.Context, key string, content []byte) error
}

// Validator checks a file's structure before extraction.
type Validator func(content []byte) error

// Upload is one file handed to the pipeline.
type Upload struct {
	Filename string
	Content  []byte
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithValidator runs v before extraction; its error is returned unchanged.
func WithValidator(v Validator) Option {
	return func(p *Pipeline) { p.validate = v }
}

// WithArchiver stores the raw upload before the record is persisted.
func WithArchiver(a Archiver) Option {
	return func(p *Pipeline) { p.archive = a }
}

// Pipeline turns uploads into persisted records: extract, scan and count, assemble, store.
type Pipeline struct {
	recorder Recorder
	validate Validator
	archive  Archiver
}

// New creates a Pipeline that persists through recorder.
func New(recorder Recorder, opts ...Option) *Pipeline {
	p := &Pipeline{recorder: recorder}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one upload through the pipeline and returns the persisted record.
// Nothing is persisted when any step before the store write fails.
func (p *Pipeline) Process(ctx context.Context, up Upload) (models.Document, error) {
	if strings.TrimSpace(up.Filename) == "" {
		return models.Document{}, apperr.Invalid("filename", "is required")
	}
	log := slog.With("filename", up.Filename, "size", len(up.Content))

	if p.validate != nil {
		if err := p.validate(up.Content); err != nil {
			log.Debug("pdf validation failed", "error", err)
			return models.Document{}, err
		}
	}

	extracted, err := pdfx.Extract(up.Content)
	if err != nil {
		return models.Document{}, err
	}

	var (
		found entities.Result
		stats textstats.Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found = entities.Scan(extracted.Text)
		return gctx.Err()
	})
	g.Go(func() error {
		stats = textstats.Compute(extracted.Text)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return models.Document{}, err
	}

	doc, err := Assemble(up.Filename, int64(len(up.Content)), extracted, found, stats)
	if err != nil {
		return models.Document{}, err
	}

	if p.archive != nil {
		key := ArchiveKey(up.Content)
		if err := p.archive.PutPDF(ctx, key, up.Content); err != nil {
			return models.Document{}, fmt.Errorf("archive %s: %w", up.Filename, err)
		}
		log.Debug("upload archived", "key", key)
	}

	saved, err := p.recorder.Create(ctx, doc)
	if err != nil {
		return models.Document{}, fmt.Errorf("persist %s: %w", up.Filename, err)
	}

	log.Info("document processed",
		"id", saved.ID,
		"pages", saved.PageCount,
		"words", saved.WordCount,
		"pii", saved.PIIFound,
	)
	return saved, nil
}

// ArchiveKey is the content-addressed object key for a PDF.
func ArchiveKey(content []byte) string {
	sum := sha256.Sum256(content)
	return "uploads/" + hex.EncodeToString(sum[:]) + ".pdf"
}
