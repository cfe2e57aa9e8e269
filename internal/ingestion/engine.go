package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mfenderov/pdfvault/internal/apperr"
	"github.com/mfenderov/pdfvault/internal/events"
	"github.com/mfenderov/pdfvault/internal/pipeline"
	"github.com/mfenderov/pdfvault/pkg/models"
)

// DefaultWorkers bounds concurrent pipelines when no worker count is configured.
const DefaultWorkers = 4

// Processor runs one upload through extraction and persistence.
type Processor interface {
	Process(ctx context.Context, up pipeline.Upload) (models.Document, error)
}

// Source lists and reads archived PDFs.
type Source interface {
	ListPDFs(ctx context.Context, prefix string) ([]string, error)
	GetPDF(ctx context.Context, key string) ([]byte, error)
}

// Result holds ingestion execution results.
type Result struct {
	Source       string
	DocsIngested int
	Rejected     int
	Documents    []models.Document
	Duration     time.Duration
	Errors       []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets how many files are processed at once.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSource enables IngestPrefix over an archive.
func WithSource(s Source) Option {
	return func(e *Engine) { e.source = s }
}

// WithListener publishes per-document and batch events to l.
func WithListener(l events.Listener) Option {
	return func(e *Engine) { e.listener = l }
}

// Engine feeds local files or archived objects through the pipeline.
type Engine struct {
	proc     Processor
	source   Source
	workers  int
	listener events.Listener
}

// New creates a new ingestion engine.
func New(proc Processor, opts ...Option) *Engine {
	e := &Engine{proc: proc, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsPDFName reports whether filename carries a .pdf extension, ignoring case.
func IsPDFName(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// IngestFile reads one local file and runs it through the pipeline.
func (e *Engine) IngestFile(ctx context.Context, filePath string) (models.Document, error) {
	name := filepath.Base(filePath)
	if !IsPDFName(name) {
		return models.Document{}, apperr.Unsupported(name)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return models.Document{}, fmt.Errorf("read %s: %w", filePath, err)
	}

	return e.proc.Process(ctx, pipeline.Upload{Filename: name, Content: content})
}

// IngestFiles processes local files with bounded concurrency. Per-file
// failures are collected in the result; only cancellation aborts the batch.
func (e *Engine) IngestFiles(ctx context.Context, paths []string) (*Result, error) {
	return e.run(ctx, "files", paths, e.IngestFile)
}

// IngestPrefix re-ingests every archived PDF under prefix.
func (e *Engine) IngestPrefix(ctx context.Context, prefix string) (*Result, error) {
	if e.source == nil {
		return nil, fmt.Errorf("ingest prefix %q: no archive configured", prefix)
	}

	keys, err := e.source.ListPDFs(ctx, prefix)
	if err != nil {
		return nil, err
	}
	slog.Info("found archived files to ingest", "prefix", prefix, "count", len(keys))

	return e.run(ctx, prefix, keys, func(ctx context.Context, key string) (models.Document, error) {
		content, err := e.source.GetPDF(ctx, key)
		if err != nil {
			return models.Document{}, err
		}
		return e.proc.Process(ctx, pipeline.Upload{Filename: path.Base(key), Content: content})
	})
}

func (e *Engine) run(ctx context.Context, source string, items []string, ingest func(context.Context, string) (models.Document, error)) (*Result, error) {
	start := time.Now()
	result := &Result{Source: source}

	slog.Info("starting ingestion", "source", source, "files", len(items), "workers", e.workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			doc, err := ingest(gctx, item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("file rejected", "source", item, "error", err)
				result.Rejected++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item, err))
				e.emit(events.DocumentRejected{Source: item, Reason: err.Error(), Timestamp: time.Now()})
				return nil
			}
			slog.Debug("file ingested", "source", item, "id", doc.ID)
			result.DocsIngested++
			result.Documents = append(result.Documents, doc)
			e.emit(events.DocumentIngested{
				Source:    item,
				ID:        doc.ID,
				Filename:  doc.Filename,
				PIIFound:  doc.PIIFound,
				Timestamp: doc.CreatedAt,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	result.Duration = time.Since(start)
	slog.Info("ingestion complete",
		"source", source,
		"docs_ingested", result.DocsIngested,
		"rejected", result.Rejected,
		"duration", result.Duration)

	e.emit(events.IngestionCompleteEvent{
		Source:       source,
		DocsIngested: result.DocsIngested,
		Rejected:     result.Rejected,
		Duration:     result.Duration,
		Errors:       result.Errors,
	})
	return result, nil
}

func (e *Engine) emit(ev events.Event) {
	if e.listener != nil {
		e.listener(ev)
	}
}
