package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mfenderov/pdfvault/internal/apperr"
	"github.com/mfenderov/pdfvault/internal/entities"
	"github.com/mfenderov/pdfvault/internal/pdfx"
	"github.com/mfenderov/pdfvault/internal/pdfx/pdftest"
	"github.com/mfenderov/pdfvault/internal/textstats"
	"github.com/mfenderov/pdfvault/pkg/models"
)

type fakeRecorder struct {
	mu   sync.Mutex
	docs []models.Document
	err  error
}

func (f *fakeRecorder) Create(_ context.Context, doc models.Document) (models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Document{}, f.err
	}
	doc.ID = "doc-" + string(rune('a'+len(f.docs)))
	f.docs = append(f.docs, doc)
	return doc, nil
}

type fakeArchiver struct {
	keys []string
	err  error
}

func (f *fakeArchiver) PutPDF(_ context.Context, key string, _ []byte) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

func TestAssemble(t *testing.T) {
	title := "Quarterly"
	extracted := &pdfx.Result{Text: "mail a@b.com", PageCount: 3, Title: &title}
	found := entities.Result{Emails: []string{"a@b.com"}, PIIFound: true}
	stats := textstats.Stats{WordCount: 2, CharCount: 12}

	doc, err := Assemble("q.pdf", 2048, extracted, found, stats)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if doc.Filename != "q.pdf" || doc.FileSize != 2048 || doc.PageCount != 3 {
		t.Errorf("Assemble() = %+v", doc)
	}
	if doc.Title == nil || *doc.Title != title || doc.Author != nil {
		t.Errorf("metadata = title %v author %v", doc.Title, doc.Author)
	}
	if doc.WordCount != 2 || doc.CharCount != 12 {
		t.Errorf("stats = %d words %d chars", doc.WordCount, doc.CharCount)
	}
	if !doc.PIIFound {
		t.Error("PIIFound should be true with an email present")
	}
	if doc.PhoneNumbers == nil || doc.URLs == nil || doc.Dates == nil {
		t.Error("empty entity sets should be non-nil")
	}
	if doc.ID != "" || !doc.CreatedAt.IsZero() {
		t.Error("ID and CreatedAt should be left for the store")
	}
}

func TestAssemble_DerivesPIIFromEntities(t *testing.T) {
	// PIIFound on the scanner result is ignored; the record derives it.
	found := entities.Result{URLs: []string{"https://x.io"}, PIIFound: true}
	doc, err := Assemble("a.pdf", 1, &pdfx.Result{}, found, textstats.Stats{})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if doc.PIIFound {
		t.Error("PIIFound should be false without emails or phone numbers")
	}
}

func TestAssemble_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		extracted *pdfx.Result
		found     entities.Result
	}{
		{"missing extraction", "a.pdf", nil, entities.Result{}},
		{"empty filename", "", &pdfx.Result{}, entities.Result{}},
		{"negative pages", "a.pdf", &pdfx.Result{PageCount: -1}, entities.Result{}},
		{"duplicate emails", "a.pdf", &pdfx.Result{}, entities.Result{Emails: []string{"a@b.com", "a@b.com"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Assemble(tt.filename, 1, tt.extracted, tt.found, textstats.Stats{}); err == nil {
				t.Error("Assemble() should fail")
			}
		})
	}
}

func TestPipeline_Process(t *testing.T) {
	rec := &fakeRecorder{}
	arch := &fakeArchiver{}
	p := New(rec, WithArchiver(arch))

	content := pdftest.Build(
		pdftest.Info{Title: "Invoice 42", Author: "Jane Roe", CreationDate: "D:20240115103000"},
		"Contact jane@example.com",
		"Visit https://example.com",
	)

	doc, err := p.Process(context.Background(), Upload{Filename: "invoice.pdf", Content: content})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if doc.ID == "" {
		t.Error("Process() should return the persisted record")
	}
	if doc.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", doc.PageCount)
	}
	if doc.FileSize != int64(len(content)) {
		t.Errorf("FileSize = %d, want %d", doc.FileSize, len(content))
	}
	if doc.Title == nil || *doc.Title != "Invoice 42" {
		t.Errorf("Title = %v", doc.Title)
	}
	if len(doc.Emails) != 1 || doc.Emails[0] != "jane@example.com" {
		t.Errorf("Emails = %v", doc.Emails)
	}
	if !doc.PIIFound {
		t.Error("PIIFound should be true")
	}
	if doc.CharCount == 0 || doc.WordCount == 0 {
		t.Errorf("stats not computed: %+v", doc)
	}

	if len(arch.keys) != 1 || arch.keys[0] != ArchiveKey(content) {
		t.Errorf("archived keys = %v", arch.keys)
	}
	if len(rec.docs) != 1 {
		t.Errorf("recorded %d docs, want 1", len(rec.docs))
	}
}

func TestPipeline_ProcessFailuresPersistNothing(t *testing.T) {
	valid := pdftest.Build(pdftest.Info{}, "hello")

	tests := []struct {
		name    string
		upload  Upload
		opts    []Option
		wantErr error
	}{
		{
			name:    "empty filename",
			upload:  Upload{Filename: "  ", Content: valid},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "not a pdf",
			upload:  Upload{Filename: "a.pdf", Content: []byte("plain text")},
			wantErr: apperr.ErrDecode,
		},
		{
			name:    "validator rejects",
			upload:  Upload{Filename: "a.pdf", Content: valid},
			opts:    []Option{WithValidator(func([]byte) error { return apperr.Decode(errors.New("broken xref")) })},
			wantErr: apperr.ErrDecode,
		},
		{
			name:   "archive fails",
			upload: Upload{Filename: "a.pdf", Content: valid},
			opts:   []Option{WithArchiver(&fakeArchiver{err: errors.New("bucket gone")})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			p := New(rec, tt.opts...)

			_, err := p.Process(context.Background(), tt.upload)
			if err == nil {
				t.Fatal("Process() should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Process() error = %v, want %v", err, tt.wantErr)
			}
			if len(rec.docs) != 0 {
				t.Errorf("recorded %d docs, want 0", len(rec.docs))
			}
		})
	}
}

func TestPipeline_ProcessStoreError(t *testing.T) {
	p := New(&fakeRecorder{err: errors.New("disk full")})

	_, err := p.Process(context.Background(), Upload{
		Filename: "a.pdf",
		Content:  pdftest.Build(pdftest.Info{}, "hello"),
	})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Process() error = %v, want store error", err)
	}
}

func TestArchiveKey(t *testing.T) {
	a := ArchiveKey([]byte("one"))
	if a != ArchiveKey([]byte("one")) {
		t.Error("ArchiveKey should be deterministic")
	}
	if a == ArchiveKey([]byte("two")) {
		t.Error("different content should produce different keys")
	}
	if !strings.HasPrefix(a, "uploads/") || !strings.HasSuffix(a, ".pdf") {
		t.Errorf("ArchiveKey() = %q", a)
	}
}
