package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestDocument_JSONFieldNames(t *testing.T) {
	doc := Document{
		ID:        "0192f1c2-0000-7000-8000-000000000001",
		Filename:  "report.pdf",
		Title:     strPtr("Quarterly"),
		CreatedAt: time.Date(2025, 12, 4, 10, 0, 0, 0, time.UTC),
	}
	doc.Normalize()

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	jsonStr := string(data)
	expectedFields := []string{
		`"id"`, `"filename"`, `"title"`, `"author":null`, `"pdf_created_at":null`,
		`"page_count"`, `"word_count"`, `"char_count"`, `"file_size"`, `"extracted_text"`,
		`"emails_found":[]`, `"phone_numbers_found":[]`, `"urls_found":[]`, `"dates_found":[]`,
		`"pii_found"`, `"created_at"`,
	}
	for _, field := range expectedFields {
		if !strings.Contains(jsonStr, field) {
			t.Errorf("JSON should contain %s, got: %s", field, jsonStr)
		}
	}
}

func TestDocument_Validate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr string
	}{
		{
			name: "consistent record",
			doc: Document{
				Filename: "a.pdf",
				Emails:   []string{"a@b.com"},
				PIIFound: true,
			},
		},
		{
			name: "no entities and no pii",
			doc:  Document{Filename: "a.pdf"},
		},
		{
			name:    "missing filename",
			doc:     Document{},
			wantErr: "filename",
		},
		{
			name:    "negative page count",
			doc:     Document{Filename: "a.pdf", PageCount: -1},
			wantErr: "non-negative",
		},
		{
			name:    "pii flag set without entities",
			doc:     Document{Filename: "a.pdf", PIIFound: true},
			wantErr: "inconsistent",
		},
		{
			name:    "pii flag cleared with phone numbers",
			doc:     Document{Filename: "a.pdf", PhoneNumbers: []string{"555-123-4567"}},
			wantErr: "inconsistent",
		},
		{
			name:    "duplicate url",
			doc:     Document{Filename: "a.pdf", URLs: []string{"https://x.io", "https://x.io"}},
			wantErr: "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDocument_ToListItem(t *testing.T) {
	created := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	doc := Document{
		ID:           "id-1",
		Filename:     "contract.pdf",
		Author:       strPtr("Jane Roe"),
		PageCount:    3,
		WordCount:    120,
		FileSize:     2048,
		Emails:       []string{"a@b.com", "c@d.org"},
		PhoneNumbers: []string{"(415) 555-1212"},
		URLs:         []string{"https://x.io"},
		PIIFound:     true,
		CreatedAt:    created,
	}

	item := doc.ToListItem()

	if item.EmailsCount != 2 {
		t.Errorf("EmailsCount = %d, want 2", item.EmailsCount)
	}
	if item.PhonesCount != 1 {
		t.Errorf("PhonesCount = %d, want 1", item.PhonesCount)
	}
	if item.Author == nil || *item.Author != "Jane Roe" {
		t.Errorf("Author = %v, want Jane Roe", item.Author)
	}
	if !item.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", item.CreatedAt, created)
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if strings.Contains(string(data), "extracted_text") || strings.Contains(string(data), "emails_found") {
		t.Errorf("list projection should not carry text or collections: %s", data)
	}
}

func TestResultPage_QueryEchoOmittedWhenEmpty(t *testing.T) {
	data, _ := json.Marshal(ResultPage{Items: []ListItem{}, Total: 0})
	if strings.Contains(string(data), `"query"`) {
		t.Errorf("listing envelope should not echo a query: %s", data)
	}

	data, _ = json.Marshal(ResultPage{Items: []ListItem{}, Total: 0, Query: "invoice"})
	if !strings.Contains(string(data), `"query":"invoice"`) {
		t.Errorf("search envelope should echo the query: %s", data)
	}
}
