package events

import "time"

// Event is anything published by the ingestion engine.
type Event interface {
	Kind() string
}

// Listener receives ingestion events. The engine never calls it concurrently.
type Listener func(Event)

// DocumentIngested is sent when a file has been processed and persisted.
type DocumentIngested struct {
	Source    string    // local path or archive key
	ID        string    // assigned record identifier
	Filename  string    // stored filename
	PIIFound  bool      // whether emails or phone numbers were detected
	Timestamp time.Time // when the record was persisted
}

// DocumentRejected is sent when a file could not be ingested.
type DocumentRejected struct {
	Source    string
	Reason    string
	Timestamp time.Time
}

// IngestionCompleteEvent is sent when a batch finishes.
type IngestionCompleteEvent struct {
	Source       string        // prefix or "files"
	DocsIngested int           // number of records persisted
	Rejected     int           // number of files that failed
	Duration     time.Duration // how long the batch took
	Errors       []string      // per-file failures (non-fatal)
}

func (DocumentIngested) Kind() string       { return "document_ingested" }
func (DocumentRejected) Kind() string       { return "document_rejected" }
func (IngestionCompleteEvent) Kind() string { return "ingestion_complete" }
