package storage

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"testing"
	"time"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty endpoint",
			config:  Config{Endpoint: "", Bucket: "test"},
			wantErr: true,
		},
		{
			name:    "empty bucket",
			config:  Config{Endpoint: "localhost:9000", Bucket: ""},
			wantErr: true,
		},
		{
			name: "valid config",
			config: Config{
				Endpoint:        "localhost:9000",
				Bucket:          "test",
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestIntegration_S3Operations tests actual S3 operations against MinIO.
// Skip if MinIO is not running.
func TestIntegration_S3Operations(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := New(Config{
		Endpoint:        endpoint,
		Bucket:          "pdfvault-test",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UseSSL:          false,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	// Try to ensure bucket - skip if MinIO is not available
	if err := client.EnsureBucket(ctx); err != nil {
		t.Skipf("MinIO not available, skipping integration test: %v", err)
	}

	key := "uploads/test-" + strconv.FormatInt(time.Now().UnixNano(), 10) + ".pdf"
	content := []byte("%PDF-1.4\n%%EOF\n")

	t.Run("PutPDF", func(t *testing.T) {
		if err := client.PutPDF(ctx, key, content); err != nil {
			t.Fatalf("PutPDF() error = %v", err)
		}
		// Second write of the same key is a no-op.
		if err := client.PutPDF(ctx, key, content); err != nil {
			t.Fatalf("PutPDF() repeat error = %v", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		ok, err := client.Exists(ctx, key)
		if err != nil || !ok {
			t.Errorf("Exists(%q) = %v, %v, want true", key, ok, err)
		}
		ok, err = client.Exists(ctx, "uploads/missing.pdf")
		if err != nil || ok {
			t.Errorf("Exists(missing) = %v, %v, want false", ok, err)
		}
	})

	t.Run("GetPDF", func(t *testing.T) {
		got, err := client.GetPDF(ctx, key)
		if err != nil {
			t.Fatalf("GetPDF() error = %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("GetPDF() = %q, want %q", got, content)
		}
	})

	t.Run("ListPDFs", func(t *testing.T) {
		keys, err := client.ListPDFs(ctx, "uploads/")
		if err != nil {
			t.Fatalf("ListPDFs() error = %v", err)
		}
		found := false
		for _, k := range keys {
			if k == key {
				found = true
			}
		}
		if !found {
			t.Errorf("ListPDFs() = %v, missing %q", keys, key)
		}
	})
}
