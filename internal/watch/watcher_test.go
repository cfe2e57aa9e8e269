package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p, ok := <-ch:
		if !ok {
			t.Fatal("event channel closed")
		}
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
	return ""
}

func TestStart_NoRoots(t *testing.T) {
	if _, _, err := Start(context.Background(), Config{}); err == nil {
		t.Error("Start() without roots should fail")
	}
}

func TestStart_MissingRoot(t *testing.T) {
	_, _, err := Start(context.Background(), Config{Roots: []string{filepath.Join(t.TempDir(), "absent")}})
	if err == nil {
		t.Error("Start() with a missing root should fail")
	}
}

func TestStart_InitialScan(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	existing := filepath.Join(sub, "old.PDF")
	os.WriteFile(existing, []byte("%PDF"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := Start(ctx, Config{Roots: []string{dir}, InitialScan: true})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if got := receive(t, events); got != existing {
		t.Errorf("initial event = %q, want %q", got, existing)
	}
}

func TestStart_EmitsNewPDFs(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := Start(ctx, Config{Roots: []string{dir}, Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644)
	target := filepath.Join(dir, "new.pdf")
	os.WriteFile(target, []byte("%PDF"), 0o644)

	if got := receive(t, events); got != target {
		t.Errorf("event = %q, want %q", got, target)
	}
}

func TestStart_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events, _, err := Start(ctx, Config{Roots: []string{t.TempDir()}})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("unexpected event after cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event channel not closed after cancel")
	}
}
