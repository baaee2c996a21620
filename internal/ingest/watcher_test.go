package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Prishashn/Hrextractor/internal/collate"
)

type finalizeCapture struct {
	mu     sync.Mutex
	byKey  map[string][]collate.Entry
	signal chan string
}

func newFinalizeCapture() *finalizeCapture {
	return &finalizeCapture{byKey: map[string][]collate.Entry{}, signal: make(chan string, 16)}
}

func (fc *finalizeCapture) finalize(_ context.Context, groupKey string, entries []collate.Entry) {
	fc.mu.Lock()
	fc.byKey[groupKey] = entries
	fc.mu.Unlock()
	fc.signal <- groupKey
}

func (fc *finalizeCapture) get(key string) []collate.Entry {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.byKey[key]
}

func TestStartWatcherRequiresRoot(t *testing.T) {
	col := collate.New(time.Millisecond, func(context.Context, string, []collate.Entry) {}, nil)
	if err := StartWatcher(t.Context(), Config{}, col, nil); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestStartWatcherRequiresExistingRoot(t *testing.T) {
	col := collate.New(time.Millisecond, func(context.Context, string, []collate.Entry) {}, nil)
	err := StartWatcher(t.Context(), Config{Root: filepath.Join(t.TempDir(), "missing")}, col, nil)
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestWatcherFeedsDroppedImage(t *testing.T) {
	root := t.TempDir()
	fc := newFinalizeCapture()
	col := collate.New(100*time.Millisecond, fc.finalize, nil)

	if err := StartWatcher(t.Context(), Config{Root: root, Debounce: 50 * time.Millisecond}, col, nil); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	// give the event loop a beat to come up
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(root, "card.jpg")
	if err := os.WriteFile(path, []byte("image bytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	var key string
	select {
	case key = <-fc.signal:
	case <-time.After(3 * time.Second):
		t.Fatal("dropped image never finalized")
	}

	if want := "drop/" + root; key != want {
		t.Fatalf("group key = %q, want %q", key, want)
	}
	entries := fc.get(key)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want exactly 1 per dropped file", len(entries))
	}
	if string(entries[0].Image) != "image bytes" {
		t.Fatalf("image = %q", entries[0].Image)
	}
	if entries[0].Ref.ChatID != 0 {
		t.Fatalf("chat id = %d, want synthetic 0", entries[0].Ref.ChatID)
	}
}

func TestWatcherCoalescesChunkedWrite(t *testing.T) {
	root := t.TempDir()
	fc := newFinalizeCapture()
	col := collate.New(150*time.Millisecond, fc.finalize, nil)

	if err := StartWatcher(t.Context(), Config{Root: root, Debounce: 80 * time.Millisecond}, col, nil); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	// write one image in several synced chunks, like a slow copy
	path := filepath.Join(root, "page.png")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, chunk := range []string{"first-", "second-", "third"} {
		if _, err := f.WriteString(chunk); err != nil {
			t.Fatalf("write chunk: %v", err)
		}
		if err := f.Sync(); err != nil {
			t.Fatalf("sync: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var key string
	select {
	case key = <-fc.signal:
	case <-time.After(3 * time.Second):
		t.Fatal("chunked image never finalized")
	}

	entries := fc.get(key)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want exactly 1 for one file", len(entries))
	}
	if got := string(entries[0].Image); got != "first-second-third" {
		t.Fatalf("image = %q, want the complete file", got)
	}
}

func TestWatcherIgnoresNonImageFiles(t *testing.T) {
	root := t.TempDir()
	fc := newFinalizeCapture()
	col := collate.New(60*time.Millisecond, fc.finalize, nil)

	if err := StartWatcher(t.Context(), Config{Root: root, Debounce: 30 * time.Millisecond}, col, nil); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case key := <-fc.signal:
		t.Fatalf("non-image file finalized under %q", key)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	fc := newFinalizeCapture()
	col := collate.New(100*time.Millisecond, fc.finalize, nil)

	if err := StartWatcher(t.Context(), Config{Root: root, Debounce: 50 * time.Millisecond}, col, nil); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	sub := filepath.Join(root, "album-1")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// let the watcher register the new directory before dropping into it
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(sub, "page.png"), []byte("sub image"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	var key string
	select {
	case key = <-fc.signal:
	case <-time.After(3 * time.Second):
		t.Fatal("image in new directory never finalized")
	}
	if want := "drop/" + sub; key != want {
		t.Fatalf("group key = %q, want %q", key, want)
	}
}
