package ingest

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func touch(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCollectDocuments(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"), "b")
	touch(t, filepath.Join(root, "a.PDF"), "a")
	touch(t, filepath.Join(root, "notes.txt"), "n")
	touch(t, filepath.Join(root, "sub", "c.pdf"), "c")
	touch(t, filepath.Join(root, ".cache", "d.pdf"), "d")
	touch(t, filepath.Join(root, ".e.pdf"), "e")

	paths, stats, err := CollectDocuments(root, true)
	if err != nil {
		t.Fatalf("CollectDocuments: %v", err)
	}
	want := []string{filepath.Join(root, "a.PDF"), filepath.Join(root, "b.pdf"), filepath.Join(root, "sub", "c.pdf")}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	if stats.Matched != 3 {
		t.Errorf("Matched = %d", stats.Matched)
	}

	all, _, _ := CollectDocuments(root, false)
	if len(all) != 5 {
		t.Errorf("with hidden: %v", all)
	}

	docs, err := ReadDocuments(paths)
	if err != nil {
		t.Fatalf("ReadDocuments: %v", err)
	}
	if docs[0].Name != "a.PDF" || string(docs[2].Content) != "c" {
		t.Errorf("docs = %+v", docs)
	}
	if _, err := ReadDocuments([]string{filepath.Join(root, "missing.pdf")}); err == nil {
		t.Error("expected error for a missing file")
	}
	if _, _, err := CollectDocuments(" ", false); err == nil {
		t.Error("expected error for an empty root")
	}
}

func TestWatcherEmitsNewDocuments(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "existing.pdf"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a watch event")
			return ""
		}
	}
	if got := next(); got != filepath.Join(root, "existing.pdf") {
		t.Errorf("initial = %q", got)
	}

	touch(t, filepath.Join(root, "skip.txt"), "ignored")
	touch(t, filepath.Join(root, "new.pdf"), "%PDF")
	if got := next(); got != filepath.Join(root, "new.pdf") {
		t.Errorf("event = %q", got)
	}

	cancel()
	for range events {
	}
}

func TestWatcherNoRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}, nil); err == nil {
		t.Fatal("expected error")
	}
}
