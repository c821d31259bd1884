package repository

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joseph-ayodele/pdfsheets/internal/export"
)

func artifact(name string, created time.Time) export.Artifact {
	return export.Artifact{
		Filename:   name,
		Data:       []byte("PK\x03\x04 workbook " + name),
		TemplateID: "funds",
		Rows:       2,
		CreatedAt:  created,
	}
}

// exercise runs the shared contract against a backend whose clock is now.
func exercise(t *testing.T, repo ArtifactRepository, setNow func(time.Time)) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	setNow(base)

	a := artifact("extracted_data_funds_20240101_120000.xlsx", base)
	if err := repo.Put(ctx, a); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := repo.Get(ctx, a.Filename)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got.Data, a.Data) {
		t.Errorf("data = %q, want %q", got.Data, a.Data)
	}

	// a second read still succeeds
	if _, err := repo.Get(ctx, a.Filename); err != nil {
		t.Errorf("second Get: %v", err)
	}

	if _, err := repo.Get(ctx, "extracted_data_nope.xlsx"); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("unknown filename err = %v", err)
	}

	setNow(base.Add(2 * time.Hour))
	if _, err := repo.Get(ctx, a.Filename); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("expired artifact err = %v", err)
	}

	fresh := artifact("extracted_data_funds_20240101_135900.xlsx", base.Add(119*time.Minute))
	if err := repo.Put(ctx, fresh); err != nil {
		t.Fatalf("Put fresh: %v", err)
	}
	n, err := repo.Purge(ctx, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1", n)
	}
	if _, err := repo.Get(ctx, fresh.Filename); err != nil {
		t.Errorf("fresh artifact lost: %v", err)
	}
}

func TestMemoryRepository(t *testing.T) {
	var now time.Time
	repo := newMemoryRepository(time.Hour, func() time.Time { return now }, nil)
	exercise(t, repo, func(t time.Time) { now = t })
}

func TestMemoryRepositoryCopiesData(t *testing.T) {
	repo := NewMemoryRepository(time.Hour, nil)
	a := artifact("a.xlsx", time.Now())
	_ = repo.Put(context.Background(), a)
	a.Data[0] = 'X'
	got, _ := repo.Get(context.Background(), "a.xlsx")
	if got.Data[0] != 'P' {
		t.Error("stored data aliases the caller's slice")
	}
}

func TestDirRepository(t *testing.T) {
	repo, err := NewDirRepository(filepath.Join(t.TempDir(), "artifacts"), time.Hour, nil)
	if err != nil {
		t.Fatalf("NewDirRepository: %v", err)
	}
	d := repo.(*dirRepo)
	exercise(t, repo, func(t time.Time) { d.now = func() time.Time { return t } })
}

func TestDirRepositoryRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	repo, _ := NewDirRepository(dir, time.Hour, nil)
	if err := repo.Put(context.Background(), artifact("../escape.xlsx", time.Now())); err == nil {
		t.Error("expected Put to reject a path")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.xlsx")); err == nil {
		t.Error("file escaped the artifact dir")
	}
	if _, err := repo.Get(context.Background(), "../etc/passwd"); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("Get traversal err = %v", err)
	}
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "artifacts.db"), time.Hour, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	r := repo.(*sqlRepo)
	exercise(t, repo, func(t time.Time) { r.now = func() time.Time { return t } })

	// upsert replaces
	r.now = time.Now
	a := artifact("same.xlsx", time.Now())
	_ = repo.Put(ctx, a)
	a.Data = []byte("second")
	if err := repo.Put(ctx, a); err != nil {
		t.Fatalf("Put over existing: %v", err)
	}
	got, err := repo.Get(ctx, "same.xlsx")
	if err != nil || string(got.Data) != "second" || got.TemplateID != "funds" || got.Rows != 2 {
		t.Errorf("Get after upsert = %+v, %v", got, err)
	}
}

func TestOpenDSN(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, dsn := range []string{"", "memory", "dir:" + filepath.Join(dir, "d"), "sqlite:" + filepath.Join(dir, "s.db")} {
		repo, err := Open(ctx, dsn, time.Hour, nil)
		if err != nil {
			t.Errorf("Open(%q): %v", dsn, err)
			continue
		}
		_ = repo.Close()
	}
	if _, err := Open(ctx, "redis://localhost", time.Hour, nil); err == nil {
		t.Error("expected unsupported dsn error")
	}
}

func TestJanitorRunOnce(t *testing.T) {
	repo := NewMemoryRepository(time.Hour, nil)
	now := time.Now()
	_ = repo.Put(context.Background(), artifact("old.xlsx", now.Add(-3*time.Hour)))
	_ = repo.Put(context.Background(), artifact("new.xlsx", now))

	j := NewJanitor(repo, time.Hour, time.Hour, nil)
	if n := j.RunOnce(context.Background(), now); n != 1 {
		t.Errorf("purged %d, want 1", n)
	}
	j.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Shutdown(ctx)
	j.Shutdown(ctx)
}
