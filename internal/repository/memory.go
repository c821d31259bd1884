package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/pdfsheets/internal/export"
)

type memoryRepo struct {
	mu        sync.RWMutex
	items     map[string]export.Artifact
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewMemoryRepository(retention time.Duration, logger *slog.Logger) ArtifactRepository {
	return newMemoryRepository(retention, time.Now, logger)
}

func newMemoryRepository(retention time.Duration, now func() time.Time, logger *slog.Logger) *memoryRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &memoryRepo{items: make(map[string]export.Artifact), retention: retention, now: now, logger: logger}
}

func (r *memoryRepo) Put(_ context.Context, a export.Artifact) error {
	a.Data = append([]byte(nil), a.Data...)
	r.mu.Lock()
	r.items[a.Filename] = a
	r.mu.Unlock()
	r.logger.Debug("repository.put", "filename", a.Filename, "bytes", len(a.Data))
	return nil
}

func (r *memoryRepo) Get(_ context.Context, filename string) (export.Artifact, error) {
	r.mu.RLock()
	a, ok := r.items[filename]
	r.mu.RUnlock()
	if !ok || expired(a, r.retention, r.now()) {
		return export.Artifact{}, notFound(filename)
	}
	a.Data = append([]byte(nil), a.Data...)
	return a, nil
}

func (r *memoryRepo) Purge(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for name, a := range r.items {
		if a.CreatedAt.Before(cutoff) {
			delete(r.items, name)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) Close() error { return nil }
