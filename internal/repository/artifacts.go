// Package repository stores rendered artifacts for later download.
//
// Every backend keeps an artifact until its retention window has elapsed. Get
// reports ErrArtifactNotFound for unknown and expired filenames alike; expired
// entries are physically removed by Purge.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/export"
)

var ErrArtifactNotFound = errors.New("artifact not found")

type ArtifactRepository interface {
	Put(ctx context.Context, a export.Artifact) error
	Get(ctx context.Context, filename string) (export.Artifact, error)
	// Purge removes artifacts created before cutoff and returns how many went.
	Purge(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

// Open picks a backend from dsn: "memory" (or empty), "dir:<path>",
// "sqlite:<path>" or a postgres:// URL.
func Open(ctx context.Context, dsn string, retention time.Duration, logger *slog.Logger) (ArtifactRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case dsn == "" || dsn == "memory":
		logger.Info("repository.open", "backend", "memory", "retention", retention.String())
		return NewMemoryRepository(retention, logger), nil
	case strings.HasPrefix(dsn, "dir:"):
		logger.Info("repository.open", "backend", "dir", "path", strings.TrimPrefix(dsn, "dir:"))
		return NewDirRepository(strings.TrimPrefix(dsn, "dir:"), retention, logger)
	case strings.HasPrefix(dsn, "sqlite:"):
		logger.Info("repository.open", "backend", "sqlite", "path", strings.TrimPrefix(dsn, "sqlite:"))
		return OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite:"), retention, logger)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		logger.Info("repository.open", "backend", "postgres")
		return OpenPostgres(ctx, DBConfig{DSN: dsn}, retention, logger)
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported STORE_DSN %q", dsn), common.ErrInvalidInput)
	}
}

func notFound(filename string) error {
	return fmt.Errorf("%w: %s", ErrArtifactNotFound, filename)
}

func expired(a export.Artifact, retention time.Duration, now time.Time) bool {
	return retention > 0 && now.Sub(a.CreatedAt) > retention
}
