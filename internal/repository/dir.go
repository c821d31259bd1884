package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/pdfsheets/constants"
	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/export"
)

// dirRepo keeps each artifact as a file; the file's mtime is its creation time.
type dirRepo struct {
	dir       string
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewDirRepository(dir string, retention time.Duration, logger *slog.Logger) (ArtifactRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "artifact directory is empty", common.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &dirRepo{dir: dir, retention: retention, now: time.Now, logger: logger}, nil
}

func (r *dirRepo) path(filename string) (string, error) {
	v := common.NewValidator().Field("filename", filename, common.Required, common.Filename)
	if v.HasErrors() {
		return "", fmt.Errorf("%w: %s", common.ErrInvalidInput, v.ErrorMessage())
	}
	return filepath.Join(r.dir, filename), nil
}

func (r *dirRepo) Put(_ context.Context, a export.Artifact) error {
	p, err := r.path(a.Filename)
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, a.Data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if !a.CreatedAt.IsZero() {
		_ = os.Chtimes(tmp, a.CreatedAt, a.CreatedAt)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit artifact: %w", err)
	}
	r.logger.Debug("repository.put", "filename", a.Filename, "path", p, "bytes", len(a.Data))
	return nil
}

func (r *dirRepo) Get(_ context.Context, filename string) (export.Artifact, error) {
	p, err := r.path(filename)
	if err != nil {
		return export.Artifact{}, notFound(filename)
	}
	st, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return export.Artifact{}, notFound(filename)
		}
		return export.Artifact{}, err
	}
	a := export.Artifact{Filename: filename, CreatedAt: st.ModTime()}
	if expired(a, r.retention, r.now()) {
		return export.Artifact{}, notFound(filename)
	}
	if a.Data, err = os.ReadFile(p); err != nil {
		return export.Artifact{}, fmt.Errorf("read artifact: %w", err)
	}
	return a, nil
}

func (r *dirRepo) Purge(_ context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "."+constants.XLSXExt) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, e.Name())); err == nil {
			n++
		}
	}
	return n, nil
}

func (r *dirRepo) Close() error { return nil }
