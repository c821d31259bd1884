// Package ingest finds documents on disk: a one-shot directory walk and a
// watcher that reports files as they land in an inbox.
package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/pdfsheets/constants"
	"github.com/joseph-ayodele/pdfsheets/internal/pipeline"
)

type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// CollectDocuments walks root and returns every allowed document, sorted by
// path so that repeated runs append rows in the same order.
func CollectDocuments(root string, skipHidden bool) ([]string, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, errors.New("root path is required")
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !Allowed(path) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)
	return paths, stats, nil
}

// ReadDocuments loads paths in order.
func ReadDocuments(paths []string) ([]pipeline.Document, error) {
	docs := make([]pipeline.Document, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		docs = append(docs, pipeline.Document{Name: filepath.Base(p), Content: b})
	}
	return docs, nil
}

// Allowed reports whether path has an accepted document extension.
func Allowed(path string) bool {
	_, ok := constants.AllowedDocumentExtensions[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
