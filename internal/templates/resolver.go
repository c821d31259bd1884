// Package templates resolves template identifiers into field schemas.
//
// A template is looked up, in order, as a declarative definition file
// (<id>.json, <id>.yaml, <id>.yml), as a workbook with a known name whose first
// row holds the headers, and finally by scanning for any workbook whose name
// contains the template's ordinal suffix. Directories are searched in the order
// given and the first match wins.
package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/pdfsheets/constants"
	"github.com/joseph-ayodele/pdfsheets/internal/common"
)

// ErrNotFound is returned when no source matches a template id.
var ErrNotFound = errors.New("template not found")

// Resolver finds and loads templates from an ordered list of directories.
// It holds no cache; every call reads from disk.
type Resolver struct {
	dirs   []string
	logger *slog.Logger
}

func NewResolver(dirs []string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	seen := make(map[string]struct{}, len(dirs))
	var uniq []string
	for _, d := range dirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		clean := filepath.Clean(d)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		uniq = append(uniq, clean)
	}
	return &Resolver{dirs: uniq, logger: logger}
}

// Dirs returns the configured directories that currently exist, in search order.
func (r *Resolver) Dirs() []string {
	var out []string
	for _, d := range r.dirs {
		if st, err := os.Stat(d); err == nil && st.IsDir() {
			out = append(out, d)
		}
	}
	return out
}

// Resolve loads the template named templateID.
func (r *Resolver) Resolve(ctx context.Context, templateID string) (*Template, error) {
	templateID = strings.TrimSpace(templateID)
	v := common.NewValidator().Field("template_id", templateID, common.Required, common.TemplateID)
	if v.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, v.ErrorMessage())
	}
	dirs := r.Dirs()

	// 1) declarative definition
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, ext := range constants.DefinitionExts {
			path := filepath.Join(d, templateID+"."+ext)
			if !isFile(path) {
				continue
			}
			t, err := loadDefinition(path, ext, templateID)
			if err != nil {
				r.logger.Error("template.resolve.invalid_definition", "template_id", templateID, "path", path, "error", err)
				return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
			}
			r.logger.Debug("template.resolve.ok", "template_id", templateID, "source", path, "kind", "definition")
			return t, nil
		}
	}

	// 2) workbook with a known name
	for _, name := range tabularCandidates(templateID) {
		for _, d := range dirs {
			path := filepath.Join(d, name)
			if !isFile(path) {
				continue
			}
			return r.loadTabular(path, templateID, "tabular")
		}
	}

	// 3) any workbook carrying the ordinal
	if ord := ordinalSuffix(templateID); ord != "" {
		for _, d := range dirs {
			entries, err := os.ReadDir(d)
			if err != nil {
				r.logger.Warn("template.resolve.scan_error", "dir", d, "error", err)
				continue
			}
			for _, e := range entries {
				if e.IsDir() || !constants.IsXLSX(e.Name()) || !strings.Contains(e.Name(), ord) {
					continue
				}
				return r.loadTabular(filepath.Join(d, e.Name()), templateID, "scan")
			}
		}
	}

	r.logger.Warn("template.resolve.not_found", "template_id", templateID, "dirs", dirs)
	return nil, fmt.Errorf("%w for id: %s", ErrNotFound, templateID)
}

func (r *Resolver) loadTabular(path, templateID, kind string) (*Template, error) {
	t, err := LoadXLSX(path, templateID)
	if err != nil {
		r.logger.Error("template.resolve.invalid_workbook", "template_id", templateID, "path", path, "error", err)
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	r.logger.Debug("template.resolve.ok", "template_id", templateID, "source", path, "kind", kind, "fields", len(t.FieldOrder()))
	return t, nil
}

func loadDefinition(path, ext, templateID string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t *Template
	if ext == "json" {
		t, err = ParseJSON(data, templateID)
	} else {
		t, err = ParseYAML(data, templateID)
	}
	if err != nil {
		return nil, err
	}
	t.Source = path
	return t, nil
}

var reOrdinal = regexp.MustCompile(`(\d+)$`)

func ordinalSuffix(templateID string) string {
	if m := reOrdinal.FindStringSubmatch(templateID); m != nil {
		return m[1]
	}
	return ""
}

func tabularCandidates(templateID string) []string {
	names := []string{templateID + "." + constants.XLSXExt}
	if ord := ordinalSuffix(templateID); ord != "" {
		names = append(names,
			"Extraction Template "+ord+"."+constants.XLSXExt,
			"Template "+ord+"."+constants.XLSXExt,
		)
	}
	return names
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
