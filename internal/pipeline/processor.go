// Package pipeline runs one extraction request end to end: resolve the
// template, read each document's text, extract rows, render, store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdfsheets/constants"
	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/entity"
	"github.com/joseph-ayodele/pdfsheets/internal/export"
	"github.com/joseph-ayodele/pdfsheets/internal/extract"
	"github.com/joseph-ayodele/pdfsheets/internal/repository"
	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

// Document is one uploaded PDF.
type Document struct {
	Name    string
	Content []byte
}

type Result struct {
	Template *templates.Template
	Rows     []entity.Row
	Tiers    []constants.Tier // tier per document; empty for catalog templates
	Artifact export.Artifact
}

type TemplateResolver interface {
	Resolve(ctx context.Context, templateID string) (*templates.Template, error)
}

type RowExtractor interface {
	Extract(ctx context.Context, text string, tpl *templates.Template) ([]entity.Row, constants.Tier)
}

type Renderer interface {
	Render(ctx context.Context, rows []entity.Row, tpl *templates.Template) (export.Artifact, error)
}

// Processor coordinates the stages. It holds no per-request state.
type Processor struct {
	logger    *slog.Logger
	resolver  TemplateResolver
	text      extract.TextExtractor
	rows      RowExtractor
	renderer  Renderer
	store     repository.ArtifactRepository
	outputDir string
}

func NewProcessor(logger *slog.Logger, resolver TemplateResolver, text extract.TextExtractor, rows RowExtractor, renderer Renderer, store repository.ArtifactRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, resolver: resolver, text: text, rows: rows, renderer: renderer, store: store}
}

// WithOutputDir also writes every artifact into dir. Empty disables it.
func (p *Processor) WithOutputDir(dir string) *Processor {
	cp := *p
	cp.outputDir = dir
	return &cp
}

// Process handles one request. Documents are read one at a time in the order
// given and their rows appended in that order. Fixed-catalog templates still
// read every document but emit their catalog exactly once.
func (p *Processor) Process(ctx context.Context, templateID string, docs []Document) (Result, error) {
	if common.RequestIDFromContext(ctx) == "" {
		ctx = common.WithRequestID(ctx, uuid.New().String())
	}
	ctx = common.WithTemplateID(ctx, templateID)
	log := common.LoggerFromContext(ctx, p.logger)
	start := time.Now()

	tpl, err := p.resolver.Resolve(ctx, templateID)
	if err != nil {
		log.Warn("processor.resolve.failed", "error", err)
		return Result{}, err
	}
	log.Info("processor.start", "documents", len(docs), "multi_sheet", tpl.MultiSheet, "fields", len(tpl.FieldOrder()))

	catalog := extract.IsCatalog(tpl.ID)
	res := Result{Template: tpl}
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		text := p.text.Extract(ctx, doc.Content)
		log.Debug("processor.text.ok", "doc_index", i, "doc_name", doc.Name, "chars", len(text))
		if catalog {
			continue
		}
		rows, tier := p.rows.Extract(ctx, text, tpl)
		res.Rows = append(res.Rows, rows...)
		res.Tiers = append(res.Tiers, tier)
		log.Info("processor.document.ok", "doc_index", i, "doc_name", doc.Name, "tier", string(tier), "rows", len(rows))
	}
	if catalog {
		res.Rows, _ = p.rows.Extract(ctx, "", tpl)
		log.Info("processor.catalog", "rows", len(res.Rows))
	}

	res.Artifact, err = p.renderer.Render(ctx, res.Rows, tpl)
	if err != nil {
		log.Error("processor.render.failed", "error", err)
		return Result{}, fmt.Errorf("render: %w", err)
	}
	if p.store != nil {
		if err := p.store.Put(ctx, res.Artifact); err != nil {
			log.Error("processor.store.failed", "filename", res.Artifact.Filename, "error", err)
			return Result{}, fmt.Errorf("store artifact: %w", err)
		}
	}
	p.writeOutput(log, res.Artifact)

	log.Info("processor.ok",
		"filename", res.Artifact.Filename,
		"rows", len(res.Rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Download returns a stored artifact, falling back to the output directory.
func (p *Processor) Download(ctx context.Context, filename string) (export.Artifact, error) {
	var storeErr error = repository.ErrArtifactNotFound
	if p.store != nil {
		a, err := p.store.Get(ctx, filename)
		if err == nil {
			return a, nil
		}
		storeErr = err
		if !errors.Is(err, repository.ErrArtifactNotFound) {
			return export.Artifact{}, err
		}
	}
	if p.outputDir != "" {
		v := common.NewValidator().Field("filename", filename, common.Required, common.Filename)
		if !v.HasErrors() {
			path := filepath.Join(p.outputDir, filename)
			data, err := os.ReadFile(path)
			if err == nil {
				return export.Artifact{Filename: filename, Data: data}, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return export.Artifact{}, fmt.Errorf("read %s: %w", filename, err)
			}
		}
	}
	if errors.Is(storeErr, repository.ErrArtifactNotFound) {
		return export.Artifact{}, fmt.Errorf("%w: %s", repository.ErrArtifactNotFound, filename)
	}
	return export.Artifact{}, storeErr
}

// writeOutput persists a copy on disk. Failures are logged, never returned.
func (p *Processor) writeOutput(log *slog.Logger, a export.Artifact) {
	if p.outputDir == "" {
		return
	}
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		log.Warn("processor.output.mkdir_failed", "dir", p.outputDir, "error", err)
		return
	}
	path := filepath.Join(p.outputDir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		log.Warn("processor.output.write_failed", "path", path, "error", err)
		return
	}
	log.Debug("processor.output.ok", "path", path)
}
