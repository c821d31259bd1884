// Package pdftext turns PDF bytes into plain text.
//
// Several backends are tried in order. Each produces per-page text which is
// joined with newlines; the first backend yielding any non-whitespace text wins.
// Failures, including panics inside a parser, are logged and never surface to the
// caller: unreadable input yields the empty string.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Backend extracts per-page text from a PDF document.
type Backend interface {
	Name() string
	Pages(ctx context.Context, content []byte) ([]string, error)
}

type Config struct {
	Pdftotext     string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for OCR, default 300
	EnableOCR     bool
}

type Extractor struct {
	backends []Backend
	logger   *slog.Logger
}

// NewExtractor wires the default backend chain: two pure-Go parsers, the
// pdftotext binary, and optionally an OCR pass over rendered pages.
func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}

	runner := execRunner{logger: logger}
	backends := []Backend{
		layoutBackend{},
		contentBackend{},
		&popplerBackend{bin: cfg.Pdftotext, runner: runner},
	}
	if cfg.EnableOCR {
		backends = append(backends, &ocrBackend{
			pdftoppm:  cfg.Pdftoppm,
			tesseract: cfg.Tesseract,
			lang:      cfg.TesseractLang,
			dpi:       cfg.DPI,
			runner:    runner,
		})
	}
	return &Extractor{backends: backends, logger: logger}
}

// NewExtractorWithBackends builds an extractor over an explicit backend chain.
func NewExtractorWithBackends(logger *slog.Logger, backends ...Backend) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{backends: backends, logger: logger}
}

// Extract returns the text of the first backend that finds any. It never fails.
func (e *Extractor) Extract(ctx context.Context, content []byte) string {
	if len(content) == 0 {
		e.logger.Debug("pdftext.extract.empty_input")
		return ""
	}
	for _, b := range e.backends {
		if ctx.Err() != nil {
			e.logger.Warn("pdftext.extract.cancelled", "error", ctx.Err())
			return ""
		}
		start := time.Now()
		pages, err := runBackend(ctx, b, content)
		if err != nil {
			e.logger.Debug("pdftext.backend.failed", "backend", b.Name(), "error", err)
			continue
		}
		text := strings.Join(pages, "\n")
		if strings.TrimSpace(text) == "" {
			e.logger.Debug("pdftext.backend.no_text", "backend", b.Name(), "pages", len(pages))
			continue
		}
		e.logger.Info("pdftext.extract.ok",
			"backend", b.Name(),
			"pages", len(pages),
			"chars", len(text),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return text
	}
	e.logger.Warn("pdftext.extract.no_text", "backends", len(e.backends), "bytes", len(content))
	return ""
}

func runBackend(ctx context.Context, b Backend, content []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%s panicked: %v", b.Name(), r)
		}
	}()
	return b.Pages(ctx, content)
}
