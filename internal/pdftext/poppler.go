package pdftext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// popplerBackend shells out to pdftotext.
type popplerBackend struct {
	bin    string
	runner Runner
}

func (b *popplerBackend) Name() string { return "pdftotext" }

func (b *popplerBackend) Pages(ctx context.Context, content []byte) ([]string, error) {
	dir, path, err := spill(content)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := b.runner.Run(ctx, b.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	// form feed separates pages
	pages := strings.Split(strings.TrimSuffix(string(out), "\f"), "\f")
	return pages, nil
}

// ocrBackend renders pages with pdftoppm and reads them back with tesseract.
type ocrBackend struct {
	pdftoppm  string
	tesseract string
	lang      string
	dpi       int
	runner    Runner
}

func (b *ocrBackend) Name() string { return "ocr" }

func (b *ocrBackend) Pages(ctx context.Context, content []byte) ([]string, error) {
	dir, path, err := spill(content)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	prefix := filepath.Join(dir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	if _, errb, err := b.runner.Run(ctx, b.pdftoppm, "-r", strconv.Itoa(b.dpi), "-png", path, prefix); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// prefix-1.png, prefix-2.png, ...
	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Slice(images, func(i, j int) bool { return pageIndex(images[i]) < pageIndex(images[j]) })
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}

	pages := make([]string, 0, len(images))
	for _, img := range images {
		// tesseract <file> stdout -l <lang>
		out, _, err := b.runner.Run(ctx, b.tesseract, img, "stdout", "-l", b.lang)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, Normalize(string(out)))
	}
	return pages, nil
}

func pageIndex(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	n, _ := strconv.Atoi(base[strings.LastIndexByte(base, '-')+1:])
	return n
}

// spill writes content to a private temp file for tools that need a path.
func spill(content []byte) (dir, path string, err error) {
	dir, err = os.MkdirTemp("", "pdfsheets-*")
	if err != nil {
		return "", "", err
	}
	path = filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return "", "", err
	}
	return dir, path, nil
}
