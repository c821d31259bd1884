package pdftext

import (
	"bytes"
	"context"
	"math"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	rpdf "rsc.io/pdf"
)

// layoutBackend reads the text layer with ledongthuc/pdf.
type layoutBackend struct{}

func (layoutBackend) Name() string { return "ledongthuc" }

func (layoutBackend) Pages(ctx context.Context, content []byte) ([]string, error) {
	r, err := lpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	n := r.NumPage()
	pages := make([]string, 0, n)
	fonts := make(map[string]*lpdf.Font)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// contentBackend rebuilds lines from positioned glyph runs with rsc.io/pdf.
type contentBackend struct{}

func (contentBackend) Name() string { return "rsc" }

func (contentBackend) Pages(ctx context.Context, content []byte) ([]string, error) {
	r, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, linesFromRuns(p.Content().Text))
	}
	return pages, nil
}

// linesFromRuns groups runs sharing a baseline into lines, top to bottom.
func linesFromRuns(runs []rpdf.Text) string {
	if len(runs) == 0 {
		return ""
	}
	sorted := make([]rpdf.Text, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > 1 {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var b strings.Builder
	lastY := sorted[0].Y
	lastEnd := sorted[0].X
	for i, t := range sorted {
		if i > 0 {
			switch {
			case math.Abs(t.Y-lastY) > 1:
				b.WriteByte('\n')
			case t.X-lastEnd > t.FontSize*0.2:
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		lastY = t.Y
		lastEnd = t.X + t.W
	}
	return b.String()
}
