// Package export renders extracted rows into an xlsx workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pdfsheets/constants"
	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/entity"
	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

// BannerText fills the merged first row of single-sheet workbooks.
const BannerText = "Data Extraction Template - Private Equity Funds"

const defaultSheet = "Sheet1"

// Artifact is a rendered workbook ready to be stored or downloaded.
type Artifact struct {
	Filename   string
	Data       []byte
	TemplateID string
	Rows       int
	CreatedAt  time.Time
}

// Service renders workbooks. It keeps no state between calls.
type Service struct {
	now    func() time.Time
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{now: time.Now, logger: logger}
}

// WithClock replaces the time source used for filenames.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// Filename names the artifact for templateID rendered at t.
func Filename(templateID string, t time.Time) string {
	return fmt.Sprintf("extracted_data_%s_%s.%s", templateID, t.Format("20060102_150405"), constants.XLSXExt)
}

// Render lays rows out as tpl prescribes: one sheet per template sheet for
// multi-sheet templates, otherwise a single bannered sheet.
func (s *Service) Render(ctx context.Context, rows []entity.Row, tpl *templates.Template) (Artifact, error) {
	start := time.Now()
	log := common.LoggerFromContext(ctx, s.logger)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	var err error
	if tpl.MultiSheet {
		err = writeMultiSheet(f, rows, tpl.Sheets())
	} else {
		err = writeSingleSheet(f, rows, tpl.Fields())
	}
	if err != nil {
		log.Error("export.xlsx.layout_error", "error", err)
		return Artifact{}, fmt.Errorf("xlsx layout: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Artifact{}, fmt.Errorf("xlsx write: %w", err)
	}

	created := s.now()
	a := Artifact{
		Filename:   Filename(tpl.ID, created),
		Data:       buf.Bytes(),
		TemplateID: tpl.ID,
		Rows:       len(rows),
		CreatedAt:  created,
	}
	log.Info("export.xlsx.ok",
		"filename", a.Filename,
		"multi_sheet", tpl.MultiSheet,
		"rows", len(rows),
		"bytes", len(a.Data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return a, nil
}

func writeSingleSheet(f *excelize.File, rows []entity.Row, fields []templates.Field) error {
	const sheet = defaultSheet

	if err := f.SetCellValue(sheet, "A1", BannerText); err != nil {
		return err
	}
	last := len(fields)
	if last < 1 {
		last = 1
	}
	lastCell, _ := excelize.CoordinatesToCellName(last, 1)
	if last > 1 {
		if err := f.MergeCell(sheet, "A1", lastCell); err != nil {
			return fmt.Errorf("merge banner: %w", err)
		}
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 14},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"000000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("banner style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCell, style); err != nil {
		return err
	}

	return writeTable(f, sheet, 2, fields, rows)
}

func writeMultiSheet(f *excelize.File, rows []entity.Row, sheets []templates.Sheet) error {
	names := SheetNames(sheets)
	for i, sh := range sheets {
		name := names[i]
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeTable(f, name, 1, sh.Fields, rows); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return nil
}

// writeTable puts the headers on headerRow and one line per row beneath it.
func writeTable(f *excelize.File, sheet string, headerRow int, fields []templates.Field, rows []entity.Row) error {
	write := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}

	for i, fd := range fields {
		if err := write(i+1, headerRow, fd.Header); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for i, fd := range fields {
			v, ok := row[fd.Key]
			if !ok || v == nil {
				v = ""
			}
			if err := write(i+1, headerRow+1+r, v); err != nil {
				return err
			}
		}
	}

	for i, fd := range fields {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, columnWidth(fd.Header))
	}
	return nil
}

func columnWidth(header string) float64 {
	w := utf8.RuneCountInString(header) + 4
	switch {
	case w < 12:
		w = 12
	case w > 60:
		w = 60
	}
	return float64(w)
}

const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer("[", "", "]", "", ":", "", "*", "", "?", "", "/", "", `\`, "")

// SheetNames returns workbook-safe, unique names for sheets in order. Invalid
// characters are removed, names are cut to 31 characters, blanks become
// "Sheet N" and repeats get a " (k)" suffix.
func SheetNames(sheets []templates.Sheet) []string {
	out := make([]string, len(sheets))
	used := make(map[string]struct{}, len(sheets))
	for i, sh := range sheets {
		base := strings.Trim(strings.TrimSpace(sheetNameReplacer.Replace(sh.Name)), "'")
		if base == "" {
			base = fmt.Sprintf("Sheet %d", i+1)
		}
		base = cut(base, maxSheetName)
		name := base
		for k := 2; ; k++ {
			if _, dup := used[strings.ToLower(name)]; !dup {
				break
			}
			suffix := fmt.Sprintf(" (%d)", k)
			name = cut(base, maxSheetName-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = struct{}{}
		out[i] = name
	}
	return out
}

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
