package templates

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the first row of the first worksheet as the header list of a
// flat template.
func LoadXLSX(path, templateID string) (*Template, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	var headers []string
	if len(rows) > 0 {
		headers = rows[0]
	}

	t := NewFlat(templateID, "Loaded from "+filepath.Base(path), FieldsFromHeaders(headers))
	t.Source = path
	return t, nil
}
