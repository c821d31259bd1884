package templates

import (
	"regexp"
	"strconv"
	"strings"
)

// Field is one output column: a normalized key and the header shown to humans.
type Field struct {
	Key    string `json:"key" yaml:"key"`
	Header string `json:"header" yaml:"header"`
}

// Sheet is one worksheet of a multi-sheet template.
type Sheet struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Template is a resolved, immutable schema. Exactly one of the flat field list or
// the sheet list is populated, as indicated by MultiSheet.
type Template struct {
	ID          string
	Description string
	MultiSheet  bool
	Source      string

	fields []Field
	sheets []Sheet
}

// NewFlat builds a single-sheet template.
func NewFlat(id, description string, fields []Field) *Template {
	return &Template{ID: id, Description: description, fields: cloneFields(fields)}
}

// NewMultiSheet builds a multi-sheet template. An empty sheet list yields a flat
// template with no fields.
func NewMultiSheet(id, description string, sheets []Sheet) *Template {
	t := &Template{ID: id, Description: description, MultiSheet: len(sheets) > 0}
	for _, s := range sheets {
		s.Fields = cloneFields(s.Fields)
		t.sheets = append(t.sheets, s)
	}
	return t
}

// Fields returns the flat field list (empty for multi-sheet templates).
func (t *Template) Fields() []Field { return cloneFields(t.fields) }

// Sheets returns the sheet list (empty for flat templates).
func (t *Template) Sheets() []Sheet {
	out := make([]Sheet, len(t.sheets))
	for i, s := range t.sheets {
		s.Fields = cloneFields(s.Fields)
		out[i] = s
	}
	return out
}

// FlatFields concatenates fields across all sheets in schema order. Keys repeated
// across sheets appear once per sheet.
func (t *Template) FlatFields() []Field {
	if !t.MultiSheet {
		return t.Fields()
	}
	var out []Field
	for _, s := range t.sheets {
		out = append(out, s.Fields...)
	}
	return out
}

// FieldOrder returns the flattened key sequence.
func (t *Template) FieldOrder() []string {
	ff := t.FlatFields()
	keys := make([]string, len(ff))
	for i, f := range ff {
		keys[i] = f.Key
	}
	return keys
}

// Headers returns the flattened header sequence, index-aligned with FieldOrder.
func (t *Template) Headers() []string {
	ff := t.FlatFields()
	headers := make([]string, len(ff))
	for i, f := range ff {
		headers[i] = f.Header
	}
	return headers
}

// AllFields maps key to header. When a key repeats across sheets the last sheet wins.
func (t *Template) AllFields() map[string]string {
	m := make(map[string]string)
	for _, f := range t.FlatFields() {
		m[f.Key] = f.Header
	}
	return m
}

// UniqueKeys returns FieldOrder with repeats removed, first occurrence kept.
func (t *Template) UniqueKeys() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range t.FieldOrder() {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeKey lowercases text, collapses runs of non-alphanumerics to a single
// underscore and trims underscores. "Fund Name (USD)" becomes "fund_name_usd".
func NormalizeKey(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = reNonAlnum.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "field"
	}
	return s
}

// FieldsFromHeaders derives one field per non-blank header. Headers that normalize
// to an already used key get a numeric suffix.
func FieldsFromHeaders(headers []string) []Field {
	var fields []Field
	used := make(map[string]int)
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		key := NormalizeKey(h)
		if n := used[key]; n > 0 {
			used[key] = n + 1
			key = key + "_" + strconv.Itoa(n+1)
		}
		used[key]++
		fields = append(fields, Field{Key: key, Header: h})
	}
	return fields
}

func cloneFields(in []Field) []Field {
	if in == nil {
		return nil
	}
	out := make([]Field, len(in))
	copy(out, in)
	return out
}
