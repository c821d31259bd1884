package templates

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
)

//go:embed definition.schema.json
var definitionSchema []byte

var compileDefinitionSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("definition.schema.json", bytes.NewReader(definitionSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("definition.schema.json")
})

// definition is the on-disk shape of a declarative template file.
type definition struct {
	TemplateID  string  `json:"templateId"`
	Description string  `json:"description"`
	MultiSheet  bool    `json:"multiSheet"`
	Fields      []Field `json:"fields"`
	Sheets      []Sheet `json:"sheets"`
}

// ParseJSON validates and decodes a JSON template definition. fallbackID is used
// when the document carries no templateId.
func ParseJSON(data []byte, fallbackID string) (*Template, error) {
	schema, err := compileDefinitionSchema()
	if err != nil {
		return nil, fmt.Errorf("compile definition schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: decode template json: %v", common.ErrValidation, err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: template does not match schema: %v", common.ErrValidation, err)
	}

	var def definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: decode template json: %v", common.ErrValidation, err)
	}
	return def.build(fallbackID)
}

// ParseYAML decodes a YAML template definition by way of its JSON form, so both
// formats share one schema.
func ParseYAML(data []byte, fallbackID string) (*Template, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: decode template yaml: %v", common.ErrValidation, err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: template yaml is not json-compatible: %v", common.ErrValidation, err)
	}
	return ParseJSON(b, fallbackID)
}

func (d definition) build(fallbackID string) (*Template, error) {
	id := strings.TrimSpace(d.TemplateID)
	if id == "" {
		id = fallbackID
	}

	if d.MultiSheet && len(d.Sheets) > 0 {
		sheets := make([]Sheet, 0, len(d.Sheets))
		for _, s := range d.Sheets {
			fields, err := normalizeFields(s.Fields)
			if err != nil {
				return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
			}
			s.Fields = fields
			sheets = append(sheets, s)
		}
		return NewMultiSheet(id, d.Description, sheets), nil
	}

	fields, err := normalizeFields(d.Fields)
	if err != nil {
		return nil, err
	}
	return NewFlat(id, d.Description, fields), nil
}

func normalizeFields(in []Field) ([]Field, error) {
	out := make([]Field, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, f := range in {
		header := strings.TrimSpace(f.Header)
		src := f.Key
		if strings.TrimSpace(src) == "" {
			src = header
		}
		key := NormalizeKey(src)
		if header == "" {
			header = key
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate field key %q", common.ErrValidation, key)
		}
		seen[key] = struct{}{}
		out = append(out, Field{Key: key, Header: header})
	}
	return out, nil
}
