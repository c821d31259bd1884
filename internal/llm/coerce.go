package llm

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/joseph-ayodele/pdfsheets/internal/entity"
)

// Coerce projects data onto keys. Every key is present in the result, missing
// and null values become "", non-scalars are stringified and keys outside the
// list are dropped.
func Coerce(data map[string]any, keys []string) entity.Row {
	row := make(entity.Row, len(keys))
	for _, k := range keys {
		row[k] = coerceValue(data[k])
	}
	return row
}

func coerceValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case float32:
		return float64(t)
	case float64:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprint(t)
	}
}
