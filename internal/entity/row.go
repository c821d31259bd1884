package entity

import (
	"fmt"
	"strconv"
)

// Row maps a template field key to a scalar value: string, int64 or float64.
type Row map[string]any

// String renders v the way it would appear in a spreadsheet cell.
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// IsBlank reports whether every value in the row is the empty string.
func (r Row) IsBlank() bool {
	for _, v := range r {
		if s, ok := v.(string); !ok || s != "" {
			return false
		}
	}
	return true
}

// IsScalar reports whether v is one of the value types a Row may carry.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, int64, float64:
		return true
	}
	return false
}
