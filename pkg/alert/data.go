package alert

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Data is the handler-specific event payload. The bus enforces no schema.
type Data map[string]any

// String returns the value under key rendered as text, or "" when the key is
// missing, nil or blank. Numbers are formatted without exponent.
func (d Data) String(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}

	s, ok := scalarText(v)
	if !ok {
		s = fmt.Sprint(v)
	}
	return strings.TrimSpace(s)
}

func scalarText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	}
	return "", false
}

// Strings returns a list value. A single string is treated as a one-element
// list; blank entries are skipped.
func (d Data) Strings(key string) []string {
	var raw []string
	switch val := d[key].(type) {
	case nil:
		return nil
	case string:
		raw = []string{val}
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	default:
		raw = []string{d.String(key)}
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Has reports whether key holds a non-blank value
func (d Data) Has(key string) bool {
	return d.String(key) != ""
}

// Map returns a shallow copy of the data
func (d Data) Map() map[string]any {
	if d == nil {
		return map[string]any{}
	}
	return maps.Clone(map[string]any(d))
}

// TemplateVars returns a copy of the data for template rendering. Numbers,
// at any depth, become the same text String produces, so 1500000 never
// renders as 1.5e+06. Strings, bools and nil keep their type for sections.
func (d Data) TemplateVars() map[string]any {
	vars := make(map[string]any, len(d))
	for k, v := range d {
		vars[k] = templateValue(v)
	}
	return vars
}

func templateValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool:
		return val
	case map[string]any:
		return Data(val).TemplateVars()
	case Data:
		return val.TemplateVars()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = templateValue(item)
		}
		return out
	}
	if s, ok := scalarText(v); ok {
		return s
	}
	return v
}
