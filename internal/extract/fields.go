package extract

import (
	"math"
	"strconv"
	"strings"
)

// String returns m[key] trimmed when it is a string, or "".
func String(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// StringOr returns String(m, key), or fallback when that is empty.
func StringOr(m map[string]any, key, fallback string) string {
	if s := String(m, key); s != "" {
		return s
	}
	return fallback
}

// StringList returns the non-empty trimmed strings of the array at m[key],
// keeping at most limit entries when limit > 0.
func StringList(m map[string]any, key string, limit int) []string {
	return Strings(m[key], limit)
}

// Strings keeps the non-empty trimmed string elements of v when v is an array.
func Strings(v any, limit int) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Objects keeps the object elements of v when v is an array.
func Objects(v any) []map[string]any {
	items, _ := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Number reads a finite number from m[key]. Numeric strings are accepted.
func Number(m map[string]any, key string) (float64, bool) {
	var f float64
	switch v := m[key].(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
