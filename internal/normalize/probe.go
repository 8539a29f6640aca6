package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Probe returns the first non-empty string value found under keys, matching
// case-insensitively. It serves row shapes whose fields fall outside the
// fixed Field set, with the same coercion rules.
func Probe(row map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := lookupFold(row, key); ok {
			if s := coerceAny(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// ProbeFloat resolves keys to a numeric value. String values are parsed
// after trimming spaces and swapping a decimal comma for a point.
func ProbeFloat(row map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := lookupFold(row, key)
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int32:
			return float64(n), true
		case int64:
			return float64(n), true
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		case []byte:
			if f, ok := parseFloat(string(n)); ok {
				return f, true
			}
		case string:
			if f, ok := parseFloat(n); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// ProbeBool resolves keys to a boolean. Numeric values follow the usual
// zero/non-zero convention; recognized strings include Russian yes/no.
func ProbeBool(row map[string]any, keys ...string) bool {
	for _, key := range keys {
		v, ok := lookupFold(row, key)
		if !ok || v == nil {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case string:
			switch strings.ToLower(strings.TrimSpace(b)) {
			case "true", "t", "yes", "1", "да":
				return true
			case "false", "f", "no", "0", "нет", "":
				return false
			}
		default:
			if f, ok := ProbeFloat(row, key); ok {
				return f != 0
			}
		}
	}
	return false
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// coerceAny is the field-agnostic variant of coerce: numbers become their
// decimal representation unconditionally.
func coerceAny(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return strings.TrimSpace(string(s))
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	}
	return ""
}
