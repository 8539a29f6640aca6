// Package normalize reconstructs canonical entities from loosely-shaped rows.
//
// The dashboard's schema grew by hand: the same employee list may live in an
// English table, a Cyrillic CRM view, or both, with column names that differ
// per relation ("full_name", "ФИО", "Доктор ФИО", ...). Extraction resolves
// one semantic field from such a row by probing a declarative candidate-key
// table, then a key pattern, then (for names) first/last fragments.
package normalize

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Field identifies a semantic target resolved from a raw row.
type Field int

const (
	FieldID Field = iota
	FieldName
	FieldPhone
	FieldRole
)

// candidateKeys lists source keys probed in priority order per field.
// Matching is case-insensitive; the mapping is data, not scattered logic,
// so schema drift is fixed by editing these tables.
var candidateKeys = map[Field][]string{
	FieldID:    {"id", "uuid", "employee_id", "patient_id", "код"},
	FieldName:  {"full_name", "fullName", "name", "fio", "ФИО", "Ф.И.О.", "Доктор ФИО", "Имя сотрудника"},
	FieldPhone: {"phone", "phone_number", "телефон", "Телефон", "mobile", "Номер телефона"},
	FieldRole:  {"role", "должность", "Должность", "position", "специальность"},
}

// keyPatterns is the fallback scan applied when no candidate key matched.
var keyPatterns = map[Field]*regexp.Regexp{
	FieldID:    regexp.MustCompile(`(?i)(^|[_ ])(id|uuid|код)([_ ]|$)`),
	FieldName:  regexp.MustCompile(`(?i)(name|fio|фио|имя)`),
	FieldPhone: regexp.MustCompile(`(?i)(phone|телефон|mobile|моб)`),
	FieldRole:  regexp.MustCompile(`(?i)(role|должност|position|специальн)`),
}

var firstNameKeys = []string{"first_name", "firstName", "Имя"}
var lastNameKeys = []string{"last_name", "lastName", "Фамилия"}

// Extract returns the best-guess string value for field from a flat row.
// It never panics; malformed input yields "".
func Extract(row map[string]any, field Field) string {
	if len(row) == 0 {
		return ""
	}

	// 1. Direct candidate keys, priority order.
	for _, key := range candidateKeys[field] {
		if v, ok := lookupFold(row, key); ok {
			if s := coerce(v, field); s != "" {
				return s
			}
		}
	}

	// 2. Pattern scan over all keys. Keys are sorted so the result does not
	// depend on map iteration order.
	if re := keyPatterns[field]; re != nil {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if re.MatchString(k) {
				if s := coerce(row[k], field); s != "" {
					return s
				}
			}
		}
	}

	// 3. Names only: assemble from first/last fragments.
	if field == FieldName {
		first := extractAny(row, firstNameKeys)
		last := extractAny(row, lastNameKeys)
		if full := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last)); full != "" {
			return full
		}
	}

	return ""
}

func extractAny(row map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := lookupFold(row, key); ok {
			if s := coerce(v, FieldName); s != "" {
				return s
			}
		}
	}
	return ""
}

// lookupFold finds a row value by case-insensitive key comparison.
// An exact match wins over a folded one.
func lookupFold(row map[string]any, key string) (any, bool) {
	if v, ok := row[key]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// coerce turns a raw cell into a trimmed string. Numeric values are accepted
// for ids only and rendered in plain decimal form; everything else that is not
// string-shaped is ignored.
func coerce(v any, field Field) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []byte:
		// lib/pq hands text columns back as []byte on MapScan
		return strings.TrimSpace(string(t))
	case json.Number:
		if field == FieldID {
			return t.String()
		}
	case float64:
		if field == FieldID {
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	case float32:
		if field == FieldID {
			return strconv.FormatFloat(float64(t), 'f', -1, 32)
		}
	case int:
		if field == FieldID {
			return strconv.Itoa(t)
		}
	case int32:
		if field == FieldID {
			return strconv.FormatInt(int64(t), 10)
		}
	case int64:
		if field == FieldID {
			return strconv.FormatInt(t, 10)
		}
	}
	return ""
}
