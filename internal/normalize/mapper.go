package normalize

import "strings"

// Employee is the canonical employee record, independent of which source
// relation and column-naming convention produced it.
type Employee struct {
	ID       string  `json:"id"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
}

// Patient is the canonical patient record.
type Patient struct {
	ID    string  `json:"id"`
	FIO   string  `json:"fio"`
	Phone *string `json:"phone"`
}

// Recognized role values; anything else passes through as free text.
const (
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

// MapEmployee maps one raw row to a canonical employee. The id falls back to
// the extracted name; rows yielding neither are dropped (nil, no error).
func MapEmployee(row map[string]any) *Employee {
	id := Extract(row, FieldID)
	name := Extract(row, FieldName)
	if id == "" {
		id = name
	}
	if id == "" {
		return nil
	}
	if name == "" {
		name = id
	}

	emp := &Employee{ID: id, FullName: name}
	if local, ok := NormalizePhone(Extract(row, FieldPhone)); ok {
		emp.Phone = &local
	}
	if role := CanonicalRole(Extract(row, FieldRole)); role != "" {
		emp.Role = &role
	}
	return emp
}

// MapPatient maps one raw row to a canonical patient, with the same id
// fallback rule as MapEmployee.
func MapPatient(row map[string]any) *Patient {
	id := Extract(row, FieldID)
	fio := Extract(row, FieldName)
	if id == "" {
		id = fio
	}
	if id == "" {
		return nil
	}
	if fio == "" {
		fio = id
	}

	p := &Patient{ID: id, FIO: fio}
	if local, ok := NormalizePhone(Extract(row, FieldPhone)); ok {
		p.Phone = &local
	}
	return p
}

// CanonicalRole folds the free-text role column into the two values the
// dashboard distinguishes, keeping anything else verbatim.
func CanonicalRole(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	switch {
	case lower == "":
		return ""
	case strings.Contains(lower, "doctor"), strings.Contains(lower, "доктор"), strings.Contains(lower, "врач"):
		return RoleDoctor
	case strings.Contains(lower, "admin"), strings.Contains(lower, "админ"):
		return RoleAdmin
	}
	return raw
}
