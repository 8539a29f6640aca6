package normalize_test

import (
	"testing"

	"github.com/clinika/clinika-backend/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapEmployee_CyrillicRow(t *testing.T) {
	row := map[string]any{
		"ID":         "E1",
		"Доктор ФИО": "Иванов Петр",
	}

	emp := normalize.MapEmployee(row)
	require.NotNil(t, emp)
	assert.Equal(t, "E1", emp.ID)
	assert.Equal(t, "Иванов Петр", emp.FullName)
	assert.Nil(t, emp.Phone)
	assert.Nil(t, emp.Role)
}

func TestMapEmployee_IDlessRowsDropped(t *testing.T) {
	rows := []map[string]any{
		{"total": 100.0},
		{"comment": "no identity here"},
		{},
		nil,
	}
	for _, row := range rows {
		assert.Nil(t, normalize.MapEmployee(row))
	}
}

func TestMapEmployee_IDFallsBackToName(t *testing.T) {
	emp := normalize.MapEmployee(map[string]any{"fio": "Сидорова Анна"})
	require.NotNil(t, emp)
	assert.Equal(t, "Сидорова Анна", emp.ID)
	assert.Equal(t, "Сидорова Анна", emp.FullName)
}

func TestMapEmployee_NameDefaultsToID(t *testing.T) {
	emp := normalize.MapEmployee(map[string]any{"id": "E9"})
	require.NotNil(t, emp)
	assert.Equal(t, "E9", emp.FullName)
}

func TestMapEmployee_PhoneAndRoleNormalized(t *testing.T) {
	emp := normalize.MapEmployee(map[string]any{
		"id":        "E2",
		"name":      "Петров Иван",
		"Телефон":   "+996 555 112 233",
		"Должность": "Главный врач",
	})
	require.NotNil(t, emp)
	require.NotNil(t, emp.Phone)
	assert.Equal(t, "555112233", *emp.Phone)
	require.NotNil(t, emp.Role)
	assert.Equal(t, "doctor", *emp.Role)
}

func TestMapPatient(t *testing.T) {
	t.Run("maps fio and phone", func(t *testing.T) {
		p := normalize.MapPatient(map[string]any{
			"id":      int64(15),
			"ФИО":     "Касымова Айгуль",
			"Телефон": "0700123456",
		})
		require.NotNil(t, p)
		assert.Equal(t, "15", p.ID)
		assert.Equal(t, "Касымова Айгуль", p.FIO)
		require.NotNil(t, p.Phone)
		assert.Equal(t, "700123456", *p.Phone)
	})

	t.Run("idless row dropped", func(t *testing.T) {
		assert.Nil(t, normalize.MapPatient(map[string]any{"visit_count": 3}))
	})
}
