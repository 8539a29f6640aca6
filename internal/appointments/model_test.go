package appointments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRowCyrillicColumns(t *testing.T) {
	row := map[string]any{
		"id":           "A1",
		"Пациент":      "Асанова Айгуль",
		"Телефон":      "+996 700 112233",
		"Доктор":       "Иванов Петр",
		"Услуга":       "Чистка зубов",
		"Дата":         "15.03.2025",
		"Время":        "14:30",
		"Статус":       "Оплачено",
		"Ночная смена": "Да",
		"Наличные":     float64(1000),
		"Безнал":       "500,50",
		"Долг":         float64(0),
		"Итого":        float64(1500.5),
	}

	appt := MapRow(row)
	require.NotNil(t, appt)

	assert.Equal(t, "A1", appt.ID)
	assert.Equal(t, "Асанова Айгуль", appt.PatientName)
	require.NotNil(t, appt.PatientPhone)
	assert.Equal(t, "700112233", *appt.PatientPhone)
	assert.Equal(t, "Иванов Петр", appt.DoctorName)
	assert.Equal(t, "Чистка зубов", appt.ServiceName)
	assert.Equal(t, "15.03.2025", appt.Date)
	assert.Equal(t, "14:30", appt.Time)
	assert.Equal(t, StatusPaid, appt.Status)
	assert.True(t, appt.NightShift)
	assert.Equal(t, 1000.0, appt.Cash)
	assert.Equal(t, 500.5, appt.Cashless)
	assert.Equal(t, 1500.5, appt.Total)

	parsed, err := appt.ParsedDate()
	require.NoError(t, err)
	assert.Equal(t, 2025, parsed.Year())
	assert.Equal(t, "March", parsed.Month().String())
	assert.Equal(t, 15, parsed.Day())
}

func TestMapRowUnknownStatusPassesThrough(t *testing.T) {
	appt := MapRow(map[string]any{
		"id":      "A2",
		"patient": "Иванов",
		"status":  "Перенесено",
	})
	require.NotNil(t, appt)
	assert.Equal(t, "Перенесено", appt.Status)
	assert.False(t, appt.NightShift)
}

func TestMapRowsDropsUnusable(t *testing.T) {
	rows := []map[string]any{
		{"id": "A1", "patient_name": "Иванов"},
		{"status": "Ожидаем"},
		nil,
	}
	appts := MapRows(rows)
	require.Len(t, appts, 1)
	assert.Equal(t, "A1", appts[0].ID)
}
