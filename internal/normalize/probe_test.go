package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbe(t *testing.T) {
	row := map[string]any{
		"Статус":  "Оплачено",
		"doctor":  []byte("Иванов"),
		"cabinet": json.Number("12"),
	}

	assert.Equal(t, "Оплачено", Probe(row, "status", "Статус"))
	assert.Equal(t, "Иванов", Probe(row, "Doctor"))
	assert.Equal(t, "12", Probe(row, "cabinet"))
	assert.Equal(t, "", Probe(row, "missing"))
}

func TestProbeFloat(t *testing.T) {
	row := map[string]any{
		"cash":     float64(1200),
		"cashless": "350,50",
		"debt":     []byte("10"),
		"total":    json.Number("1560.5"),
		"note":     "so?",
	}

	for key, want := range map[string]float64{
		"cash":     1200,
		"cashless": 350.5,
		"debt":     10,
		"total":    1560.5,
	} {
		got, ok := ProbeFloat(row, key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	_, ok := ProbeFloat(row, "note")
	assert.False(t, ok)
	_, ok = ProbeFloat(row, "missing")
	assert.False(t, ok)
}

func TestProbeBool(t *testing.T) {
	assert.True(t, ProbeBool(map[string]any{"night": true}, "night"))
	assert.True(t, ProbeBool(map[string]any{"night": "Да"}, "night"))
	assert.True(t, ProbeBool(map[string]any{"night": int64(1)}, "night"))
	assert.False(t, ProbeBool(map[string]any{"night": "нет"}, "night"))
	assert.False(t, ProbeBool(map[string]any{}, "night"))
}
