package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRowPrefersNewColumns(t *testing.T) {
	svc := MapRow(map[string]any{
		"id":              "S1",
		"service_name":    "Чистка зубов",
		"Название услуги": "старое имя",
		"price_som":       float64(1500),
		"Стоимость, сом":  "999",
	})
	require.NotNil(t, svc)
	assert.Equal(t, "Чистка зубов", svc.Name)
	assert.Equal(t, 1500.0, svc.PriceSom)
}

func TestMapRowLegacyColumns(t *testing.T) {
	svc := MapRow(map[string]any{
		"id":              "S2",
		"Название услуги": "Рентген",
		"Стоимость, сом":  "800",
		"Сотрудник":       "E1",
	})
	require.NotNil(t, svc)
	assert.Equal(t, "Рентген", svc.Name)
	assert.Equal(t, 800.0, svc.PriceSom)
	require.NotNil(t, svc.EmployeeID)
	assert.Equal(t, "E1", *svc.EmployeeID)
}

func TestMapRowDropsNameless(t *testing.T) {
	assert.Nil(t, MapRow(map[string]any{"Стоимость, сом": "800"}))
	assert.Nil(t, MapRow(nil))
}
