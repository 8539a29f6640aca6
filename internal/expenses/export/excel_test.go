package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/clinika/clinika-backend/internal/expenses"
)

func TestExcelExport(t *testing.T) {
	comment := "чек приложен"
	list := []*expenses.Expense{
		{ID: 1, Name: "Перчатки", Category: "Расходники", CashAmount: 100, CashlessAmount: 50, TotalAmount: 150, Comment: &comment, CreatedAt: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "Аренда", Category: "Помещение", CashAmount: 0, CashlessAmount: 30000, TotalAmount: 30000, CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, Excel(&buf, list))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	name, err := wb.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Перчатки", name)

	date, err := wb.GetCellValue(sheetName, "I2")
	require.NoError(t, err)
	assert.Equal(t, "15.03.2025", date)

	// Summary row below the data.
	total, err := wb.GetCellValue(sheetName, "G4")
	require.NoError(t, err)
	assert.Equal(t, "30150", total)
}

func TestExcelExportEmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Excel(&buf, nil))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	header, err := wb.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)
}
