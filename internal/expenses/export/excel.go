// Package export renders expense listings as spreadsheets for the clinic's
// accountant.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/clinika/clinika-backend/internal/expenses"
)

const sheetName = "Расходы"

var headers = []string{"ID", "Название", "Категория", "Сотрудник", "Наличные", "Безнал", "Итого", "Комментарий", "Дата"}

// Excel writes the expense list as an xlsx workbook with a summary row.
func Excel(w io.Writer, list []*expenses.Expense) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := wb.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	var cashSum, cashlessSum, totalSum float64
	for i, e := range list {
		row := i + 2
		values := []interface{}{
			e.ID,
			e.Name,
			e.Category,
			deref(e.EmployeeID),
			e.CashAmount,
			e.CashlessAmount,
			e.TotalAmount,
			deref(e.Comment),
			e.CreatedAt.Format("02.01.2006"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := wb.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}

		cashSum += e.CashAmount
		cashlessSum += e.CashlessAmount
		totalSum += e.TotalAmount
	}

	sumRow := len(list) + 2
	if err := wb.SetCellValue(sheetName, fmt.Sprintf("B%d", sumRow), "Всего"); err != nil {
		return err
	}
	if err := wb.SetCellValue(sheetName, fmt.Sprintf("E%d", sumRow), cashSum); err != nil {
		return err
	}
	if err := wb.SetCellValue(sheetName, fmt.Sprintf("F%d", sumRow), cashlessSum); err != nil {
		return err
	}
	if err := wb.SetCellValue(sheetName, fmt.Sprintf("G%d", sumRow), totalSum); err != nil {
		return err
	}

	if err := wb.SetColWidth(sheetName, "B", "B", 28); err != nil {
		return err
	}
	if err := wb.SetColWidth(sheetName, "H", "H", 32); err != nil {
		return err
	}

	return wb.Write(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
