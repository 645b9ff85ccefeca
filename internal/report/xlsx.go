package report

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pageza/foodgram/backend/internal/types"
)

const sheetName = "Shopping list"

// XLSXRenderer writes the list as a spreadsheet with Name, Unit and Amount columns.
type XLSXRenderer struct{}

func (XLSXRenderer) Render(w io.Writer, items []types.ShoppingListItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headers := []string{"Name", "Unit", "Amount"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetCellStyle(sheetName, "A1", "C1", headerStyle)
	}

	for i, item := range items {
		row := i + 2
		values := []interface{}{item.Name, item.MeasurementUnit, item.TotalAmount}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXRenderer) Filename() string { return "shoplist.xlsx" }
