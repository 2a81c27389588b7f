package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/xuri/excelize/v2"
)

// ExportLocationInventoryExcel renders the per-item breakdown of a single
// warehouse or store as an xlsx sheet.
func ExportLocationInventoryExcel(ctx context.Context, w io.Writer, kind models.LocationKind, locationId int) error {

	report, err := GetLocationInventoryReport(ctx, kind, locationId)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"

	// Add headers
	f.SetCellValue(sheet, "A1", "Item")
	f.SetCellValue(sheet, "B1", "Units")
	f.SetCellValue(sheet, "C1", "WholesaleValue")
	f.SetCellValue(sheet, "D1", "RetailValue")

	// Add data
	for i, item := range report.Items {
		row := i + 2
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), item.Title)
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), item.TotalUnits)
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), item.TotalWholesaleValue.InexactFloat64())
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), item.TotalRetailValue.InexactFloat64())
	}

	return f.Write(w)
}
