package reports_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/models/reports"
	"github.com/mmdatafocus/inventory_backend/testutil"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/mmdatafocus/inventory_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestUnitsPerItemReport(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	warehouse := testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "Central"})
	store := testutil.MustCreateStore(t, &models.NewStore{Name: "Downtown"})
	widget := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	})
	gadget := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Gadget",
		WholesalePrice: decimal.NewFromInt(3),
		RetailPrice:    decimal.NewFromInt(7),
	})
	// Third item never stocked anywhere, must not appear.
	testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Gizmo",
		WholesalePrice: decimal.NewFromInt(1),
		RetailPrice:    decimal.NewFromInt(2),
	})

	if _, err := workflow.Receive(ctx, warehouse.ID, widget.ID, 100); err != nil {
		t.Fatalf("Receive widget: %v", err)
	}
	if _, err := workflow.Transfer(ctx, warehouse.ID, widget.ID, store.ID, 40); err != nil {
		t.Fatalf("Transfer widget: %v", err)
	}
	// Gadget: stocked then fully drained; a zero total still shows up.
	if _, err := workflow.Receive(ctx, warehouse.ID, gadget.ID, 5); err != nil {
		t.Fatalf("Receive gadget: %v", err)
	}
	if _, err := workflow.Transfer(ctx, warehouse.ID, gadget.ID, store.ID, 5); err != nil {
		t.Fatalf("Transfer gadget: %v", err)
	}
	if _, err := workflow.Sell(ctx, store.ID, gadget.ID, 5); err != nil {
		t.Fatalf("Sell gadget: %v", err)
	}

	rows, err := reports.GetUnitsPerItemReport(ctx)
	if err != nil {
		t.Fatalf("GetUnitsPerItemReport: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (never-stocked items excluded)", len(rows))
	}

	byId := make(map[int]*reports.UnitsPerItemResponse, len(rows))
	for _, row := range rows {
		byId[row.ItemId] = row
	}
	if got := byId[widget.ID]; got == nil || got.TotalUnits != 100 {
		t.Fatalf("widget row = %+v, want total 100", got)
	}
	if got := byId[gadget.ID]; got == nil || got.TotalUnits != 0 {
		t.Fatalf("gadget row = %+v, want total 0", got)
	}
}

func TestLocationInventoryReport(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	warehouse := testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "Central"})
	widget := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	})

	if _, err := workflow.Receive(ctx, warehouse.ID, widget.ID, 10); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	report, err := reports.GetLocationInventoryReport(ctx, models.LocationKindWarehouse, warehouse.ID)
	if err != nil {
		t.Fatalf("GetLocationInventoryReport: %v", err)
	}
	if report.Name != "Central" || len(report.Items) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	row := report.Items[0]
	if row.TotalUnits != 10 {
		t.Fatalf("units = %d, want 10", row.TotalUnits)
	}
	if !row.TotalWholesaleValue.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("wholesale value = %s, want 20", row.TotalWholesaleValue)
	}
	if !row.TotalRetailValue.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("retail value = %s, want 50", row.TotalRetailValue)
	}
}

func TestLocationInventoryReportValuesFollowCurrentPrice(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	warehouse := testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "Central"})
	widget := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	})
	if _, err := workflow.Receive(ctx, warehouse.ID, widget.ID, 10); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	// Reprice after stocking: the report must reflect the new price.
	if _, err := models.UpdateItem(ctx, widget.ID, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(4),
		RetailPrice:    decimal.NewFromInt(9),
	}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	report, err := reports.GetLocationInventoryReport(ctx, models.LocationKindWarehouse, warehouse.ID)
	if err != nil {
		t.Fatalf("GetLocationInventoryReport: %v", err)
	}
	if !report.Items[0].TotalWholesaleValue.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("wholesale value = %s, want 40", report.Items[0].TotalWholesaleValue)
	}
	if !report.Items[0].TotalRetailValue.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("retail value = %s, want 90", report.Items[0].TotalRetailValue)
	}
}

func TestAllLocationInventoryReportOrder(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	// Created out of name order on purpose.
	testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "West"})
	testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "Central"})
	testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "North"})

	want := []string{"Central", "North", "West"}
	for i := 0; i < 3; i++ {
		rows, err := reports.GetAllLocationInventoryReport(ctx, models.LocationKindWarehouse)
		if err != nil {
			t.Fatalf("GetAllLocationInventoryReport: %v", err)
		}
		if len(rows) != len(want) {
			t.Fatalf("got %d rows, want %d", len(rows), len(want))
		}
		for j, row := range rows {
			if row.Name != want[j] {
				t.Fatalf("row %d = %q, want %q (order must match the warehouse listing)", j, row.Name, want[j])
			}
		}
	}
}

func TestLocationInventoryReportUnknownLocation(t *testing.T) {
	testutil.SetupTestDB(t)

	if _, err := reports.GetLocationInventoryReport(context.Background(), models.LocationKindStore, 9999); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected RecordNotFound, got %v", err)
	}
}

func TestStoreRevenueReportEmptyStore(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	store := testutil.MustCreateStore(t, &models.NewStore{Name: "Downtown"})

	report, err := reports.GetStoreRevenueReport(ctx, store.ID)
	if err != nil {
		t.Fatalf("GetStoreRevenueReport: %v", err)
	}
	if !report.TotalRevenue.IsZero() || !report.TotalCost.IsZero() || !report.TotalProfit.IsZero() {
		t.Fatalf("empty store must report zeros, got %+v", report)
	}

	if _, err := reports.GetStoreRevenueReport(ctx, 9999); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected RecordNotFound for unknown store, got %v", err)
	}
}

func TestAllStoreRevenueReport(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	warehouse := testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "Central"})
	storeA := testutil.MustCreateStore(t, &models.NewStore{Name: "Downtown"})
	storeB := testutil.MustCreateStore(t, &models.NewStore{Name: "Uptown"})
	widget := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	})

	if _, err := workflow.Receive(ctx, warehouse.ID, widget.ID, 100); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if _, err := workflow.Transfer(ctx, warehouse.ID, widget.ID, storeA.ID, 20); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if _, err := workflow.Sell(ctx, storeA.ID, widget.ID, 4); err != nil {
		t.Fatalf("Sell: %v", err)
	}

	rows, err := reports.GetAllStoreRevenueReport(ctx)
	if err != nil {
		t.Fatalf("GetAllStoreRevenueReport: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want one per store", len(rows))
	}

	byId := make(map[int]*reports.StoreRevenueResponse, len(rows))
	for _, row := range rows {
		byId[row.StoreId] = row
	}
	if got := byId[storeA.ID]; got == nil || !got.TotalRevenue.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("storeA revenue row = %+v, want revenue 20", got)
	}
	if got := byId[storeB.ID]; got == nil || !got.TotalRevenue.IsZero() {
		t.Fatalf("storeB revenue row = %+v, want zero revenue", got)
	}
}

func TestExportLocationInventoryExcel(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	warehouse := testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "Central"})
	widget := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	})
	if _, err := workflow.Receive(ctx, warehouse.ID, widget.ID, 10); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	var buf bytes.Buffer
	if err := reports.ExportLocationInventoryExcel(ctx, &buf, models.LocationKindWarehouse, warehouse.ID); err != nil {
		t.Fatalf("ExportLocationInventoryExcel: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	title, err := f.GetCellValue(f.GetSheetName(0), "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if title != "Widget" {
		t.Fatalf("first data row title = %q, want Widget", title)
	}
}
