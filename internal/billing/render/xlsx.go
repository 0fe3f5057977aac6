package render

import (
	"fmt"
	"io"

	"github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "summary"
	billsSheet   = "bills"
	itemsSheet   = "items"
)

// RunXLSX writes a workbook with the run summary, one row per bill and one
// row per bill item.
func RunXLSX(w io.Writer, run domain.BillingRun, bills []domain.BillDetail) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(billsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return err
	}

	summary := [][]any{
		{"Billing run", run.Reference},
		{"Period", run.Period},
		{"Reference instant", run.ReferenceAt.UTC().Format("2006-01-02T15:04:05Z")},
		{"Bills", run.BillCount},
		{"Orders", run.OrderCount},
		{"Total (cents)", run.TotalCents},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}

	if err := setRow(f, billsSheet, 1, []any{
		"Number", "Subject type", "Subject", "Event", "Drinks (cents)", "Fees (cents)",
		"Previous balance (cents)", "Total (cents)", "Currency", "Status",
	}); err != nil {
		return err
	}
	if err := setRow(f, itemsSheet, 1, []any{
		"Bill number", "Drink", "Quantity", "Unit price (cents)", "Subtotal (cents)",
	}); err != nil {
		return err
	}

	itemRow := 2
	for i, detail := range bills {
		bill := detail.Bill
		if err := setRow(f, billsSheet, i+2, []any{
			bill.Number, string(bill.SubjectType), bill.DisplayName, bill.EventLabel,
			bill.DrinksTotalCents, bill.FeesCents, bill.OldBalanceCents, bill.TotalCents,
			bill.Currency, string(bill.Status),
		}); err != nil {
			return err
		}
		for _, item := range detail.Items {
			if err := setRow(f, itemsSheet, itemRow, []any{
				bill.Number, item.DrinkName, item.Quantity, item.UnitPriceCents, item.SubtotalCents,
			}); err != nil {
				return err
			}
			itemRow++
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	return f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values)
}
