// Package export renders the ledger as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"api_fiado/internal/sales"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetSales     = "Sales"
	SheetPayments  = "Payments"
	SheetCustomers = "Customers"
	SheetReport    = "Report"
)

// Workbook builds a workbook with one sheet per ledger view. The caller
// owns the returned file and must Close it.
func Workbook(snap sales.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSales); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetPayments, SheetCustomers, SheetReport} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	rows := map[string][][]interface{}{
		SheetSales:     salesRows(snap),
		SheetPayments:  paymentRows(snap),
		SheetCustomers: customerRows(snap),
		SheetReport:    reportRows(snap),
	}
	for sheet, data := range rows {
		for i, row := range data {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
			}
		}
	}
	return f, nil
}

// Write renders the workbook for snap straight into w.
func Write(w io.Writer, snap sales.Snapshot) error {
	f, err := Workbook(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func amount(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func salesRows(snap sales.Snapshot) [][]interface{} {
	rows := [][]interface{}{{"ID", "Buyer", "Quantity", "Total", "Paid", "Outstanding", "Date", "Notes"}}
	for _, s := range snap.Sales {
		b := sales.SaleBalance(s, snap.Payments)
		rows = append(rows, []interface{}{
			s.ID, s.BuyerName, s.ItemQuantity, amount(s.TotalAmount),
			amount(b.PaidTotal), amount(b.Outstanding), s.SaleDate.String(), s.Notes,
		})
	}
	return rows
}

func paymentRows(snap sales.Snapshot) [][]interface{} {
	rows := [][]interface{}{{"ID", "Sale ID", "Paid", "Date", "Notes"}}
	for _, p := range snap.Payments {
		rows = append(rows, []interface{}{p.ID, p.SaleID, amount(p.PaidAmount), p.PaymentDate.String(), p.Notes})
	}
	return rows
}

func customerRows(snap sales.Snapshot) [][]interface{} {
	rows := [][]interface{}{{"Customer", "Sales", "Total Sold", "Total Paid", "Outstanding", "Status"}}
	for _, c := range snap.Customers {
		rows = append(rows, []interface{}{
			c.Name, c.SaleCount, amount(c.TotalSold), amount(c.TotalPaid), amount(c.Outstanding), string(c.Status),
		})
	}
	return rows
}

func reportRows(snap sales.Snapshot) [][]interface{} {
	r := snap.Report
	return [][]interface{}{
		{"Total Sold", amount(r.TotalSold)},
		{"Total Collected", amount(r.TotalCollected)},
		{"Total Outstanding", amount(r.TotalOutstanding)},
		{"Customers", r.CustomerCount},
		{"Sales", r.SaleCount},
	}
}
