package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type column struct {
	header string
	width  float64
}

var customerColumns = []column{
	{"S.No", 8}, {"Loan ID", 36}, {"Section", 12}, {"Area", 12}, {"Day", 12},
	{"Name", 20}, {"Address", 25}, {"Phone", 15}, {"Alt Phone", 15}, {"Work", 15},
	{"H/O / W/O", 18}, {"Refer Name", 18}, {"Refer Number", 18},
	{"Given Amount", 15}, {"Paid", 12}, {"Interest %", 12}, {"Interest", 12},
	{"Total Amount", 15}, {"Pending", 12}, {"Given Date", 15}, {"Last Date", 15},
	{"Additional Info", 25}, {"Verified By", 15}, {"Verified No", 15},
}

var collectionColumns = []column{
	{"S.No", 8}, {"Customer Name", 20}, {"Area", 12}, {"Section", 12},
	{"Paid Amount", 15}, {"Collection Date", 15},
}

// WriteCustomers renders the customer report as an xlsx workbook.
func WriteCustomers(w io.Writer, r CustomerReport) error {
	rows := make([][]any, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		l := row.Loan
		rows = append(rows, []any{
			row.Index, l.LoanID, l.Section, l.Area, l.Day,
			l.Name, l.Address, l.PhoneNumber, l.AlternativeNumber, l.Work,
			l.Relation, l.ReferName, l.ReferNumber,
			l.GivenAmount, l.Paid, l.InterestPercent.InexactFloat64(), l.Interest,
			l.TAmount, row.Pending, l.GivenDate, l.LastDate,
			l.AdditionalInfo, l.VerifiedBy, l.VerifiedByNo,
		})
	}
	t := r.Totals
	rows = append(rows, []any{
		"Total", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil,
		t.GivenAmount, t.Paid, nil, t.Interest, t.TAmount, t.Pending,
	})
	return writeSheet(w, "Customers", customerColumns, rows)
}

// WriteCollections renders the collection report as an xlsx workbook.
func WriteCollections(w io.Writer, r CollectionReport) error {
	rows := make([][]any, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		rows = append(rows, []any{row.SNo, row.Name, row.Area, row.Section, row.Amount, row.Date})
	}
	rows = append(rows, []any{"Total", nil, nil, nil, r.Total})
	return writeSheet(w, "Collections", collectionColumns, rows)
}

// writeSheet writes a single-sheet workbook with a bold header row; the
// last row is treated as the totals row and also set in bold.
func writeSheet(w io.Writer, sheet string, cols []column, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	last := len(rows) + 1
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, last, last, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
