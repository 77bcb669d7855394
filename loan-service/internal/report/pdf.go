package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// WriteNarratives renders one page per loan: the borrower profile followed
// by the collections dated within [from, to].
func WriteNarratives(w io.Writer, ns []Narrative, from, to string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetTitle("Full Data", false)

	if len(ns) == 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, "No loans match the selected filters", "", 1, "L", false, 0, "")
	}
	for _, n := range ns {
		writeNarrative(pdf, n, from, to)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func writeNarrative(pdf *fpdf.Fpdf, n Narrative, from, to string) {
	l := n.Loan
	pdf.AddPage()

	pdf.SetFont("Helvetica", "BU", 14)
	pdf.CellFormat(0, 9, "Customer: "+l.Name, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	lines := [][2]string{
		{"S.No", fmt.Sprintf("%d (%s)", l.SNo, l.Section)},
		{"Area", l.Area},
		{"Phone", l.PhoneNumber},
		{"Address", l.Address},
		{"Given Date", l.GivenDate},
		{"Loan Amount", fmt.Sprintf("%d", l.GivenAmount)},
		{"Interest", fmt.Sprintf("%d (%s%%)", l.Interest, l.InterestPercent.String())},
		{"Total", fmt.Sprintf("%d", l.TAmount)},
		{"Paid", fmt.Sprintf("%d", l.Paid)},
		{"Pending", fmt.Sprintf("%d", l.Pending())},
	}
	for _, kv := range lines {
		pdf.CellFormat(35, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, kv[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Collections %s to %s:", from, to), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if len(n.Entries) == 0 {
		pdf.CellFormat(0, 6, "No collection records", "", 1, "L", false, 0, "")
		return
	}
	for _, e := range n.Entries {
		pdf.CellFormat(35, 6, e.Date, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Rs. %d", e.Amount), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(35, 6, "Collected", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Rs. %d", n.Collected), "T", 1, "L", false, 0, "")
}
