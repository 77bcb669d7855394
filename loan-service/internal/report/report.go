// Package report turns loans and ledger entries into the rows of the
// downloadable reports and renders them as Excel or PDF. Projections are pure:
// the same input rows always produce the same report.
package report

import (
	"sort"

	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
)

// Totals sums the money columns of a customer report.
type Totals struct {
	GivenAmount int64
	Interest    int64
	TAmount     int64
	Paid        int64
	Pending     int64
}

type CustomerRow struct {
	Index   int
	Loan    models.LoanAccount
	Pending int64
}

type CustomerReport struct {
	Rows   []CustomerRow
	Totals Totals
}

// Customers lists the loans in the given order with their pending balance
// and a totals row.
func Customers(loans []models.LoanAccount) CustomerReport {
	r := CustomerReport{Rows: make([]CustomerRow, 0, len(loans))}
	for i, l := range loans {
		pending := l.Pending()
		r.Rows = append(r.Rows, CustomerRow{Index: i + 1, Loan: l, Pending: pending})
		r.Totals.GivenAmount += l.GivenAmount
		r.Totals.Interest += l.Interest
		r.Totals.TAmount += l.TAmount
		r.Totals.Paid += l.Paid
		r.Totals.Pending += pending
	}
	return r
}

type CollectionRow struct {
	SNo     int
	Name    string
	Area    string
	Section string
	Amount  int64
	Date    string
}

type CollectionReport struct {
	Rows  []CollectionRow
	Total int64
}

// Collections joins every entry to its loan. Entries of loans not in loans
// are skipped. Rows are ordered by date, then section, then sno.
func Collections(loans []models.LoanAccount, entries []models.LedgerEntry) CollectionReport {
	byID := indexLoans(loans)
	r := CollectionReport{Rows: make([]CollectionRow, 0, len(entries))}
	for _, e := range entries {
		l, ok := byID[e.LoanID]
		if !ok {
			continue
		}
		r.Rows = append(r.Rows, CollectionRow{
			SNo:     l.SNo,
			Name:    l.Name,
			Area:    l.Area,
			Section: l.Section,
			Amount:  e.Amount,
			Date:    e.Date,
		})
		r.Total += e.Amount
	}
	sort.SliceStable(r.Rows, func(i, j int) bool {
		a, b := r.Rows[i], r.Rows[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.SNo < b.SNo
	})
	return r
}

// Narrative is one loan's profile with its collection history.
type Narrative struct {
	Loan      models.LoanAccount
	Entries   []models.LedgerEntry
	Collected int64
}

// Narratives pairs each loan, in the given order, with its entries sorted
// by date. Loans without entries are kept.
func Narratives(loans []models.LoanAccount, entries []models.LedgerEntry) []Narrative {
	byLoan := make(map[string][]models.LedgerEntry, len(loans))
	for _, e := range entries {
		byLoan[e.LoanID] = append(byLoan[e.LoanID], e)
	}
	out := make([]Narrative, 0, len(loans))
	for _, l := range loans {
		es := byLoan[l.LoanID]
		sort.SliceStable(es, func(i, j int) bool { return es[i].Date < es[j].Date })
		n := Narrative{Loan: l, Entries: es}
		for _, e := range es {
			n.Collected += e.Amount
		}
		out = append(out, n)
	}
	return out
}

func indexLoans(loans []models.LoanAccount) map[string]*models.LoanAccount {
	byID := make(map[string]*models.LoanAccount, len(loans))
	for i := range loans {
		byID[loans[i].LoanID] = &loans[i]
	}
	return byID
}
