package cqrs

// ---------- User queries ----------

type GetUserQuery struct {
	UserID string
}

// ---------- Loan queries ----------

// ListLoansQuery lists loans ordered by sno. Empty Section means every
// section; a non-nil Areas restricts the result to those areas.
type ListLoansQuery struct {
	Section string
	Areas   []string
}

// SummaryQuery aggregates loans per section. Empty Section means all; a
// non-nil Areas only counts loans in those areas.
type SummaryQuery struct {
	Section string
	Areas   []string
}

// ---------- Collection queries ----------

// LoanLedgerQuery reads one loan with its entries. A non-nil Areas limits
// access to loans in those areas.
type LoanLedgerQuery struct {
	LoanID string
	Areas  []string
}

// ---------- Report queries ----------

// Report kinds accepted by DownloadQuery.DataType.
const (
	ReportCustomerData = "Customer Data"
	ReportCollection   = "Collection"
	ReportFullData     = "Full Data"
)

// DownloadQuery selects the rows of an exported report. Day only applies when
// Section is Weekly. FromDate/ToDate are required inclusive YYYY-MM-DD bounds.
type DownloadQuery struct {
	DataType string
	Section  string
	Areas    []string
	Day      string
	FromDate string
	ToDate   string
}
