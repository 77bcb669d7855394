package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan sections (repayment cadence).
const (
	SectionDaily    = "Daily"
	SectionWeekly   = "Weekly"
	SectionMonthly  = "Monthly"
	SectionInterest = "Interest"
)

// Sections lists every section in display order.
var Sections = []string{SectionDaily, SectionWeekly, SectionMonthly, SectionInterest}

// User roles.
const (
	RoleAdmin = "Admin"
	RoleAgent = "Agent"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(20)"`
	Username     string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;not null"`
	Name         string    `json:"name" gorm:"type:varchar(50);not null"`
	PhoneNo      string    `json:"phoneNo" gorm:"type:varchar(15)"`
	Email        string    `json:"email" gorm:"type:varchar(100)"`
	Role         string    `json:"role" gorm:"type:varchar(20);not null;default:Agent"`
	Areas        []string  `json:"linesHandle" gorm:"column:lines_handle;type:text;serializer:json"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// LoanAccount is one lending cycle for a borrower. TAmount always equals
// GivenAmount + Interest; Paid is the running sum of its ledger entries.
type LoanAccount struct {
	LoanID            string          `json:"loanId" gorm:"column:loan_id;primaryKey;type:varchar(36)"`
	SNo               int             `json:"sno" gorm:"column:sno;not null;uniqueIndex:ux_loans_sno_section"`
	Section           string          `json:"section" gorm:"type:varchar(10);not null;uniqueIndex:ux_loans_sno_section"`
	Area              string          `json:"area" gorm:"type:varchar(30);not null;index"`
	Day               string          `json:"day" gorm:"type:varchar(15)"`
	Name              string          `json:"name" gorm:"type:varchar(50);not null"`
	Address           string          `json:"address" gorm:"type:varchar(100)"`
	PhoneNumber       string          `json:"phoneNumber" gorm:"type:varchar(15)"`
	AlternativeNumber string          `json:"alternativeNumber" gorm:"type:varchar(15)"`
	Work              string          `json:"work" gorm:"type:varchar(30)"`
	Relation          string          `json:"houseWifeOrSonOf" gorm:"column:relation;type:varchar(30)"`
	ReferName         string          `json:"referName" gorm:"type:varchar(30)"`
	ReferNumber       string          `json:"referNumber" gorm:"type:varchar(15)"`
	GivenAmount       int64           `json:"givenAmount" gorm:"not null"`
	Paid              int64           `json:"paid" gorm:"not null;default:0"`
	InterestPercent   decimal.Decimal `json:"interestPercent" gorm:"type:numeric(5,2);not null;default:0"`
	Interest          int64           `json:"interest" gorm:"not null;default:0"`
	TAmount           int64           `json:"tamount" gorm:"column:tamount;not null;default:0"`
	GivenDate         string          `json:"givenDate" gorm:"type:varchar(10);not null;index"`
	LastDate          string          `json:"lastDate" gorm:"type:varchar(10)"`
	AdditionalInfo    string          `json:"additionalInfo" gorm:"type:varchar(255)"`
	VerifiedBy        string          `json:"verifiedBy" gorm:"type:varchar(25)"`
	VerifiedByNo      string          `json:"verifiedByNo" gorm:"type:varchar(15)"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (LoanAccount) TableName() string { return "loans" }

// Pending is the outstanding balance of the loan.
func (l LoanAccount) Pending() int64 { return l.TAmount - l.Paid }

// LedgerEntry is one collection recorded against a loan. (LoanID, Date) is unique.
type LedgerEntry struct {
	ID     uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	LoanID string `json:"loanId" gorm:"column:loan_id;type:varchar(36);not null;uniqueIndex:ux_ledger_loan_date"`
	Date   string `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:ux_ledger_loan_date"`
	Amount int64  `json:"amount" gorm:"not null"`
}

func (LedgerEntry) TableName() string { return "loan_ledger" }

// CashFlowEntry is a free-standing cash-flow note keyed by serial number.
type CashFlowEntry struct {
	ID     string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SNo    int             `json:"sNo" gorm:"column:sno;not null"`
	Amount decimal.Decimal `json:"amount" gorm:"type:numeric(10,2);not null"`
	Date   string          `json:"date" gorm:"type:varchar(10);not null"`
}

func (CashFlowEntry) TableName() string { return "cf_entries" }

// BackupEntry records an amount set aside for a borrower outside the loan book.
type BackupEntry struct {
	ID     string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SNo    int             `json:"sNo" gorm:"column:sno;not null"`
	Name   string          `json:"name" gorm:"type:varchar(50);not null"`
	Amount decimal.Decimal `json:"amount" gorm:"type:numeric(10,2);not null"`
	Area   string          `json:"area" gorm:"type:varchar(30);not null"`
}

func (BackupEntry) TableName() string { return "bkp_entries" }
