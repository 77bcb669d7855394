package cqrs

import (
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/shopspring/decimal"
)

// ---------- User commands ----------

type CreateUserCommand struct {
	Username string
	Password string
	Name     string
	PhoneNo  string
	Email    string
	Role     string
	Areas    []string
}

// UpdateUserCommand is a partial update; nil fields are left unchanged.
type UpdateUserCommand struct {
	UserID   string
	Name     *string
	PhoneNo  *string
	Email    *string
	Role     *string
	Areas    []string
	Password *string
}

type DeleteUserCommand struct {
	UserID string
}

type AddAreaCommand struct {
	AreaName string
}

// ---------- Auth commands ----------

type LoginCommand struct {
	Username string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}

type SendOTPCommand struct {
	Username string
}

type ValidateOTPCommand struct {
	Username string
	OTP      string
}

type UpdatePasswordCommand struct {
	Username    string
	NewPassword string
}

// ---------- Loan commands ----------

// Areas on the loan and collection commands is the caller's scope: nil is
// unrestricted, otherwise the loan's area must be one of them.

type CreateLoanCommand struct {
	SNo               int
	Section           string
	Area              string
	Name              string
	Address           string
	PhoneNumber       string
	AlternativeNumber string
	Work              string
	Relation          string
	ReferName         string
	ReferNumber       string
	GivenAmount       int64
	InterestPercent   decimal.Decimal
	Interest          int64
	GivenDate         string
	LastDate          string
	AdditionalInfo    string
	VerifiedBy        string
	VerifiedByNo      string
	Areas             []string
}

type UpdateLoanCommand struct {
	LoanID string
	Patch  models.LoanPatch
	Areas  []string
}

type RenewLoanCommand struct {
	LoanID string
	Terms  models.RenewTerms
	Areas  []string
}

type DeleteLoanCommand struct {
	LoanID string
	Areas  []string
}

// ---------- Collection commands ----------

type RecordCollectionCommand struct {
	LoanID string
	Date   string
	Amount int64
	Areas  []string
}

// AmendCollectionCommand corrects the entry of LoanID on Date. A nil NewAmount
// keeps the amount; a nil NewDate keeps the date.
type AmendCollectionCommand struct {
	LoanID    string
	Date      string
	NewAmount *int64
	NewDate   *string
	Areas     []string
}

// ---------- Register commands ----------

type SaveCashFlowCommand struct {
	SNo    int
	Amount decimal.Decimal
	Date   string
}

type SaveBackupCommand struct {
	SNo    int
	Name   string
	Amount decimal.Decimal
	Area   string
}

type DeleteBackupCommand struct {
	ID string
}
