package models

import "github.com/shopspring/decimal"

// LoanPatch is a partial update of a loan. A nil field keeps the stored value;
// a non-nil field overwrites it (an empty string clears an optional text field).
// Paid, TAmount and Day are never patched directly: TAmount and Day are
// derived, Paid belongs to the collection ledger.
type LoanPatch struct {
	SNo               *int
	Section           *string
	Area              *string
	Name              *string
	Address           *string
	PhoneNumber       *string
	AlternativeNumber *string
	Work              *string
	Relation          *string
	ReferName         *string
	ReferNumber       *string
	GivenAmount       *int64
	InterestPercent   *decimal.Decimal
	Interest          *int64
	GivenDate         *string
	LastDate          *string
	AdditionalInfo    *string
	VerifiedBy        *string
	VerifiedByNo      *string
}

// ApplyTo overwrites the fields of l that are present in p.
func (p LoanPatch) ApplyTo(l *LoanAccount) {
	setInt(&l.SNo, p.SNo)
	setString(&l.Section, p.Section)
	setString(&l.Area, p.Area)
	setString(&l.Name, p.Name)
	setString(&l.Address, p.Address)
	setString(&l.PhoneNumber, p.PhoneNumber)
	setString(&l.AlternativeNumber, p.AlternativeNumber)
	setString(&l.Work, p.Work)
	setString(&l.Relation, p.Relation)
	setString(&l.ReferName, p.ReferName)
	setString(&l.ReferNumber, p.ReferNumber)
	setString(&l.GivenDate, p.GivenDate)
	setString(&l.LastDate, p.LastDate)
	setString(&l.AdditionalInfo, p.AdditionalInfo)
	setString(&l.VerifiedBy, p.VerifiedBy)
	setString(&l.VerifiedByNo, p.VerifiedByNo)
	if p.GivenAmount != nil {
		l.GivenAmount = *p.GivenAmount
	}
	if p.InterestPercent != nil {
		l.InterestPercent = *p.InterestPercent
	}
	if p.Interest != nil {
		l.Interest = *p.Interest
	}
}

// RenewTerms are the terms a renewal may replace. Nil fields keep the
// current value.
type RenewTerms struct {
	Section         *string
	GivenAmount     *int64
	InterestPercent *decimal.Decimal
	Interest        *int64
	GivenDate       *string
	LastDate        *string
}

// Patch converts the renewal terms into the equivalent LoanPatch.
func (t RenewTerms) Patch() LoanPatch {
	return LoanPatch{
		Section:         t.Section,
		GivenAmount:     t.GivenAmount,
		InterestPercent: t.InterestPercent,
		Interest:        t.Interest,
		GivenDate:       t.GivenDate,
		LastDate:        t.LastDate,
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
