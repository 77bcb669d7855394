package models

import "time"

// UserView is the read projection of a user. It never carries the password hash.
type UserView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	PhoneNo   string    `json:"phoneNo"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Areas     []string  `json:"linesHandle"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToUserView(u *User) *UserView {
	areas := u.Areas
	if areas == nil {
		areas = []string{}
	}
	return &UserView{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		PhoneNo:   u.PhoneNo,
		Email:     u.Email,
		Role:      u.Role,
		Areas:     areas,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// SectionSummary aggregates the loans of one section (or all of them for the
// total row). BalanceAmount is TotalAmount - PaidAmount.
type SectionSummary struct {
	Section       string `json:"section"`
	Loans         int64  `json:"loans"`
	TotalAmount   int64  `json:"totalAmount"`
	PaidAmount    int64  `json:"paidAmount"`
	BalanceAmount int64  `json:"balanceAmount"`
}

type LoanSummary struct {
	Sections []SectionSummary `json:"sections"`
	Total    SectionSummary   `json:"total"`
}

// CollectionResult is returned by record and amend: the entry as stored and
// the parent loan's paid total after the write.
type CollectionResult struct {
	Entry       LedgerEntry `json:"data"`
	UpdatedPaid int64       `json:"updatedPaid"`
}

// LoanLedger is a loan together with its collection history, ascending by date.
type LoanLedger struct {
	Loan    *LoanAccount  `json:"user"`
	Entries []LedgerEntry `json:"data"`
}

// AuthResult is what a successful login or refresh returns.
type AuthResult struct {
	Token string    `json:"token"`
	User  *UserView `json:"user"`
}
