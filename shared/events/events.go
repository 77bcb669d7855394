package events

import "time"

// Event types
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"

	LoanCreated = "loan.created"
	LoanUpdated = "loan.updated"
	LoanRenewed = "loan.renewed"
	LoanDeleted = "loan.deleted"

	CollectionRecorded = "collection.recorded"
	CollectionAmended  = "collection.amended"
)

// Stream names
const (
	UserEventsStream = "user.events"
	LoanEventsStream = "loan.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// User events
type UserCreatedEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UserUpdatedEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type UserDeletedEvent struct {
	UserID string `json:"userId"`
}

// Loan events
type LoanChangedEvent struct {
	LoanID  string `json:"loanId"`
	SNo     int    `json:"sno"`
	Section string `json:"section"`
	Area    string `json:"area"`
	TAmount int64  `json:"tamount"`
	Paid    int64  `json:"paid"`
}

type LoanDeletedEvent struct {
	LoanID  string `json:"loanId"`
	Section string `json:"section"`
}

// Collection events
type CollectionEvent struct {
	LoanID  string `json:"loanId"`
	Section string `json:"section"`
	Date    string `json:"date"`
	Amount  int64  `json:"amount"`
	Paid    int64  `json:"paid"`
}
