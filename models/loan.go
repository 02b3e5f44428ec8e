package models

import "time"

// Loan statuses considered when building recommendation signals.
const (
	LoanStatusActive   = "active"
	LoanStatusReturned = "returned"
)

// RelevantLoanStatuses are the statuses that count as borrowing signal, both
// for personalized recommendations and for global model training.
var RelevantLoanStatuses = []string{LoanStatusActive, LoanStatusReturned}

// Loan is a borrowing record owned by the loan service. BookID is the hex
// form of the catalog ObjectID; loan documents from the wild occasionally
// carry malformed values, which readers must tolerate.
type Loan struct {
	UserID   string    `bson:"userId" json:"userId"`
	BookID   string    `bson:"bookId" json:"bookId"`
	Status   string    `bson:"status" json:"status"`
	LoanDate time.Time `bson:"loanDate" json:"loanDate"`
}

// BookLoanCount is one row of the training aggregation: how many relevant
// loans a book has across all users.
type BookLoanCount struct {
	BookID string `bson:"_id"`
	Count  int64  `bson:"count"`
}
