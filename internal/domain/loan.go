package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a loan.
type Status string

const (
	StatusPending   Status = "pendiente"
	StatusApproved  Status = "aprobado"
	StatusRejected  Status = "rechazado"
	StatusDisbursed Status = "desembolsado"
	StatusPaid      Status = "pagado"
	StatusCancelled Status = "cancelado"

	// StatusDelinquent is derived by Classify and never stored.
	StatusDelinquent Status = "moroso"
)

// LoanTerms are the contractual terms of a loan. They never change after disbursement.
type LoanTerms struct {
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal
	TermMonths int
}

// Loan is a credit granted to a member and repaid in fixed installments.
type Loan struct {
	ID                 string
	MemberID           string
	Description        string
	Terms              LoanTerms
	Status             Status
	DisbursedAt        *time.Time
	InstallmentsPaid   int
	TotalPaid          decimal.Decimal
	OutstandingBalance decimal.Decimal
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewLoan builds a pending loan after validating its terms.
func NewLoan(id, memberID, description string, terms LoanTerms, now time.Time) (*Loan, error) {
	if err := ValidateTerms(terms); err != nil {
		return nil, err
	}

	return &Loan{
		ID:                 id,
		MemberID:           memberID,
		Description:        description,
		Terms:              terms,
		Status:             StatusPending,
		TotalPaid:          decimal.Zero,
		OutstandingBalance: decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// RemainingInstallments returns how many installments are still unpaid.
func (l *Loan) RemainingInstallments() int {
	return l.Terms.TermMonths - l.InstallmentsPaid
}

// Schedule recomputes the loan's repayment schedule.
func (l *Loan) Schedule(policy Policy) (*Schedule, error) {
	return NewSchedule(l.Terms, policy)
}
