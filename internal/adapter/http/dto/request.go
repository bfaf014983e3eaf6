package dto

import (
	"time"

	"github.com/iho/goloan/internal/usecase"
	"github.com/shopspring/decimal"
)

// SubmitLoanRequest represents a loan application.
type SubmitLoanRequest struct {
	MemberID    string          `json:"member_id"`
	Description string          `json:"description"`
	Principal   decimal.Decimal `json:"principal"`
	AnnualRate  decimal.Decimal `json:"annual_rate"`
	TermMonths  int             `json:"term_months"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitLoanRequest) ToUseCaseInput() usecase.SubmitLoanInput {
	return usecase.SubmitLoanInput{
		MemberID:    r.MemberID,
		Description: r.Description,
		Principal:   r.Principal,
		AnnualRate:  r.AnnualRate,
		TermMonths:  r.TermMonths,
	}
}

// OriginateLoanRequest represents an application approved elsewhere that is
// disbursed on arrival.
type OriginateLoanRequest struct {
	SubmitLoanRequest

	DisbursedAt *time.Time `json:"disbursed_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *OriginateLoanRequest) ToUseCaseInput() usecase.OriginateLoanInput {
	return usecase.OriginateLoanInput{
		SubmitLoanInput: r.SubmitLoanRequest.ToUseCaseInput(),
		DisbursedAt:     r.DisbursedAt,
	}
}

// SimulateRequest represents a request for a repayment plan.
type SimulateRequest struct {
	Principal  decimal.Decimal `json:"principal"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	TermMonths int             `json:"term_months"`
}

// ToUseCaseInput converts to use case input.
func (r *SimulateRequest) ToUseCaseInput() usecase.SimulateInput {
	return usecase.SimulateInput{
		Principal:  r.Principal,
		AnnualRate: r.AnnualRate,
		TermMonths: r.TermMonths,
	}
}

// DisburseRequest optionally backdates a disbursement.
type DisburseRequest struct {
	DisbursedAt *time.Time `json:"disbursed_at,omitempty"`
}

// PaymentRequest represents a payment of whole installments.
type PaymentRequest struct {
	Installments   int        `json:"installments"`
	Method         string     `json:"method,omitempty"`
	Reference      string     `json:"reference,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
}

// ToUseCaseInput converts to use case input. A non-empty headerKey takes
// precedence over the key in the body.
func (r *PaymentRequest) ToUseCaseInput(loanID, headerKey string) usecase.ApplyPaymentInput {
	key := r.IdempotencyKey
	if headerKey != "" {
		key = headerKey
	}

	return usecase.ApplyPaymentInput{
		LoanID:         loanID,
		Installments:   r.Installments,
		Method:         r.Method,
		Reference:      r.Reference,
		IdempotencyKey: key,
		PaidAt:         r.PaidAt,
	}
}
