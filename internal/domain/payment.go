package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a member paid.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "efectivo"
	PaymentMethodCard     PaymentMethod = "tarjeta"
	PaymentMethodPSE      PaymentMethod = "pse"
	PaymentMethodTransfer PaymentMethod = "transferencia"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodPSE, PaymentMethodTransfer:
		return true
	}
	return false
}

// Payment records one accepted application of whole installments.
type Payment struct {
	ID                    string
	LoanID                string
	Installments          int
	Amount                decimal.Decimal
	Method                PaymentMethod
	Reference             string
	IdempotencyKey        string
	InstallmentsPaidAfter int
	PaidAt                time.Time
}

// ValidatePayment checks a requested installment count against the loan
// without touching it.
func (l *Loan) ValidatePayment(requested int) error {
	if l.Status != StatusDisbursed {
		return fmt.Errorf("%w: cannot pay a loan in status %s", ErrIllegalTransition, l.Status)
	}
	if requested < 1 {
		return fmt.Errorf("%w: at least one installment is required, got %d", ErrInvalidPaymentCount, requested)
	}
	if requested > l.RemainingInstallments() {
		return fmt.Errorf("%w: %d requested but only %d remain", ErrInvalidPaymentCount, requested, l.RemainingInstallments())
	}
	return nil
}

// ApplyPayment settles the next requested installments in order and returns
// the amount charged. On error the loan is left untouched.
func (l *Loan) ApplyPayment(schedule *Schedule, requested int) (decimal.Decimal, error) {
	if err := l.ValidatePayment(requested); err != nil {
		return decimal.Zero, err
	}
	if schedule.TermMonths() != l.Terms.TermMonths {
		return decimal.Zero, fmt.Errorf("%w: schedule has %d installments, loan term is %d",
			ErrInvalidTerms, schedule.TermMonths(), l.Terms.TermMonths)
	}

	from := l.InstallmentsPaid
	to := from + requested
	amount := schedule.AmountBetween(from, to)

	l.InstallmentsPaid = to
	l.TotalPaid = schedule.PaidThrough(to)
	l.OutstandingBalance = schedule.BalanceAfter(to)
	if to == l.Terms.TermMonths {
		l.Status = StatusPaid
	}

	return amount, nil
}
