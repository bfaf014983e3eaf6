package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !dec(want).Equal(got) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func mustSchedule(t *testing.T, principal, annualRate string, term int) *Schedule {
	t.Helper()

	s, err := NewSchedule(LoanTerms{Principal: dec(principal), AnnualRate: dec(annualRate), TermMonths: term}, DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

// disbursedLoan returns a loan for 5,000,000 at 18% over 24 months disbursed on disbursedAt.
func disbursedLoan(t *testing.T, disbursedAt time.Time) *Loan {
	t.Helper()

	loan, err := NewLoan("loan-1", "member-1", "vehiculo", LoanTerms{
		Principal:  dec("5000000"),
		AnnualRate: dec("18"),
		TermMonths: 24,
	}, disbursedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := loan.Transition(StatusApproved, disbursedAt); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := loan.Transition(StatusDisbursed, disbursedAt); err != nil {
		t.Fatalf("disburse: %v", err)
	}
	return loan
}

func mustApply(t *testing.T, loan *Loan, schedule *Schedule, n int) decimal.Decimal {
	t.Helper()

	amount, err := loan.ApplyPayment(schedule, n)
	if err != nil {
		t.Fatalf("apply %d installments: %v", n, err)
	}
	return amount
}

func loanSchedule(t *testing.T, loan *Loan) *Schedule {
	t.Helper()

	s, err := loan.Schedule(DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}
