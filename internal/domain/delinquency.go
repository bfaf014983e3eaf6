package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Warning is an advisory flag attached to a delinquency state.
type Warning string

// WarnNextPenalty signals that one more missed month raises the penalty to NextPenalty.
const WarnNextPenalty Warning = "next_penalty"

// DelinquencyInput is everything EvaluateDelinquency looks at.
// Schedule is optional and only feeds OverdueAmount.
type DelinquencyInput struct {
	DisbursedAt          time.Time
	AsOf                 time.Time
	InstallmentsPaid     int
	ExpectedInstallments int
	OutstandingBalance   decimal.Decimal
	Schedule             *Schedule
}

// DelinquencyState is the arrears position of a loan at a given date.
type DelinquencyState struct {
	AsOf            time.Time
	MonthsElapsed   int
	InstallmentsDue int
	MonthsInArrears int
	CurrentPenalty  decimal.Decimal
	NextPenalty     decimal.Decimal
	OverdueAmount   decimal.Decimal
	DaysInArrears   int
	Warnings        []Warning
}

// IsDelinquent reports whether any installment is in arrears.
func (s DelinquencyState) IsDelinquent() bool {
	return s.MonthsInArrears > 0
}

// HasWarning reports whether w was raised.
func (s DelinquencyState) HasWarning(w Warning) bool {
	for _, got := range s.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// DelinquencyInputFor builds the input for a stored loan.
func DelinquencyInputFor(loan *Loan, schedule *Schedule, asOf time.Time) DelinquencyInput {
	in := DelinquencyInput{
		AsOf:                 asOf,
		InstallmentsPaid:     loan.InstallmentsPaid,
		ExpectedInstallments: loan.Terms.TermMonths,
		OutstandingBalance:   loan.OutstandingBalance,
		Schedule:             schedule,
	}
	if loan.DisbursedAt != nil {
		in.DisbursedAt = *loan.DisbursedAt
	}
	return in
}

// EvaluateDelinquency derives months in arrears and the penalty owed at in.AsOf.
// An input without a disbursement date is never in arrears.
func EvaluateDelinquency(in DelinquencyInput, policy Policy) DelinquencyState {
	state := DelinquencyState{
		AsOf:           in.AsOf,
		CurrentPenalty: decimal.Zero,
		OverdueAmount:  decimal.Zero,
	}

	if !in.DisbursedAt.IsZero() {
		state.MonthsElapsed = MonthsBetween(in.DisbursedAt, in.AsOf, policy.MonthBasis)
	}

	// Arrears keep growing past maturity; only the scheduled amount owed stops at the term.
	state.MonthsInArrears = max(0, state.MonthsElapsed-in.InstallmentsPaid)
	state.InstallmentsDue = min(state.MonthsElapsed, in.ExpectedInstallments)

	state.CurrentPenalty = policy.PenaltyStep.Mul(decimal.NewFromInt(int64(state.MonthsInArrears)))
	state.NextPenalty = state.CurrentPenalty.Add(policy.PenaltyStep)

	if in.OutstandingBalance.IsPositive() {
		state.Warnings = append(state.Warnings, WarnNextPenalty)
	}

	if state.MonthsInArrears > 0 {
		oldestUnpaid := dueDate(in.DisbursedAt, in.InstallmentsPaid+1, policy.MonthBasis)
		state.DaysInArrears = DaysBetween(oldestUnpaid, in.AsOf)

		if in.Schedule != nil && state.InstallmentsDue > in.InstallmentsPaid {
			state.OverdueAmount = in.Schedule.AmountBetween(in.InstallmentsPaid, state.InstallmentsDue)
		}
	}

	return state
}

func dueDate(disbursedAt time.Time, k int, basis MonthBasis) time.Time {
	if basis == MonthBasisDays30 {
		return disbursedAt.AddDate(0, 0, 30*k)
	}
	return AddMonths(disbursedAt, k)
}
