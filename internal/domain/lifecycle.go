package domain

import (
	"fmt"
	"time"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusDisbursed, StatusCancelled},
	StatusDisbursed: {StatusPaid},
}

// IsValid reports whether s may be stored on a loan.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusDisbursed, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusPaid || s == StatusCancelled
}

// CanTransition reports whether from → to is an allowed lifecycle edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition records an external lifecycle decision. Reaching pagado is
// only possible by paying, so it is rejected here.
func (l *Loan) Transition(to Status, at time.Time) error {
	if to == StatusPaid || !CanTransition(l.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, l.Status, to)
	}

	if to == StatusDisbursed {
		disbursedAt := at
		l.DisbursedAt = &disbursedAt
		l.OutstandingBalance = l.Terms.Principal
	}

	l.Status = to
	l.UpdatedAt = at
	return nil
}

// Classify returns the status to report for a loan at asOf: moroso for a
// disbursed loan with installments in arrears, the stored status otherwise.
func Classify(loan *Loan, asOf time.Time, policy Policy) Status {
	if loan.Status != StatusDisbursed || loan.DisbursedAt == nil {
		return loan.Status
	}

	state := EvaluateDelinquency(DelinquencyInputFor(loan, nil, asOf), policy)
	if state.MonthsInArrears > 0 {
		return StatusDelinquent
	}
	return loan.Status
}
