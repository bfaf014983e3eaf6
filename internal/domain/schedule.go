package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// compoundPrecision bounds the digits kept while compounding (1+r)^n.
const compoundPrecision = 24

var one = decimal.NewFromInt(1)

// Installment is one scheduled period of a loan (a cuota).
type Installment struct {
	Number   int             `json:"number"`
	Payment  decimal.Decimal `json:"payment"`
	Interest decimal.Decimal `json:"interest"`
	Capital  decimal.Decimal `json:"capital"`
	Balance  decimal.Decimal `json:"balance"`
}

// Schedule is the ordered constant-installment repayment plan of a loan.
// It is derived from LoanTerms and never stored.
type Schedule struct {
	Principal    decimal.Decimal `json:"principal"`
	MonthlyRate  decimal.Decimal `json:"monthly_rate"`
	Places       int32           `json:"places"`
	Installments []Installment   `json:"installments"`
}

// NewSchedule validates terms and builds their schedule under policy.
func NewSchedule(terms LoanTerms, policy Policy) (*Schedule, error) {
	if err := ValidateTerms(terms); err != nil {
		return nil, err
	}

	rate, err := MonthlyRate(terms.AnnualRate)
	if err != nil {
		return nil, err
	}

	return GenerateSchedule(terms.Principal, rate, terms.TermMonths, policy.MinorUnitPlaces)
}

// GenerateSchedule computes a French amortization schedule.
//
// The fixed payment A = P·r / (1 − (1+r)^−n) is rounded to the minor unit, as
// is each period's interest. Capital is A minus interest, never more than the
// remaining balance. The last installment takes the whole remaining balance as
// capital so the final balance is exactly zero.
func GenerateSchedule(principal, monthlyRate decimal.Decimal, termMonths int, places int32) (*Schedule, error) {
	if !principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive, got %s", ErrInvalidTerms, principal)
	}
	if !principal.Equal(RoundMinor(principal, places)) {
		return nil, fmt.Errorf("%w: principal %s is finer than the currency minor unit", ErrInvalidTerms, principal)
	}
	if termMonths < 1 {
		return nil, fmt.Errorf("%w: term must be at least one month, got %d", ErrInvalidTerms, termMonths)
	}
	if monthlyRate.IsNegative() {
		return nil, fmt.Errorf("%w: monthly rate %s is negative", ErrInvalidTerms, monthlyRate)
	}

	payment := fixedPayment(principal, monthlyRate, termMonths, places)

	installments := make([]Installment, 0, termMonths)
	balance := principal

	for n := 1; n <= termMonths; n++ {
		interest := RoundMinor(balance.Mul(monthlyRate), places)

		capital := payment.Sub(interest)
		if n == termMonths || capital.GreaterThan(balance) {
			capital = balance
		}

		balance = balance.Sub(capital)

		installments = append(installments, Installment{
			Number:   n,
			Payment:  capital.Add(interest),
			Interest: interest,
			Capital:  capital,
			Balance:  balance,
		})
	}

	return &Schedule{
		Principal:    principal,
		MonthlyRate:  monthlyRate,
		Places:       places,
		Installments: installments,
	}, nil
}

func fixedPayment(principal, rate decimal.Decimal, n int, places int32) decimal.Decimal {
	if rate.IsZero() {
		return RoundMinor(principal.Div(decimal.NewFromInt(int64(n))), places)
	}

	// P·r·(1+r)^n / ((1+r)^n − 1) is the same payment without a negative power.
	factor := compound(rate, n)
	return RoundMinor(principal.Mul(rate).Mul(factor).Div(factor.Sub(one)), places)
}

func compound(rate decimal.Decimal, n int) decimal.Decimal {
	base := one.Add(rate)
	factor := one
	for i := 0; i < n; i++ {
		factor = factor.Mul(base).Round(compoundPrecision)
	}
	return factor
}

// TermMonths returns the number of installments.
func (s *Schedule) TermMonths() int {
	return len(s.Installments)
}

// FixedPayment returns the regular installment amount.
func (s *Schedule) FixedPayment() decimal.Decimal {
	if len(s.Installments) == 0 {
		return decimal.Zero
	}
	return s.Installments[0].Payment
}

// TotalPayment returns the sum of all installment payments.
func (s *Schedule) TotalPayment() decimal.Decimal {
	return s.PaidThrough(len(s.Installments))
}

// TotalInterest returns the interest charged over the whole term.
func (s *Schedule) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range s.Installments {
		total = total.Add(inst.Interest)
	}
	return total
}

// PaidThrough returns the sum of the payments of installments 1..k.
func (s *Schedule) PaidThrough(k int) decimal.Decimal {
	k = s.clamp(k)
	total := decimal.Zero
	for _, inst := range s.Installments[:k] {
		total = total.Add(inst.Payment)
	}
	return total
}

// AmountBetween returns the sum of the payments of installments from+1..to.
func (s *Schedule) AmountBetween(from, to int) decimal.Decimal {
	return s.PaidThrough(to).Sub(s.PaidThrough(from))
}

// BalanceAfter returns the outstanding principal once k installments are paid.
func (s *Schedule) BalanceAfter(k int) decimal.Decimal {
	k = s.clamp(k)
	if k == 0 {
		return s.Principal
	}
	return s.Installments[k-1].Balance
}

// Installment returns installment number k (1-based).
func (s *Schedule) Installment(k int) (Installment, bool) {
	if k < 1 || k > len(s.Installments) {
		return Installment{}, false
	}
	return s.Installments[k-1], true
}

// DueDate returns the due date of installment k, k months after disbursement.
func (s *Schedule) DueDate(disbursedAt time.Time, k int) time.Time {
	return AddMonths(disbursedAt, k)
}

// MaturityDate returns the due date of the last installment.
func (s *Schedule) MaturityDate(disbursedAt time.Time) time.Time {
	return s.DueDate(disbursedAt, len(s.Installments))
}

func (s *Schedule) clamp(k int) int {
	if k < 0 {
		return 0
	}
	if k > len(s.Installments) {
		return len(s.Installments)
	}
	return k
}
