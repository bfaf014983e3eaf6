package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MonthlyRate converts an annual nominal rate in percent (18 means 18%)
// to the monthly fraction used by the schedule formula.
func MonthlyRate(annualPercent decimal.Decimal) (decimal.Decimal, error) {
	if annualPercent.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: annual rate %s is negative", ErrInvalidRate, annualPercent)
	}
	return annualPercent.Div(hundred).Div(twelve), nil
}
