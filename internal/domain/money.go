package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MonthBasis selects how elapsed months are counted between two dates.
type MonthBasis string

const (
	// MonthBasisCalendar counts whole calendar months, respecting the day of month.
	MonthBasisCalendar MonthBasis = "calendar"
	// MonthBasisDays30 counts blocks of 30 days.
	MonthBasisDays30 MonthBasis = "days30"
)

// DefaultPenaltyStep is the penalty added per month in arrears (2%).
var DefaultPenaltyStep = decimal.NewFromFloat(0.02)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Policy holds the engine constants a host fixes before first use.
// MinorUnitPlaces must never change for existing loans: schedules are
// recomputed from LoanTerms with it on every call.
type Policy struct {
	MinorUnitPlaces int32
	PenaltyStep     decimal.Decimal
	MonthBasis      MonthBasis
}

// DefaultPolicy rounds to integer currency units and charges 2% per month in arrears.
func DefaultPolicy() Policy {
	return Policy{
		MinorUnitPlaces: 0,
		PenaltyStep:     DefaultPenaltyStep,
		MonthBasis:      MonthBasisCalendar,
	}
}

// Validate checks the policy constants.
func (p Policy) Validate() error {
	if p.MinorUnitPlaces < 0 || p.MinorUnitPlaces > 8 {
		return fmt.Errorf("minor unit places must be between 0 and 8, got %d", p.MinorUnitPlaces)
	}
	if p.PenaltyStep.IsNegative() {
		return fmt.Errorf("penalty step must not be negative, got %s", p.PenaltyStep)
	}
	switch p.MonthBasis {
	case MonthBasisCalendar, MonthBasisDays30:
	default:
		return fmt.Errorf("unknown month basis %q", p.MonthBasis)
	}
	return nil
}

// RoundMinor rounds an amount to the currency minor unit, half away from zero.
func RoundMinor(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// MonthsBetween returns the whole months elapsed from one date to another.
// It never returns a negative value.
func MonthsBetween(from, to time.Time, basis MonthBasis) int {
	if !to.After(from) {
		return 0
	}

	if basis == MonthBasisDays30 {
		return DaysBetween(from, to) / 30
	}

	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()

	months := (ty-fy)*12 + int(tm-fm)
	if td < fd && !isLastDayOfMonth(to) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// DaysBetween returns the whole calendar days from one date to another, clamped at zero.
func DaysBetween(from, to time.Time) int {
	f := utcDate(from)
	t := utcDate(to)
	if !t.After(f) {
		return 0
	}
	return int(t.Sub(f).Hours() / 24)
}

// AddMonths adds calendar months, clamping to the last day of the target month.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}
