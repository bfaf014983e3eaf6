package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/metrics"
)

// DelinquencyUseCase classifies the disbursed portfolio.
type DelinquencyUseCase struct {
	loanRepo LoanRepository
	policy   domain.Policy
	metrics  *metrics.Metrics
}

// NewDelinquencyUseCase creates a new DelinquencyUseCase.
func NewDelinquencyUseCase(loanRepo LoanRepository, policy domain.Policy, metrics *metrics.Metrics) *DelinquencyUseCase {
	return &DelinquencyUseCase{
		loanRepo: loanRepo,
		policy:   policy,
		metrics:  metrics,
	}
}

// SweepReport summarizes one pass over the disbursed loans.
type SweepReport struct {
	AsOf             time.Time
	Scanned          int
	Current          int
	Delinquent       int
	DelinquentLoans  []string
	OutstandingTotal decimal.Decimal
	OverdueTotal     decimal.Decimal
	MaxDaysInArrears int
}

// Sweep evaluates every disbursed loan at asOf. It never mutates loans:
// moroso is derived, so the sweep only reports and refreshes portfolio gauges.
func (uc *DelinquencyUseCase) Sweep(ctx context.Context, asOf time.Time) (*SweepReport, error) {
	start := time.Now()

	report := &SweepReport{
		AsOf:             asOf,
		OutstandingTotal: decimal.Zero,
		OverdueTotal:     decimal.Zero,
	}

	for offset := 0; ; offset += scanPageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loans, err := uc.loanRepo.ListByStatus(ctx, domain.StatusDisbursed, scanPageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, loan := range loans {
			if err := uc.evaluate(loan, report); err != nil {
				return nil, err
			}
		}

		if len(loans) < scanPageSize {
			break
		}
	}

	if uc.metrics != nil {
		uc.metrics.PortfolioLoans.WithLabelValues(string(domain.StatusDisbursed)).Set(float64(report.Current))
		uc.metrics.PortfolioLoans.WithLabelValues(string(domain.StatusDelinquent)).Set(float64(report.Delinquent))
		uc.metrics.PortfolioOutstanding.Set(report.OutstandingTotal.InexactFloat64())
		uc.metrics.PortfolioOverdue.Set(report.OverdueTotal.InexactFloat64())
		uc.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}

	return report, nil
}

func (uc *DelinquencyUseCase) evaluate(loan *domain.Loan, report *SweepReport) error {
	schedule, err := loan.Schedule(uc.policy)
	if err != nil {
		return err
	}

	state := domain.EvaluateDelinquency(domain.DelinquencyInputFor(loan, schedule, report.AsOf), uc.policy)

	report.Scanned++
	report.OutstandingTotal = report.OutstandingTotal.Add(loan.OutstandingBalance)

	if !state.IsDelinquent() {
		report.Current++
		return nil
	}

	report.Delinquent++
	report.DelinquentLoans = append(report.DelinquentLoans, loan.ID)
	report.OverdueTotal = report.OverdueTotal.Add(state.OverdueAmount)
	report.MaxDaysInArrears = max(report.MaxDaysInArrears, state.DaysInArrears)

	return nil
}
