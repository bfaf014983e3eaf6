package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/metrics"
)

// ReconciliationUseCase checks stored loan totals against their schedule and payment records
type ReconciliationUseCase struct {
	loanRepo    LoanRepository
	paymentRepo PaymentRepository
	policy      domain.Policy
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	loanRepo LoanRepository,
	paymentRepo PaymentRepository,
	policy domain.Policy,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		policy:      policy,
		metrics:     metrics,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	LoanID               string
	Status               domain.Status
	RecordedInstallments int
	PaymentInstallments  int
	RecordedTotalPaid    decimal.Decimal
	ScheduledTotalPaid   decimal.Decimal
	PaymentsTotal        decimal.Decimal
	RecordedBalance      decimal.Decimal
	ScheduledBalance     decimal.Decimal
	Difference           decimal.Decimal
	Issues               []string
	IsReconciled         bool
	LastChecked          time.Time
}

// ReconcileLoan recomputes a loan's totals from its schedule and payments
func (uc *ReconciliationUseCase) ReconcileLoan(ctx context.Context, loanID string) (*ReconciliationResult, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	return uc.reconcile(ctx, loan)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, loan *domain.Loan) (*ReconciliationResult, error) {
	schedule, err := loan.Schedule(uc.policy)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		LoanID:               loan.ID,
		Status:               loan.Status,
		RecordedInstallments: loan.InstallmentsPaid,
		RecordedTotalPaid:    loan.TotalPaid,
		ScheduledTotalPaid:   schedule.PaidThrough(loan.InstallmentsPaid),
		PaymentsTotal:        decimal.Zero,
		RecordedBalance:      loan.OutstandingBalance,
		ScheduledBalance:     decimal.Zero,
		LastChecked:          time.Now().UTC(),
	}

	if loan.Status == domain.StatusDisbursed || loan.Status == domain.StatusPaid {
		result.ScheduledBalance = schedule.BalanceAfter(loan.InstallmentsPaid)
	}

	for offset := 0; ; offset += scanPageSize {
		payments, err := uc.paymentRepo.ListByLoan(ctx, loan.ID, scanPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, p := range payments {
			result.PaymentInstallments += p.Installments
			result.PaymentsTotal = result.PaymentsTotal.Add(p.Amount)
		}
		if len(payments) < scanPageSize {
			break
		}
	}

	if result.PaymentInstallments != result.RecordedInstallments {
		result.Issues = append(result.Issues, fmt.Sprintf(
			"installments paid %d but payments cover %d", result.RecordedInstallments, result.PaymentInstallments))
	}
	if !result.RecordedTotalPaid.Equal(result.ScheduledTotalPaid) {
		result.Issues = append(result.Issues, fmt.Sprintf(
			"total paid %s but schedule requires %s", result.RecordedTotalPaid, result.ScheduledTotalPaid))
	}
	if !result.PaymentsTotal.Equal(result.RecordedTotalPaid) {
		result.Issues = append(result.Issues, fmt.Sprintf(
			"total paid %s but payments sum to %s", result.RecordedTotalPaid, result.PaymentsTotal))
	}
	if !result.RecordedBalance.Equal(result.ScheduledBalance) {
		result.Issues = append(result.Issues, fmt.Sprintf(
			"outstanding balance %s but schedule leaves %s", result.RecordedBalance, result.ScheduledBalance))
	}
	if paidOff := loan.InstallmentsPaid == loan.Terms.TermMonths; paidOff != (loan.Status == domain.StatusPaid) {
		result.Issues = append(result.Issues, fmt.Sprintf(
			"status %s with %d of %d installments paid", loan.Status, loan.InstallmentsPaid, loan.Terms.TermMonths))
	}

	result.Difference = result.RecordedBalance.Sub(result.ScheduledBalance)
	result.IsReconciled = len(result.Issues) == 0

	return result, nil
}

// ReconcileAllLoans reconciles all loans in the system
func (uc *ReconciliationUseCase) ReconcileAllLoans(ctx context.Context) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	for offset := 0; ; offset += scanPageSize {
		loans, err := uc.loanRepo.List(ctx, scanPageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, loan := range loans {
			result, err := uc.reconcile(ctx, loan)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile loan %s: %w", loan.ID, err)
			}
			results = append(results, result)
		}

		if len(loans) < scanPageSize {
			return results, nil
		}
	}
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalLoans      int
	ReconciledLoans int
	Discrepancies   []*ReconciliationResult
	CheckedAt       time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllLoans(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalLoans:    len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledLoans++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationDiff.Set(float64(len(report.Discrepancies)))
	}

	return report, nil
}
