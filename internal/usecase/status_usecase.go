package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
)

// StatusUseCase reports loan standing and member credit history as of a date.
type StatusUseCase struct {
	loanRepo    LoanRepository
	paymentRepo PaymentRepository
	policy      domain.Policy
}

// NewStatusUseCase creates a new StatusUseCase.
func NewStatusUseCase(loanRepo LoanRepository, paymentRepo PaymentRepository, policy domain.Policy) *StatusUseCase {
	return &StatusUseCase{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		policy:      policy,
	}
}

// LoanStatus is the standing of one loan at AsOf.
type LoanStatus struct {
	Loan        *domain.Loan
	Status      domain.Status
	Delinquency domain.DelinquencyState
	// NextInstallment and NextDueDate are nil once the loan is settled or not yet disbursed.
	NextInstallment *domain.Installment
	NextDueDate     *time.Time
	MaturityDate    *time.Time
}

// Status classifies a loan and evaluates its arrears at asOf.
func (uc *StatusUseCase) Status(ctx context.Context, loanID string, asOf time.Time) (*LoanStatus, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	return uc.evaluate(loan, asOf)
}

func (uc *StatusUseCase) evaluate(loan *domain.Loan, asOf time.Time) (*LoanStatus, error) {
	schedule, err := loan.Schedule(uc.policy)
	if err != nil {
		return nil, err
	}

	status := &LoanStatus{
		Loan:        loan,
		Status:      domain.Classify(loan, asOf, uc.policy),
		Delinquency: domain.EvaluateDelinquency(domain.DelinquencyInputFor(loan, schedule, asOf), uc.policy),
	}

	if loan.DisbursedAt == nil {
		return status, nil
	}

	maturity := schedule.MaturityDate(*loan.DisbursedAt)
	status.MaturityDate = &maturity

	if loan.Status != domain.StatusDisbursed {
		return status, nil
	}

	if next, ok := schedule.Installment(loan.InstallmentsPaid + 1); ok {
		due := schedule.DueDate(*loan.DisbursedAt, next.Number)
		status.NextInstallment = &next
		status.NextDueDate = &due
	}

	return status, nil
}

// CreditHistoryInput selects the loans of a member to summarize.
type CreditHistoryInput struct {
	MemberID string
	AsOf     time.Time
	// Status keeps only loans classified with this status when set.
	Status domain.Status
}

// LoanHistory is one loan of a credit history with its payments.
type LoanHistory struct {
	LoanStatus
	Payments []*domain.Payment
}

// CreditSummary aggregates a member's credit history.
type CreditSummary struct {
	TotalLoans               int
	PendingLoans             int
	ActiveLoans              int
	DelinquentLoans          int
	PaidLoans                int
	ClosedLoans              int
	PaymentsRecorded         int
	TotalPaid                decimal.Decimal
	OutstandingTotal         decimal.Decimal
	OverdueTotal             decimal.Decimal
	OverdueInstallmentsTotal int
	MaxDaysInArrears         int
	AvgDaysInArrears         int
}

// CreditHistory is a member's loans and payments with their summary.
type CreditHistory struct {
	MemberID string
	AsOf     time.Time
	Loans    []*LoanHistory
	Summary  CreditSummary
}

// CreditHistory summarizes every loan and payment of a member as of a date.
func (uc *StatusUseCase) CreditHistory(ctx context.Context, input CreditHistoryInput) (*CreditHistory, error) {
	if err := domain.ValidateMemberID(input.MemberID); err != nil {
		return nil, err
	}

	loans, err := uc.memberLoans(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}

	history := &CreditHistory{
		MemberID: input.MemberID,
		AsOf:     input.AsOf,
		Loans:    make([]*LoanHistory, 0, len(loans)),
		Summary: CreditSummary{
			TotalPaid:        decimal.Zero,
			OutstandingTotal: decimal.Zero,
			OverdueTotal:     decimal.Zero,
		},
	}

	daysInArrears := 0

	for _, loan := range loans {
		status, err := uc.evaluate(loan, input.AsOf)
		if err != nil {
			return nil, err
		}

		if input.Status != "" && status.Status != input.Status {
			continue
		}

		payments, err := uc.loanPayments(ctx, loan.ID)
		if err != nil {
			return nil, err
		}

		history.Loans = append(history.Loans, &LoanHistory{LoanStatus: *status, Payments: payments})

		s := &history.Summary
		s.TotalLoans++
		s.PaymentsRecorded += len(payments)
		s.TotalPaid = s.TotalPaid.Add(loan.TotalPaid)
		s.OutstandingTotal = s.OutstandingTotal.Add(loan.OutstandingBalance)

		switch status.Status {
		case domain.StatusPending, domain.StatusApproved:
			s.PendingLoans++
		case domain.StatusDisbursed:
			s.ActiveLoans++
		case domain.StatusDelinquent:
			s.DelinquentLoans++
			s.OverdueTotal = s.OverdueTotal.Add(status.Delinquency.OverdueAmount)
			s.OverdueInstallmentsTotal += status.Delinquency.MonthsInArrears
			s.MaxDaysInArrears = max(s.MaxDaysInArrears, status.Delinquency.DaysInArrears)
			daysInArrears += status.Delinquency.DaysInArrears
		case domain.StatusPaid:
			s.PaidLoans++
		case domain.StatusRejected, domain.StatusCancelled:
			s.ClosedLoans++
		}
	}

	if history.Summary.DelinquentLoans > 0 {
		history.Summary.AvgDaysInArrears = daysInArrears / history.Summary.DelinquentLoans
	}

	return history, nil
}

func (uc *StatusUseCase) memberLoans(ctx context.Context, memberID string) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	for offset := 0; ; offset += scanPageSize {
		page, err := uc.loanRepo.ListByMember(ctx, memberID, scanPageSize, offset)
		if err != nil {
			return nil, err
		}
		loans = append(loans, page...)
		if len(page) < scanPageSize {
			return loans, nil
		}
	}
}

func (uc *StatusUseCase) loanPayments(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for offset := 0; ; offset += scanPageSize {
		page, err := uc.paymentRepo.ListByLoan(ctx, loanID, scanPageSize, offset)
		if err != nil {
			return nil, err
		}
		payments = append(payments, page...)
		if len(page) < scanPageSize {
			return payments, nil
		}
	}
}
