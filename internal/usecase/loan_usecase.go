package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/metrics"
)

// LoanUseCase handles loan origination and lifecycle decisions.
type LoanUseCase struct {
	txManager  TransactionManager
	loanRepo   LoanRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	retrier    Retrier
	policy     domain.Policy
	metrics    *metrics.Metrics
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	policy domain.Policy,
	metrics *metrics.Metrics,
) *LoanUseCase {
	return &LoanUseCase{
		txManager:  txManager,
		loanRepo:   loanRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		retrier:    retrier,
		policy:     policy,
		metrics:    metrics,
	}
}

// SubmitLoanInput represents a loan application.
type SubmitLoanInput struct {
	MemberID    string
	Description string
	Principal   decimal.Decimal
	AnnualRate  decimal.Decimal
	TermMonths  int
}

func (in SubmitLoanInput) terms() domain.LoanTerms {
	return domain.LoanTerms{
		Principal:  in.Principal,
		AnnualRate: in.AnnualRate,
		TermMonths: in.TermMonths,
	}
}

// OriginateLoanInput represents an application approved outside this service.
type OriginateLoanInput struct {
	SubmitLoanInput

	// DisbursedAt backdates the disbursement; now when nil.
	DisbursedAt *time.Time
}

// Submit records a new pending loan application.
func (uc *LoanUseCase) Submit(ctx context.Context, input SubmitLoanInput) (*domain.Loan, error) {
	loan, err := uc.newLoan(input, time.Now().UTC())
	if err != nil {
		uc.recordError("submit", err)
		return nil, err
	}

	err = uc.create(ctx, loan, domain.AuditActionLoanSubmit)
	if err != nil {
		uc.recordError("submit", err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansSubmitted.Inc()
		uc.metrics.LoanPrincipal.Observe(loan.Terms.Principal.InexactFloat64())
	}

	return loan, nil
}

// Originate records an approved application and disburses it in one step.
func (uc *LoanUseCase) Originate(ctx context.Context, input OriginateLoanInput) (*domain.Loan, error) {
	now := time.Now().UTC()

	loan, err := uc.newLoan(input.SubmitLoanInput, now)
	if err != nil {
		uc.recordError("originate", err)
		return nil, err
	}

	disbursedAt := now
	if input.DisbursedAt != nil {
		disbursedAt = input.DisbursedAt.UTC()
	}

	if err := loan.Transition(domain.StatusApproved, now); err != nil {
		return nil, err
	}
	if err := loan.Transition(domain.StatusDisbursed, disbursedAt); err != nil {
		return nil, err
	}
	loan.UpdatedAt = now

	if err := uc.create(ctx, loan, domain.AuditActionLoanOriginate); err != nil {
		uc.recordError("originate", err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansOriginated.Inc()
		uc.metrics.LoanPrincipal.Observe(loan.Terms.Principal.InexactFloat64())
	}

	return loan, nil
}

func (uc *LoanUseCase) newLoan(input SubmitLoanInput, now time.Time) (*domain.Loan, error) {
	if err := domain.ValidateMemberID(input.MemberID); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	terms := input.terms()

	// A schedule must exist for the terms under the configured minor unit.
	if _, err := domain.NewSchedule(terms, uc.policy); err != nil {
		return nil, err
	}

	return domain.NewLoan(uc.idGen.Generate(), input.MemberID, input.Description, terms, now)
}

func (uc *LoanUseCase) create(ctx context.Context, loan *domain.Loan, action domain.AuditAction) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.loanRepo.Create(txCtx, tx, loan); err != nil {
		return err
	}

	if err := uc.outboxRepo.Create(txCtx, tx, loanStatusEvent(uc.idGen, loan, "", loan.CreatedAt)); err != nil {
		return err
	}

	if uc.auditRepo != nil {
		auditLog := newAuditLog(ctx, uc.idGen, action, domain.ResourceTypeLoan, loan.ID, nil, loanState(loan), loan.CreatedAt)
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return err
		}
	}

	return tx.Commit(txCtx)
}

// Approve records an external approval decision.
func (uc *LoanUseCase) Approve(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.transition(ctx, id, domain.StatusApproved, nil, domain.AuditActionLoanApprove)
}

// Reject records an external rejection decision.
func (uc *LoanUseCase) Reject(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.transition(ctx, id, domain.StatusRejected, nil, domain.AuditActionLoanReject)
}

// Disburse marks an approved loan as disbursed at the given time, or now when nil.
func (uc *LoanUseCase) Disburse(ctx context.Context, id string, at *time.Time) (*domain.Loan, error) {
	return uc.transition(ctx, id, domain.StatusDisbursed, at, domain.AuditActionLoanDisburse)
}

// Cancel withdraws a loan that has not been disbursed.
func (uc *LoanUseCase) Cancel(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.transition(ctx, id, domain.StatusCancelled, nil, domain.AuditActionLoanCancel)
}

func (uc *LoanUseCase) transition(
	ctx context.Context,
	id string,
	to domain.Status,
	at *time.Time,
	action domain.AuditAction,
) (*domain.Loan, error) {
	var result *domain.Loan

	err := retry(ctx, uc.retrier, func() error {
		loan, err := uc.transitionTx(ctx, id, to, at, action)
		if err != nil {
			return err
		}
		result = loan
		return nil
	})
	if err != nil {
		uc.recordError(string(action), err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoanTransitions.WithLabelValues(string(to)).Inc()
	}

	return result, nil
}

func (uc *LoanUseCase) transitionTx(
	ctx context.Context,
	id string,
	to domain.Status,
	at *time.Time,
	action domain.AuditAction,
) (*domain.Loan, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	loan, err := uc.loanRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	before := loanState(loan)
	from := loan.Status

	now := time.Now().UTC()
	effective := now
	if at != nil {
		effective = at.UTC()
	}

	if err := loan.Transition(to, effective); err != nil {
		return nil, err
	}
	loan.UpdatedAt = now

	if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(txCtx, tx, loanStatusEvent(uc.idGen, loan, from, now)); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := newAuditLog(ctx, uc.idGen, action, domain.ResourceTypeLoan, loan.ID, before, loanState(loan), now)
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return loan, nil
}

// GetLoan retrieves a loan by ID.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.loanRepo.GetByID(ctx, id)
}

// LoanSchedule is a loan together with its recomputed schedule.
type LoanSchedule struct {
	Loan     *domain.Loan
	Schedule *domain.Schedule
}

// GetSchedule recomputes the repayment schedule of a stored loan.
func (uc *LoanUseCase) GetSchedule(ctx context.Context, id string) (*LoanSchedule, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	schedule, err := loan.Schedule(uc.policy)
	if err != nil {
		return nil, err
	}

	return &LoanSchedule{Loan: loan, Schedule: schedule}, nil
}

// ListLoansInput represents input for listing loans.
type ListLoansInput struct {
	MemberID string
	Status   domain.Status
	Limit    int
	Offset   int
}

// ListLoans lists loans, optionally for one member or in one status.
func (uc *LoanUseCase) ListLoans(ctx context.Context, input ListLoansInput) ([]*domain.Loan, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)

	switch {
	case input.MemberID != "":
		return uc.loanRepo.ListByMember(ctx, input.MemberID, limit, offset)
	case input.Status != "":
		return uc.loanRepo.ListByStatus(ctx, input.Status, limit, offset)
	default:
		return uc.loanRepo.List(ctx, limit, offset)
	}
}

func (uc *LoanUseCase) recordError(operation string, err error) {
	if uc.metrics != nil {
		uc.metrics.LoanErrors.WithLabelValues(operation, errorType(err)).Inc()
	}
}
