package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/metrics"
)

// PaymentUseCase applies whole-installment payments to disbursed loans.
type PaymentUseCase struct {
	txManager   TransactionManager
	loanRepo    LoanRepository
	paymentRepo PaymentRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	retrier     Retrier
	policy      domain.Policy
	metrics     *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	policy domain.Policy,
	metrics *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		retrier:     retrier,
		policy:      policy,
		metrics:     metrics,
	}
}

// ApplyPaymentInput represents a request to pay the next installments of a loan.
type ApplyPaymentInput struct {
	LoanID         string
	Installments   int
	Method         string
	Reference      string
	IdempotencyKey string
	// PaidAt records when the member paid; now when nil.
	PaidAt *time.Time
}

// PaymentResult is the outcome of ApplyPayment.
type PaymentResult struct {
	Payment *domain.Payment
	Loan    *domain.Loan
	// Replayed is true when the idempotency key had already been used and
	// the original payment is returned without changing the loan.
	Replayed bool
}

// ApplyPayment settles the next requested installments of a loan exactly once per idempotency key.
func (uc *PaymentUseCase) ApplyPayment(ctx context.Context, input ApplyPaymentInput) (*PaymentResult, error) {
	start := time.Now()

	method, err := uc.validate(input)
	if err != nil {
		uc.recordError(err)
		return nil, err
	}

	// Fast path for retried requests, checked again under the row lock.
	if result, err := uc.replay(ctx, input.LoanID, input.IdempotencyKey); err != nil || result != nil {
		return result, err
	}

	var result *PaymentResult

	err = retry(ctx, uc.retrier, func() error {
		res, err := uc.applyTx(ctx, input, method)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		uc.recordError(err)
		return nil, err
	}

	if uc.metrics != nil {
		if result.Replayed {
			uc.metrics.PaymentReplays.Inc()
		} else {
			uc.metrics.PaymentsApplied.Inc()
			uc.metrics.InstallmentsPaid.Add(float64(result.Payment.Installments))
			uc.metrics.PaymentAmount.Observe(result.Payment.Amount.InexactFloat64())
			uc.metrics.PaymentDuration.Observe(time.Since(start).Seconds())
			if result.Loan.Status == domain.StatusPaid {
				uc.metrics.LoansPaidOff.Inc()
			}
		}
	}

	return result, nil
}

func (uc *PaymentUseCase) validate(input ApplyPaymentInput) (domain.PaymentMethod, error) {
	if err := domain.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		return "", err
	}

	if err := domain.ValidateReference(input.Reference); err != nil {
		return "", err
	}

	if input.Installments < 1 {
		return "", domain.ErrInvalidPaymentCount
	}

	return domain.ParsePaymentMethod(input.Method)
}

func (uc *PaymentUseCase) replay(ctx context.Context, loanID, key string) (*PaymentResult, error) {
	payment, err := uc.paymentRepo.GetByIdempotencyKey(ctx, loanID, key)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentReplays.Inc()
	}

	return &PaymentResult{Payment: payment, Loan: loan, Replayed: true}, nil
}

func (uc *PaymentUseCase) applyTx(ctx context.Context, input ApplyPaymentInput, method domain.PaymentMethod) (*PaymentResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Lock the loan: concurrent payments on it queue here.
	loan, err := uc.loanRepo.GetByIDForUpdate(txCtx, tx, input.LoanID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.paymentRepo.GetByIdempotencyKeyTx(txCtx, tx, input.LoanID, input.IdempotencyKey)
	switch {
	case err == nil:
		return &PaymentResult{Payment: existing, Loan: loan, Replayed: true}, nil
	case !errors.Is(err, domain.ErrPaymentNotFound):
		return nil, err
	}

	schedule, err := loan.Schedule(uc.policy)
	if err != nil {
		return nil, err
	}

	before := loanState(loan)

	amount, err := loan.ApplyPayment(schedule, input.Installments)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	paidAt := now
	if input.PaidAt != nil {
		paidAt = input.PaidAt.UTC()
	}
	loan.UpdatedAt = now

	payment := &domain.Payment{
		ID:                    uc.idGen.Generate(),
		LoanID:                loan.ID,
		Installments:          input.Installments,
		Amount:                amount,
		Method:                method,
		Reference:             input.Reference,
		IdempotencyKey:        input.IdempotencyKey,
		InstallmentsPaidAfter: loan.InstallmentsPaid,
		PaidAt:                paidAt,
	}

	if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
		return nil, err
	}

	if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(txCtx, tx, paymentAppliedEvent(uc.idGen, loan, payment, now)); err != nil {
		return nil, err
	}

	if loan.Status == domain.StatusPaid {
		if err := uc.outboxRepo.Create(txCtx, tx, loanStatusEvent(uc.idGen, loan, domain.StatusDisbursed, now)); err != nil {
			return nil, err
		}
	}

	if uc.auditRepo != nil {
		auditLog := newAuditLog(ctx, uc.idGen, domain.AuditActionPaymentApply, domain.ResourceTypeLoan, loan.ID, before, loanState(loan), now)
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &PaymentResult{Payment: payment, Loan: loan}, nil
}

func paymentAppliedEvent(idGen IDGenerator, loan *domain.Loan, payment *domain.Payment, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanPaymentApplied,
		Payload: map[string]any{
			"loan_id":             loan.ID,
			"payment_id":          payment.ID,
			"installments":        payment.Installments,
			"amount":              payment.Amount.String(),
			"installments_paid":   loan.InstallmentsPaid,
			"outstanding_balance": loan.OutstandingBalance.String(),
			"event_at":            now.Format(time.RFC3339),
		},
		CreatedAt: now,
		Published: false,
	}
}

// GetPayment retrieves a payment by ID.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return uc.paymentRepo.GetByID(ctx, id)
}

// ListPaymentsInput represents input for listing the payments of a loan.
type ListPaymentsInput struct {
	LoanID string
	Limit  int
	Offset int
}

// ListPayments lists the payments of a loan, oldest first.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, input ListPaymentsInput) ([]*domain.Payment, error) {
	if _, err := uc.loanRepo.GetByID(ctx, input.LoanID); err != nil {
		return nil, err
	}

	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.paymentRepo.ListByLoan(ctx, input.LoanID, limit, offset)
}

func (uc *PaymentUseCase) recordError(err error) {
	if uc.metrics != nil {
		uc.metrics.PaymentErrors.WithLabelValues(errorType(err)).Inc()
	}
}
