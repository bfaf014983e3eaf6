package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
	"github.com/iho/goloan/internal/usecase/mockgen"
)

func pendingLoan(t *testing.T) *domain.Loan {
	t.Helper()

	loan, err := domain.NewLoan("loan-1", "member-1", "capital de trabajo", domain.LoanTerms{
		Principal:  decimal.NewFromInt(5_000_000),
		AnnualRate: decimal.NewFromInt(18),
		TermMonths: 24,
	}, date(2024, 1, 1))
	if err != nil {
		t.Fatalf("new loan: %v", err)
	}
	return loan
}

func TestLoanUseCase_VersionConflictRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)

	txManager := mockgen.NewMockTransactionManager(ctrl)
	tx := mockgen.NewMockTransaction(ctrl)
	loanRepo := mockgen.NewMockLoanRepository(ctrl)
	outboxRepo := mockgen.NewMockOutboxRepository(ctrl)
	auditRepo := mockgen.NewMockAuditRepository(ctrl)
	idGen := mockgen.NewMockIDGenerator(ctrl)
	retrier := mockgen.NewMockRetrier(ctrl)

	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, operation func() error) error {
			return operation()
		})
	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), tx, "loan-1").Return(pendingLoan(t), nil)
	loanRepo.EXPECT().Update(gomock.Any(), tx, gomock.Any()).Return(domain.ErrVersionConflict)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	// Commit, Create and CreateTx must not be called.

	uc := usecase.NewLoanUseCase(txManager, loanRepo, outboxRepo, auditRepo, idGen, retrier, domain.DefaultPolicy(), nil)

	_, err := uc.Approve(context.Background(), "loan-1")
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestPaymentUseCase_ReplaySkipsTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)

	txManager := mockgen.NewMockTransactionManager(ctrl)
	loanRepo := mockgen.NewMockLoanRepository(ctrl)
	paymentRepo := mockgen.NewMockPaymentRepository(ctrl)
	outboxRepo := mockgen.NewMockOutboxRepository(ctrl)
	auditRepo := mockgen.NewMockAuditRepository(ctrl)
	idGen := mockgen.NewMockIDGenerator(ctrl)
	retrier := mockgen.NewMockRetrier(ctrl)

	original := &domain.Payment{
		ID:             "payment-1",
		LoanID:         "loan-1",
		Installments:   1,
		Amount:         decimal.NewFromInt(249621),
		IdempotencyKey: "pay-1",
	}

	paymentRepo.EXPECT().GetByIdempotencyKey(gomock.Any(), "loan-1", "pay-1").Return(original, nil)
	loanRepo.EXPECT().GetByID(gomock.Any(), "loan-1").Return(pendingLoan(t), nil)

	uc := usecase.NewPaymentUseCase(txManager, loanRepo, paymentRepo, outboxRepo, auditRepo, idGen, retrier, domain.DefaultPolicy(), nil)

	result, err := uc.ApplyPayment(context.Background(), usecase.ApplyPaymentInput{
		LoanID:         "loan-1",
		Installments:   1,
		IdempotencyKey: "pay-1",
	})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if !result.Replayed || result.Payment.ID != "payment-1" {
		t.Errorf("expected replay of payment-1, got %+v", result)
	}
}
