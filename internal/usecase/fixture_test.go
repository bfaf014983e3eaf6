package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
	"github.com/iho/goloan/internal/usecase/mocks"
)

type fixture struct {
	txMgr       *mocks.MockTransactionManager
	loanRepo    *mocks.MockLoanRepository
	paymentRepo *mocks.MockPaymentRepository
	outboxRepo  *mocks.MockOutboxRepository
	auditRepo   *mocks.MockAuditRepository
	idGen       *mocks.MockIDGenerator
	retrier     *mocks.MockRetrier
	policy      domain.Policy

	loans    *usecase.LoanUseCase
	payments *usecase.PaymentUseCase
	status   *usecase.StatusUseCase
}

func newFixture() *fixture {
	f := &fixture{
		txMgr:       mocks.NewMockTransactionManager(),
		loanRepo:    mocks.NewMockLoanRepository(),
		paymentRepo: mocks.NewMockPaymentRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
		auditRepo:   mocks.NewMockAuditRepository(),
		idGen:       mocks.NewMockIDGenerator(),
		retrier:     &mocks.MockRetrier{},
		policy:      domain.DefaultPolicy(),
	}

	f.loans = usecase.NewLoanUseCase(f.txMgr, f.loanRepo, f.outboxRepo, f.auditRepo, f.idGen, f.retrier, f.policy, nil)
	f.payments = usecase.NewPaymentUseCase(f.txMgr, f.loanRepo, f.paymentRepo, f.outboxRepo, f.auditRepo, f.idGen, f.retrier, f.policy, nil)
	f.status = usecase.NewStatusUseCase(f.loanRepo, f.paymentRepo, f.policy)

	return f
}

func standardApplication(memberID string) usecase.SubmitLoanInput {
	return usecase.SubmitLoanInput{
		MemberID:    memberID,
		Description: "compra de vehiculo",
		Principal:   decimal.NewFromInt(5_000_000),
		AnnualRate:  decimal.NewFromInt(18),
		TermMonths:  24,
	}
}

// originate stores a disbursed 5,000,000 @ 18% x 24 loan.
func (f *fixture) originate(t *testing.T, memberID string, disbursedAt time.Time) *domain.Loan {
	t.Helper()

	loan, err := f.loans.Originate(context.Background(), usecase.OriginateLoanInput{
		SubmitLoanInput: standardApplication(memberID),
		DisbursedAt:     &disbursedAt,
	})
	if err != nil {
		t.Fatalf("originate: %v", err)
	}

	return loan
}

func (f *fixture) pay(t *testing.T, loanID string, installments int, key string) *usecase.PaymentResult {
	t.Helper()

	result, err := f.payments.ApplyPayment(context.Background(), usecase.ApplyPaymentInput{
		LoanID:         loanID,
		Installments:   installments,
		IdempotencyKey: key,
	})
	if err != nil {
		t.Fatalf("apply payment %s: %v", key, err)
	}

	return result
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
