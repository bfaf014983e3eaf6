package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
	"github.com/iho/goloan/tests/testutil"
)

func TestLoanLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	svc := newServices(testDB.Pool)

	t.Run("submit approve disburse persists schedule balances", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		loan, err := svc.loans.Submit(ctx, usecase.SubmitLoanInput{
			MemberID:    "member-1",
			Description: "vivienda",
			Principal:   decimal.NewFromInt(5000000),
			AnnualRate:  decimal.NewFromInt(18),
			TermMonths:  24,
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if loan.Status != domain.StatusPending || loan.Version != 0 {
			t.Fatalf("expected pending at version 0, got %s v%d", loan.Status, loan.Version)
		}

		if _, err := svc.loans.Approve(ctx, loan.ID); err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		disbursedAt := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		if _, err := svc.loans.Disburse(ctx, loan.ID, &disbursedAt); err != nil {
			t.Fatalf("disburse failed: %v", err)
		}

		stored, err := svc.loanRepo.GetByID(ctx, loan.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if stored.Status != domain.StatusDisbursed {
			t.Fatalf("expected desembolsado, got %s", stored.Status)
		}
		if stored.Version != 2 {
			t.Fatalf("expected version 2, got %d", stored.Version)
		}
		if !stored.OutstandingBalance.Equal(decimal.NewFromInt(5000000)) {
			t.Fatalf("expected full principal outstanding, got %s", stored.OutstandingBalance)
		}
		if stored.DisbursedAt == nil || !stored.DisbursedAt.Equal(disbursedAt) {
			t.Fatalf("expected disbursed_at %v, got %v", disbursedAt, stored.DisbursedAt)
		}
		if !stored.Terms.AnnualRate.Equal(decimal.NewFromInt(18)) {
			t.Fatalf("annual rate not persisted: %s", stored.Terms.AnnualRate)
		}
	})

	t.Run("illegal transitions are rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		loan, err := svc.loans.Submit(ctx, usecase.SubmitLoanInput{
			MemberID:   "member-1",
			Principal:  decimal.NewFromInt(1200000),
			AnnualRate: decimal.Zero,
			TermMonths: 6,
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}

		if _, err := svc.loans.Disburse(ctx, loan.ID, nil); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Fatalf("expected illegal transition disbursing a pending loan, got %v", err)
		}
		if _, err := svc.loans.Reject(ctx, loan.ID); err != nil {
			t.Fatalf("reject failed: %v", err)
		}
		if _, err := svc.loans.Approve(ctx, loan.ID); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Fatalf("expected illegal transition approving a rejected loan, got %v", err)
		}
	})

	t.Run("payments settle the loan", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		loan, err := svc.loans.Originate(ctx, usecase.OriginateLoanInput{
			SubmitLoanInput: usecase.SubmitLoanInput{
				MemberID:   "member-2",
				Principal:  decimal.NewFromInt(1200000),
				AnnualRate: decimal.Zero,
				TermMonths: 6,
			},
		})
		if err != nil {
			t.Fatalf("originate failed: %v", err)
		}

		res, err := svc.payments.ApplyPayment(ctx, usecase.ApplyPaymentInput{
			LoanID:         loan.ID,
			Installments:   6,
			Method:         string(domain.PaymentMethodTransfer),
			IdempotencyKey: "payoff",
		})
		if err != nil {
			t.Fatalf("payment failed: %v", err)
		}
		if res.Loan.Status != domain.StatusPaid {
			t.Fatalf("expected pagado, got %s", res.Loan.Status)
		}
		if !res.Payment.Amount.Equal(decimal.NewFromInt(1200000)) {
			t.Fatalf("expected amount 1200000, got %s", res.Payment.Amount)
		}

		_, err = svc.payments.ApplyPayment(ctx, usecase.ApplyPaymentInput{
			LoanID:         loan.ID,
			Installments:   1,
			Method:         string(domain.PaymentMethodCash),
			IdempotencyKey: "after-payoff",
		})
		if !errors.Is(err, domain.ErrInvalidPaymentCount) && !errors.Is(err, domain.ErrIllegalTransition) {
			t.Fatalf("expected payment on a paid loan to be rejected, got %v", err)
		}

		payments, err := svc.paymentRepo.ListByLoan(ctx, loan.ID, 10, 0)
		if err != nil {
			t.Fatalf("list payments failed: %v", err)
		}
		if len(payments) != 1 {
			t.Fatalf("expected 1 payment, got %d", len(payments))
		}

		audit, err := svc.auditRepo.GetByResourceID(ctx, "loan", loan.ID)
		if err != nil {
			t.Fatalf("audit lookup failed: %v", err)
		}
		if len(audit) < 2 {
			t.Fatalf("expected origination and payment audit entries, got %d", len(audit))
		}
	})

	t.Run("idempotent replay returns the original payment", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		loan := testDB.CreateDisbursedLoan(ctx, "member-3", testutil.ReferenceTerms(), time.Now().AddDate(0, -1, 0), 0)
		input := usecase.ApplyPaymentInput{
			LoanID:         loan.ID,
			Installments:   1,
			Method:         string(domain.PaymentMethodPSE),
			IdempotencyKey: "k-1",
		}

		first, err := svc.payments.ApplyPayment(ctx, input)
		if err != nil {
			t.Fatalf("first payment failed: %v", err)
		}
		second, err := svc.payments.ApplyPayment(ctx, input)
		if err != nil {
			t.Fatalf("replay failed: %v", err)
		}

		if !second.Replayed || second.Payment.ID != first.Payment.ID {
			t.Fatalf("expected replay of %s, got %+v", first.Payment.ID, second.Payment)
		}
		if second.Loan.InstallmentsPaid != 1 {
			t.Fatalf("expected 1 installment paid after replay, got %d", second.Loan.InstallmentsPaid)
		}
		if !first.Payment.Amount.Equal(decimal.NewFromInt(249621)) {
			t.Fatalf("expected installment 249621, got %s", first.Payment.Amount)
		}
	})
}
