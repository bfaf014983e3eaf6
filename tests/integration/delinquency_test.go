package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
	"github.com/iho/goloan/tests/testutil"
)

func TestDelinquencyAndReconciliation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)
	svc := newServices(testDB.Pool)

	disbursedAt := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)

	late := testDB.CreateDisbursedLoan(ctx, "member-1", testutil.ReferenceTerms(), disbursedAt, 1)
	current := testDB.CreateDisbursedLoan(ctx, "member-1", testutil.ReferenceTerms(), disbursedAt, 3)

	t.Run("status derives moroso", func(t *testing.T) {
		st, err := svc.status.Status(ctx, late.ID, asOf)
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if st.Status != domain.StatusDelinquent {
			t.Fatalf("expected moroso, got %s", st.Status)
		}
		d := st.Delinquency
		if d.MonthsInArrears != 2 || d.DaysInArrears != 31 {
			t.Fatalf("expected 2 in arrears for 31 days, got %d / %d", d.MonthsInArrears, d.DaysInArrears)
		}
		if !d.CurrentPenalty.Equal(decimal.RequireFromString("0.04")) || !d.NextPenalty.Equal(decimal.RequireFromString("0.06")) {
			t.Fatalf("unexpected penalties %s / %s", d.CurrentPenalty, d.NextPenalty)
		}
		if !d.OverdueAmount.Equal(decimal.NewFromInt(499242)) {
			t.Fatalf("expected overdue 499242, got %s", d.OverdueAmount)
		}

		stored, err := svc.loanRepo.GetByID(ctx, late.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if stored.Status != domain.StatusDisbursed {
			t.Fatalf("moroso must not be stored, got %s", stored.Status)
		}
	})

	t.Run("sweep reports delinquent loans", func(t *testing.T) {
		report, err := svc.delinquency.Sweep(ctx, asOf)
		if err != nil {
			t.Fatalf("sweep failed: %v", err)
		}
		if report.Scanned != 2 || report.Delinquent != 1 {
			t.Fatalf("expected 2 scanned and 1 delinquent, got %d / %d", report.Scanned, report.Delinquent)
		}
		if len(report.DelinquentLoans) != 1 || report.DelinquentLoans[0] != late.ID {
			t.Fatalf("unexpected delinquent loans %v", report.DelinquentLoans)
		}
	})

	t.Run("credit history summarizes the member", func(t *testing.T) {
		history, err := svc.status.CreditHistory(ctx, usecase.CreditHistoryInput{MemberID: "member-1", AsOf: asOf})
		if err != nil {
			t.Fatalf("credit history failed: %v", err)
		}
		if history.Summary.TotalLoans != 2 || history.Summary.DelinquentLoans != 1 {
			t.Fatalf("unexpected summary %+v", history.Summary)
		}
	})

	t.Run("seeded loans without payment rows are flagged", func(t *testing.T) {
		res, err := svc.reconciliation.ReconcileLoan(ctx, current.ID)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if res.IsReconciled {
			t.Fatal("expected a loan with 3 recorded installments and no payments to be flagged")
		}
		if res.RecordedInstallments != 3 || res.PaymentInstallments != 0 {
			t.Fatalf("unexpected counts %d / %d", res.RecordedInstallments, res.PaymentInstallments)
		}
	})

	t.Run("paid through the api reconciles", func(t *testing.T) {
		fresh := testDB.CreateDisbursedLoan(ctx, "member-2", testutil.ReferenceTerms(), disbursedAt, 0)
		if _, err := svc.payments.ApplyPayment(ctx, usecase.ApplyPaymentInput{
			LoanID:         fresh.ID,
			Installments:   2,
			Method:         string(domain.PaymentMethodCash),
			IdempotencyKey: "rec-1",
		}); err != nil {
			t.Fatalf("payment failed: %v", err)
		}

		res, err := svc.reconciliation.ReconcileLoan(ctx, fresh.ID)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if !res.IsReconciled {
			t.Fatalf("expected reconciled loan, issues: %v", res.Issues)
		}
	})
}
