package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

func TestLoanUseCase_Submit(t *testing.T) {
	tests := []struct {
		name      string
		input     usecase.SubmitLoanInput
		errorType error
	}{
		{
			name:  "valid application",
			input: standardApplication("member-1"),
		},
		{
			name: "zero principal",
			input: usecase.SubmitLoanInput{
				MemberID:   "member-1",
				Principal:  decimal.Zero,
				AnnualRate: decimal.NewFromInt(18),
				TermMonths: 24,
			},
			errorType: domain.ErrInvalidTerms,
		},
		{
			name: "principal finer than currency unit",
			input: usecase.SubmitLoanInput{
				MemberID:   "member-1",
				Principal:  mustDecimal("1000.50"),
				AnnualRate: decimal.NewFromInt(18),
				TermMonths: 24,
			},
			errorType: domain.ErrInvalidTerms,
		},
		{
			name: "negative rate",
			input: usecase.SubmitLoanInput{
				MemberID:   "member-1",
				Principal:  decimal.NewFromInt(1000),
				AnnualRate: decimal.NewFromInt(-5),
				TermMonths: 24,
			},
			errorType: domain.ErrInvalidRate,
		},
		{
			name: "missing member",
			input: usecase.SubmitLoanInput{
				Principal:  decimal.NewFromInt(1000),
				AnnualRate: decimal.NewFromInt(18),
				TermMonths: 24,
			},
			errorType: domain.ErrInvalidMemberID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			loan, err := f.loans.Submit(context.Background(), tt.input)

			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected %v, got %v", tt.errorType, err)
				}
				if len(f.outboxRepo.Events) != 0 {
					t.Errorf("expected no events on failure, got %d", len(f.outboxRepo.Events))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if loan.Status != domain.StatusPending {
				t.Errorf("expected pendiente, got %s", loan.Status)
			}
			if !loan.OutstandingBalance.IsZero() {
				t.Errorf("expected zero balance before disbursement, got %s", loan.OutstandingBalance)
			}

			stored, err := f.loanRepo.GetByID(context.Background(), loan.ID)
			if err != nil {
				t.Fatalf("loan not stored: %v", err)
			}
			if stored.MemberID != "member-1" {
				t.Errorf("expected member-1, got %s", stored.MemberID)
			}

			if got := f.outboxRepo.EventTypes(); len(got) != 1 || got[0] != domain.EventTypeLoanSubmitted {
				t.Errorf("expected one loan.submitted event, got %v", got)
			}
			if len(f.auditRepo.Logs) != 1 || f.auditRepo.Logs[0].Action != string(domain.AuditActionLoanSubmit) {
				t.Errorf("expected a loan.submit audit log, got %+v", f.auditRepo.Logs)
			}
		})
	}
}

func TestLoanUseCase_Lifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	loan, err := f.loans.Submit(ctx, standardApplication("member-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := f.loans.Disburse(ctx, loan.ID, nil); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected disbursing a pending loan to fail, got %v", err)
	}

	approved, err := f.loans.Approve(ctx, loan.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.StatusApproved {
		t.Fatalf("expected aprobado, got %s", approved.Status)
	}

	disbursedAt := date(2024, 1, 15)
	disbursed, err := f.loans.Disburse(ctx, loan.ID, &disbursedAt)
	if err != nil {
		t.Fatalf("disburse: %v", err)
	}
	if disbursed.DisbursedAt == nil || !disbursed.DisbursedAt.Equal(disbursedAt) {
		t.Fatalf("expected disbursement date %v, got %v", disbursedAt, disbursed.DisbursedAt)
	}
	if !disbursed.OutstandingBalance.Equal(decimal.NewFromInt(5_000_000)) {
		t.Errorf("expected outstanding principal, got %s", disbursed.OutstandingBalance)
	}
	if disbursed.Version != 2 {
		t.Errorf("expected version 2 after two updates, got %d", disbursed.Version)
	}

	if _, err := f.loans.Cancel(ctx, loan.ID); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected cancelling a disbursed loan to fail, got %v", err)
	}

	want := []string{domain.EventTypeLoanSubmitted, domain.EventTypeLoanApproved, domain.EventTypeLoanDisbursed}
	got := f.outboxRepo.EventTypes()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if f.retrier.Calls != 4 {
		t.Errorf("expected every transition to go through the retrier, got %d calls", f.retrier.Calls)
	}
}

func TestLoanUseCase_RejectAndCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, _ := f.loans.Submit(ctx, standardApplication("member-1"))
	second, _ := f.loans.Submit(ctx, standardApplication("member-1"))

	rejected, err := f.loans.Reject(ctx, first.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.StatusRejected {
		t.Errorf("expected rechazado, got %s", rejected.Status)
	}

	if _, err := f.loans.Approve(ctx, first.ID); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Errorf("expected a rejected loan to stay rejected, got %v", err)
	}

	cancelled, err := f.loans.Cancel(ctx, second.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("expected cancelado, got %s", cancelled.Status)
	}
}

func TestLoanUseCase_TransitionNotFound(t *testing.T) {
	f := newFixture()

	if _, err := f.loans.Approve(context.Background(), "missing"); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound, got %v", err)
	}
}

func TestLoanUseCase_Originate(t *testing.T) {
	f := newFixture()

	loan := f.originate(t, "member-1", date(2024, 1, 15))

	if loan.Status != domain.StatusDisbursed {
		t.Fatalf("expected desembolsado, got %s", loan.Status)
	}
	if loan.DisbursedAt == nil || !loan.DisbursedAt.Equal(date(2024, 1, 15)) {
		t.Fatalf("expected backdated disbursement, got %v", loan.DisbursedAt)
	}
	if got := f.outboxRepo.EventTypes(); len(got) != 1 || got[0] != domain.EventTypeLoanDisbursed {
		t.Errorf("expected one loan.disbursed event, got %v", got)
	}
}

func TestLoanUseCase_GetSchedule(t *testing.T) {
	f := newFixture()
	loan := f.originate(t, "member-1", date(2024, 1, 15))

	result, err := f.loans.GetSchedule(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}

	if result.Schedule.TermMonths() != 24 {
		t.Fatalf("expected 24 installments, got %d", result.Schedule.TermMonths())
	}
	if !result.Schedule.FixedPayment().Equal(decimal.NewFromInt(249621)) {
		t.Errorf("expected fixed payment 249621, got %s", result.Schedule.FixedPayment())
	}
}

func TestLoanUseCase_ListLoans(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.originate(t, "member-1", date(2024, 1, 15))
	f.originate(t, "member-2", date(2024, 1, 15))
	if _, err := f.loans.Submit(ctx, standardApplication("member-1")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	byMember, err := f.loans.ListLoans(ctx, usecase.ListLoansInput{MemberID: "member-1"})
	if err != nil {
		t.Fatalf("list by member: %v", err)
	}
	if len(byMember) != 2 {
		t.Errorf("expected 2 loans for member-1, got %d", len(byMember))
	}

	pending, err := f.loans.ListLoans(ctx, usecase.ListLoansInput{Status: domain.StatusPending})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("expected 1 pending loan, got %d", len(pending))
	}

	all, _ := f.loans.ListLoans(ctx, usecase.ListLoansInput{Limit: 2})
	if len(all) != 2 {
		t.Errorf("expected page of 2, got %d", len(all))
	}
}
