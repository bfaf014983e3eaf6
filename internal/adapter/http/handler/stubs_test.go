package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

type loanServiceStub struct {
	submitFn    func(ctx context.Context, input usecase.SubmitLoanInput) (*domain.Loan, error)
	originateFn func(ctx context.Context, input usecase.OriginateLoanInput) (*domain.Loan, error)
	approveFn   func(ctx context.Context, id string) (*domain.Loan, error)
	rejectFn    func(ctx context.Context, id string) (*domain.Loan, error)
	disburseFn  func(ctx context.Context, id string, at *time.Time) (*domain.Loan, error)
	cancelFn    func(ctx context.Context, id string) (*domain.Loan, error)
	getFn       func(ctx context.Context, id string) (*domain.Loan, error)
	scheduleFn  func(ctx context.Context, id string) (*usecase.LoanSchedule, error)
	listFn      func(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error)
}

func (s *loanServiceStub) Submit(ctx context.Context, input usecase.SubmitLoanInput) (*domain.Loan, error) {
	return s.submitFn(ctx, input)
}

func (s *loanServiceStub) Originate(ctx context.Context, input usecase.OriginateLoanInput) (*domain.Loan, error) {
	return s.originateFn(ctx, input)
}

func (s *loanServiceStub) Approve(ctx context.Context, id string) (*domain.Loan, error) {
	return s.approveFn(ctx, id)
}

func (s *loanServiceStub) Reject(ctx context.Context, id string) (*domain.Loan, error) {
	return s.rejectFn(ctx, id)
}

func (s *loanServiceStub) Disburse(ctx context.Context, id string, at *time.Time) (*domain.Loan, error) {
	return s.disburseFn(ctx, id, at)
}

func (s *loanServiceStub) Cancel(ctx context.Context, id string) (*domain.Loan, error) {
	return s.cancelFn(ctx, id)
}

func (s *loanServiceStub) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return s.getFn(ctx, id)
}

func (s *loanServiceStub) GetSchedule(ctx context.Context, id string) (*usecase.LoanSchedule, error) {
	return s.scheduleFn(ctx, id)
}

func (s *loanServiceStub) ListLoans(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error) {
	return s.listFn(ctx, input)
}

type paymentServiceStub struct {
	applyFn func(ctx context.Context, input usecase.ApplyPaymentInput) (*usecase.PaymentResult, error)
	getFn   func(ctx context.Context, id string) (*domain.Payment, error)
	listFn  func(ctx context.Context, input usecase.ListPaymentsInput) ([]*domain.Payment, error)
}

func (s *paymentServiceStub) ApplyPayment(ctx context.Context, input usecase.ApplyPaymentInput) (*usecase.PaymentResult, error) {
	return s.applyFn(ctx, input)
}

func (s *paymentServiceStub) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return s.getFn(ctx, id)
}

func (s *paymentServiceStub) ListPayments(ctx context.Context, input usecase.ListPaymentsInput) ([]*domain.Payment, error) {
	return s.listFn(ctx, input)
}

type statusServiceStub struct {
	statusFn  func(ctx context.Context, loanID string, asOf time.Time) (*usecase.LoanStatus, error)
	historyFn func(ctx context.Context, input usecase.CreditHistoryInput) (*usecase.CreditHistory, error)
}

func (s *statusServiceStub) Status(ctx context.Context, loanID string, asOf time.Time) (*usecase.LoanStatus, error) {
	return s.statusFn(ctx, loanID, asOf)
}

func (s *statusServiceStub) CreditHistory(ctx context.Context, input usecase.CreditHistoryInput) (*usecase.CreditHistory, error) {
	return s.historyFn(ctx, input)
}

type simulationServiceStub struct {
	simulateFn func(ctx context.Context, input usecase.SimulateInput) (*domain.Schedule, error)
}

func (s *simulationServiceStub) Simulate(ctx context.Context, input usecase.SimulateInput) (*domain.Schedule, error) {
	return s.simulateFn(ctx, input)
}

type reconciliationServiceStub struct {
	loanFn   func(ctx context.Context, loanID string) (*usecase.ReconciliationResult, error)
	reportFn func(ctx context.Context) (*usecase.ReconciliationReport, error)
}

func (s *reconciliationServiceStub) ReconcileLoan(ctx context.Context, loanID string) (*usecase.ReconciliationResult, error) {
	return s.loanFn(ctx, loanID)
}

func (s *reconciliationServiceStub) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.reportFn(ctx)
}

type sweepServiceStub struct {
	sweepFn func(ctx context.Context, asOf time.Time) (*usecase.SweepReport, error)
}

func (s *sweepServiceStub) Sweep(ctx context.Context, asOf time.Time) (*usecase.SweepReport, error) {
	return s.sweepFn(ctx, asOf)
}

// withURLParam routes a request through chi so URLParam resolves.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func sampleLoan(status domain.Status) *domain.Loan {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	loan := &domain.Loan{
		ID:       "loan-1",
		MemberID: "member-1",
		Terms: domain.LoanTerms{
			Principal:  decimal.NewFromInt(5000000),
			AnnualRate: decimal.NewFromInt(18),
			TermMonths: 24,
		},
		Status:             status,
		TotalPaid:          decimal.Zero,
		OutstandingBalance: decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if status == domain.StatusDisbursed {
		loan.DisbursedAt = &now
		loan.OutstandingBalance = loan.Terms.Principal
	}
	return loan
}
