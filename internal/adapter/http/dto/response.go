package dto

import (
	"time"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
	"github.com/shopspring/decimal"
)

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	ID                    string          `json:"id"`
	MemberID              string          `json:"member_id"`
	Description           string          `json:"description,omitempty"`
	Principal             decimal.Decimal `json:"principal"`
	AnnualRate            decimal.Decimal `json:"annual_rate"`
	TermMonths            int             `json:"term_months"`
	Status                string          `json:"status"`
	DisbursedAt           *time.Time      `json:"disbursed_at,omitempty"`
	InstallmentsPaid      int             `json:"installments_paid"`
	RemainingInstallments int             `json:"remaining_installments"`
	TotalPaid             decimal.Decimal `json:"total_paid"`
	OutstandingBalance    decimal.Decimal `json:"outstanding_balance"`
	Version               int64           `json:"version"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// LoanFromDomain converts domain loan to response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		ID:                    l.ID,
		MemberID:              l.MemberID,
		Description:           l.Description,
		Principal:             l.Terms.Principal,
		AnnualRate:            l.Terms.AnnualRate,
		TermMonths:            l.Terms.TermMonths,
		Status:                string(l.Status),
		DisbursedAt:           l.DisbursedAt,
		InstallmentsPaid:      l.InstallmentsPaid,
		RemainingInstallments: l.RemainingInstallments(),
		TotalPaid:             l.TotalPaid,
		OutstandingBalance:    l.OutstandingBalance,
		Version:               l.Version,
		CreatedAt:             l.CreatedAt,
		UpdatedAt:             l.UpdatedAt,
	}
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// ScheduleResponse represents a repayment plan.
type ScheduleResponse struct {
	Principal     decimal.Decimal      `json:"principal"`
	MonthlyRate   decimal.Decimal      `json:"monthly_rate"`
	FixedPayment  decimal.Decimal      `json:"fixed_payment"`
	TotalPayment  decimal.Decimal      `json:"total_payment"`
	TotalInterest decimal.Decimal      `json:"total_interest"`
	Installments  []domain.Installment `json:"installments"`
}

// ScheduleFromDomain converts a domain schedule to response.
func ScheduleFromDomain(s *domain.Schedule) *ScheduleResponse {
	return &ScheduleResponse{
		Principal:     s.Principal,
		MonthlyRate:   s.MonthlyRate,
		FixedPayment:  s.FixedPayment(),
		TotalPayment:  s.TotalPayment(),
		TotalInterest: s.TotalInterest(),
		Installments:  s.Installments,
	}
}

// LoanScheduleResponse represents a loan with its repayment plan.
type LoanScheduleResponse struct {
	Loan     *LoanResponse     `json:"loan"`
	Schedule *ScheduleResponse `json:"schedule"`
}

// LoanScheduleFromUseCase converts a use case loan schedule to response.
func LoanScheduleFromUseCase(ls *usecase.LoanSchedule) *LoanScheduleResponse {
	return &LoanScheduleResponse{
		Loan:     LoanFromDomain(ls.Loan),
		Schedule: ScheduleFromDomain(ls.Schedule),
	}
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID                    string          `json:"id"`
	LoanID                string          `json:"loan_id"`
	Installments          int             `json:"installments"`
	Amount                decimal.Decimal `json:"amount"`
	Method                string          `json:"method"`
	Reference             string          `json:"reference,omitempty"`
	IdempotencyKey        string          `json:"idempotency_key"`
	InstallmentsPaidAfter int             `json:"installments_paid_after"`
	PaidAt                time.Time       `json:"paid_at"`
}

// PaymentFromDomain converts domain payment to response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:                    p.ID,
		LoanID:                p.LoanID,
		Installments:          p.Installments,
		Amount:                p.Amount,
		Method:                string(p.Method),
		Reference:             p.Reference,
		IdempotencyKey:        p.IdempotencyKey,
		InstallmentsPaidAfter: p.InstallmentsPaidAfter,
		PaidAt:                p.PaidAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// PaymentResultResponse represents the outcome of a payment request.
type PaymentResultResponse struct {
	Payment  *PaymentResponse `json:"payment"`
	Loan     *LoanResponse    `json:"loan"`
	Replayed bool             `json:"replayed"`
}

// PaymentResultFromUseCase converts a payment result to response.
func PaymentResultFromUseCase(r *usecase.PaymentResult) *PaymentResultResponse {
	return &PaymentResultResponse{
		Payment:  PaymentFromDomain(r.Payment),
		Loan:     LoanFromDomain(r.Loan),
		Replayed: r.Replayed,
	}
}

// DelinquencyResponse represents the arrears position of a loan.
type DelinquencyResponse struct {
	MonthsElapsed   int             `json:"months_elapsed"`
	InstallmentsDue int             `json:"installments_due"`
	MonthsInArrears int             `json:"months_in_arrears"`
	DaysInArrears   int             `json:"days_in_arrears"`
	CurrentPenalty  decimal.Decimal `json:"current_penalty"`
	NextPenalty     decimal.Decimal `json:"next_penalty"`
	OverdueAmount   decimal.Decimal `json:"overdue_amount"`
	Warnings        []string        `json:"warnings,omitempty"`
}

// DelinquencyFromDomain converts a delinquency state to response.
func DelinquencyFromDomain(s domain.DelinquencyState) DelinquencyResponse {
	warnings := make([]string, len(s.Warnings))
	for i, w := range s.Warnings {
		warnings[i] = string(w)
	}

	return DelinquencyResponse{
		MonthsElapsed:   s.MonthsElapsed,
		InstallmentsDue: s.InstallmentsDue,
		MonthsInArrears: s.MonthsInArrears,
		DaysInArrears:   s.DaysInArrears,
		CurrentPenalty:  s.CurrentPenalty,
		NextPenalty:     s.NextPenalty,
		OverdueAmount:   s.OverdueAmount,
		Warnings:        warnings,
	}
}

// LoanStatusResponse represents the standing of a loan at a date.
type LoanStatusResponse struct {
	Loan            *LoanResponse       `json:"loan"`
	Status          string              `json:"status"`
	AsOf            time.Time           `json:"as_of"`
	Delinquency     DelinquencyResponse `json:"delinquency"`
	NextInstallment *domain.Installment `json:"next_installment,omitempty"`
	NextDueDate     *time.Time          `json:"next_due_date,omitempty"`
	MaturityDate    *time.Time          `json:"maturity_date,omitempty"`
}

// LoanStatusFromUseCase converts a use case loan status to response.
func LoanStatusFromUseCase(s *usecase.LoanStatus) *LoanStatusResponse {
	return &LoanStatusResponse{
		Loan:            LoanFromDomain(s.Loan),
		Status:          string(s.Status),
		AsOf:            s.Delinquency.AsOf,
		Delinquency:     DelinquencyFromDomain(s.Delinquency),
		NextInstallment: s.NextInstallment,
		NextDueDate:     s.NextDueDate,
		MaturityDate:    s.MaturityDate,
	}
}

// LoanHistoryResponse is one loan of a credit history.
type LoanHistoryResponse struct {
	LoanStatusResponse

	Payments []*PaymentResponse `json:"payments"`
}

// CreditSummaryResponse aggregates a member's credit history.
type CreditSummaryResponse struct {
	TotalLoans               int             `json:"total_loans"`
	PendingLoans             int             `json:"pending_loans"`
	ActiveLoans              int             `json:"active_loans"`
	DelinquentLoans          int             `json:"delinquent_loans"`
	PaidLoans                int             `json:"paid_loans"`
	ClosedLoans              int             `json:"closed_loans"`
	PaymentsRecorded         int             `json:"payments_recorded"`
	TotalPaid                decimal.Decimal `json:"total_paid"`
	OutstandingTotal         decimal.Decimal `json:"outstanding_total"`
	OverdueTotal             decimal.Decimal `json:"overdue_total"`
	OverdueInstallmentsTotal int             `json:"overdue_installments_total"`
	MaxDaysInArrears         int             `json:"max_days_in_arrears"`
	AvgDaysInArrears         int             `json:"avg_days_in_arrears"`
}

// CreditHistoryResponse represents a member's credit history.
type CreditHistoryResponse struct {
	MemberID string                 `json:"member_id"`
	AsOf     time.Time              `json:"as_of"`
	Summary  CreditSummaryResponse  `json:"summary"`
	Loans    []*LoanHistoryResponse `json:"loans"`
}

// CreditHistoryFromUseCase converts a credit history to response.
func CreditHistoryFromUseCase(h *usecase.CreditHistory) *CreditHistoryResponse {
	loans := make([]*LoanHistoryResponse, len(h.Loans))
	for i, l := range h.Loans {
		loans[i] = &LoanHistoryResponse{
			LoanStatusResponse: *LoanStatusFromUseCase(&l.LoanStatus),
			Payments:           PaymentsFromDomain(l.Payments),
		}
	}

	s := h.Summary
	return &CreditHistoryResponse{
		MemberID: h.MemberID,
		AsOf:     h.AsOf,
		Summary: CreditSummaryResponse{
			TotalLoans:               s.TotalLoans,
			PendingLoans:             s.PendingLoans,
			ActiveLoans:              s.ActiveLoans,
			DelinquentLoans:          s.DelinquentLoans,
			PaidLoans:                s.PaidLoans,
			ClosedLoans:              s.ClosedLoans,
			PaymentsRecorded:         s.PaymentsRecorded,
			TotalPaid:                s.TotalPaid,
			OutstandingTotal:         s.OutstandingTotal,
			OverdueTotal:             s.OverdueTotal,
			OverdueInstallmentsTotal: s.OverdueInstallmentsTotal,
			MaxDaysInArrears:         s.MaxDaysInArrears,
			AvgDaysInArrears:         s.AvgDaysInArrears,
		},
		Loans: loans,
	}
}

// ReconciliationResultResponse represents the reconciliation of one loan.
type ReconciliationResultResponse struct {
	LoanID               string          `json:"loan_id"`
	Status               string          `json:"status"`
	RecordedInstallments int             `json:"recorded_installments"`
	PaymentInstallments  int             `json:"payment_installments"`
	RecordedTotalPaid    decimal.Decimal `json:"recorded_total_paid"`
	ScheduledTotalPaid   decimal.Decimal `json:"scheduled_total_paid"`
	PaymentsTotal        decimal.Decimal `json:"payments_total"`
	RecordedBalance      decimal.Decimal `json:"recorded_balance"`
	ScheduledBalance     decimal.Decimal `json:"scheduled_balance"`
	Difference           decimal.Decimal `json:"difference"`
	Issues               []string        `json:"issues,omitempty"`
	IsReconciled         bool            `json:"is_reconciled"`
	LastChecked          time.Time       `json:"last_checked"`
}

// ReconciliationResultFromUseCase converts a reconciliation result to response.
func ReconciliationResultFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResultResponse {
	return &ReconciliationResultResponse{
		LoanID:               r.LoanID,
		Status:               string(r.Status),
		RecordedInstallments: r.RecordedInstallments,
		PaymentInstallments:  r.PaymentInstallments,
		RecordedTotalPaid:    r.RecordedTotalPaid,
		ScheduledTotalPaid:   r.ScheduledTotalPaid,
		PaymentsTotal:        r.PaymentsTotal,
		RecordedBalance:      r.RecordedBalance,
		ScheduledBalance:     r.ScheduledBalance,
		Difference:           r.Difference,
		Issues:               r.Issues,
		IsReconciled:         r.IsReconciled,
		LastChecked:          r.LastChecked,
	}
}

// ReconciliationReportResponse represents a portfolio reconciliation.
type ReconciliationReportResponse struct {
	TotalLoans      int                             `json:"total_loans"`
	ReconciledLoans int                             `json:"reconciled_loans"`
	Discrepancies   []*ReconciliationResultResponse `json:"discrepancies"`
	CheckedAt       time.Time                       `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResultResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationResultFromUseCase(d)
	}

	return &ReconciliationReportResponse{
		TotalLoans:      r.TotalLoans,
		ReconciledLoans: r.ReconciledLoans,
		Discrepancies:   discrepancies,
		CheckedAt:       r.CheckedAt,
	}
}

// SweepReportResponse represents a portfolio delinquency classification.
type SweepReportResponse struct {
	AsOf             time.Time       `json:"as_of"`
	Scanned          int             `json:"scanned"`
	Current          int             `json:"current"`
	Delinquent       int             `json:"delinquent"`
	DelinquentLoans  []string        `json:"delinquent_loans"`
	OutstandingTotal decimal.Decimal `json:"outstanding_total"`
	OverdueTotal     decimal.Decimal `json:"overdue_total"`
	MaxDaysInArrears int             `json:"max_days_in_arrears"`
}

// SweepReportFromUseCase converts a sweep report to response.
func SweepReportFromUseCase(r *usecase.SweepReport) *SweepReportResponse {
	return &SweepReportResponse{
		AsOf:             r.AsOf,
		Scanned:          r.Scanned,
		Current:          r.Current,
		Delinquent:       r.Delinquent,
		DelinquentLoans:  r.DelinquentLoans,
		OutstandingTotal: r.OutstandingTotal,
		OverdueTotal:     r.OverdueTotal,
		MaxDaysInArrears: r.MaxDaysInArrears,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
