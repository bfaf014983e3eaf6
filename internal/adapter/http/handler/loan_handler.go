package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	Submit(ctx context.Context, input usecase.SubmitLoanInput) (*domain.Loan, error)
	Originate(ctx context.Context, input usecase.OriginateLoanInput) (*domain.Loan, error)
	Approve(ctx context.Context, id string) (*domain.Loan, error)
	Reject(ctx context.Context, id string) (*domain.Loan, error)
	Disburse(ctx context.Context, id string, at *time.Time) (*domain.Loan, error)
	Cancel(ctx context.Context, id string) (*domain.Loan, error)
	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	GetSchedule(ctx context.Context, id string) (*usecase.LoanSchedule, error)
	ListLoans(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error)
}

// LoanHandler handles loan-related HTTP requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// Submit records a new loan application.
func (h *LoanHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.Submit(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to submit loan", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Originate creates a disbursed loan from an application approved elsewhere.
func (h *LoanHandler) Originate(w http.ResponseWriter, r *http.Request) {
	var req dto.OriginateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.Originate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to originate loan", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Approve approves a pending loan.
func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve", h.loanUC.Approve)
}

// Reject rejects a pending loan.
func (h *LoanHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject", h.loanUC.Reject)
}

// Cancel cancels a loan that has not been disbursed.
func (h *LoanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel", h.loanUC.Cancel)
}

// Disburse disburses an approved loan, optionally backdated.
func (h *LoanHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	var req dto.DisburseRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.transition(w, r, "disburse", func(ctx context.Context, id string) (*domain.Loan, error) {
		return h.loanUC.Disburse(ctx, id, req.DisbursedAt)
	})
}

func (h *LoanHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	apply func(ctx context.Context, id string) (*domain.Loan, error),
) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	loan, err := apply(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to "+action+" loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Get retrieves a loan by ID.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	loan, err := h.loanUC.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Schedule returns a loan with its repayment plan.
func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	schedule, err := h.loanUC.GetSchedule(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get schedule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanScheduleFromUseCase(schedule))
}

// List lists loans, optionally filtered by member_id or status.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.Status(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid status", string(status))
		return
	}

	input := usecase.ListLoansInput{
		MemberID: r.URL.Query().Get("member_id"),
		Status:   status,
		Limit:    parseIntQuery(r, "limit", 100),
		Offset:   parseIntQuery(r, "offset", 0),
	}

	loans, err := h.loanUC.ListLoans(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoansFromDomain(loans))
}
