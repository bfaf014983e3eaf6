package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcileLoan(ctx context.Context, loanID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler checks stored loan totals against schedules and payments.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// Report reconciles every loan.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}

// Loan reconciles one loan.
func (h *ReconciliationHandler) Loan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	result, err := h.reconciliationUC.ReconcileLoan(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationResultFromUseCase(result))
}
