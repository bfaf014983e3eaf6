package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// StatusService defines the behavior needed by StatusHandler.
type StatusService interface {
	Status(ctx context.Context, loanID string, asOf time.Time) (*usecase.LoanStatus, error)
	CreditHistory(ctx context.Context, input usecase.CreditHistoryInput) (*usecase.CreditHistory, error)
}

// StatusHandler serves loan standing and member credit history.
type StatusHandler struct {
	statusUC StatusService
	now      func() time.Time
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(statusUC StatusService) *StatusHandler {
	return &StatusHandler{statusUC: statusUC, now: time.Now}
}

// Status classifies a loan and reports its arrears as of ?as_of (default today).
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	asOf, err := parseDateQuery(r, "as_of", h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	status, err := h.statusUC.Status(r.Context(), id, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get loan status", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanStatusFromUseCase(status))
}

// CreditHistory returns every loan of a member with its payments and a summary.
func (h *StatusHandler) CreditHistory(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")
	if memberID == "" {
		writeError(w, http.StatusBadRequest, "missing member ID", "")
		return
	}

	asOf, err := parseDateQuery(r, "as_of", h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	// moroso is derived, but it is a meaningful filter over reported statuses.
	status := domain.Status(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() && status != domain.StatusDelinquent {
		writeError(w, http.StatusBadRequest, "invalid status", string(status))
		return
	}

	history, err := h.statusUC.CreditHistory(r.Context(), usecase.CreditHistoryInput{
		MemberID: memberID,
		AsOf:     asOf,
		Status:   status,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get credit history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditHistoryFromUseCase(history))
}
