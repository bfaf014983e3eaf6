package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/usecase"
)

// SweepService defines the behavior needed by PortfolioHandler.
type SweepService interface {
	Sweep(ctx context.Context, asOf time.Time) (*usecase.SweepReport, error)
}

// PortfolioHandler serves portfolio-wide delinquency figures.
type PortfolioHandler struct {
	sweepUC SweepService
	now     func() time.Time
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(sweepUC SweepService) *PortfolioHandler {
	return &PortfolioHandler{sweepUC: sweepUC, now: time.Now}
}

// Delinquency classifies every disbursed loan as of ?as_of.
func (h *PortfolioHandler) Delinquency(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDateQuery(r, "as_of", h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	report, err := h.sweepUC.Sweep(r.Context(), asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to classify portfolio", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepReportFromUseCase(report))
}
