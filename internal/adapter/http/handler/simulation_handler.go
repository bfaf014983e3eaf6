package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// SimulationService defines the behavior needed by SimulationHandler.
type SimulationService interface {
	Simulate(ctx context.Context, input usecase.SimulateInput) (*domain.Schedule, error)
}

// SimulationHandler computes repayment plans without creating loans.
type SimulationHandler struct {
	simulationUC SimulationService
}

// NewSimulationHandler creates a new SimulationHandler.
func NewSimulationHandler(simulationUC SimulationService) *SimulationHandler {
	return &SimulationHandler{simulationUC: simulationUC}
}

// Simulate returns the schedule for the requested terms.
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req dto.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	schedule, err := h.simulationUC.Simulate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to simulate loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(schedule))
}
