package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// IdempotencyKeyHeader carries the key that makes a payment safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	ApplyPayment(ctx context.Context, input usecase.ApplyPaymentInput) (*usecase.PaymentResult, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ListPayments(ctx context.Context, input usecase.ListPaymentsInput) ([]*domain.Payment, error)
}

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Apply pays whole installments of a loan. A replayed key answers 200 with
// the original payment, a new payment answers 201.
func (h *PaymentHandler) Apply(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	var req dto.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput(loanID, r.Header.Get(IdempotencyKeyHeader))
	result, err := h.paymentUC.ApplyPayment(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply payment", err.Error())
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	writeJSON(w, status, dto.PaymentResultFromUseCase(result))
}

// Get retrieves a payment by ID.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	payment, err := h.paymentUC.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// ListByLoan lists the payments of a loan.
func (h *PaymentHandler) ListByLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	payments, err := h.paymentUC.ListPayments(r.Context(), usecase.ListPaymentsInput{
		LoanID: loanID,
		Limit:  parseIntQuery(r, "limit", 100),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list payments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentsFromDomain(payments))
}
