package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/goloan/internal/domain"
)

func retry(ctx context.Context, retrier Retrier, operation func() error) error {
	if retrier == nil {
		return operation()
	}
	return retrier.Retry(ctx, operation)
}

func newAuditLog(
	ctx context.Context,
	idGen IDGenerator,
	action domain.AuditAction,
	resourceType, resourceID string,
	before, after any,
	now time.Time,
) *domain.AuditLog {
	meta := domain.RequestMetaFrom(ctx)

	actorID := meta.ActorID
	if actorID == "" {
		actorID = systemActor
	}

	return &domain.AuditLog{
		ID:           idGen.Generate(),
		ActorID:      actorID,
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}
}

func loanStatusEvent(idGen IDGenerator, loan *domain.Loan, from domain.Status, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.StatusEventType(loan.Status),
		Payload: map[string]any{
			"loan_id":     loan.ID,
			"member_id":   loan.MemberID,
			"from_status": string(from),
			"to_status":   string(loan.Status),
			"principal":   loan.Terms.Principal.String(),
			"event_at":    now.Format(time.RFC3339),
		},
		CreatedAt: now,
		Published: false,
	}
}

// loanState is the audit snapshot of a loan.
func loanState(loan *domain.Loan) map[string]any {
	state := map[string]any{
		"status":              string(loan.Status),
		"installments_paid":   loan.InstallmentsPaid,
		"total_paid":          loan.TotalPaid.String(),
		"outstanding_balance": loan.OutstandingBalance.String(),
		"version":             loan.Version,
	}
	if loan.DisbursedAt != nil {
		state["disbursed_at"] = loan.DisbursedAt.Format(time.RFC3339)
	}
	return state
}

// errorType labels an error for metrics.
func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrInvalidTerms), errors.Is(err, domain.ErrInvalidRate):
		return "invalid_terms"
	case errors.Is(err, domain.ErrInvalidPaymentCount):
		return "invalid_payment_count"
	case errors.Is(err, domain.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, domain.ErrLoanNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrVersionConflict):
		return "version_conflict"
	default:
		return "internal"
	}
}
