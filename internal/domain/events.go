package domain

import "time"

// Event types
const (
	EventTypeLoanSubmitted      = "loan.submitted"
	EventTypeLoanApproved       = "loan.approved"
	EventTypeLoanRejected       = "loan.rejected"
	EventTypeLoanDisbursed      = "loan.disbursed"
	EventTypeLoanCancelled      = "loan.cancelled"
	EventTypeLoanPaymentApplied = "loan.payment_applied"
	EventTypeLoanPaid           = "loan.paid"
)

// Aggregate types
const (
	AggregateTypeLoan = "loan"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// LoanStatusChangedEvent payload
type LoanStatusChangedEvent struct {
	LoanID     string `json:"loan_id"`
	MemberID   string `json:"member_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Principal  string `json:"principal"`
	EventAt    string `json:"event_at"`
}

// PaymentAppliedEvent payload
type PaymentAppliedEvent struct {
	LoanID             string `json:"loan_id"`
	PaymentID          string `json:"payment_id"`
	Installments       int    `json:"installments"`
	Amount             string `json:"amount"`
	InstallmentsPaid   int    `json:"installments_paid"`
	OutstandingBalance string `json:"outstanding_balance"`
	EventAt            string `json:"event_at"`
}

// StatusEventType maps a lifecycle target status to its event type.
func StatusEventType(to Status) string {
	switch to {
	case StatusPending:
		return EventTypeLoanSubmitted
	case StatusApproved:
		return EventTypeLoanApproved
	case StatusRejected:
		return EventTypeLoanRejected
	case StatusDisbursed:
		return EventTypeLoanDisbursed
	case StatusCancelled:
		return EventTypeLoanCancelled
	case StatusPaid:
		return EventTypeLoanPaid
	}
	return ""
}
