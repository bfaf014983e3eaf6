package domain

import (
	"context"
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for compliance and debugging
type AuditLog struct {
	ID           string
	ActorID      string // Who performed the action
	Action       string // What action (loan.approve, payment.apply, etc.)
	ResourceType string // Type of resource (loan, payment)
	ResourceID   string // ID of the resource
	IPAddress    string // Client IP address
	UserAgent    string // Client user agent
	RequestID    string // Request ID for tracing
	BeforeState  JSON   // State before the action
	AfterState   JSON   // State after the action
	Status       string // success, failure, error
	ErrorMessage string // If status=error, the error message
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Loan actions
	AuditActionLoanSubmit    AuditAction = "loan.submit"
	AuditActionLoanOriginate AuditAction = "loan.originate"
	AuditActionLoanApprove   AuditAction = "loan.approve"
	AuditActionLoanReject    AuditAction = "loan.reject"
	AuditActionLoanDisburse  AuditAction = "loan.disburse"
	AuditActionLoanCancel    AuditAction = "loan.cancel"

	// Payment actions
	AuditActionPaymentApply AuditAction = "payment.apply"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// Resource types
const (
	ResourceTypeLoan    = "loan"
	ResourceTypePayment = "payment"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}

// RequestMeta identifies who issued a request and from where.
type RequestMeta struct {
	ActorID   string
	IPAddress string
	UserAgent string
	RequestID string
}

type requestMetaKey struct{}

// WithRequestMeta stores request metadata on the context.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the metadata stored by WithRequestMeta.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}
