package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidMemberID       = errors.New("invalid member ID")
	ErrInvalidDescription    = errors.New("invalid loan description")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidReference      = errors.New("invalid payment reference")
	ErrInvalidIdempotencyKey = errors.New("invalid idempotency key")
)

// Validation constants
const (
	MaxPrincipal            = "1000000000000" // 1 trillion
	MaxAnnualRate           = 1000            // percent
	MaxTermMonths           = 600
	MaxMemberIDLength       = 64
	MaxDescriptionLength    = 500
	MaxReferenceLength      = 255
	MaxIdempotencyKeyLength = 255
)

var maxPrincipal = decimal.RequireFromString(MaxPrincipal)

// ValidateTerms checks the bounds of loan terms.
func ValidateTerms(terms LoanTerms) error {
	if !terms.Principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive, got %s", ErrInvalidTerms, terms.Principal)
	}

	if terms.Principal.GreaterThan(maxPrincipal) {
		return fmt.Errorf("%w: principal exceeds maximum of %s", ErrInvalidTerms, MaxPrincipal)
	}

	if terms.AnnualRate.IsNegative() {
		return fmt.Errorf("%w: annual rate %s is negative", ErrInvalidRate, terms.AnnualRate)
	}

	if terms.AnnualRate.GreaterThan(decimal.NewFromInt(MaxAnnualRate)) {
		return fmt.Errorf("%w: annual rate exceeds %d%%", ErrInvalidRate, MaxAnnualRate)
	}

	if terms.TermMonths < 1 {
		return fmt.Errorf("%w: term must be at least one month, got %d", ErrInvalidTerms, terms.TermMonths)
	}

	if terms.TermMonths > MaxTermMonths {
		return fmt.Errorf("%w: term exceeds %d months", ErrInvalidTerms, MaxTermMonths)
	}

	return nil
}

// ValidateMemberID validates the member a loan belongs to
func ValidateMemberID(memberID string) error {
	memberID = strings.TrimSpace(memberID)

	if memberID == "" {
		return fmt.Errorf("%w: member ID cannot be empty", ErrInvalidMemberID)
	}

	if len(memberID) > MaxMemberIDLength {
		return fmt.Errorf("%w: member ID exceeds %d characters", ErrInvalidMemberID, MaxMemberIDLength)
	}

	return nil
}

// ValidateDescription validates the free-text purpose of a loan
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}

	return nil
}

// ParsePaymentMethod normalizes a payment method, defaulting to cash.
func ParsePaymentMethod(method string) (PaymentMethod, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return PaymentMethodCash, nil
	}

	m := PaymentMethod(method)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidPaymentMethod, method)
	}

	return m, nil
}

// ValidateReference validates an external payment reference
func ValidateReference(reference string) error {
	if len(reference) > MaxReferenceLength {
		return fmt.Errorf("%w: reference exceeds %d characters", ErrInvalidReference, MaxReferenceLength)
	}

	return nil
}

// ValidateIdempotencyKey validates a client supplied idempotency key
func ValidateIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidIdempotencyKey)
	}

	if len(key) > MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: key exceeds %d characters", ErrInvalidIdempotencyKey, MaxIdempotencyKeyLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
