package domain

import "errors"

var (
	// Engine errors
	ErrInvalidTerms        = errors.New("invalid loan terms")
	ErrInvalidRate         = errors.New("invalid interest rate")
	ErrInvalidPaymentCount = errors.New("invalid payment installment count")
	ErrIllegalTransition   = errors.New("illegal loan status transition")

	// Loan errors
	ErrLoanNotFound    = errors.New("loan not found")
	ErrVersionConflict = errors.New("loan was modified concurrently")

	// Payment errors
	ErrPaymentNotFound = errors.New("payment not found")
)
