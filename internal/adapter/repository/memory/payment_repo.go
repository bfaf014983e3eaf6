package memory

import (
	"context"
	"fmt"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	store *Store
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(store *Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

// Create records a payment when tx commits. (loan, idempotency key) is unique.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	t, err := memoryTx(tx)
	if err != nil {
		return err
	}

	if _, err := r.GetByIdempotencyKeyTx(ctx, tx, payment.LoanID, payment.IdempotencyKey); err == nil {
		return fmt.Errorf("duplicate idempotency key %q for loan %s", payment.IdempotencyKey, payment.LoanID)
	}

	stored := clonePayment(payment)

	t.mu.Lock()
	t.payments = append(t.payments, stored)
	t.mu.Unlock()

	return t.stage(func(s *Store) {
		s.payments = append(s.payments, stored)
	})
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.payments {
		if p.ID == id {
			return clonePayment(p), nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

// GetByIdempotencyKey retrieves a committed payment by loan and key.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, loanID, key string) (*domain.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.payments {
		if p.LoanID == loanID && p.IdempotencyKey == key {
			return clonePayment(p), nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

// GetByIdempotencyKeyTx also sees payments written earlier in tx.
func (r *PaymentRepository) GetByIdempotencyKeyTx(ctx context.Context, tx usecase.Transaction, loanID, key string) (*domain.Payment, error) {
	t, err := memoryTx(tx)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	for _, p := range t.payments {
		if p.LoanID == loanID && p.IdempotencyKey == key {
			t.mu.Unlock()
			return clonePayment(p), nil
		}
	}
	t.mu.Unlock()

	return r.GetByIdempotencyKey(ctx, loanID, key)
}

// ListByLoan lists a loan's payments in the order they were applied.
func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID string, limit, offset int) ([]*domain.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var payments []*domain.Payment
	for _, p := range r.store.payments {
		if p.LoanID == loanID {
			payments = append(payments, clonePayment(p))
		}
	}
	return page(payments, limit, offset), nil
}
