package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	store *Store
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(store *Store) *LoanRepository {
	return &LoanRepository{store: store}
}

// Create stores a new loan when tx commits.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	t, err := memoryTx(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	_, exists := r.store.loans[loan.ID]
	r.store.mu.RUnlock()
	if exists {
		return fmt.Errorf("loan %s already exists", loan.ID)
	}

	stored := cloneLoan(loan)
	return t.stage(func(s *Store) {
		s.loans[stored.ID] = stored
	})
}

// GetByID retrieves a committed loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	loan, ok := r.store.loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	return cloneLoan(loan), nil
}

// GetByIDForUpdate locks the loan until tx ends and returns its committed state.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	t, err := memoryTx(tx)
	if err != nil {
		return nil, err
	}

	if err := t.lock(ctx, id); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Update stores loan when tx commits if its version is current.
func (r *LoanRepository) Update(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	t, err := memoryTx(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	stored, ok := r.store.loans[loan.ID]
	r.store.mu.RUnlock()
	if !ok {
		return domain.ErrLoanNotFound
	}
	if stored.Version != loan.Version {
		return fmt.Errorf("%w: loan %s is at version %d, update based on %d",
			domain.ErrVersionConflict, loan.ID, stored.Version, loan.Version)
	}

	loan.Version++
	updated := cloneLoan(loan)

	return t.stage(func(s *Store) {
		s.loans[updated.ID] = updated
	})
}

// List lists loans ordered by creation time.
func (r *LoanRepository) List(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	return r.filter(func(*domain.Loan) bool { return true }, limit, offset), nil
}

// ListByMember lists the loans of a member.
func (r *LoanRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Loan, error) {
	return r.filter(func(l *domain.Loan) bool { return l.MemberID == memberID }, limit, offset), nil
}

// ListByStatus lists loans with the given stored status.
func (r *LoanRepository) ListByStatus(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.Loan, error) {
	return r.filter(func(l *domain.Loan) bool { return l.Status == status }, limit, offset), nil
}

func (r *LoanRepository) filter(keep func(*domain.Loan) bool, limit, offset int) []*domain.Loan {
	r.store.mu.RLock()
	var loans []*domain.Loan
	for _, l := range r.store.loans {
		if keep(l) {
			loans = append(loans, cloneLoan(l))
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].CreatedAt.Equal(loans[j].CreatedAt) {
			return loans[i].CreatedAt.Before(loans[j].CreatedAt)
		}
		return loans[i].ID < loans[j].ID
	})

	return page(loans, limit, offset)
}
