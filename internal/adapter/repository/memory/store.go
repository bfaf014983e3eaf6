// Package memory provides in-process repositories with the same transactional
// guarantees as the Postgres adapter: a per-loan lock held until commit or
// rollback and an optimistic version check on update.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// ErrForeignTransaction is returned when a repository receives a transaction
// that was not started by this store's TxManager.
var ErrForeignTransaction = errors.New("transaction does not belong to the memory store")

// Store holds committed state shared by the memory repositories.
type Store struct {
	mu       sync.RWMutex
	loans    map[string]*domain.Loan
	payments []*domain.Payment
	events   []*domain.OutboxEvent
	audit    []*domain.AuditLog

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		loans: make(map[string]*domain.Loan),
		locks: make(map[string]chan struct{}),
	}
}

func (s *Store) lockFor(loanID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[loanID]
	if !ok {
		lock = make(chan struct{}, 1)
		s.locks[loanID] = lock
	}
	return lock
}

// TxManager implements usecase.TransactionManager over a Store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: m.store, held: make(map[string]chan struct{})}, nil
}

// Tx buffers writes until Commit and holds the loan locks it acquired.
type Tx struct {
	store *Store

	mu       sync.Mutex
	held     map[string]chan struct{}
	ops      []func(*Store)
	payments []*domain.Payment
	done     bool
}

// lock acquires the loan's lock for the rest of the transaction.
func (t *Tx) lock(ctx context.Context, loanID string) error {
	t.mu.Lock()
	if _, ok := t.held[loanID]; ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	lock := t.store.lockFor(loanID)
	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	t.mu.Lock()
	t.held[loanID] = lock
	t.mu.Unlock()
	return nil
}

func (t *Tx) stage(op func(*Store)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return errors.New("transaction already closed")
	}
	t.ops = append(t.ops, op)
	return nil
}

// Commit applies the buffered writes atomically and releases the locks.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return errors.New("transaction already closed")
	}

	t.store.mu.Lock()
	for _, op := range t.ops {
		op(t.store)
	}
	t.store.mu.Unlock()

	t.release()
	return nil
}

// Rollback discards the buffered writes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}
	t.release()
	return nil
}

func (t *Tx) release() {
	for id, lock := range t.held {
		<-lock
		delete(t.held, id)
	}
	t.ops = nil
	t.payments = nil
	t.done = true
}

func memoryTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, ErrForeignTransaction
	}
	return t, nil
}

func cloneLoan(l *domain.Loan) *domain.Loan {
	c := *l
	if l.DisbursedAt != nil {
		at := *l.DisbursedAt
		c.DisbursedAt = &at
	}
	return &c
}

func clonePayment(p *domain.Payment) *domain.Payment {
	c := *p
	return &c
}

// page returns the window [offset, offset+limit) of items.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
