package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// MockLoanRepository is a mock implementation of LoanRepository.
// It stores copies so callers cannot mutate stored loans without Update.
type MockLoanRepository struct {
	mu    sync.RWMutex
	loans map[string]*domain.Loan

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Loan, error)
	ListByMemberFunc     func(ctx context.Context, memberID string, limit, offset int) ([]*domain.Loan, error)
	ListByStatusFunc     func(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.Loan, error)
}

func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		loans: make(map[string]*domain.Loan),
	}
}

// Put stores a loan directly, bypassing CreateFunc.
func (m *MockLoanRepository) Put(loan *domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *loan
	m.loans[loan.ID] = &stored
}

func (m *MockLoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, loan)
	}
	m.Put(loan)
	return nil
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if loan, ok := m.loans[id]; ok {
		found := *loan
		return &found, nil
	}
	return nil, domain.ErrLoanNotFound
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockLoanRepository) Update(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, loan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.loans[loan.ID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	if stored.Version != loan.Version {
		return domain.ErrVersionConflict
	}
	loan.Version++
	updated := *loan
	m.loans[loan.ID] = &updated
	return nil
}

func (m *MockLoanRepository) List(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return m.filter(func(*domain.Loan) bool { return true }, limit, offset), nil
}

func (m *MockLoanRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Loan, error) {
	if m.ListByMemberFunc != nil {
		return m.ListByMemberFunc(ctx, memberID, limit, offset)
	}
	return m.filter(func(l *domain.Loan) bool { return l.MemberID == memberID }, limit, offset), nil
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.Loan, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit, offset)
	}
	return m.filter(func(l *domain.Loan) bool { return l.Status == status }, limit, offset), nil
}

func (m *MockLoanRepository) filter(keep func(*domain.Loan) bool, limit, offset int) []*domain.Loan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var loans []*domain.Loan
	for _, loan := range m.loans {
		if keep(loan) {
			found := *loan
			loans = append(loans, &found)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return page(loans, limit, offset)
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments []*domain.Payment

	CreateFunc                func(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error
	GetByIDFunc               func(ctx context.Context, id string) (*domain.Payment, error)
	GetByIdempotencyKeyFunc   func(ctx context.Context, loanID, key string) (*domain.Payment, error)
	GetByIdempotencyKeyTxFunc func(ctx context.Context, tx usecase.Transaction, loanID, key string) (*domain.Payment, error)
	ListByLoanFunc            func(ctx context.Context, loanID string, limit, offset int) ([]*domain.Payment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{}
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.LoanID == payment.LoanID && p.IdempotencyKey == payment.IdempotencyKey {
			return fmt.Errorf("duplicate idempotency key %q for loan %s", payment.IdempotencyKey, payment.LoanID)
		}
	}
	m.payments = append(m.payments, payment)
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) GetByIdempotencyKey(ctx context.Context, loanID, key string) (*domain.Payment, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, loanID, key)
	}
	return m.byKey(loanID, key)
}

func (m *MockPaymentRepository) byKey(loanID, key string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.LoanID == loanID && p.IdempotencyKey == key {
			return p, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) GetByIdempotencyKeyTx(ctx context.Context, tx usecase.Transaction, loanID, key string) (*domain.Payment, error) {
	if m.GetByIdempotencyKeyTxFunc != nil {
		return m.GetByIdempotencyKeyTxFunc(ctx, tx, loanID, key)
	}
	return m.byKey(loanID, key)
}

func (m *MockPaymentRepository) ListByLoan(ctx context.Context, loanID string, limit, offset int) ([]*domain.Payment, error) {
	if m.ListByLoanFunc != nil {
		return m.ListByLoanFunc(ctx, loanID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var payments []*domain.Payment
	for _, p := range m.payments {
		if p.LoanID == loanID {
			payments = append(payments, p)
		}
	}
	return page(payments, limit, offset), nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			events = append(events, e)
		}
	}
	return page(events, limit, 0), nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.Events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			events = append(events, e)
		}
	}
	return page(events, limit, offset), nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}

// EventTypes returns the recorded event types in order.
func (m *MockOutboxRepository) EventTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.EventType)
	}
	return types
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	Logs []*domain.AuditLog

	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, l := range m.Logs {
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, l := range m.Logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockRetrier is a mock implementation of Retrier.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
	Calls     int
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	m.Calls++
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc func(ctx context.Context, key string) ([]byte, error)
	SetFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len returns the number of cached keys.
func (m *MockCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte(usecase.IdempotencyInFlight)
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
