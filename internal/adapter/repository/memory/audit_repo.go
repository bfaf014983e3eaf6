package memory

import (
	"context"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// CreateTx records an audit log when tx commits.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	t, err := memoryTx(tx)
	if err != nil {
		return err
	}

	stored := *log
	return t.stage(func(s *Store) {
		s.audit = append(s.audit, &stored)
	})
}

// List retrieves audit logs matching filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var logs []*domain.AuditLog
	for i := len(r.store.audit) - 1; i >= 0; i-- {
		l := r.store.audit[i]
		if !matches(l, filter) {
			continue
		}
		c := *l
		logs = append(logs, &c)
	}
	return page(logs, filter.Limit, filter.Offset), nil
}

// GetByResourceID retrieves all audit logs for a specific resource.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return r.List(ctx, domain.AuditFilter{ResourceType: resourceType, ResourceID: resourceID})
}

func matches(l *domain.AuditLog, f domain.AuditFilter) bool {
	switch {
	case f.ActorID != "" && l.ActorID != f.ActorID:
		return false
	case f.Action != "" && l.Action != f.Action:
		return false
	case f.ResourceType != "" && l.ResourceType != f.ResourceType:
		return false
	case f.ResourceID != "" && l.ResourceID != f.ResourceID:
		return false
	case f.StartDate != nil && l.CreatedAt.Before(*f.StartDate):
		return false
	case f.EndDate != nil && l.CreatedAt.After(*f.EndDate):
		return false
	}
	return true
}
