package memory

import (
	"context"
	"time"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create records an event when tx commits.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := memoryTx(tx)
	if err != nil {
		return err
	}

	stored := *event
	return t.stage(func(s *Store) {
		s.events = append(s.events, &stored)
	})
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var events []*domain.OutboxEvent
	for _, e := range r.store.events {
		if e.Published {
			continue
		}
		c := *e
		events = append(events, &c)
		if limit > 0 && len(events) == limit {
			break
		}
	}
	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.events {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
		}
	}
	return nil
}

// GetByAggregate retrieves events for a specific aggregate.
func (r *OutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var events []*domain.OutboxEvent
	for _, e := range r.store.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			c := *e
			events = append(events, &c)
		}
	}
	return page(events, limit, offset), nil
}

// DeletePublished deletes published events older than before.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.events[:0]
	for _, e := range r.store.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.store.events = kept
	return nil
}
