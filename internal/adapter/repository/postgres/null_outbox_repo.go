package postgres

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// NullOutboxRepository stands in for the outbox when OUTBOX_ENABLED is false.
// Loan mutations still commit; their events are counted and dropped.
type NullOutboxRepository struct {
	dropped atomic.Int64
}

func NewNullOutboxRepository() *NullOutboxRepository {
	return &NullOutboxRepository{}
}

func (r *NullOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	r.dropped.Add(1)
	log.Debug().
		Str("event_type", event.EventType).
		Str("loan_id", event.AggregateID).
		Msg("outbox disabled; dropping loan event")
	return nil
}

// Dropped reports how many events Create has discarded.
func (r *NullOutboxRepository) Dropped() int64 {
	return r.dropped.Load()
}

// GetUnpublished always returns no events, so the relay never publishes.
func (r *NullOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (r *NullOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return nil
}

func (r *NullOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (r *NullOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}
