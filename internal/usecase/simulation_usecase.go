package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/metrics"
)

// SimulationUseCase previews repayment schedules without storing anything.
type SimulationUseCase struct {
	cache   Cache
	policy  domain.Policy
	metrics *metrics.Metrics
}

// NewSimulationUseCase creates a new SimulationUseCase. cache may be nil.
func NewSimulationUseCase(cache Cache, policy domain.Policy, metrics *metrics.Metrics) *SimulationUseCase {
	return &SimulationUseCase{
		cache:   cache,
		policy:  policy,
		metrics: metrics,
	}
}

// SimulateInput represents the terms to simulate.
type SimulateInput struct {
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal
	TermMonths int
}

// Simulate returns the schedule the given terms would produce.
// Schedules depend only on terms and policy, so cached entries never go stale.
func (uc *SimulationUseCase) Simulate(ctx context.Context, input SimulateInput) (*domain.Schedule, error) {
	terms := domain.LoanTerms{
		Principal:  input.Principal,
		AnnualRate: input.AnnualRate,
		TermMonths: input.TermMonths,
	}

	if err := domain.ValidateTerms(terms); err != nil {
		return nil, err
	}

	key := uc.cacheKey(terms)

	if schedule, ok := uc.fromCache(ctx, key); ok {
		uc.record("hit")
		return schedule, nil
	}

	schedule, err := domain.NewSchedule(terms, uc.policy)
	if err != nil {
		return nil, err
	}

	uc.record("miss")
	uc.toCache(ctx, key, schedule)

	return schedule, nil
}

func (uc *SimulationUseCase) cacheKey(terms domain.LoanTerms) string {
	return fmt.Sprintf("simulation:%s:%s:%d:%d",
		terms.Principal.String(), terms.AnnualRate.String(), terms.TermMonths, uc.policy.MinorUnitPlaces)
}

func (uc *SimulationUseCase) fromCache(ctx context.Context, key string) (*domain.Schedule, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil, false
	}

	var schedule domain.Schedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached simulation")
		return nil, false
	}

	return &schedule, true
}

func (uc *SimulationUseCase) toCache(ctx context.Context, key string, schedule *domain.Schedule) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(schedule)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, key, data, SimulationCacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache simulation")
	}
}

func (uc *SimulationUseCase) record(result string) {
	if uc.metrics != nil {
		uc.metrics.SimulationsTotal.WithLabelValues(result).Inc()
	}
}
