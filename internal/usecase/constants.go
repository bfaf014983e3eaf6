package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// SimulationCacheTTL is how long simulated schedules stay cached
	SimulationCacheTTL = 24 * time.Hour

	// systemActor is recorded in audit logs when no caller is known
	systemActor = "system"

	// scanPageSize is the page size used when walking whole result sets
	scanPageSize = 500
)
