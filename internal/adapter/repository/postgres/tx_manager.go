package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goloan/internal/usecase"
)

// DefaultLockTimeout bounds how long a transaction waits for a loan row lock.
const DefaultLockTimeout = 5 * time.Second

type pgxPool interface {
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager. Transactions run at
// READ COMMITTED; loan rows are serialized with SELECT ... FOR UPDATE and a
// waiter gives up after the lock timeout with lock_not_available, which the
// Retrier retries.
type TxManager struct {
	pool        pgxPool
	lockTimeout time.Duration
}

// NewTxManager creates a new TxManager with DefaultLockTimeout.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool, DefaultLockTimeout)
}

func newTxManagerWithPool(pool pgxPool, lockTimeout time.Duration) *TxManager {
	return &TxManager{pool: pool, lockTimeout: lockTimeout}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}

	if m.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", m.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("set lock timeout: %w", err)
		}
	}

	return &Tx{tx: tx}, nil
}

// Tx is a loan-store transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. Rolling back after Commit is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx for the generated queries.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
