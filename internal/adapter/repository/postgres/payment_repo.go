package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/postgres/generated"
	"github.com/iho/goloan/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	queries *generated.Queries
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return newPaymentRepositoryWithDB(pool)
}

func newPaymentRepositoryWithDB(db generated.DBTX) *PaymentRepository {
	return &PaymentRepository{queries: generated.New(db)}
}

// Create inserts a payment. The (loan_id, idempotency_key) unique index
// rejects a second payment under the same key.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	err = r.queries.WithTx(ptx).CreatePayment(ctx, generated.CreatePaymentParams{
		ID:                    payment.ID,
		LoanID:                payment.LoanID,
		Installments:          int32(payment.Installments),
		Amount:                decimalToNumeric(payment.Amount),
		Method:                string(payment.Method),
		Reference:             payment.Reference,
		IdempotencyKey:        payment.IdempotencyKey,
		InstallmentsPaidAfter: int32(payment.InstallmentsPaidAfter),
		PaidAt:                timeToPgTimestamptz(payment.PaidAt),
		CreatedAt:             timeToPgTimestamptz(time.Now().UTC()),
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("duplicate idempotency key %q for loan %s: %w", payment.IdempotencyKey, payment.LoanID, err)
	}

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row, err := r.queries.GetPaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	return rowToPayment(row), nil
}

// GetByIdempotencyKey retrieves a payment by loan and idempotency key.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, loanID, key string) (*domain.Payment, error) {
	return r.getByIdempotencyKey(ctx, r.queries, loanID, key)
}

// GetByIdempotencyKeyTx looks the key up inside tx.
func (r *PaymentRepository) GetByIdempotencyKeyTx(ctx context.Context, tx usecase.Transaction, loanID, key string) (*domain.Payment, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	return r.getByIdempotencyKey(ctx, r.queries.WithTx(ptx), loanID, key)
}

func (r *PaymentRepository) getByIdempotencyKey(ctx context.Context, queries *generated.Queries, loanID, key string) (*domain.Payment, error) {
	row, err := queries.GetPaymentByIdempotencyKey(ctx, generated.GetPaymentByIdempotencyKeyParams{
		LoanID:         loanID,
		IdempotencyKey: key,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	return rowToPayment(row), nil
}

// ListByLoan lists a loan's payments in the order they were applied.
func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID string, limit, offset int) ([]*domain.Payment, error) {
	rows, err := r.queries.ListPaymentsByLoan(ctx, generated.ListPaymentsByLoanParams{
		LoanID: loanID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	payments := make([]*domain.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, rowToPayment(row))
	}

	return payments, nil
}

func rowToPayment(row generated.Payment) *domain.Payment {
	return &domain.Payment{
		ID:                    row.ID,
		LoanID:                row.LoanID,
		Installments:          int(row.Installments),
		Amount:                numericToDecimal(row.Amount),
		Method:                domain.PaymentMethod(row.Method),
		Reference:             row.Reference,
		IdempotencyKey:        row.IdempotencyKey,
		InstallmentsPaidAfter: int(row.InstallmentsPaidAfter),
		PaidAt:                row.PaidAt.Time,
	}
}
