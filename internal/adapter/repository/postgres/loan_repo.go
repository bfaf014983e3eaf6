package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/postgres/generated"
	"github.com/iho/goloan/internal/usecase"
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	queries *generated.Queries
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return newLoanRepositoryWithDB(pool)
}

func newLoanRepositoryWithDB(db generated.DBTX) *LoanRepository {
	return &LoanRepository{queries: generated.New(db)}
}

// Create inserts a new loan.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(ptx).CreateLoan(ctx, generated.CreateLoanParams{
		ID:                 loan.ID,
		MemberID:           loan.MemberID,
		Description:        loan.Description,
		Principal:          decimalToNumeric(loan.Terms.Principal),
		AnnualRate:         decimalToNumeric(loan.Terms.AnnualRate),
		TermMonths:         int32(loan.Terms.TermMonths),
		Status:             string(loan.Status),
		DisbursedAt:        optionalTimestamptz(loan.DisbursedAt),
		InstallmentsPaid:   int32(loan.InstallmentsPaid),
		TotalPaid:          decimalToNumeric(loan.TotalPaid),
		OutstandingBalance: decimalToNumeric(loan.OutstandingBalance),
		Version:            loan.Version,
		CreatedAt:          timeToPgTimestamptz(loan.CreatedAt),
		UpdatedAt:          timeToPgTimestamptz(loan.UpdatedAt),
	})
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	row, err := r.queries.GetLoanByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	return rowToLoan(row), nil
}

// GetByIDForUpdate retrieves a loan by ID with a FOR UPDATE lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(ptx).GetLoanByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	return rowToLoan(row), nil
}

// Update writes the loan's mutable fields if its version is still current
// and advances loan.Version.
func (r *LoanRepository) Update(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	affected, err := r.queries.WithTx(ptx).UpdateLoan(ctx, generated.UpdateLoanParams{
		ID:                 loan.ID,
		Version:            loan.Version,
		Status:             string(loan.Status),
		DisbursedAt:        optionalTimestamptz(loan.DisbursedAt),
		InstallmentsPaid:   int32(loan.InstallmentsPaid),
		TotalPaid:          decimalToNumeric(loan.TotalPaid),
		OutstandingBalance: decimalToNumeric(loan.OutstandingBalance),
		UpdatedAt:          timeToPgTimestamptz(loan.UpdatedAt),
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return fmt.Errorf("%w: loan %s at version %d", domain.ErrVersionConflict, loan.ID, loan.Version)
	}

	loan.Version++

	return nil
}

// List lists loans with pagination.
func (r *LoanRepository) List(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	rows, err := r.queries.ListLoans(ctx, generated.ListLoansParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToLoans(rows), nil
}

// ListByMember lists the loans of a member.
func (r *LoanRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Loan, error) {
	rows, err := r.queries.ListLoansByMember(ctx, generated.ListLoansByMemberParams{
		MemberID: memberID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToLoans(rows), nil
}

// ListByStatus lists loans with the given stored status.
func (r *LoanRepository) ListByStatus(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.Loan, error) {
	rows, err := r.queries.ListLoansByStatus(ctx, generated.ListLoansByStatusParams{
		Status: string(status),
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToLoans(rows), nil
}

func rowsToLoans(rows []generated.Loan) []*domain.Loan {
	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, rowToLoan(row))
	}

	return loans
}

func rowToLoan(row generated.Loan) *domain.Loan {
	return &domain.Loan{
		ID:          row.ID,
		MemberID:    row.MemberID,
		Description: row.Description,
		Terms: domain.LoanTerms{
			Principal:  numericToDecimal(row.Principal),
			AnnualRate: numericToDecimal(row.AnnualRate),
			TermMonths: int(row.TermMonths),
		},
		Status:             domain.Status(row.Status),
		DisbursedAt:        timestamptzPtr(row.DisbursedAt),
		InstallmentsPaid:   int(row.InstallmentsPaid),
		TotalPaid:          numericToDecimal(row.TotalPaid),
		OutstandingBalance: numericToDecimal(row.OutstandingBalance),
		Version:            row.Version,
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
}
