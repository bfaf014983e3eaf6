package integration

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goloan/internal/adapter/repository/postgres"
	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

type services struct {
	loanRepo    *postgres.LoanRepository
	paymentRepo *postgres.PaymentRepository
	outboxRepo  *postgres.OutboxRepository
	auditRepo   *postgres.AuditRepository

	loans          *usecase.LoanUseCase
	payments       *usecase.PaymentUseCase
	status         *usecase.StatusUseCase
	reconciliation *usecase.ReconciliationUseCase
	delinquency    *usecase.DelinquencyUseCase
}

func newServices(pool *pgxpool.Pool) *services {
	policy := domain.DefaultPolicy()
	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier(nil)

	s := &services{
		loanRepo:    postgres.NewLoanRepository(pool),
		paymentRepo: postgres.NewPaymentRepository(pool),
		outboxRepo:  postgres.NewOutboxRepository(pool),
		auditRepo:   postgres.NewAuditRepository(pool),
	}

	s.loans = usecase.NewLoanUseCase(txManager, s.loanRepo, s.outboxRepo, s.auditRepo, idGen, retrier, policy, nil)
	s.payments = usecase.NewPaymentUseCase(txManager, s.loanRepo, s.paymentRepo, s.outboxRepo, s.auditRepo, idGen, retrier, policy, nil)
	s.status = usecase.NewStatusUseCase(s.loanRepo, s.paymentRepo, policy)
	s.reconciliation = usecase.NewReconciliationUseCase(s.loanRepo, s.paymentRepo, policy, nil)
	s.delinquency = usecase.NewDelinquencyUseCase(s.loanRepo, policy, nil)
	return s
}
