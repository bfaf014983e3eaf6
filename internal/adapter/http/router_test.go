package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/adapter/http/handler"
	apimiddleware "github.com/iho/goloan/internal/adapter/http/middleware"
	"github.com/iho/goloan/internal/adapter/repository/memory"
	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
	"github.com/iho/goloan/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"principal":"1200000","annual_rate":"0","term_months":6}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/simulations",
		"POST /api/v1/loans/",
		"GET /api/v1/loans/",
		"POST /api/v1/loans/originate",
		"GET /api/v1/loans/{id}/status",
		"GET /api/v1/loans/{id}/schedule",
		"POST /api/v1/loans/{id}/payments",
		"GET /api/v1/loans/{id}/payments",
		"POST /api/v1/loans/{id}/approve",
		"POST /api/v1/loans/{id}/disburse",
		"GET /api/v1/payments/{id}",
		"GET /api/v1/members/{id}/credit-history",
		"GET /api/v1/reconciliation",
		"GET /api/v1/portfolio/delinquency",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestRouter_LoanLifecycleEndToEnd(t *testing.T) {
	router := NewRouter(newRouterConfig())

	// Submit, approve and disburse a loan dated 2024-01-15.
	rec := do(t, router, http.MethodPost, "/api/v1/loans/",
		`{"member_id":"member-1","principal":"5000000","annual_rate":"18","term_months":24}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var loan dto.LoanResponse
	decode(t, rec, &loan)
	if loan.Status != "pendiente" {
		t.Fatalf("expected pendiente, got %s", loan.Status)
	}

	if rec := do(t, router, http.MethodPost, "/api/v1/loans/"+loan.ID+"/approve", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, router, http.MethodPost, "/api/v1/loans/"+loan.ID+"/disburse", `{"disbursed_at":"2024-01-15T00:00:00Z"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disburse: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &loan)
	if loan.Status != "desembolsado" || !loan.OutstandingBalance.Equal(decimal.NewFromInt(5000000)) {
		t.Fatalf("unexpected disbursed loan: %+v", loan)
	}

	if rec := do(t, router, http.MethodPost, "/api/v1/loans/"+loan.ID+"/cancel", "", nil); rec.Code != http.StatusConflict {
		t.Fatalf("cancel after disbursement: expected 409, got %d", rec.Code)
	}

	// Pay one installment, then replay it.
	key := map[string]string{apimiddleware.IdempotencyKeyHeader: "pay-1"}
	rec = do(t, router, http.MethodPost, "/api/v1/loans/"+loan.ID+"/payments", `{"installments":1,"method":"pse"}`, key)
	if rec.Code != http.StatusCreated {
		t.Fatalf("pay: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var paid dto.PaymentResultResponse
	decode(t, rec, &paid)
	if !paid.Payment.Amount.Equal(decimal.NewFromInt(249621)) || !paid.Loan.OutstandingBalance.Equal(decimal.NewFromInt(4825379)) {
		t.Fatalf("unexpected payment: %+v / %+v", paid.Payment, paid.Loan)
	}

	rec = do(t, router, http.MethodPost, "/api/v1/loans/"+loan.ID+"/payments", `{"installments":1,"method":"pse"}`, key)
	if rec.Code != http.StatusOK {
		t.Fatalf("replay: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var replayed dto.PaymentResultResponse
	decode(t, rec, &replayed)
	if !replayed.Replayed || replayed.Payment.ID != paid.Payment.ID || replayed.Loan.InstallmentsPaid != 1 {
		t.Fatalf("unexpected replay: %+v", replayed)
	}

	rec = do(t, router, http.MethodPost, "/api/v1/loans/"+loan.ID+"/payments", `{"installments":24,"idempotency_key":"pay-2"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("over-payment: expected 400, got %d", rec.Code)
	}

	// Three months in, one paid: two in arrears.
	rec = do(t, router, http.MethodGet, "/api/v1/loans/"+loan.ID+"/status?as_of=2024-04-15", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var status dto.LoanStatusResponse
	decode(t, rec, &status)
	if status.Status != "moroso" || status.Delinquency.MonthsInArrears != 2 || status.Delinquency.DaysInArrears != 31 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if !status.Delinquency.CurrentPenalty.Equal(decimal.RequireFromString("0.04")) ||
		!status.Delinquency.NextPenalty.Equal(decimal.RequireFromString("0.06")) {
		t.Fatalf("unexpected penalties: %+v", status.Delinquency)
	}

	rec = do(t, router, http.MethodGet, "/api/v1/members/member-1/credit-history?as_of=2024-04-15", "", nil)
	var history dto.CreditHistoryResponse
	decode(t, rec, &history)
	if history.Summary.TotalLoans != 1 || history.Summary.DelinquentLoans != 1 || history.Summary.PaymentsRecorded != 1 {
		t.Fatalf("unexpected credit history: %+v", history.Summary)
	}

	rec = do(t, router, http.MethodGet, "/api/v1/loans/"+loan.ID+"/payments", "", nil)
	var payments []dto.PaymentResponse
	decode(t, rec, &payments)
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}

	rec = do(t, router, http.MethodGet, "/api/v1/reconciliation", "", nil)
	var report dto.ReconciliationReportResponse
	decode(t, rec, &report)
	if report.TotalLoans != 1 || report.ReconciledLoans != 1 || len(report.Discrepancies) != 0 {
		t.Fatalf("unexpected reconciliation: %+v", report)
	}

	rec = do(t, router, http.MethodGet, "/api/v1/portfolio/delinquency?as_of=2024-04-15", "", nil)
	var sweep dto.SweepReportResponse
	decode(t, rec, &sweep)
	if sweep.Scanned != 1 || sweep.Delinquent != 1 {
		t.Fatalf("unexpected sweep: %+v", sweep)
	}

	if rec := do(t, router, http.MethodGet, "/api/v1/loans/missing", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown loan, got %d", rec.Code)
	}
}

func TestRouter_IdempotentReplayThroughStore(t *testing.T) {
	store := &mapIdempotencyStore{values: map[string][]byte{}}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	rec := do(t, router, http.MethodPost, "/api/v1/loans/originate",
		`{"member_id":"member-1","principal":"1200000","annual_rate":"0","term_months":6,"disbursed_at":"2024-01-15T00:00:00Z"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("originate: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var loan dto.LoanResponse
	decode(t, rec, &loan)

	key := map[string]string{apimiddleware.IdempotencyKeyHeader: "pay-6"}
	first := do(t, router, http.MethodPost, "/api/v1/loans/"+loan.ID+"/payments", `{"installments":6}`, key)
	second := do(t, router, http.MethodPost, "/api/v1/loans/"+loan.ID+"/payments", `{"installments":6}`, key)

	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("expected both responses to be 201, got %d and %d", first.Code, second.Code)
	}
	if second.Header().Get(apimiddleware.IdempotencyReplayHeader) != "true" {
		t.Fatal("expected second response to be replayed by the middleware")
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatalf("replayed body differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}

	var result dto.PaymentResultResponse
	decode(t, second, &result)
	if result.Loan.Status != "pagado" || !result.Loan.OutstandingBalance.IsZero() {
		t.Fatalf("expected loan paid off, got %+v", result.Loan)
	}
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := memory.NewStore()
	txManager := memory.NewTxManager(store)
	loanRepo := memory.NewLoanRepository(store)
	paymentRepo := memory.NewPaymentRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)
	auditRepo := memory.NewAuditRepository(store)
	idGen := mocks.NewMockIDGenerator()
	policy := domain.DefaultPolicy()

	loanUC := usecase.NewLoanUseCase(txManager, loanRepo, outboxRepo, auditRepo, idGen, nil, policy, nil)
	paymentUC := usecase.NewPaymentUseCase(txManager, loanRepo, paymentRepo, outboxRepo, auditRepo, idGen, nil, policy, nil)

	cfg := RouterConfig{
		LoanHandler:           handler.NewLoanHandler(loanUC),
		PaymentHandler:        handler.NewPaymentHandler(paymentUC),
		StatusHandler:         handler.NewStatusHandler(usecase.NewStatusUseCase(loanRepo, paymentRepo, policy)),
		SimulationHandler:     handler.NewSimulationHandler(usecase.NewSimulationUseCase(nil, policy, nil)),
		ReconciliationHandler: handler.NewReconciliationHandler(usecase.NewReconciliationUseCase(loanRepo, paymentRepo, policy, nil)),
		PortfolioHandler:      handler.NewPortfolioHandler(usecase.NewDelinquencyUseCase(loanRepo, policy, nil)),
		HealthHandler:         handler.NewHealthHandler(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}

type mapIdempotencyStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func (s *mapIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok {
		return true, v, nil
	}
	s.values[key] = []byte(usecase.IdempotencyInFlight)
	return false, nil, nil
}

func (s *mapIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = response
	return nil
}
