package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/goloan/internal/adapter/http/handler"
	"github.com/iho/goloan/internal/adapter/http/middleware"
	"github.com/iho/goloan/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LoanHandler           *handler.LoanHandler
	PaymentHandler        *handler.PaymentHandler
	StatusHandler         *handler.StatusHandler
	SimulationHandler     *handler.SimulationHandler
	ReconciliationHandler *handler.ReconciliationHandler
	PortfolioHandler      *handler.PortfolioHandler
	HealthHandler         *handler.HealthHandler

	// Optional
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	MetricsHandler   http.Handler
	Logger           *zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(*cfg.Logger).Wrap)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequestMeta)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).WithTTL(cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Post("/simulations", cfg.SimulationHandler.Simulate)

		// Loans
		r.Route("/loans", func(r chi.Router) {
			r.Post("/", cfg.LoanHandler.Submit)
			r.Get("/", cfg.LoanHandler.List)
			r.Post("/originate", cfg.LoanHandler.Originate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.LoanHandler.Get)
				r.Get("/schedule", cfg.LoanHandler.Schedule)
				r.Get("/status", cfg.StatusHandler.Status)
				r.Post("/approve", cfg.LoanHandler.Approve)
				r.Post("/reject", cfg.LoanHandler.Reject)
				r.Post("/disburse", cfg.LoanHandler.Disburse)
				r.Post("/cancel", cfg.LoanHandler.Cancel)
				r.Post("/payments", cfg.PaymentHandler.Apply)
				r.Get("/payments", cfg.PaymentHandler.ListByLoan)
				r.Get("/reconciliation", cfg.ReconciliationHandler.Loan)
			})
		})

		r.Get("/payments/{id}", cfg.PaymentHandler.Get)
		r.Get("/members/{id}/credit-history", cfg.StatusHandler.CreditHistory)
		r.Get("/reconciliation", cfg.ReconciliationHandler.Report)
		r.Get("/portfolio/delinquency", cfg.PortfolioHandler.Delinquency)
	})

	return r
}
