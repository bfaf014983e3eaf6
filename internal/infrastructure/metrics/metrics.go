package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Loan metrics
	LoansSubmitted   prometheus.Counter
	LoansOriginated  prometheus.Counter
	LoanTransitions  *prometheus.CounterVec
	LoanErrors       *prometheus.CounterVec
	LoanPrincipal    prometheus.Histogram
	SimulationsTotal *prometheus.CounterVec

	// Payment metrics
	PaymentsApplied    prometheus.Counter
	InstallmentsPaid   prometheus.Counter
	PaymentAmount      prometheus.Histogram
	PaymentDuration    prometheus.Histogram
	PaymentReplays     prometheus.Counter
	PaymentErrors      *prometheus.CounterVec
	LoansPaidOff       prometheus.Counter
	ReconciliationDiff prometheus.Gauge

	// Portfolio metrics, refreshed by the delinquency sweep
	PortfolioLoans       *prometheus.GaugeVec
	PortfolioOutstanding prometheus.Gauge
	PortfolioOverdue     prometheus.Gauge
	SweepDuration        prometheus.Histogram

	// Database metrics
	DBErrors  *prometheus.CounterVec
	DBRetries prometheus.Counter

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all Prometheus metrics on reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Loan metrics
		LoansSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_loans_submitted_total",
			Help: "Total number of loan applications submitted",
		}),
		LoansOriginated: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_loans_originated_total",
			Help: "Total number of approved applications originated as disbursed loans",
		}),
		LoanTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_loan_transitions_total",
				Help: "Total loan status transitions by target status",
			},
			[]string{"to"},
		),
		LoanErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_loan_errors_total",
				Help: "Total number of rejected loan operations by type",
			},
			[]string{"operation", "error_type"},
		),
		LoanPrincipal: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goloan_loan_principal",
			Help:    "Principal of submitted loans",
			Buckets: []float64{100000, 500000, 1000000, 5000000, 10000000, 50000000, 100000000},
		}),
		SimulationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_simulations_total",
				Help: "Total simulations by cache result",
			},
			[]string{"cache"},
		),

		// Payment metrics
		PaymentsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_payments_applied_total",
			Help: "Total number of payments applied",
		}),
		InstallmentsPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_installments_paid_total",
			Help: "Total number of installments settled",
		}),
		PaymentAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goloan_payment_amount",
			Help:    "Amounts charged per payment",
			Buckets: []float64{10000, 50000, 100000, 250000, 500000, 1000000, 5000000},
		}),
		PaymentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goloan_payment_duration_seconds",
			Help:    "Duration of payment operations",
			Buckets: prometheus.DefBuckets,
		}),
		PaymentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_payment_replays_total",
			Help: "Total number of payments answered from an earlier idempotency key",
		}),
		PaymentErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_payment_errors_total",
				Help: "Total number of payment errors by type",
			},
			[]string{"error_type"},
		),
		LoansPaidOff: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_loans_paid_off_total",
			Help: "Total number of loans fully repaid",
		}),
		ReconciliationDiff: factory.NewGauge(prometheus.GaugeOpts{
			Name: "goloan_reconciliation_discrepancies",
			Help: "Loans whose stored totals disagree with their schedule at the last reconciliation",
		}),

		// Portfolio metrics
		PortfolioLoans: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goloan_portfolio_loans",
				Help: "Loans by classified status at the last sweep",
			},
			[]string{"status"},
		),
		PortfolioOutstanding: factory.NewGauge(prometheus.GaugeOpts{
			Name: "goloan_portfolio_outstanding",
			Help: "Outstanding principal of disbursed loans at the last sweep",
		}),
		PortfolioOverdue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "goloan_portfolio_overdue",
			Help: "Scheduled payments past due at the last sweep",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goloan_sweep_duration_seconds",
			Help:    "Duration of delinquency sweeps",
			Buckets: prometheus.DefBuckets,
		}),

		// Database metrics
		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_db_errors_total",
				Help: "Total failed transactions by SQLSTATE",
			},
			[]string{"code"},
		),
		DBRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_db_retries_total",
			Help: "Total transactions retried after a deadlock or serialization failure",
		}),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_events_published_total",
				Help: "Total outbox events relayed by result",
			},
			[]string{"event_type", "result"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"path"},
		),
	}
}
