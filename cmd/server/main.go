package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/goloan/internal/adapter/http"
	"github.com/iho/goloan/internal/adapter/http/handler"
	"github.com/iho/goloan/internal/adapter/http/middleware"
	"github.com/iho/goloan/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/goloan/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goloan/internal/adapter/repository/redis"
	"github.com/iho/goloan/internal/infrastructure/config"
	"github.com/iho/goloan/internal/infrastructure/eventpublisher"
	"github.com/iho/goloan/internal/infrastructure/logger"
	"github.com/iho/goloan/internal/infrastructure/metrics"
	"github.com/iho/goloan/internal/infrastructure/postgres"
	"github.com/iho/goloan/internal/infrastructure/redis"
	"github.com/iho/goloan/internal/infrastructure/scheduler"
	"github.com/iho/goloan/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	app, err := buildApp(ctx, cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, w := range app.workers {
		wg.Add(1)
		go func(w worker) {
			defer wg.Done()
			if err := w.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("background worker stopped")
			}
		}(w)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		cancelWorkers()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	cancelWorkers()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

type worker interface {
	Start(ctx context.Context) error
}

// limiterJanitor periodically drops per-client rate limiters.
type limiterJanitor struct {
	limiter  *middleware.RateLimiter
	interval time.Duration
}

func (j limiterJanitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.limiter.CleanupLimiters()
		}
	}
}

type app struct {
	router  http.Handler
	workers []worker
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type storage struct {
	txManager   usecase.TransactionManager
	loanRepo    usecase.LoanRepository
	paymentRepo usecase.PaymentRepository
	outboxRepo  usecase.OutboxRepository
	auditRepo   usecase.AuditRepository
	retrier     usecase.Retrier
	health      handler.HealthCheck
}

func newStorage(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*storage, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return &storage{
			txManager:   memory.NewTxManager(store),
			loanRepo:    memory.NewLoanRepository(store),
			paymentRepo: memory.NewPaymentRepository(store),
			outboxRepo:  memory.NewOutboxRepository(store),
			auditRepo:   memory.NewAuditRepository(store),
			health:      handler.HealthCheck{Name: "storage", Ping: func(context.Context) error { return nil }},
		}, func() {}, nil
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return &storage{
		txManager:   postgresRepo.NewTxManager(pool),
		loanRepo:    postgresRepo.NewLoanRepository(pool),
		paymentRepo: postgresRepo.NewPaymentRepository(pool),
		outboxRepo:  postgresRepo.NewOutboxRepository(pool),
		auditRepo:   postgresRepo.NewAuditRepository(pool),
		retrier:     postgresRepo.NewRetrier(m),
		health:      pingCheck("postgres", pool),
	}, pool.Close, nil
}

func pingCheck(name string, pool *pgxpool.Pool) handler.HealthCheck {
	return handler.HealthCheck{Name: name, Ping: pool.Ping}
}

func buildApp(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*app, error) {
	a := &app{}
	m := metrics.NewWithRegistry(reg)
	policy := cfg.Policy()

	store, closeStore, err := newStorage(ctx, cfg, m)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	checks := []handler.HealthCheck{store.health}
	if !cfg.OutboxEnabled {
		log.Info().Msg("outbox disabled; loan events are not recorded")
		store.outboxRepo = postgresRepo.NewNullOutboxRepository()
	}

	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
		publisher        eventpublisher.Publisher = eventpublisher.NewLogPublisher(nil)
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClientWithConfig(ctx, redis.ClientConfig{
			URL:      cfg.RedisURL,
			PoolSize: cfg.RedisPoolSize,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info().Msg("connected to redis")
		a.closers = append(a.closers, func() { _ = redisClient.Close() })

		cache = redisRepo.NewCache(redisClient, m)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		publisher = eventpublisher.NewStreamPublisher(redisClient, cfg.OutboxStream, 100000)
		checks = append(checks, redisCheck(redisClient))
	}

	idGen := postgresRepo.NewULIDGenerator()

	// Use cases
	loanUC := usecase.NewLoanUseCase(store.txManager, store.loanRepo, store.outboxRepo, store.auditRepo, idGen, store.retrier, policy, m)
	paymentUC := usecase.NewPaymentUseCase(store.txManager, store.loanRepo, store.paymentRepo, store.outboxRepo, store.auditRepo, idGen, store.retrier, policy, m)
	statusUC := usecase.NewStatusUseCase(store.loanRepo, store.paymentRepo, policy)
	simulationUC := usecase.NewSimulationUseCase(cache, policy, m)
	reconciliationUC := usecase.NewReconciliationUseCase(store.loanRepo, store.paymentRepo, policy, m)
	delinquencyUC := usecase.NewDelinquencyUseCase(store.loanRepo, policy, m)

	routerCfg := httpAdapter.RouterConfig{
		LoanHandler:           handler.NewLoanHandler(loanUC),
		PaymentHandler:        handler.NewPaymentHandler(paymentUC),
		StatusHandler:         handler.NewStatusHandler(statusUC),
		SimulationHandler:     handler.NewSimulationHandler(simulationUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		PortfolioHandler:      handler.NewPortfolioHandler(delinquencyUC),
		HealthHandler:         handler.NewHealthHandler(checks...),
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		MetricsHandler:        promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		Logger:                &log.Logger,
	}
	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		routerCfg.RateLimiter = limiter
		a.workers = append(a.workers, limiterJanitor{limiter: limiter, interval: 10 * time.Minute})
	}
	a.router = httpAdapter.NewRouter(routerCfg)

	if cfg.OutboxEnabled {
		a.workers = append(a.workers, eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: store.outboxRepo,
			Publisher:  publisher,
			Metrics:    m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		}))
	}

	if cfg.SweepSchedule != "" {
		sweepLogger := log.Logger
		sched, err := scheduler.New(scheduler.Config{
			Spec:    cfg.SweepSchedule,
			Sweeper: delinquencyUC,
			Logger:  &sweepLogger,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.workers = append(a.workers, sched)
	}

	return a, nil
}

func redisCheck(client *goredis.Client) handler.HealthCheck {
	return handler.HealthCheck{
		Name: "redis",
		Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
}
