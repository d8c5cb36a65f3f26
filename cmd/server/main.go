package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/bizdesk/internal/adapter/http"
	"github.com/iho/bizdesk/internal/adapter/http/handler"
	"github.com/iho/bizdesk/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/bizdesk/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/bizdesk/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bizdesk/internal/adapter/repository/redis"
	"github.com/iho/bizdesk/internal/infrastructure/config"
	"github.com/iho/bizdesk/internal/infrastructure/idgen"
	"github.com/iho/bizdesk/internal/infrastructure/logger"
	"github.com/iho/bizdesk/internal/infrastructure/metrics"
	"github.com/iho/bizdesk/internal/infrastructure/postgres"
	"github.com/iho/bizdesk/internal/infrastructure/redis"
	"github.com/iho/bizdesk/internal/usecase"
)

const serviceName = "bizdesk"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// app is the wired service, ready to be served.
type app struct {
	handler     http.Handler
	sessions    *usecase.SessionUseCase
	rateLimiter *middleware.RateLimiter
	close       func()
}

// stores holds the record store and the optional Redis-backed pieces.
type stores struct {
	records     usecase.RecordRepository
	idempotency usecase.IdempotencyStore
	checkers    []handler.Checker
	closers     []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go runMaintenance(ctx, cfg.SessionSweepInterval, func(now time.Time) {
		a.sessions.SweepIdle(now, cfg.SessionIdleTTL)
		if a.rateLimiter != nil {
			a.rateLimiter.CleanupLimiters(cfg.SessionIdleTTL)
		}
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// newApp connects the configured stores and wires the HTTP stack.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.SeedSampleData {
		n, err := usecase.SeedSampleData(ctx, st.records, usecase.ClockFunc(time.Now))
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
		if n > 0 {
			log.Info().Int("records", n).Msg("seeded sample data")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	sessionUC, err := usecase.NewSessionUseCase(
		st.records,
		idgen.NewULIDGenerator(time.Now),
		usecase.ClockFunc(time.Now),
		m,
		log.With().Str("component", "sessions").Logger(),
		cfg.PageSize,
	)
	if err != nil {
		st.Close()
		return nil, err
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst,
			middleware.WithRejectionCounter(m.RateLimitHits))
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		SessionHandler:   handler.NewSessionHandler(sessionUC),
		HealthHandler:    handler.NewHealthHandler(st.checkers...),
		Logger:           log,
		Metrics:          m,
		Gatherer:         reg,
		RateLimiter:      rateLimiter,
		IdempotencyStore: st.idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
	})

	return &app{
		handler:     router,
		sessions:    sessionUC,
		rateLimiter: rateLimiter,
		close:       st.Close,
	}, nil
}

// openStores connects only what the configuration asks for.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	st := &stores{}

	var redisClient *goredis.Client
	if cfg.NeedsRedis() {
		client, err := redis.NewClient(ctx, cfg.RedisURL, redis.WithClientName(serviceName))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisClient = client
		st.closers = append(st.closers, func() { client.Close() })
		st.checkers = append(st.checkers, redis.NewChecker(client))
		log.Info().Msg("connected to redis")
	}

	if cfg.IdempotencyEnabled {
		st.idempotency = redisRepo.NewIdempotencyStore(redisClient)
	}

	switch cfg.StoreBackend {
	case config.StoreMemory:
		st.records = memoryRepo.NewRecordRepository()

	case config.StoreRedis:
		st.records = redisRepo.NewRecordRepository(redisClient)

	case config.StorePostgres:
		if cfg.DatabaseRunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
				st.Close()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		st.closers = append(st.closers, pool.Close)
		st.checkers = append(st.checkers, postgres.NewChecker(pool))
		st.records = postgresRepo.NewRecordRepository(pool, postgresRepo.NewRetrier(log))
		log.Info().Msg("connected to postgres")

	default:
		st.Close()
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}

	return st, nil
}

// runMaintenance calls fn every interval until ctx is done.
func runMaintenance(ctx context.Context, interval time.Duration, fn func(now time.Time)) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			fn(now)
		}
	}
}
