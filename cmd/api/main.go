package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prospect_backend/internal/appointments"
	"prospect_backend/internal/callbacks"
	"prospect_backend/internal/callers"
	"prospect_backend/internal/calls"
	"prospect_backend/internal/email"
	"prospect_backend/internal/enrichment"
	"prospect_backend/internal/establishments"
	establishmentrepo "prospect_backend/internal/establishments/repository"
	"prospect_backend/internal/events"
	apphttp "prospect_backend/internal/http"
	"prospect_backend/internal/http/router"
	"prospect_backend/internal/notification"
	"prospect_backend/internal/queue"
	"prospect_backend/internal/scheduler"
	"prospect_backend/platform/config"
	"prospect_backend/platform/db"
	"prospect_backend/platform/logger"
	"prospect_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		)
		log.Info("smtp sender initialized", "host", cfg.GetSMTPHost())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.NewModule(sender, cfg.GetCloserInboxAddress(), log)
	notificationModule.RegisterHandlers(eventBus)

	// Follow-up mail dispatch goes through the asynq queue when redis is
	// configured; without it callbacks are still scheduled, just not mailed.
	if cfg.GetRedisURL() != "" {
		schedulerClient, err := scheduler.NewClient(cfg, log)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer schedulerClient.Close()
		schedulerClient.RegisterHandlers(eventBus)
		log.Info("scheduler client initialized", "queue", cfg.GetAsynqQueueName())
	}

	// The enrichment module reads establishments through its own repository
	// handle; the establishments module needs the enricher at construction.
	enrichmentModule := enrichment.NewModule(cfg, establishmentrepo.New(pool), log)

	establishmentsModule := establishments.NewModule(pool, eventBus, val, log, enrichmentModule.Service())
	callbacksModule := callbacks.NewModule(pool, eventBus, val)
	appointmentsModule := appointments.NewModule(pool, val)
	callsModule := calls.NewModule(
		pool,
		establishmentsModule.Repository(),
		callbacksModule.Service(),
		appointmentsModule.Service(),
		eventBus,
		val,
		log,
	)
	callersModule := callers.NewModule(pool, cfg, val)
	queueModule := queue.NewModule(
		establishmentsModule.Repository(),
		callbacksModule.Repository(),
		callersModule.Repository(),
	)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			callersModule,
			establishmentsModule,
			callsModule,
			callbacksModule,
			appointmentsModule,
			queueModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
