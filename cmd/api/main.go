package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	compose "outbound_messaging_backend/internal/compose/module"
	"outbound_messaging_backend/internal/dispatch"
	"outbound_messaging_backend/internal/events"
	apphttp "outbound_messaging_backend/internal/http"
	"outbound_messaging_backend/internal/http/router"
	"outbound_messaging_backend/internal/inventory"
	"outbound_messaging_backend/internal/templates"
	"outbound_messaging_backend/migrations"
	"outbound_messaging_backend/platform/config"
	"outbound_messaging_backend/platform/db"
	"outbound_messaging_backend/platform/logger"
	"outbound_messaging_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// The dispatch audit log is optional: without a database URL the service
	// runs with dispatch logging disabled.
	var pool *pgxpool.Pool
	if cfg.IsDispatchLogEnabled() {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")

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
	} else {
		log.Warn("DATABASE_URL not configured; dispatch audit log disabled")
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Collaborator Clients
	// ========================================================================

	inventoryCache := inventory.NewCache(cfg, log)
	if inventoryCache != nil {
		defer func() {
			_ = inventoryCache.Close()
		}()
		log.Info("inventory cache enabled", "ttl", cfg.GetInventoryCacheTTL().String())
	}

	provider := inventory.NewProvider(cfg, inventory.StaticTokenProvider(cfg.GetProviderAuthToken()), log)
	inventoryClient := inventory.NewClient(provider, inventoryCache, log)
	templateClient := templates.NewClient(cfg, log)
	sendAction := dispatch.NewActionClient(cfg, log)

	// ========================================================================
	// Domain Modules
	// ========================================================================

	composeModule := compose.NewModule(inventoryClient, templateClient, sendAction, eventBus, cfg, val, log)

	dispatchModule := dispatch.NewModule(pool, log)
	dispatchModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			composeModule,
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
		eventBus.Wait()
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
	return lastErr
}
