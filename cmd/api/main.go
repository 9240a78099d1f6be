package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/atelierhq/repairops-backend/api/routes"
	"github.com/atelierhq/repairops-backend/internal/auth"
	"github.com/atelierhq/repairops-backend/internal/customers"
	"github.com/atelierhq/repairops-backend/internal/inventory"
	"github.com/atelierhq/repairops-backend/internal/invoices"
	"github.com/atelierhq/repairops-backend/internal/parts"
	"github.com/atelierhq/repairops-backend/internal/quotes"
	"github.com/atelierhq/repairops-backend/internal/sequences"
	"github.com/atelierhq/repairops-backend/internal/tickets"
	"github.com/atelierhq/repairops-backend/internal/users"
	"github.com/atelierhq/repairops-backend/pkg/auth/session"
	"github.com/atelierhq/repairops-backend/pkg/config"
	"github.com/atelierhq/repairops-backend/pkg/db"
	"github.com/atelierhq/repairops-backend/pkg/logger"
	"github.com/atelierhq/repairops-backend/pkg/metrics"
	"github.com/atelierhq/repairops-backend/pkg/migrate"
	"github.com/atelierhq/repairops-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		return err
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		return err
	}
	closers := []func() error{dbClient.Close}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		return err
	}

	// Redis is optional. Without it logins are stateless JWTs, balance reads
	// hit the ledger every time, and login throttling is disabled.
	var (
		redisClient    *redis.Client
		sessionManager *session.Manager
		sessionChecker session.AccessSessionChecker
		balanceCache   inventory.BalanceCache
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			return closeAll(logg, closers, err)
		}
		closers = append(closers, redisClient.Close)

		sessionManager, err = session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			logg.Error(ctx, "failed to create session manager", err)
			return closeAll(logg, closers, err)
		}
		sessionChecker = sessionManager
		balanceCache = redisClient
	} else {
		logg.Warn(ctx, "redis disabled; refresh sessions and balance cache unavailable")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	coreMetrics := metrics.NewCoreMetrics(registry)

	svcs, err := buildServices(dbClient, sessionManager, balanceCache, coreMetrics, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to wire services", err)
		return closeAll(logg, closers, err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionChecker, registry, svcs),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logg.Info(startCtx, "shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			return closeAll(logg, closers, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(startCtx, "graceful shutdown failed", err)
		return closeAll(logg, closers, err)
	}

	logg.Info(startCtx, "api server stopped")
	return closeAll(logg, closers, nil)
}

func buildServices(
	dbClient *db.Client,
	sessionManager *session.Manager,
	balanceCache inventory.BalanceCache,
	coreMetrics *metrics.CoreMetrics,
	cfg *config.Config,
	logg *logger.Logger,
) (routes.Services, error) {
	conn := dbClient.DB()

	seqSvc, err := sequences.NewService(sequences.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	inventorySvc, err := inventory.NewService(inventory.NewRepository(conn), dbClient, balanceCache, coreMetrics, logg)
	if err != nil {
		return routes.Services{}, err
	}

	ticketSvc, err := tickets.NewService(tickets.NewRepository(conn), seqSvc, dbClient, coreMetrics, logg)
	if err != nil {
		return routes.Services{}, err
	}

	partsRepo := parts.NewRepository(conn)
	partsSvc, err := parts.NewService(partsRepo, ticketSvc, inventorySvc, dbClient, logg)
	if err != nil {
		return routes.Services{}, err
	}

	customerSvc, err := customers.NewService(customers.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	quoteSvc, err := quotes.NewService(quotes.NewRepository(conn), ticketSvc, seqSvc, dbClient, cfg.Billing, logg)
	if err != nil {
		return routes.Services{}, err
	}

	invoiceSvc, err := invoices.NewService(
		invoices.NewRepository(conn),
		partsRepo,
		ticketSvc,
		customerSvc,
		seqSvc,
		dbClient,
		coreMetrics,
		cfg.Billing,
		logg,
	)
	if err != nil {
		return routes.Services{}, err
	}

	authParams := auth.ServiceParams{
		UserRepo:  users.NewRepository(conn),
		JWTConfig: cfg.JWT,
	}
	if sessionManager != nil {
		authParams.SessionManager = sessionManager
	}
	authSvc, err := auth.NewService(authParams)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:      authSvc,
		Tickets:   ticketSvc,
		Parts:     partsSvc,
		Inventory: inventorySvc,
		Invoices:  invoiceSvc,
		Quotes:    quoteSvc,
		Customers: customerSvc,
	}, nil
}

func closeAll(logg *logger.Logger, closers []func() error, err error) error {
	for i := len(closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, closers[i]())
	}
	if err != nil {
		logg.Error(context.Background(), "shutdown finished with errors", err)
	}
	return err
}
