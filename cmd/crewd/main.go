package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crewplane/crewd/pkg/api"
	"github.com/crewplane/crewd/pkg/audit"
	"github.com/crewplane/crewd/pkg/config"
	"github.com/crewplane/crewd/pkg/events"
	"github.com/crewplane/crewd/pkg/features"
	"github.com/crewplane/crewd/pkg/observability"
	"github.com/crewplane/crewd/pkg/orgs"
	"github.com/crewplane/crewd/pkg/rbac"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Event bus: local in-process by default, redis pub/sub for
	// multi-instance deployments.
	var bus events.Bus
	switch cfg.Bus.Type {
	case config.BusRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Bus.RedisURL,
			Password: cfg.Bus.RedisPassword,
			DB:       cfg.Bus.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Error("failed to connect to redis")
			os.Exit(1)
		}
		defer client.Close()
		bus = events.NewRedisBus(client, logger, events.WithRedisMetrics(metrics))
	default:
		bus = events.NewLocalBus(logger, events.WithLocalMetrics(metrics))
	}
	defer bus.Close()

	// Feature state store
	var store features.StateStore
	switch cfg.Store.Type {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.Store.PostgresURL)
		if err != nil {
			logger.WithError(err).Error("failed to open postgres")
			os.Exit(1)
		}
		defer db.Close()
		pgStore := features.NewPostgresStateStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Error("failed to ensure feature state schema")
			os.Exit(1)
		}
		store = pgStore
	default:
		store = features.NewMemoryStateStore()
	}

	registry := features.NewRegistry(store, bus, logger, features.WithRegistryMetrics(metrics))
	if err := features.RegisterBuiltins(registry, logger); err != nil {
		logger.WithError(err).Error("failed to register built-in feature modules")
		os.Exit(1)
	}

	// Permission matrix: built-in defaults, optionally overlaid from file
	matrix := rbac.DefaultMatrix()
	if cfg.Features.MatrixFile != "" {
		override, err := rbac.LoadMatrixFile(cfg.Features.MatrixFile)
		if err != nil {
			logger.WithError(err).Error("failed to load permission matrix override")
			os.Exit(1)
		}
		matrix = rbac.Merge(matrix, override)
		logger.WithField("path", cfg.Features.MatrixFile).Info("permission matrix override applied")
	}
	checker := rbac.NewChecker(matrix, rbac.WithMetrics(metrics))

	// Organization directory. Organization records are owned by the
	// surrounding application; the in-memory directory here is the
	// single-instance wiring.
	directory := orgs.NewMemoryDirectory()

	auditStore := audit.NewStore(10000)
	detachAudit := audit.Attach(bus, auditStore, logger)
	defer detachAudit()

	if cfg.Features.ReconcileInterval > 0 {
		reconciler := features.NewReconciler(registry, directory, logger, cfg.Features.ReconcileInterval)
		if err := reconciler.Start(); err != nil {
			logger.WithError(err).Error("failed to start feature reconciler")
			os.Exit(1)
		}
		defer reconciler.Stop()
	}

	server := api.NewServer(registry, checker, directory, bus, auditStore, logger, metrics)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("crewd admin server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
