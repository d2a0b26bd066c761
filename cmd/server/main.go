package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"domainfactor/internal/factor/handler"
	"domainfactor/internal/factor/metrics"
	"domainfactor/internal/factor/records"
	"domainfactor/internal/factor/service"
	"domainfactor/internal/factor/settings"
	jwttoken "domainfactor/internal/jwt_token"
	"domainfactor/internal/platform/config"
	"domainfactor/internal/platform/httpserver"
	"domainfactor/internal/platform/logger"
	"domainfactor/internal/platform/postgres"
	"domainfactor/internal/platform/redis"
	audit "domainfactor/pkg/platform/audit"
	auditkafka "domainfactor/pkg/platform/audit/store/kafka"
	auditmemory "domainfactor/pkg/platform/audit/store/memory"
	auditworker "domainfactor/pkg/platform/audit/worker"
	"domainfactor/pkg/platform/circuit"
	"domainfactor/pkg/platform/httputil"
	"domainfactor/pkg/platform/middleware/admin"
	"domainfactor/pkg/platform/middleware/metadata"
	"domainfactor/pkg/platform/middleware/requesttime"
)

const shutdownTimeout = 10 * time.Second

// infra holds the optional backing services; nil fields mean the in-memory
// fallback is in use.
type infra struct {
	redis *redis.Client
	db    *sql.DB
	kafka *auditkafka.Store
}

func (i *infra) Close() {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
}

// main wires dependencies, serves the factor API, and keeps the server and
// audit worker lifecycles under one errgroup.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("domain factor server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	deps, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	settingsStore := buildSettingsStore(deps, log)
	recordStore, err := buildRecordStore(ctx, deps, log)
	if err != nil {
		return err
	}
	auditStore, err := buildAuditStore(ctx, deps, log)
	if err != nil {
		return err
	}
	worker := auditworker.NewWorker(auditStore, auditworker.WithLogger(log))

	svc, err := service.New(settingsStore, recordStore,
		service.WithLogger(log),
		service.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
		service.WithAuditPublisher(worker),
	)
	if err != nil {
		return fmt.Errorf("build factor service: %w", err)
	}

	if !cfg.Seed.IsZero() {
		seeded, err := svc.SeedSettings(ctx, settings.Raw(cfg.Seed))
		if err != nil {
			return err
		}
		log.Info("domain factor seed settings", "applied", seeded)
	}

	srv := httpserver.New(cfg.Addr, newRouter(cfg, svc, deps, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting domain factor server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("domain factor server stopped")
		return nil
	})
	return g.Wait()
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	deps := &infra{}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	deps.redis = redisClient

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	deps.db = db

	if len(cfg.Audit.Brokers) > 0 {
		store, err := auditkafka.New(cfg.Audit.Brokers, cfg.Audit.Topic)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("connect kafka: %w", err)
		}
		deps.kafka = store
	}

	log.Info("backing services",
		"redis", deps.redis != nil,
		"postgres", deps.db != nil,
		"kafka", deps.kafka != nil,
	)
	return deps, nil
}

func buildSettingsStore(deps *infra, log *slog.Logger) service.SettingsStore {
	if deps.redis == nil {
		log.Warn("REDIS_URL not set, settings are kept in memory")
		return settings.NewInMemoryStore()
	}
	return settings.NewGuardedStore(
		settings.NewRedisStore(deps.redis.Client),
		circuit.New("redis-settings"),
		log,
	)
}

func buildRecordStore(ctx context.Context, deps *infra, log *slog.Logger) (service.RecordStore, error) {
	if deps.db == nil {
		log.Warn("DATABASE_URL not set, factor records are kept in memory")
		return records.NewInMemoryStore(), nil
	}
	store := records.NewPostgres(deps.db)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func buildAuditStore(ctx context.Context, deps *infra, log *slog.Logger) (audit.Store, error) {
	if deps.kafka == nil {
		log.Warn("KAFKA_BROKERS not set, audit events are kept in memory")
		return auditmemory.NewInMemoryStore(), nil
	}
	if err := deps.kafka.EnsureTopic(ctx, 1, 1); err != nil {
		return nil, err
	}
	return deps.kafka, nil
}

func newRouter(cfg config.Server, svc *service.Service, deps *infra, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	h := handler.New(svc, log)
	h.Register(r)

	if cfg.Admin.JWTSigningKey == "" {
		log.Warn("ADMIN_JWT_SIGNING_KEY not set, admin settings endpoints are disabled")
	} else {
		validator := jwttoken.NewAdminValidator(
			jwttoken.NewJWTService(cfg.Admin.JWTSigningKey, cfg.Admin.JWTIssuer, cfg.Admin.JWTAudience),
		)
		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdmin(validator, log))
			h.RegisterAdmin(r)
		})
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if deps.redis != nil {
			if err := deps.redis.Health(r.Context()); err != nil {
				status["status"], status["redis"] = "degraded", "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		if deps.db != nil {
			if err := deps.db.PingContext(r.Context()); err != nil {
				status["status"], status["postgres"] = "degraded", "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, code, status)
	})
	return r
}
