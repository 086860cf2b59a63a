package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"garmenthr/internal/domain/audit"
	"garmenthr/internal/domain/auth"
	"garmenthr/internal/domain/dashboard"
	"garmenthr/internal/domain/employees"
	"garmenthr/internal/domain/payroll"
	"garmenthr/internal/domain/submissions"
	"garmenthr/internal/domain/tasks"
	"garmenthr/internal/platform/config"
	"garmenthr/internal/platform/db"
	"garmenthr/internal/platform/jobs"
	"garmenthr/internal/platform/metrics"
	"garmenthr/internal/platform/telemetry"
	audithandler "garmenthr/internal/transport/http/handlers/audit"
	authhandler "garmenthr/internal/transport/http/handlers/auth"
	dashboardhandler "garmenthr/internal/transport/http/handlers/dashboard"
	employeehandler "garmenthr/internal/transport/http/handlers/employees"
	payrollhandler "garmenthr/internal/transport/http/handlers/payroll"
	submissionhandler "garmenthr/internal/transport/http/handlers/submissions"
	taskhandler "garmenthr/internal/transport/http/handlers/tasks"
	"garmenthr/internal/transport/http/middleware"
)

const (
	readyTimeout    = 2 * time.Second
	shutdownTimeout = 10 * time.Second
	rateLimitWindow = time.Minute
)

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Metrics *metrics.Collector

	Users     *auth.Service
	Employees *employees.Service
	TaskTypes *tasks.Service
	Payroll   *payroll.Service
}

// New connects to the database, applies migrations and seed data as
// configured, and assembles the HTTP handler.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, db.Migrations()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	app := build(pool, cfg)

	if cfg.RunSeed {
		if err := app.Seed(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return app, nil
}

func build(pool *db.Pool, cfg config.Config) *App {
	loc := cfg.Location()
	collector := metrics.New()
	auditSvc := audit.New(pool)
	jobsSvc := jobs.New(pool)
	perms := auth.StaticPermissions{}

	authSvc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.JWTTTL)
	employeeSvc := employees.NewService(employees.NewStore(pool), auditSvc)
	taskSvc := tasks.NewService(tasks.NewStore(pool), auditSvc, loc)
	submissionSvc := submissions.NewService(submissions.NewStore(pool), auditSvc, collector, cfg.SubmissionTxTimeout)
	payrollSvc := payroll.NewService(payroll.NewStore(pool), jobsSvc, auditSvc, collector, loc, cfg.PayslipDir)
	dashboardSvc := dashboard.NewService(employeeSvc, taskSvc, payrollSvc, loc)

	api := []registrar{
		authhandler.NewHandler(authSvc),
		employeehandler.NewHandler(employeeSvc, perms),
		taskhandler.NewHandler(taskSvc, perms, loc),
		submissionhandler.NewHandler(submissionSvc, perms, middleware.NewIdempotencyStore(pool), loc),
		payrollhandler.NewHandler(payrollSvc, perms, jobsSvc),
		dashboardhandler.NewHandler(dashboardSvc, perms, loc),
		audithandler.NewHandler(auditSvc, perms),
	}

	return &App{
		Config:    cfg,
		DB:        pool,
		Router:    NewRouter(cfg, collector, authSvc, pool, api...),
		Metrics:   collector,
		Users:     authSvc,
		Employees: employeeSvc,
		TaskTypes: taskSvc,
		Payroll:   payrollSvc,
	}
}

type registrar interface {
	RegisterRoutes(r chi.Router)
}

// Pinger reports database readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter mounts the health probes, optional metrics endpoint and the
// versioned API behind the shared middleware chain.
func NewRouter(cfg config.Config, collector *metrics.Collector, users middleware.UserLookup, ready Pinger, api ...registrar) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := ready.Ping(ctx); err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled && collector != nil {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, users))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, rateLimitWindow))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, rateLimitWindow))
		for _, h := range api {
			h.RegisterRoutes(r)
		}
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count", "Content-Disposition"},
		AllowCredentials: true,
	})
	return otelhttp.NewHandler(c.Handler(router), "garmenthr")
}

func (a *App) Seed(ctx context.Context) error {
	return Seed(ctx, a.Users, a.TaskTypes, a.Config)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until ctx is cancelled and then drains in-flight requests.
func Run(ctx context.Context, cfg config.Config) error {
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("env", cfg.Environment).Msg("garmenthr server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
