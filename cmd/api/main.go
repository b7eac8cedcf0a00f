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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/Lelo88/listings-api-golang/internal/config"
	"github.com/Lelo88/listings-api-golang/internal/db"
	"github.com/Lelo88/listings-api-golang/internal/docs"
	"github.com/Lelo88/listings-api-golang/internal/health"
	"github.com/Lelo88/listings-api-golang/internal/httpx"
	"github.com/Lelo88/listings-api-golang/internal/listings"
	"github.com/Lelo88/listings-api-golang/internal/logger"
	"github.com/Lelo88/listings-api-golang/internal/metrics"
)

// appPool es lo que la app usa del pool de pgx (ready check + repositorio).
type appPool interface {
	Ping(ctx context.Context) error
	Close()
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// appDeps permite reemplazar en tests todo lo que toca el mundo exterior.
type appDeps struct {
	loadConfig func() (config.Config, error)
	newLogger  func(level, format string) (*zap.Logger, error)
	migrate    func(ctx context.Context, databaseURL string) error
	newPool    func(ctx context.Context, databaseURL string) (appPool, error)
	serve      func(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error
}

var (
	loadConfigFn = config.Load
	newLoggerFn  = logger.New
	migrateFn    = db.Migrate
	newPoolFn    = func(ctx context.Context, databaseURL string) (appPool, error) {
		pool, err := db.NewPool(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return pool, nil
	}
	serveFn = serve
	fatal   = func(err error) {
		log, buildErr := zap.NewProduction()
		if buildErr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.Fatal("listings api stopped", zap.Error(err))
	}
)

func main() {
	// Contexto raíz del proceso: se cancela con SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, appDeps{
		loadConfig: loadConfigFn,
		newLogger:  newLoggerFn,
		migrate:    migrateFn,
		newPool:    newPoolFn,
		serve:      serveFn,
	})
	if err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, deps appDeps) error {
	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := deps.newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.AutoMigrate {
		if err := deps.migrate(ctx, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		log.Info("migrations applied")
	}

	pool, err := deps.newPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	server := httpx.NewServer(cfg.Addr(), buildRouter(cfg, log, pool))
	log.Info("listening", zap.String("addr", server.Addr), zap.String("environment", cfg.Environment))

	if err := deps.serve(ctx, server, cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// serve atiende hasta que ctx se cancela y después hace un shutdown ordenado.
func serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func buildRouter(cfg config.Config, log *zap.Logger, pool appPool) *chi.Mux {
	metricsManager := metrics.New("listings_api")

	r := chi.NewRouter()

	// Middlewares base para trazabilidad y estabilidad.
	r.Use(httpx.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(logger.Recovery(log))
	r.Use(metricsManager.Middleware)
	r.Use(httpx.CORS(cfg.CORSAllowedOrigins))
	r.Use(httpx.SecurityHeaders(cfg.IsDevelopment()))
	if cfg.MaxBodyBytes > 0 {
		r.Use(httpx.BodyLimit(cfg.MaxBodyBytes))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	// Errores de routing se manejan a nivel router.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, r, http.StatusNotFound, "not_found", "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	var pinger health.Pinger
	if pool != nil {
		pinger = pool
	}
	healthHandler := health.New(pinger, log)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Method(http.MethodGet, "/metrics", metricsManager.Handler())

	docs.RegisterRoutes(r)

	listingService := listings.NewService(listings.NewRepository(pool))
	listings.RegisterRoutes(r, listings.NewHandler(listingService, log, listings.WithWriteObserver(metricsManager.ListingWrite)))

	return r
}
