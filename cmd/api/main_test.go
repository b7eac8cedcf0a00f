package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Lelo88/listings-api-golang/internal/config"
	"github.com/Lelo88/listings-api-golang/internal/httpx"
)

type fakePool struct {
	pingErr     error
	pingCalled  bool
	closeCalled bool
	queryRowFn  func(sql string, args ...any) pgx.Row
}

func (pool *fakePool) Ping(ctx context.Context) error {
	pool.pingCalled = true
	return pool.pingErr
}

func (pool *fakePool) Close() {
	pool.closeCalled = true
}

func (pool *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if pool.queryRowFn != nil {
		return pool.queryRowFn(sql, args...)
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func (pool *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not expected")
}

func (pool *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("exec not expected")
}

type fakeRow struct {
	err error
}

func (row fakeRow) Scan(dest ...any) error {
	return row.err
}

func testConfig() config.Config {
	return config.Config{
		Port:               "8080",
		DatabaseURL:        "postgres://",
		Environment:        "test",
		LogLevel:           "info",
		LogFormat:          "json",
		CORSAllowedOrigins: "*",
		MaxBodyBytes:       1 << 20,
		RequestTimeout:     5 * time.Second,
		ShutdownTimeout:    time.Second,
	}
}

func nopLogger(level, format string) (*zap.Logger, error) {
	return zap.NewNop(), nil
}

func testDeps(cfg config.Config, pool appPool) appDeps {
	return appDeps{
		loadConfig: func() (config.Config, error) {
			return cfg, nil
		},
		newLogger: nopLogger,
		migrate: func(ctx context.Context, databaseURL string) error {
			return nil
		},
		newPool: func(ctx context.Context, databaseURL string) (appPool, error) {
			return pool, nil
		},
		serve: func(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
			return nil
		},
	}
}

func TestMain_FatalOnError(t *testing.T) {
	originalLoad := loadConfigFn
	originalFatal := fatal
	defer func() {
		loadConfigFn = originalLoad
		fatal = originalFatal
	}()

	expectedErr := errors.New("config failed")
	loadConfigFn = func() (config.Config, error) {
		return config.Config{}, expectedErr
	}

	var fatalErr error
	fatal = func(err error) {
		fatalErr = err
	}

	main()

	require.ErrorIs(t, fatalErr, expectedErr)
}

func TestRun_ConfigError(t *testing.T) {
	deps := testDeps(testConfig(), &fakePool{})
	deps.loadConfig = func() (config.Config, error) {
		return config.Config{}, errors.New("load failed")
	}
	deps.newPool = func(ctx context.Context, databaseURL string) (appPool, error) {
		t.Fatal("newPool should not be called")
		return nil, nil
	}

	err := run(context.Background(), deps)

	require.ErrorContains(t, err, "load config")
}

func TestRun_LoggerError(t *testing.T) {
	deps := testDeps(testConfig(), &fakePool{})
	deps.newLogger = func(level, format string) (*zap.Logger, error) {
		return nil, errors.New("bad level")
	}

	err := run(context.Background(), deps)

	require.ErrorContains(t, err, "build logger")
}

func TestRun_MigrateOnlyWhenEnabled(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		deps := testDeps(testConfig(), &fakePool{})
		deps.migrate = func(ctx context.Context, databaseURL string) error {
			t.Fatal("migrate should not be called")
			return nil
		}

		require.NoError(t, run(context.Background(), deps))
	})

	t.Run("enabled and failing", func(t *testing.T) {
		cfg := testConfig()
		cfg.AutoMigrate = true
		deps := testDeps(cfg, &fakePool{})
		migratedURL := ""
		deps.migrate = func(ctx context.Context, databaseURL string) error {
			migratedURL = databaseURL
			return errors.New("dirty database")
		}
		deps.newPool = func(ctx context.Context, databaseURL string) (appPool, error) {
			t.Fatal("newPool should not be called")
			return nil, nil
		}

		err := run(context.Background(), deps)

		require.ErrorContains(t, err, "migrate database")
		require.Equal(t, "postgres://", migratedURL)
	})
}

func TestRun_NewPoolError(t *testing.T) {
	deps := testDeps(testConfig(), nil)
	deps.newPool = func(ctx context.Context, databaseURL string) (appPool, error) {
		return nil, errors.New("new pool failed")
	}

	err := run(context.Background(), deps)

	require.ErrorContains(t, err, "connect database")
}

func TestRun_ServeError(t *testing.T) {
	pool := &fakePool{}
	deps := testDeps(testConfig(), pool)
	deps.serve = func(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
		return errors.New("listen failed")
	}

	err := run(context.Background(), deps)

	require.ErrorContains(t, err, "listen failed")
	require.True(t, pool.closeCalled)
}

func TestRun_Success(t *testing.T) {
	pool := &fakePool{}
	cfg := testConfig()
	cfg.Port = "7070"
	deps := testDeps(cfg, pool)

	var served *http.Server
	var timeout time.Duration
	deps.serve = func(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
		served = server
		timeout = shutdownTimeout
		return nil
	}

	err := run(context.Background(), deps)

	require.NoError(t, err)
	require.True(t, pool.closeCalled)
	require.NotNil(t, served)
	require.Equal(t, ":7070", served.Addr)
	require.NotNil(t, served.Handler)
	require.Equal(t, time.Second, timeout)
}

func TestServe_ShutdownOnCancel(t *testing.T) {
	server := httpx.NewServer("127.0.0.1:0", http.NotFoundHandler())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, server, time.Second)
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	server := httpx.NewServer("invalid-address", http.NotFoundHandler())

	err := serve(context.Background(), server, time.Second)

	require.Error(t, err)
}

func TestBuildRouter_HealthReady(t *testing.T) {
	pool := &fakePool{}
	router := buildRouter(testConfig(), zap.NewNop(), pool)

	rec := serveRequest(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	require.Equal(t, "ok", body["status"])

	rec = serveRequest(router, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeMap(t, rec)
	require.Equal(t, "ready", body["status"])
	require.True(t, pool.pingCalled)
}

func TestBuildRouter_ReadyDatabaseDown(t *testing.T) {
	pool := &fakePool{pingErr: errors.New("connection refused")}
	router := buildRouter(testConfig(), zap.NewNop(), pool)

	rec := serveRequest(router, http.MethodGet, "/ready", "")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	require.Equal(t, "not_ready", resp.Error.Code)
}

func TestBuildRouter_NotFound(t *testing.T) {
	router := buildRouter(testConfig(), zap.NewNop(), &fakePool{})

	rec := serveRequest(router, http.MethodGet, "/missing", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	require.Equal(t, "not_found", resp.Error.Code)
	require.NotNil(t, resp.Meta)
	require.NotEmpty(t, resp.Meta.RequestID)
}

func TestBuildRouter_MethodNotAllowed(t *testing.T) {
	router := buildRouter(testConfig(), zap.NewNop(), &fakePool{})

	rec := serveRequest(router, http.MethodPost, "/health", "")

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	require.Equal(t, "method_not_allowed", resp.Error.Code)
}

func TestBuildRouter_ListingsRouted(t *testing.T) {
	pool := &fakePool{}
	router := buildRouter(testConfig(), zap.NewNop(), pool)

	rec := serveRequest(router, http.MethodGet, "/listings/42", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.Equal(t, "not_found", resp.Error.Code)
	require.Contains(t, resp.Error.Message, "42")

	rec = serveRequest(router, http.MethodGet, "/listings/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp = decodeResponse(t, rec)
	require.Equal(t, "invalid_id", resp.Error.Code)

	rec = serveRequest(router, http.MethodPost, "/listings", `{"description":"d","price":10}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp = decodeResponse(t, rec)
	require.Equal(t, "invalid_input", resp.Error.Code)
	require.Contains(t, resp.Error.Fields, "title")
}

func TestBuildRouter_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 32
	router := buildRouter(cfg, zap.NewNop(), &fakePool{})

	rec := serveRequest(router, http.MethodPost, "/listings", `{"title":"Vase","description":"`+strings.Repeat("x", 64)+`","price":1}`)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	resp := decodeResponse(t, rec)
	require.Equal(t, "payload_too_large", resp.Error.Code)
}

func TestBuildRouter_RequestIDAndSecurityHeaders(t *testing.T) {
	router := buildRouter(testConfig(), zap.NewNop(), &fakePool{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(httpx.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, "req-123", rec.Header().Get(httpx.RequestIDHeader))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestBuildRouter_MetricsCountRoutes(t *testing.T) {
	router := buildRouter(testConfig(), zap.NewNop(), &fakePool{})

	serveRequest(router, http.MethodGet, "/health", "")
	serveRequest(router, http.MethodGet, "/health", "")

	rec := serveRequest(router, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `listings_api_http_requests_total{method="GET",route="/health",status="200"} 2`)
	require.Contains(t, body, "go_goroutines")
}

func TestBuildRouter_Docs(t *testing.T) {
	router := buildRouter(testConfig(), zap.NewNop(), &fakePool{})

	rec := serveRequest(router, http.MethodGet, "/docs/openapi.yaml", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/listings/{id}")
}

func serveRequest(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) httpx.Response {
	t.Helper()

	var response httpx.Response
	decoder := json.NewDecoder(bytes.NewReader(recorder.Body.Bytes()))
	decoder.UseNumber()
	require.NoError(t, decoder.Decode(&response))
	return response
}

func decodeMap(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out))
	return out
}
