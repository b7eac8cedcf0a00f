package health

import (
	"context"
	"net/http"
	"time"

	"github.com/Lelo88/listings-api-golang/internal/httpx"
	"go.uber.org/zap"
)

// Pinger es lo único que /ready necesita de la base.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyTimeout = 2 * time.Second

// Handler encapsula endpoints de health.
type Handler struct {
	db  Pinger
	log *zap.Logger
}

// New crea un handler de health. db puede ser nil (ready responde 503).
func New(db Pinger, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{db: db, log: log}
}

// Health indica si el proceso está vivo.
// NO chequea base de datos; eso es /ready.
func (handler *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready indica si la app puede atender tráfico (la DB responde).
func (handler *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if handler.db == nil {
		httpx.Fail(w, r, http.StatusServiceUnavailable, "not_ready", "database pool not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := handler.db.Ping(ctx); err != nil {
		handler.log.Warn("readiness check failed", zap.Error(err), zap.String("request_id", httpx.RequestIDFrom(r)))
		httpx.Fail(w, r, http.StatusServiceUnavailable, "not_ready", "database is not reachable")
		return
	}

	httpx.OK(w, http.StatusOK, map[string]any{"status": "ready"})
}
