package logger

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Lelo88/listings-api-golang/internal/httpx"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Middleware loguea una línea por request.
func Middleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			start := time.Now()
			wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)

			next.ServeHTTP(wrapped, request)

			status := wrapped.Status()
			if status == 0 {
				// El handler no escribió nada: net/http responde 200.
				status = http.StatusOK
			}

			log.Info("request",
				zap.String("method", request.Method),
				zap.String("path", request.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", wrapped.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", httpx.RequestIDFrom(request)),
			)
		})
	}
}

// Recovery atrapa panics de los handlers, loguea el stack y responde 500.
func Recovery(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				log.Error("panic recovered",
					zap.Any("panic", recovered),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", request.URL.Path),
					zap.String("request_id", httpx.RequestIDFrom(request)),
				)
				httpx.Fail(writer, request, http.StatusInternalServerError, "internal_error", "unexpected error")
			}()

			next.ServeHTTP(writer, request)
		})
	}
}
