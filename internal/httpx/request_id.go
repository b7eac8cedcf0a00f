package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestIDFrom devuelve el request id del contexto (lo pone RequestID)
// y si no está, el header que mandó el cliente.
func RequestIDFrom(request *http.Request) string {
	if request == nil {
		return ""
	}
	if id := middleware.GetReqID(request.Context()); id != "" {
		return id
	}
	return request.Header.Get(RequestIDHeader)
}

// RequestID reutiliza el X-Request-Id entrante o genera un UUID nuevo.
// Lo guarda bajo la misma clave que chi, así middleware.GetReqID sigue funcionando,
// y lo devuelve en la respuesta.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		id := request.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		writer.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(request.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
