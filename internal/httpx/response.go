package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"
)

// Response es el sobre de los errores.
// Las respuestas exitosas viajan sin sobre (el DTO o el array directo, ver OK).
type Response struct {
	Error *ErrorBody `json:"error,omitempty"`
	Meta  *Meta      `json:"meta,omitempty"`
}

// Meta contiene información adicional útil para debugging y trazabilidad.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	TimeUTC   string `json:"time_utc,omitempty"`
}

// ErrorBody describe un error de forma estructurada.
// No exponer detalles internos (SQL, stacktrace, etc.) en producción.
type ErrorBody struct {
	Code    string            `json:"code,omitempty"`    // ej: "invalid_input", "not_found"
	Message string            `json:"message,omitempty"` // mensaje para humanos
	Fields  map[string]string `json:"fields,omitempty"`  // campo -> motivo, solo en validaciones
}

// JSON escribe payload como JSON con el status indicado.
// Se serializa antes de escribir headers: si falla, el cliente recibe un 500 limpio.
func JSON(w http.ResponseWriter, status int, payload any) {
	var buffer bytes.Buffer
	enc := json.NewEncoder(&buffer)
	enc.SetEscapeHTML(true)

	if err := enc.Encode(payload); err != nil {
		// Último recurso: no se pudo serializar JSON.
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"internal server error"}}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buffer.Bytes())
}

// OK devuelve data tal cual, sin sobre.
func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, data)
}

// Empty responde solo con el status, sin cuerpo.
func Empty(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

// Fail devuelve un error estructurado.
func Fail(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	FailWithFields(w, r, status, code, message, nil)
}

// FailWithFields es Fail con el detalle por campo de una validación.
func FailWithFields(w http.ResponseWriter, r *http.Request, status int, code, message string, fields map[string]string) {
	JSON(w, status, Response{
		Error: &ErrorBody{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
		Meta: &Meta{
			RequestID: RequestIDFrom(r),
			TimeUTC:   time.Now().UTC().Format(time.RFC3339),
		},
	})
}
