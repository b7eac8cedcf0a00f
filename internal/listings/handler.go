package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Lelo88/listings-api-golang/internal/httpx"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServiceAPI define lo que el handler necesita.
// Permite testear handlers con stubs sin tocar DB.
type ServiceAPI interface {
	ListAll(ctx context.Context) ([]ListingDTO, error)
	Get(ctx context.Context, id int64) (ListingDTO, error)
	Create(ctx context.Context, input CreateListingInput) (ListingDTO, error)
	Update(ctx context.Context, id int64, input UpdateListingInput) (ListingDTO, error)
	Delete(ctx context.Context, id int64) error
}

// Handler HTTP para listings.
// Solo traduce HTTP <-> dominio (service).
type Handler struct {
	service ServiceAPI
	log     *zap.Logger
	onWrite func(operation string)
}

// HandlerOption configura un Handler.
type HandlerOption func(*Handler)

// WithWriteObserver registra una función que se llama después de cada escritura exitosa.
func WithWriteObserver(observer func(operation string)) HandlerOption {
	return func(handler *Handler) {
		if observer != nil {
			handler.onWrite = observer
		}
	}
}

// NewHandler crea un handler de listings.
func NewHandler(service ServiceAPI, log *zap.Logger, options ...HandlerOption) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	handler := &Handler{service: service, log: log, onWrite: func(string) {}}
	for _, option := range options {
		option(handler)
	}
	return handler
}

// List maneja GET /listings.
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	listings, err := handler.service.ListAll(request.Context())
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	httpx.OK(writer, http.StatusOK, listings)
}

// GetByID maneja GET /listings/{id}.
func (handler *Handler) GetByID(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(writer, request)
	if !ok {
		return
	}

	listing, err := handler.service.Get(request.Context(), id)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	httpx.OK(writer, http.StatusOK, listing)
}

// Create maneja POST /listings.
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input CreateListingInput
	if !handler.decode(writer, request, &input) {
		return
	}

	listing, err := handler.service.Create(request.Context(), input)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.onWrite("create")
	httpx.OK(writer, http.StatusOK, listing)
}

// Update maneja PUT /listings/{id}.
// Los campos que no vienen (o vienen en null) conservan su valor.
func (handler *Handler) Update(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(writer, request)
	if !ok {
		return
	}

	var input UpdateListingInput
	if !handler.decode(writer, request, &input) {
		return
	}

	listing, err := handler.service.Update(request.Context(), id, input)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.onWrite("update")
	httpx.OK(writer, http.StatusOK, listing)
}

// Delete maneja DELETE /listings/{id}. Responde 200 sin cuerpo.
func (handler *Handler) Delete(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(writer, request)
	if !ok {
		return
	}

	if err := handler.service.Delete(request.Context(), id); err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.onWrite("delete")
	httpx.Empty(writer, http.StatusOK)
}

// decode lee el body JSON en input. Si falla responde el error y devuelve false.
// Un precio mal escrito se informa como error del campo price.
func (handler *Handler) decode(writer http.ResponseWriter, request *http.Request, input any) bool {
	err := json.NewDecoder(request.Body).Decode(input)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	var priceError *PriceError
	switch {
	case errors.As(err, &tooLarge):
		httpx.Fail(writer, request, http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.As(err, &priceError):
		handler.fail(writer, request, &ValidationError{Fields: map[string]string{"price": "Must be a decimal number"}})
	default:
		httpx.Fail(writer, request, http.StatusBadRequest, "invalid_json", "invalid JSON body")
	}
	return false
}

// parseID exige un entero positivo; si no, responde 400 y devuelve false.
func parseID(writer http.ResponseWriter, request *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil || id < 1 {
		httpx.Fail(writer, request, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// fail traduce errores de dominio a status HTTP.
func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	var validationError *ValidationError
	var notFoundError *NotFoundError

	switch {
	case errors.As(err, &validationError):
		httpx.FailWithFields(writer, request, http.StatusBadRequest, "invalid_input", "invalid input data", validationError.Fields)
	case errors.Is(err, ErrorInvalidInput):
		httpx.Fail(writer, request, http.StatusBadRequest, "invalid_input", "invalid input data")
	case errors.As(err, &notFoundError):
		httpx.Fail(writer, request, http.StatusNotFound, "not_found", notFoundError.Error())
	case errors.Is(err, ErrorNotFound):
		httpx.Fail(writer, request, http.StatusNotFound, "not_found", "listing not found")
	default:
		// No filtramos detalles internos.
		handler.log.Error("listing request failed",
			zap.Error(err),
			zap.String("method", request.Method),
			zap.String("path", request.URL.Path),
			zap.String("request_id", httpx.RequestIDFrom(request)),
		)
		httpx.Fail(writer, request, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}
