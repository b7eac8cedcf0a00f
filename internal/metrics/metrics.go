package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager agrupa las métricas de la API en un registry propio.
type Manager struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ListingWrites   *prometheus.CounterVec
}

// New registra las métricas HTTP, las de escrituras de listings
// y los collectors estándar de Go y del proceso.
func New(namespace string) *Manager {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	listingWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_writes_total",
		Help:      "Total number of successful listing writes by operation.",
	}, []string{"operation"})

	registry.MustRegister(
		requestsTotal,
		requestDuration,
		listingWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:        registry,
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		ListingWrites:   listingWrites,
	}
}

// ListingWrite cuenta una escritura exitosa (create, update, delete).
func (manager *Manager) ListingWrite(operation string) {
	manager.ListingWrites.WithLabelValues(operation).Inc()
}

// Middleware mide cada request usando el patrón de ruta de chi como label,
// así /listings/1 y /listings/2 caen en la misma serie.
func (manager *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)

		next.ServeHTTP(wrapped, request)

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		manager.RequestsTotal.WithLabelValues(request.Method, route, strconv.Itoa(status)).Inc()
		manager.RequestDuration.WithLabelValues(request.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler expone el registry en formato Prometheus.
func (manager *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(manager.Registry, promhttp.HandlerOpts{})
}
