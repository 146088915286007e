package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Manager holds the service's Prometheus metrics on a dedicated registry.
type Manager struct {
	Registry             *prometheus.Registry
	ListingsCreatedTotal prometheus.Counter
	ListingsEditedTotal  prometheus.Counter
	ListingsDeletedTotal prometheus.Counter
	RequestErrorsTotal   *prometheus.CounterVec
	RequestLatency       *prometheus.HistogramVec
}

func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	listingsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	})
	listingsEditedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_edited_total",
		Help:      "Total number of listings edited.",
	})
	listingsDeletedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_deleted_total",
		Help:      "Total number of listings deleted.",
	})
	requestErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "request_errors_total",
		Help:      "Total number of failed requests by route and reason.",
	}, []string{"route", "reason"})
	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		listingsCreatedTotal,
		listingsEditedTotal,
		listingsDeletedTotal,
		requestErrorsTotal,
		requestLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:             registry,
		ListingsCreatedTotal: listingsCreatedTotal,
		ListingsEditedTotal:  listingsEditedTotal,
		ListingsDeletedTotal: listingsDeletedTotal,
		RequestErrorsTotal:   requestErrorsTotal,
		RequestLatency:       requestLatency,
	}
}

// StartServer exposes /metrics on its own port. An empty port disables the
// server.
func StartServer(port string, logger *zap.Logger, registry *prometheus.Registry) error {
	if port == "" {
		logger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	logger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
