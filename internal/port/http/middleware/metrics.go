package middleware

import (
	"net/http"
	"time"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/platform/metrics"
)

// Latency records per-route request duration on the service registry.
func Latency(m *metrics.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			m.RequestLatency.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
		})
	}
}
