package http

import (
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/platform/metrics"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/http/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, m *metrics.Manager, jwtSecret string, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.Latency(m))
	r.Use(middleware.SessionAuth(jwtSecret, logger))

	r.Post("/api/listing/create", h.HandleCreate)
	r.Get("/api/listing/view", h.HandleView)
	r.Post("/api/listing/edit", h.HandleEdit)
	r.Post("/api/listing/delete", h.HandleDelete)
	r.Get("/api/listing/image", h.HandleImage)

	return r
}
