package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"
)

// NewRouter wires every route of h. Unmatched paths and methods share the
// JSON not-found response.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(
		RequestContext,
		AccessLog(h.logger, h.metrics),
		Recoverer(h.logger, h.now),
	)
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.Get("/", h.Console)
	r.Get("/verificar", h.Verify)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/keys", h.ListKeys)
		r.Post("/keys", h.CreateKey)
		r.Delete("/keys/{key}", h.DeleteKey)
		r.Get("/logs", h.ListLogs)
		r.Get("/stats", h.Stats)
		r.Get("/report.pdf", h.Report)
	})

	return gzhttp.GzipHandler(r)
}
