package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-sales-cockpit/internal/api/handler"
)

// NewRouter builds the HTTP API for report generation and artifact download.
func NewRouter(h *handler.ReportHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/events", h.ListEvents)
		r.Get("/views", h.ListViews)
		r.Post("/reports", h.CreateReport)
		r.Get("/reports", h.ListReports)
		r.Get("/reports/{id}", h.GetReport)
		r.Get("/reports/{id}/errors", h.GetReportErrors)
		r.Get("/reports/{id}/context", h.GetReportContext)
		r.Get("/download/{id}/{file}", h.DownloadArtifact)
	})

	return r
}
